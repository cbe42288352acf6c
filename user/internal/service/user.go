package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
	"github.com/Alturino/kickshopping/user/pkg/request"
	"github.com/Alturino/kickshopping/user/pkg/response"
)

// Doer sends one backend request. *client.Client implements it.
type Doer interface {
	Do(c context.Context, req client.Request, out any) (client.Response, error)
	Variant() client.Variant
}

type UserService struct {
	client Doer
}

func NewUserService(client Doer) UserService {
	return UserService{client: client}
}

func (u UserService) Variant() client.Variant {
	return u.client.Variant()
}

func (u UserService) Login(c context.Context, param request.LoginRequest) (response.LoginResult, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "logging in").Logger()
	logger.Info().Msg("logging in")
	result := response.LoginResult{}
	req := u.client.Variant().Login(param.Email, param.Password)
	if _, err := u.client.Do(logger.WithContext(c), req, &result); err != nil {
		err = fmt.Errorf("failed logging in with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.LoginResult{}, err
	}
	logger.Info().Object(log.KeyUser, result).Msg("logged in")

	return result, nil
}

// Register signs up with the email as username. The result is either a token
// bundle or the created record, depending on the backend.
func (u UserService) Register(c context.Context, param request.RegisterRequest) (response.LoginResult, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Object(log.KeyRequestBody, param).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "registering user").Logger()
	logger.Info().Msg("registering user")
	req := u.client.Variant().Register(client.Registration{
		Username:  param.Email,
		Email:     param.Email,
		Password:  param.Password,
		Birthdate: param.ComposedBirthdate(),
		FirstName: param.FirstName,
		LastName:  param.LastName,
		Phone:     param.Phone,
		UserType:  param.UserType,
	})
	result := response.LoginResult{}
	if _, err := u.client.Do(logger.WithContext(c), req, &result); err != nil {
		err = fmt.Errorf("failed registering user with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.LoginResult{}, err
	}
	logger.Info().Object(log.KeyUser, result).Msg("registered user")

	return result, nil
}

func (u UserService) Me(c context.Context, userID int) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Me")
	defer span.End()
	span.SetAttributes(attribute.Int(log.KeyUserID, userID))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Me").
		Int(log.KeyUserID, userID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "fetching user").Logger()
	logger.Info().Msg("fetching user")
	user := response.User{}
	if _, err := u.client.Do(logger.WithContext(c), u.client.Variant().Me(userID), &user); err != nil {
		err = fmt.Errorf("failed fetching user with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Object(log.KeyUser, user).Msg("fetched user")

	return user, nil
}

func (u UserService) UpdateMe(c context.Context, userID int, param request.UpdateProfileRequest) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService UpdateMe")
	defer span.End()
	span.SetAttributes(attribute.Int(log.KeyUserID, userID))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService UpdateMe").
		Int(log.KeyUserID, userID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "updating user").Logger()
	logger.Info().Msg("updating user")
	req := u.client.Variant().UpdateMe(userID, client.ProfileUpdate{FullName: param.FullName, Email: param.Email})
	user := response.User{}
	if _, err := u.client.Do(logger.WithContext(c), req, &user); err != nil {
		err = fmt.Errorf("failed updating user with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Object(log.KeyUser, user).Msg("updated user")

	return user, nil
}
