package viewmodel

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/errors"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
	"github.com/Alturino/kickshopping/internal/page"
	"github.com/Alturino/kickshopping/internal/session"
	"github.com/Alturino/kickshopping/internal/validate"
	"github.com/Alturino/kickshopping/user/internal/service"
	"github.com/Alturino/kickshopping/user/pkg/request"
	"github.com/Alturino/kickshopping/user/pkg/response"
)

const (
	MessageEmailDomain = "Solo se permiten cuentas de Gmail"
	MessageUserType    = "Selecciona si eres vendedor o comprador"

	MessageLegacyLoginFailed  = "Error de autenticación"
	MessageLegacyLoginNet     = "Error de red"
	MessageCatalogLoginFailed = "Usuario o contraseña incorrectos"
	MessageCatalogLoginNet    = "Error de conexión"

	MessageRegisterFailed  = "Error en el registro"
	MessageRegisterNet     = "Error de red"
	MessageRegisterSuccess = "¡Registro exitoso! Ahora puedes iniciar sesión."
)

type FormState struct {
	Submitting bool
	Error      string
	Success    string
}

type form struct {
	service   service.UserService
	validator validate.Validator
	store     session.Store
	navigator page.Navigator

	mu    sync.Mutex
	state FormState
}

func (f *form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *form) begin() {
	f.mu.Lock()
	f.state = FormState{Submitting: true}
	f.mu.Unlock()
}

func (f *form) finish(errMessage string, success string) {
	f.mu.Lock()
	f.state = FormState{Error: errMessage, Success: success}
	f.mu.Unlock()
}

// check runs the validator and maps the first failing rule to its message.
func (f *form) check(c context.Context, span trace.Span, s any, except ...string) error {
	tag, err := f.validator.FailedTag(c, s, except...)
	if err != nil {
		err = fmt.Errorf("failed validating form with error=%w", err)
		otel.RecordError(err, span)
		f.finish(err.Error(), "")
		return err
	}
	if tag == "" {
		return nil
	}

	message := MessageEmailDomain
	if tag == validate.TagUserType {
		message = MessageUserType
	}
	err = fmt.Errorf("field tag=%s with error=%w", tag, errors.ErrInvalidForm)
	otel.RecordError(err, span)
	zerolog.Ctx(c).Info().Str(log.KeyField, tag).Msg(message)
	f.finish(message, "")
	return err
}

// persist writes the token bundle to the store. userType wins over the one
// returned by the backend when set.
func (f *form) persist(c context.Context, result response.LoginResult, userType string) error {
	if err := f.store.Set(c, constants.StoreKeyToken, result.AccessToken); err != nil {
		return fmt.Errorf("failed storing token with error=%w", err)
	}
	if result.UserID != nil {
		if err := f.store.Set(c, constants.StoreKeyUserID, strconv.Itoa(*result.UserID)); err != nil {
			return fmt.Errorf("failed storing user id with error=%w", err)
		}
	}
	if userType == "" && result.UserType != nil {
		userType = *result.UserType
	}
	if userType != "" {
		if err := f.store.Set(c, constants.StoreKeyUserType, userType); err != nil {
			return fmt.Errorf("failed storing user type with error=%w", err)
		}
	}
	return nil
}

type LoginForm struct {
	form
}

func NewLoginForm(svc service.UserService, validator validate.Validator, store session.Store, navigator page.Navigator) *LoginForm {
	return &LoginForm{form{service: svc, validator: validator, store: store, navigator: navigator}}
}

// Submit validates the credentials, logs in and stores the session. The legacy
// backend only needs a token and lands on the profile page. The catalog backend
// must also return the user id and lands on the home page.
func (f *LoginForm) Submit(c context.Context, param request.LoginRequest) error {
	c, span := otel.Tracer.Start(c, "LoginForm Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "LoginForm Submit").
		Object(log.KeyRequestBody, param).
		Logger()

	f.begin()

	logger = logger.With().Str(log.KeyProcess, "validating form").Logger()
	logger.Trace().Msg("validating form")
	if err := f.check(logger.WithContext(c), span, param); err != nil {
		return err
	}
	logger.Trace().Msg("validated form")

	legacy := f.service.Variant() == client.VariantLegacy
	failed, network, landing := MessageCatalogLoginFailed, MessageCatalogLoginNet, constants.PathHome
	if legacy {
		failed, network, landing = MessageLegacyLoginFailed, MessageLegacyLoginNet, constants.PathProfile
	}

	logger = logger.With().Str(log.KeyProcess, "logging in").Logger()
	logger.Info().Msg("logging in")
	result, err := f.service.Login(logger.WithContext(c), param)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		if client.IsNetwork(err) {
			f.finish(network, "")
		} else {
			f.finish(client.DetailOr(err, failed), "")
		}
		return err
	}
	if !result.HasToken() || (!legacy && !result.HasSession()) {
		err = fmt.Errorf("failed logging in with error=%w", errors.ErrNoSession)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		f.finish(failed, "")
		return err
	}
	logger.Info().Msg("logged in")

	logger = logger.With().Str(log.KeyProcess, "storing session").Logger()
	logger.Trace().Msg("storing session")
	if legacy {
		err = f.store.Set(c, constants.StoreKeyToken, result.AccessToken)
	} else {
		err = f.persist(c, result, "")
	}
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		f.finish(failed, "")
		return err
	}
	logger.Trace().Msg("stored session")

	f.finish("", "")
	f.navigator.Navigate(c, landing)
	return nil
}

type RegisterForm struct {
	form
}

func NewRegisterForm(svc service.UserService, validator validate.Validator, store session.Store, navigator page.Navigator) *RegisterForm {
	return &RegisterForm{form{service: svc, validator: validator, store: store, navigator: navigator}}
}

// Submit validates the form and signs up. A token bundle logs the user in, a
// created record only shows the success message.
func (f *RegisterForm) Submit(c context.Context, param request.RegisterRequest) error {
	c, span := otel.Tracer.Start(c, "RegisterForm Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RegisterForm Submit").
		Object(log.KeyRequestBody, param).
		Logger()

	f.begin()

	logger = logger.With().Str(log.KeyProcess, "validating form").Logger()
	logger.Trace().Msg("validating form")
	var except []string
	if f.service.Variant() == client.VariantLegacy {
		except = append(except, "UserType")
		param.UserType = ""
	}
	if err := f.check(logger.WithContext(c), span, param, except...); err != nil {
		return err
	}
	logger.Trace().Msg("validated form")

	logger = logger.With().Str(log.KeyProcess, "registering user").Logger()
	logger.Info().Msg("registering user")
	result, err := f.service.Register(logger.WithContext(c), param)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		if client.IsNetwork(err) {
			f.finish(MessageRegisterNet, "")
		} else {
			f.finish(client.DetailOr(err, MessageRegisterFailed), "")
		}
		return err
	}

	switch {
	case result.HasSession():
		logger = logger.With().Str(log.KeyProcess, "storing session").Logger()
		logger.Trace().Msg("storing session")
		if err := f.persist(c, result, param.UserType); err != nil {
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			f.finish(MessageRegisterFailed, "")
			return err
		}
		logger.Info().Msg("registered and logged in")
		f.finish("", "")
		f.navigator.Navigate(c, constants.PathHome)
	case result.IsCreatedRecord():
		logger.Info().Msg("registered user")
		f.finish("", MessageRegisterSuccess)
	default:
		err = fmt.Errorf("failed registering user with error=%w", errors.ErrNoSession)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		f.finish(MessageRegisterFailed, "")
		return err
	}

	return nil
}
