package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/kickshopping/cart/pkg/request"
	"github.com/Alturino/kickshopping/cart/pkg/response"
	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/errors"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
)

// Doer sends one backend request. *client.Client implements it.
type Doer interface {
	Do(c context.Context, req client.Request, out any) (client.Response, error)
	Variant() client.Variant
}

type CartService struct {
	client   Doer
	validate *validator.Validate
}

func NewCartService(client Doer) CartService {
	return CartService{client: client, validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (svc CartService) Variant() client.Variant {
	return svc.client.Variant()
}

// ListItems fetches the cart of userID. A body that is not a JSON array is read
// as an empty cart.
func (svc CartService) ListItems(c context.Context, userID int) (response.CartItems, error) {
	c, span := otel.Tracer.Start(c, "CartService ListItems")
	defer span.End()
	span.SetAttributes(attribute.Int(log.KeyUserID, userID))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ListItems").
		Int(log.KeyUserID, userID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "fetching cart items").Logger()
	logger.Info().Msg("fetching cart items")
	raw := json.RawMessage{}
	if _, err := svc.client.Do(logger.WithContext(c), svc.client.Variant().ListCartItems(userID), &raw); err != nil {
		err = fmt.Errorf("failed fetching cart items with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		logger.Warn().Msg("cart body is not an array, using empty cart")
		return response.CartItems{}, nil
	}

	items := response.CartItems{}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		err = fmt.Errorf("failed decoding cart items with error=%w", fmt.Errorf("%w: %w", errors.ErrDecodeBody, err))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Array(log.KeyCartItems, items).Msg("fetched cart items")

	return items, nil
}

func (svc CartService) AddItem(c context.Context, param request.AddCartItem) error {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Object(log.KeyRequestBody, param).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating request").Logger()
	logger.Trace().Msg("validating request")
	if err := svc.validate.StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("validated request")

	logger = logger.With().Str(log.KeyProcess, "adding cart item").Logger()
	logger.Info().Msg("adding cart item")
	req := svc.client.Variant().AddCartItem(param.UserID, param.ProductID, param.Quantity)
	if _, err := svc.client.Do(logger.WithContext(c), req, nil); err != nil {
		err = fmt.Errorf("failed adding cart item with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("added cart item")

	return nil
}

func (svc CartService) RemoveItem(c context.Context, param request.RemoveCartItem) error {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()
	span.SetAttributes(attribute.Int(log.KeyCartItemID, param.ID))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Int(log.KeyCartItemID, param.ID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating request").Logger()
	logger.Trace().Msg("validating request")
	if err := svc.validate.StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("validated request")

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Info().Msg("removing cart item")
	if _, err := svc.client.Do(logger.WithContext(c), svc.client.Variant().RemoveCartItem(param.ID), nil); err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("removed cart item")

	return nil
}
