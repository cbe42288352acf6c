package viewmodel

import (
	"context"
	stdErrors "errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/kickshopping/cart/internal/service"
	"github.com/Alturino/kickshopping/cart/pkg/request"
	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
	"github.com/Alturino/kickshopping/internal/page"
	"github.com/Alturino/kickshopping/internal/session"
)

const (
	MessageAddFailed = "No se pudo agregar al carrito: "
	MessageAddNet    = "Error de red al agregar al carrito: "
)

// AddToCart is the product page's add-to-cart button.
type AddToCart struct {
	service  service.CartService
	resolver session.Resolver
	pager    page.Pager
}

func NewAddToCart(svc service.CartService, resolver session.Resolver, pager page.Pager) AddToCart {
	return AddToCart{service: svc, resolver: resolver, pager: pager}
}

// AddProduct puts one unit of productID in the logged in user's cart and opens
// the cart page. Without a token carrying a user id it redirects to the login
// page instead.
func (a AddToCart) AddProduct(c context.Context, productID int) error {
	c, span := otel.Tracer.Start(c, "AddToCart AddProduct")
	defer span.End()
	span.SetAttributes(attribute.Int(log.KeyProductID, productID))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddToCart AddProduct").
		Int(log.KeyProductID, productID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "resolving session").Logger()
	logger.Trace().Msg("resolving session")
	sess, err := a.resolver.Resolve(logger.WithContext(c), session.PolicyRequireUserID)
	if err != nil {
		otel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Int(log.KeyUserID, sess.UserID).Logger()
	logger.Trace().Msg("resolved session")

	logger = logger.With().Str(log.KeyProcess, "adding product to cart").Logger()
	logger.Info().Msg("adding product to cart")
	param := request.AddCartItem{UserID: sess.UserID, ProductID: productID, Quantity: 1}
	if err := a.service.AddItem(logger.WithContext(c), param); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		var apiErr *client.APIError
		switch {
		case client.IsNetwork(err):
			a.pager.Alert(c, MessageAddNet+client.NetworkCause(err))
		case stdErrors.As(err, &apiErr):
			a.pager.Alert(c, MessageAddFailed+client.StatusText(err))
		default:
			a.pager.Alert(c, MessageAddFailed+err.Error())
		}
		return err
	}
	logger.Info().Msg("added product to cart")

	a.pager.Navigate(c, constants.PathCart)
	return nil
}
