package viewmodel

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/kickshopping/cart/internal/service"
	"github.com/Alturino/kickshopping/cart/pkg/request"
	"github.com/Alturino/kickshopping/cart/pkg/response"
	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
	"github.com/Alturino/kickshopping/internal/page"
	"github.com/Alturino/kickshopping/internal/session"
)

const (
	MessageLoadFailed   = "No se pudo cargar el carrito"
	MessageRemoveFailed = "No se pudo eliminar el producto del carrito"
	MessageRemoveNet    = "Error de red al eliminar del carrito"
)

type CartState struct {
	UserID  int
	Items   response.CartItems
	Loading bool
	Error   string
}

// CartViewModel holds the cart page state. The mutex only guards memory; it is
// never held across a backend call, so concurrent loads race and the last one
// to finish wins.
type CartViewModel struct {
	service  service.CartService
	resolver session.Resolver
	pager    page.Pager

	mu    sync.Mutex
	state CartState
}

func NewCartViewModel(svc service.CartService, resolver session.Resolver, pager page.Pager) *CartViewModel {
	return &CartViewModel{
		service:  svc,
		resolver: resolver,
		pager:    pager,
		state:    CartState{Items: response.CartItems{}},
	}
}

func (vm *CartViewModel) State() CartState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	state := vm.state
	state.Items = append(response.CartItems{}, vm.state.Items...)
	return state
}

// Total is the cart sum with 2 decimals.
func (vm *CartViewModel) Total() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state.Items.Total().StringFixed(2)
}

// Mount resolves the session and loads the cart. The legacy cart page always
// shows the fallback user's cart; the catalog one falls back only without a
// user id in the token.
func (vm *CartViewModel) Mount(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CartViewModel Mount")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartViewModel Mount").Logger()

	policy := session.PolicyFallback
	if vm.service.Variant() == client.VariantLegacy {
		policy = session.PolicyFixed
	}

	logger = logger.With().Str(log.KeyProcess, "resolving session").Logger()
	logger.Trace().Msg("resolving session")
	sess, err := vm.resolver.Resolve(logger.WithContext(c), policy)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Int(log.KeyUserID, sess.UserID).Logger()
	logger.Trace().Msg("resolved session")

	vm.mu.Lock()
	vm.state.UserID = sess.UserID
	vm.mu.Unlock()

	return vm.LoadCart(logger.WithContext(c), sess.UserID)
}

// LoadCart replaces the items with the backend's view of userID's cart. Loading
// is cleared afterwards whatever the outcome.
func (vm *CartViewModel) LoadCart(c context.Context, userID int) error {
	c, span := otel.Tracer.Start(c, "CartViewModel LoadCart")
	defer span.End()
	span.SetAttributes(attribute.Int(log.KeyUserID, userID))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartViewModel LoadCart").
		Int(log.KeyUserID, userID).
		Logger()

	vm.mu.Lock()
	vm.state.UserID = userID
	vm.state.Loading = true
	vm.mu.Unlock()
	defer func() {
		vm.mu.Lock()
		vm.state.Loading = false
		vm.mu.Unlock()
	}()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	items, err := vm.service.ListItems(logger.WithContext(c), userID)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		vm.mu.Lock()
		vm.state.Error = MessageLoadFailed
		vm.mu.Unlock()
		return err
	}

	vm.mu.Lock()
	vm.state.Items = items
	vm.state.Error = ""
	vm.mu.Unlock()
	logger.Info().Str(log.KeyCartTotal, items.Total().StringFixed(2)).Msg("loaded cart")

	return nil
}

// RemoveItem deletes the cart item and drops it from the list. Failures raise
// an alert and leave the list untouched.
func (vm *CartViewModel) RemoveItem(c context.Context, itemID int) error {
	c, span := otel.Tracer.Start(c, "CartViewModel RemoveItem")
	defer span.End()
	span.SetAttributes(attribute.Int(log.KeyCartItemID, itemID))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartViewModel RemoveItem").
		Int(log.KeyCartItemID, itemID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Info().Msg("removing cart item")
	err := vm.service.RemoveItem(logger.WithContext(c), request.RemoveCartItem{ID: itemID})
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		if client.IsNetwork(err) {
			vm.pager.Alert(c, MessageRemoveNet)
		} else {
			vm.pager.Alert(c, MessageRemoveFailed)
		}
		return err
	}

	vm.mu.Lock()
	vm.state.Items = vm.state.Items.Without(itemID)
	vm.mu.Unlock()
	logger.Info().Msg("removed cart item")

	return nil
}

// OnVisibilityChange reloads the cart when the page becomes visible again.
func (vm *CartViewModel) OnVisibilityChange(c context.Context, visible bool) error {
	if !visible {
		return nil
	}

	vm.mu.Lock()
	userID := vm.state.UserID
	vm.state.Loading = true
	vm.mu.Unlock()

	if userID == 0 {
		return vm.Mount(c)
	}
	zerolog.Ctx(c).Debug().Str(log.KeyTag, "CartViewModel OnVisibilityChange").Msg("page visible, reloading cart")
	return vm.LoadCart(c, userID)
}
