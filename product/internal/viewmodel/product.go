package viewmodel

import (
	"context"
	stdErrors "errors"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/errors"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
	"github.com/Alturino/kickshopping/internal/session"
	"github.com/Alturino/kickshopping/product/internal/service"
	"github.com/Alturino/kickshopping/product/pkg/response"
)

const (
	MessageProductNotFound = "No se encontró el producto"
	MessageProductFailed   = "No se pudo cargar el producto"
)

type ProductState struct {
	Product  *response.Product
	Loading  bool
	Error    string
	IsSeller bool
}

type ProductViewModel struct {
	service service.ProductService
	store   session.Store
	variant client.Variant

	mu    sync.Mutex
	state ProductState
}

func NewProductViewModel(svc service.ProductService, store session.Store, variant client.Variant) *ProductViewModel {
	return &ProductViewModel{service: svc, store: store, variant: variant}
}

func (vm *ProductViewModel) State() ProductState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	state := vm.state
	if vm.state.Product != nil {
		p := *vm.state.Product
		state.Product = &p
	}
	return state
}

// Load shows product id. The legacy backend has no product page lookup, so it
// shows the first product of the list and ignores id.
func (vm *ProductViewModel) Load(c context.Context, id string) error {
	c, span := otel.Tracer.Start(c, "ProductViewModel Load")
	defer span.End()
	span.SetAttributes(attribute.String(log.KeyProductID, id))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductViewModel Load").
		Str(log.KeyProductID, id).
		Str(log.KeyVariant, string(vm.variant)).
		Logger()

	isSeller := isSeller(c, vm.store)
	vm.mu.Lock()
	vm.state.IsSeller = isSeller
	vm.state.Loading = true
	vm.mu.Unlock()
	defer func() {
		vm.mu.Lock()
		vm.state.Loading = false
		vm.mu.Unlock()
	}()

	logger = logger.With().Str(log.KeyProcess, "loading product").Logger()
	logger.Info().Msg("loading product")
	product, err := vm.load(logger.WithContext(c), id)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		message := MessageProductFailed
		if stdErrors.Is(err, errors.ErrMissingProductID) {
			message = MessageProductNotFound
		}
		vm.mu.Lock()
		vm.state.Product = nil
		vm.state.Error = message
		vm.mu.Unlock()
		return err
	}

	vm.mu.Lock()
	vm.state.Product = product
	vm.state.Error = ""
	vm.mu.Unlock()
	logger.Info().Bool("found", product != nil).Msg("loaded product")

	return nil
}

func (vm *ProductViewModel) load(c context.Context, id string) (*response.Product, error) {
	if vm.variant == client.VariantLegacy {
		products, err := vm.service.ListProducts(c)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			return nil, nil
		}
		return &products[0], nil
	}

	product, err := vm.service.GetProduct(c, id)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
