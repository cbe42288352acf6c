package viewmodel

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
	"github.com/Alturino/kickshopping/internal/session"
	"github.com/Alturino/kickshopping/product/internal/service"
	"github.com/Alturino/kickshopping/product/pkg/response"
)

const MessageCatalogFailed = "No se pudieron cargar los productos"

type CatalogState struct {
	Products []response.Product
	Loading  bool
	Error    string
	IsSeller bool
}

type CatalogViewModel struct {
	service service.ProductService
	store   session.Store

	mu    sync.Mutex
	state CatalogState
}

func NewCatalogViewModel(svc service.ProductService, store session.Store) *CatalogViewModel {
	return &CatalogViewModel{service: svc, store: store, state: CatalogState{Products: []response.Product{}}}
}

func (vm *CatalogViewModel) State() CatalogState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	state := vm.state
	state.Products = append([]response.Product{}, vm.state.Products...)
	return state
}

func (vm *CatalogViewModel) Load(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CatalogViewModel Load")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CatalogViewModel Load").Logger()

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

	logger = logger.With().Str(log.KeyProcess, "loading products").Logger()
	logger.Info().Msg("loading products")
	products, err := vm.service.ListProducts(logger.WithContext(c))
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		vm.mu.Lock()
		vm.state.Error = MessageCatalogFailed
		vm.mu.Unlock()
		return err
	}

	vm.mu.Lock()
	vm.state.Products = products
	vm.state.Error = ""
	vm.mu.Unlock()
	logger.Info().Int(log.KeyProducts, len(products)).Msg("loaded products")

	return nil
}

// isSeller reports whether the stored user type is vendedor. Read failures count
// as a buyer.
func isSeller(c context.Context, store session.Store) bool {
	userType, err := store.Get(c, constants.StoreKeyUserType)
	return err == nil && userType == constants.UserTypeSeller
}
