package viewmodel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/config"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/errors"
	"github.com/Alturino/kickshopping/internal/mockbackend"
	"github.com/Alturino/kickshopping/internal/session"
	"github.com/Alturino/kickshopping/product/internal/service"
)

func price(v float64) *float64 {
	return &v
}

func newService(t *testing.T, variant client.Variant, store session.Store) (*mockbackend.Backend, service.ProductService) {
	t.Helper()
	b := mockbackend.New(variant, "secret")
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	cl, err := client.New(config.Application{BaseURL: srv.URL, Variant: string(variant)}, store, nil)
	require.NoError(t, err)
	return b, service.NewProductService(cl)
}

func TestCatalogViewModelLoad(t *testing.T) {
	tests := []struct {
		name             string
		userType         string
		fail             bool
		expectedLen      int
		expectedError    string
		expectedIsSeller bool
	}{
		{
			name:        "given products should list them",
			expectedLen: 2,
		},
		{
			name:             "given seller should flag seller",
			userType:         constants.UserTypeSeller,
			expectedLen:      2,
			expectedIsSeller: true,
		},
		{
			name:        "given buyer should not flag seller",
			userType:    constants.UserTypeBuyer,
			expectedLen: 2,
		},
		{
			name:          "given backend failure should set error",
			fail:          true,
			expectedError: MessageCatalogFailed,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			if test.userType != "" {
				require.NoError(t, store.Set(context.Background(), constants.StoreKeyUserType, test.userType))
			}
			b, svc := newService(t, client.VariantCatalog, store)
			b.AddProduct(mockbackend.Product{Name: "Nike Air Max", Price: price(150.99), Discount: 10})
			b.AddProduct(mockbackend.Product{Name: "Buzo", Price: price(40)})
			if test.fail {
				b.Fail(http.MethodGet, "/productos/", http.StatusInternalServerError, "")
			}

			vm := NewCatalogViewModel(svc, store)
			err := vm.Load(context.Background())
			if test.fail {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			state := vm.State()
			assert.Len(t, state.Products, test.expectedLen)
			assert.Equal(t, test.expectedError, state.Error)
			assert.Equal(t, test.expectedIsSeller, state.IsSeller)
			assert.False(t, state.Loading)
		})
	}
}

func TestProductViewModelLoad(t *testing.T) {
	tests := []struct {
		name          string
		variant       client.Variant
		id            func(existing int) string
		emptyCatalog  bool
		expectedName  string
		expectedError string
		expectedErr   error
	}{
		{
			name:         "given catalog id should load product",
			variant:      client.VariantCatalog,
			id:           func(existing int) string { return "2" },
			expectedName: "Buzo",
		},
		{
			name:          "given empty id should report not found",
			variant:       client.VariantCatalog,
			id:            func(int) string { return "" },
			expectedError: MessageProductNotFound,
			expectedErr:   errors.ErrMissingProductID,
		},
		{
			name:          "given unknown id should report load failure",
			variant:       client.VariantCatalog,
			id:            func(int) string { return "404" },
			expectedError: MessageProductFailed,
		},
		{
			name:         "given legacy should show first product",
			variant:      client.VariantLegacy,
			id:           func(int) string { return "" },
			expectedName: "Nike Air Max",
		},
		{
			name:         "given legacy empty catalog should show nothing",
			variant:      client.VariantLegacy,
			id:           func(int) string { return "" },
			emptyCatalog: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			b, svc := newService(t, test.variant, store)
			existing := 0
			if !test.emptyCatalog {
				existing = b.AddProduct(mockbackend.Product{Name: "Nike Air Max", Price: price(90), Discount: 10})
				b.AddProduct(mockbackend.Product{Name: "Buzo", Price: price(40)})
			}

			vm := NewProductViewModel(svc, store, test.variant)
			err := vm.Load(context.Background(), test.id(existing))

			state := vm.State()
			assert.Equal(t, test.expectedError, state.Error)
			assert.False(t, state.Loading)
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
			}
			if test.expectedError != "" {
				assert.Error(t, err)
				assert.Nil(t, state.Product)
				return
			}
			require.NoError(t, err)
			if test.expectedName == "" {
				assert.Nil(t, state.Product)
				return
			}
			require.NotNil(t, state.Product)
			assert.Equal(t, test.expectedName, state.Product.Name)
		})
	}
}

func TestProductViewModelOriginalPrice(t *testing.T) {
	store := session.NewMemoryStore()
	b, svc := newService(t, client.VariantCatalog, store)
	id := b.AddProduct(mockbackend.Product{Name: "Nike Air Max", Price: price(90), Discount: 10})

	vm := NewProductViewModel(svc, store, client.VariantCatalog)
	require.NoError(t, vm.Load(context.Background(), "1"))
	require.NotNil(t, vm.State().Product)
	assert.Equal(t, id, vm.State().Product.ID)
	assert.Equal(t, "100.00", vm.State().Product.OriginalPrice())
}
