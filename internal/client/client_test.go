package client

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/kickshopping/internal/config"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/errors"
	"github.com/Alturino/kickshopping/internal/metric"
	"github.com/Alturino/kickshopping/internal/session"
)

type captured struct {
	method      string
	path        string
	query       string
	contentType string
	accept      string
	auth        string
	requestID   string
	body        string
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		*got = captured{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			contentType: r.Header.Get(HeaderContentType),
			accept:      r.Header.Get(HeaderAccept),
			auth:        r.Header.Get(HeaderAuthorization),
			requestID:   r.Header.Get(HeaderRequestID),
			body:        string(raw),
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newTestClient(t *testing.T, baseURL string, variant Variant, token string) (*Client, *metric.ClientMetrics) {
	t.Helper()
	store := session.NewMemoryStore()
	if token != "" {
		require.NoError(t, store.Set(context.Background(), constants.StoreKeyToken, token))
	}
	metrics := metric.NewClientMetrics()
	cl, err := New(config.Application{BaseURL: baseURL + "/", Variant: string(variant)}, store, metrics)
	require.NoError(t, err)
	return cl, metrics
}

func TestNewRejectsUnknownVariant(t *testing.T) {
	_, err := New(config.Application{BaseURL: "http://localhost", Variant: "graphql"}, session.NewMemoryStore(), nil)
	assert.ErrorIs(t, err, errors.ErrUnknownVariant)
}

func TestClientDoRequestShape(t *testing.T) {
	tests := []struct {
		name                string
		variant             Variant
		token               string
		req                 func(v Variant) Request
		expectedMethod      string
		expectedPath        string
		expectedQuery       string
		expectedContentType string
		expectedAuth        string
		expectedBody        string
	}{
		{
			name:                "given legacy list cart should send user id query",
			variant:             VariantLegacy,
			req:                 func(v Variant) Request { return v.ListCartItems(7) },
			expectedMethod:      http.MethodGet,
			expectedPath:        "/cart/",
			expectedQuery:       "user_id=7",
			expectedContentType: HeaderValueJSON,
		},
		{
			name:                "given catalog list cart should send user id in path",
			variant:             VariantCatalog,
			req:                 func(v Variant) Request { return v.ListCartItems(7) },
			expectedMethod:      http.MethodGet,
			expectedPath:        "/cart_items/user/7",
			expectedContentType: HeaderValueJSON,
		},
		{
			name:                "given legacy login should send urlencoded form",
			variant:             VariantLegacy,
			req:                 func(v Variant) Request { return v.Login("ana@gmail.com", "hunter2") },
			expectedMethod:      http.MethodPost,
			expectedPath:        "/auth/login",
			expectedContentType: HeaderValueForm,
			expectedBody:        "password=hunter2&username=ana%40gmail.com",
		},
		{
			name:                "given catalog login should send json",
			variant:             VariantCatalog,
			req:                 func(v Variant) Request { return v.Login("ana@gmail.com", "hunter2") },
			expectedMethod:      http.MethodPost,
			expectedPath:        "/usuarios/login",
			expectedContentType: HeaderValueJSON,
			expectedBody:        `{"username":"ana@gmail.com","password":"hunter2"}`,
		},
		{
			name:                "given catalog add with token should send bearer",
			variant:             VariantCatalog,
			token:               "abc.def.ghi",
			req:                 func(v Variant) Request { return v.AddCartItem(3, 9, 1) },
			expectedMethod:      http.MethodPost,
			expectedPath:        "/cart_items",
			expectedContentType: HeaderValueJSON,
			expectedAuth:        "Bearer abc.def.ghi",
			expectedBody:        `{"user_id":3,"product_id":9,"quantity":1}`,
		},
		{
			name:                "given catalog add without token should not send bearer",
			variant:             VariantCatalog,
			req:                 func(v Variant) Request { return v.AddCartItem(3, 9, 1) },
			expectedMethod:      http.MethodPost,
			expectedPath:        "/cart_items",
			expectedContentType: HeaderValueJSON,
			expectedBody:        `{"user_id":3,"product_id":9,"quantity":1}`,
		},
		{
			name:                "given legacy add should not send bearer even with token",
			variant:             VariantLegacy,
			token:               "abc.def.ghi",
			req:                 func(v Variant) Request { return v.AddCartItem(3, 9, 2) },
			expectedMethod:      http.MethodPost,
			expectedPath:        "/cart/",
			expectedQuery:       "user_id=3",
			expectedContentType: HeaderValueJSON,
			expectedBody:        `{"product_id":9,"quantity":2}`,
		},
		{
			name:                "given catalog remove should delete by cart item id",
			variant:             VariantCatalog,
			req:                 func(v Variant) Request { return v.RemoveCartItem(12) },
			expectedMethod:      http.MethodDelete,
			expectedPath:        "/cart_items/12",
			expectedContentType: HeaderValueJSON,
		},
		{
			name:                "given catalog me with token should send bearer",
			variant:             VariantCatalog,
			token:               "tok",
			req:                 func(v Variant) Request { return v.Me(1) },
			expectedMethod:      http.MethodGet,
			expectedPath:        "/usuarios/me",
			expectedContentType: HeaderValueJSON,
			expectedAuth:        "Bearer tok",
		},
		{
			name:                "given legacy update me should send user id query",
			variant:             VariantLegacy,
			req:                 func(v Variant) Request { return v.UpdateMe(4, ProfileUpdate{FullName: "Ana", Email: "ana@gmail.com"}) },
			expectedMethod:      http.MethodPut,
			expectedPath:        "/users/me",
			expectedQuery:       "user_id=4",
			expectedContentType: HeaderValueJSON,
			expectedBody:        `{"full_name":"Ana","email":"ana@gmail.com"}`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv, got := newTestServer(t, http.StatusOK, "")
			cl, _ := newTestClient(t, srv.URL, test.variant, test.token)

			resp, err := cl.Do(context.Background(), test.req(cl.Variant()), nil)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, test.expectedMethod, got.method)
			assert.Equal(t, test.expectedPath, got.path)
			assert.Equal(t, test.expectedQuery, got.query)
			assert.Equal(t, test.expectedContentType, got.contentType)
			assert.Equal(t, HeaderValueJSON, got.accept)
			assert.Equal(t, test.expectedAuth, got.auth)
			assert.NotEmpty(t, got.requestID)
			if test.expectedBody == "" {
				assert.Empty(t, got.body)
			} else if test.expectedContentType == HeaderValueJSON {
				assert.JSONEq(t, test.expectedBody, got.body)
			} else {
				assert.Equal(t, test.expectedBody, got.body)
			}
		})
	}
}

func TestClientDoResponses(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		expected       map[string]any
		expectedErr    error
		expectedAPIErr *APIError
	}{
		{
			name:     "given ok json body should decode it",
			status:   http.StatusOK,
			body:     `{"id":1,"name":"Air"}`,
			expected: map[string]any{"id": float64(1), "name": "Air"},
		},
		{
			name:   "given empty 2xx body should leave out untouched",
			status: http.StatusNoContent,
		},
		{
			name:        "given malformed 2xx body should return decode error",
			status:      http.StatusOK,
			body:        `{"id":`,
			expectedErr: errors.ErrDecodeBody,
		},
		{
			name:           "given detail string should carry it",
			status:         http.StatusBadRequest,
			body:           `{"detail":"Email ya registrado"}`,
			expectedAPIErr: &APIError{StatusCode: 400, Status: "Bad Request", Detail: "Email ya registrado"},
		},
		{
			name:           "given validation detail list should join messages",
			status:         http.StatusUnprocessableEntity,
			body:           `{"detail":[{"msg":"field required"},{"msg":"value is not a valid email"}]}`,
			expectedAPIErr: &APIError{StatusCode: 422, Status: "Unprocessable Entity", Detail: "field required; value is not a valid email"},
		},
		{
			name:           "given non json error body should have empty detail",
			status:         http.StatusInternalServerError,
			body:           `boom`,
			expectedAPIErr: &APIError{StatusCode: 500, Status: "Internal Server Error"},
		},
		{
			name:           "given unauthorized should unwrap to unauthorized",
			status:         http.StatusUnauthorized,
			body:           `{"detail":"Not authenticated"}`,
			expectedErr:    errors.ErrUnauthorized,
			expectedAPIErr: &APIError{StatusCode: 401, Status: "Unauthorized", Detail: "Not authenticated"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv, _ := newTestServer(t, test.status, test.body)
			cl, _ := newTestClient(t, srv.URL, VariantCatalog, "")

			var out map[string]any
			resp, err := cl.Do(context.Background(), cl.Variant().GetProduct("1"), &out)
			assert.Equal(t, test.status, resp.StatusCode)
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
			}
			if test.expectedAPIErr != nil {
				var apiErr *APIError
				require.True(t, stdErrors.As(err, &apiErr))
				assert.Equal(t, test.expectedAPIErr, apiErr)
				assert.False(t, IsNetwork(err))
			}
			if test.expectedErr == nil && test.expectedAPIErr == nil {
				require.NoError(t, err)
				assert.Equal(t, test.expected, out)
			}
		})
	}
}

func TestClientDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	cl, metrics := newTestClient(t, baseURL, VariantLegacy, "")
	_, err := cl.Do(context.Background(), cl.Variant().ListProducts(), nil)

	var netErr *NetworkError
	assert.True(t, stdErrors.As(err, &netErr))
	assert.True(t, IsNetwork(err))
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, 1.0, metrics.RequestCount(http.MethodGet, "/products/", "error"))
}

func TestClientDoRecordsMetrics(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[]`)
	cl, metrics := newTestClient(t, srv.URL, VariantCatalog, "")

	for range 2 {
		_, err := cl.Do(context.Background(), cl.Variant().GetProduct("5"), nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 2.0, metrics.RequestCount(http.MethodGet, "/productos/{id}", "200"))
}

func TestErrorHelpers(t *testing.T) {
	withDetail := &APIError{StatusCode: 400, Status: "Bad Request", Detail: "Stock insuficiente"}
	withoutDetail := &APIError{StatusCode: 404, Status: "Not Found"}
	netErr := &NetworkError{Err: io.ErrUnexpectedEOF}

	assert.Equal(t, "Stock insuficiente", DetailOr(withDetail, "fallback"))
	assert.Equal(t, "fallback", DetailOr(withoutDetail, "fallback"))
	assert.Equal(t, "fallback", DetailOr(netErr, "fallback"))
	assert.Equal(t, "Stock insuficiente", StatusText(withDetail))
	assert.Equal(t, "Not Found", StatusText(withoutDetail))
	assert.Equal(t, "", StatusText(netErr))
	assert.ErrorIs(t, netErr, io.ErrUnexpectedEOF)
}

func TestMaskBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		raw         string
		expected    string
	}{
		{
			name:        "given json with password should mask it",
			contentType: HeaderValueJSON,
			raw:         `{"username":"ana","password":"hunter2"}`,
			expected:    `{"username":"ana","password":"****"}`,
		},
		{
			name:        "given form with password should mask it",
			contentType: HeaderValueForm,
			raw:         "username=ana&password=hunter2",
			expected:    `{"username":"ana","password":"****"}`,
		},
		{
			name:        "given json without password should keep it",
			contentType: HeaderValueJSON,
			raw:         `{"product_id":1}`,
			expected:    `{"product_id":1}`,
		},
		{
			name:        "given empty body should render null",
			contentType: HeaderValueJSON,
			expected:    `null`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			masked := maskBody(test.contentType, []byte(test.raw))
			assert.True(t, json.Valid(masked))
			assert.JSONEq(t, test.expected, string(masked))
		})
	}
}
