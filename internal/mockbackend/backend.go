// Package mockbackend is an in-memory storefront backend serving either the
// legacy or the catalog endpoint set. It backs the client tests and the
// mock-backend command.
package mockbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
)

const (
	roleSeller = 1
	roleBuyer  = 2
)

type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price"`
	Discount    float64  `json:"discount"`
	ImageURL    string   `json:"image_url,omitempty"`
}

type User struct {
	ID        int
	Email     string
	Password  string
	FullName  string
	UserType  string
	Birthdate string
}

type CartItem struct {
	ID        int `json:"id"`
	UserID    int `json:"user_id"`
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type failure struct {
	status int
	detail string
}

type Backend struct {
	variant client.Variant
	secret  []byte
	router  *mux.Router

	mu        sync.Mutex
	products  map[int]Product
	users     map[int]User
	cartItems map[int]CartItem
	failures  map[string]failure
	nextID    int
}

func New(variant client.Variant, secret string) *Backend {
	b := &Backend{
		variant:   variant,
		secret:    []byte(secret),
		products:  map[int]Product{},
		users:     map[int]User{},
		cartItems: map[int]CartItem{},
		failures:  map[string]failure{},
	}
	b.router = b.newRouter()
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

func (b *Backend) newRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.AppName+"-mock-backend"), b.logging, recoverPanic, b.injectFailure)

	if b.variant == client.VariantLegacy {
		router.HandleFunc("/products/", b.listProducts).Methods(http.MethodGet)
		router.HandleFunc("/products/{id}", b.getProduct).Methods(http.MethodGet)
		router.HandleFunc("/cart/", b.listCartLegacy).Methods(http.MethodGet)
		router.HandleFunc("/cart/", b.addCartItemLegacy).Methods(http.MethodPost)
		router.HandleFunc("/cart/{id}", b.removeCartItem).Methods(http.MethodDelete)
		router.HandleFunc("/auth/login", b.loginLegacy).Methods(http.MethodPost)
		router.HandleFunc("/auth/register", b.registerLegacy).Methods(http.MethodPost)
		router.HandleFunc("/users/me", b.meLegacy).Methods(http.MethodGet)
		router.HandleFunc("/users/me", b.updateMeLegacy).Methods(http.MethodPut)
		return router
	}

	router.HandleFunc("/productos/", b.listProducts).Methods(http.MethodGet)
	router.HandleFunc("/productos/{id}", b.getProduct).Methods(http.MethodGet)
	router.HandleFunc("/cart_items/user/{id}", b.listCartCatalog).Methods(http.MethodGet)
	router.HandleFunc("/cart_items", b.addCartItemCatalog).Methods(http.MethodPost)
	router.HandleFunc("/cart_items/{id}", b.removeCartItem).Methods(http.MethodDelete)
	router.HandleFunc("/usuarios/login", b.loginCatalog).Methods(http.MethodPost)
	router.HandleFunc("/usuarios", b.registerCatalog).Methods(http.MethodPost)
	router.HandleFunc("/usuarios/me", b.meCatalog).Methods(http.MethodGet)
	router.HandleFunc("/users/me", b.updateMeCatalog).Methods(http.MethodPut)
	return router
}

func (b *Backend) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(client.HeaderRequestID)
		logger := zerolog.Ctx(r.Context()).
			With().
			Str(log.KeyTag, "mockbackend").
			Str(log.KeyRequestID, requestID).
			Str(log.KeyRequestMethod, r.Method).
			Str(log.KeyRequestURL, r.URL.String()).
			Logger()
		c := log.AttachRequestIDToContext(logger.WithContext(r.Context()), requestID)
		logger.Debug().Msg("handling request")
		next.ServeHTTP(w, r.WithContext(c))
	})
}

// recoverPanic answers 500 instead of dropping the connection when a handler
// panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "mockbackend recoverPanic")
		defer span.End()

		logger := zerolog.Ctx(c).With().Logger()
		defer func() {
			if recovered := recover(); recovered != nil {
				err, ok := recovered.(error)
				if !ok {
					err = fmt.Errorf("panic=%v", recovered)
				}
				logger.Error().Err(err).Stack().Msg("recovered from panic")
				otel.RecordError(err, span)
				writeDetail(c, w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()

		next.ServeHTTP(w, r.WithContext(c))
	})
}

func (b *Backend) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = r.Method + " " + tpl
			}
		}
		b.mu.Lock()
		f, ok := b.failures[route]
		b.mu.Unlock()
		if ok {
			writeDetail(r.Context(), w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every request to method and the templated route answer status
// with detail until Recover is called.
func (b *Backend) Fail(method string, route string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+route] = failure{status: status, detail: detail}
}

func (b *Backend) Recover(method string, route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, method+" "+route)
}

func (b *Backend) id() int {
	b.nextID++
	return b.nextID
}

func (b *Backend) AddProduct(p Product) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	p.ID = b.id()
	b.products[p.ID] = p
	return p.ID
}

// AddUser stores u with its password hashed. A password bcrypt rejects leaves
// the user unable to log in.
func (b *Backend) AddUser(u User) int {
	u.Password, _ = hashPassword(u.Password)

	b.mu.Lock()
	defer b.mu.Unlock()
	u.ID = b.id()
	b.users[u.ID] = u
	return u.ID
}

func (b *Backend) AddCartItem(userID int, productID int, quantity int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	item := CartItem{ID: b.id(), UserID: userID, ProductID: productID, Quantity: quantity}
	b.cartItems[item.ID] = item
	return item.ID
}

func (b *Backend) CartItems(userID int) []CartItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cartOf(userID)
}

func (b *Backend) User(id int) (User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	return u, ok
}

func (b *Backend) cartOf(userID int) []CartItem {
	items := []CartItem{}
	for _, item := range b.cartItems {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (b *Backend) userByEmail(email string) (User, bool) {
	for _, u := range b.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return User{}, false
}

// IssueToken signs an HS256 token with the claims the backend puts in its own
// tokens: sub, rol_id, user_id and exp.
func (b *Backend) IssueToken(u User) (string, error) {
	role := roleBuyer
	if u.UserType == constants.UserTypeSeller {
		role = roleSeller
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     u.Email,
		"rol_id":  role,
		"user_id": u.ID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(b.secret)
}

func (b *Backend) userFromBearer(r *http.Request) (User, error) {
	raw, ok := strings.CutPrefix(r.Header.Get(client.HeaderAuthorization), client.BearerPrefix)
	if !ok || raw == "" {
		return User{}, fmt.Errorf("missing bearer token")
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(t *jwt.Token) (interface{}, error) { return b.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return User{}, fmt.Errorf("failed parsing token with error=%w", err)
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return User{}, fmt.Errorf("token without user_id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[int(id)]
	if !ok {
		return User{}, fmt.Errorf("user_id=%d not found", int(id))
	}
	return u, nil
}

func writeJSON(c context.Context, w http.ResponseWriter, status int, body any) {
	c, span := otel.Tracer.Start(c, "mockbackend writeJSON")
	defer span.End()

	w.Header().Set(client.HeaderContentType, client.HeaderValueJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		err = fmt.Errorf("failed encoding response body with error=%w", err)
		otel.RecordError(err, span)
		zerolog.Ctx(c).Error().Err(err).Msg(err.Error())
	}
}

func writeDetail(c context.Context, w http.ResponseWriter, status int, detail string) {
	writeJSON(c, w, status, map[string]string{"detail": detail})
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func queryUserID(r *http.Request) (int, error) {
	return strconv.Atoi(r.URL.Query().Get("user_id"))
}
