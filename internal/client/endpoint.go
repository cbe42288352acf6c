package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Alturino/kickshopping/internal/errors"
)

// Variant selects one of the two backend endpoint sets the storefront talks to.
// Neither is authoritative; a process picks one.
type Variant string

const (
	// VariantLegacy is the english backend: /products, /cart, /auth, /users.
	VariantLegacy Variant = "legacy"
	// VariantCatalog is the spanish backend: /productos, /cart_items, /usuarios.
	VariantCatalog Variant = "catalog"
)

func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case VariantLegacy, VariantCatalog:
		return v, nil
	default:
		return "", fmt.Errorf("variant=%s with error=%w", s, errors.ErrUnknownVariant)
	}
}

type Registration struct {
	Username  string
	Email     string
	Password  string
	Birthdate string
	FirstName string
	LastName  string
	Phone     string
	UserType  string
}

type ProfileUpdate struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type legacyCartItemBody struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type catalogCartItemBody struct {
	UserID    int `json:"user_id"`
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type legacyRegistrationBody struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Birthdate string `json:"birthdate"`
}

type catalogRegistrationBody struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Birthdate string `json:"birthdate"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	UserType  string `json:"user_type"`
}

func userQuery(userID int) url.Values {
	return url.Values{"user_id": []string{strconv.Itoa(userID)}}
}

func (v Variant) ListProducts() Request {
	if v == VariantLegacy {
		return Request{Method: http.MethodGet, Route: "/products/", Path: "/products/"}
	}
	return Request{Method: http.MethodGet, Route: "/productos/", Path: "/productos/"}
}

func (v Variant) GetProduct(id string) Request {
	escaped := url.PathEscape(id)
	if v == VariantLegacy {
		return Request{Method: http.MethodGet, Route: "/products/{id}", Path: "/products/" + escaped}
	}
	return Request{Method: http.MethodGet, Route: "/productos/{id}", Path: "/productos/" + escaped}
}

func (v Variant) ListCartItems(userID int) Request {
	if v == VariantLegacy {
		return Request{
			Method: http.MethodGet,
			Route:  "/cart/",
			Path:   "/cart/",
			Query:  userQuery(userID),
		}
	}
	return Request{
		Method: http.MethodGet,
		Route:  "/cart_items/user/{id}",
		Path:   "/cart_items/user/" + strconv.Itoa(userID),
	}
}

func (v Variant) AddCartItem(userID int, productID int, quantity int) Request {
	if v == VariantLegacy {
		return Request{
			Method: http.MethodPost,
			Route:  "/cart/",
			Path:   "/cart/",
			Query:  userQuery(userID),
			JSON:   legacyCartItemBody{ProductID: productID, Quantity: quantity},
		}
	}
	return Request{
		Method:        http.MethodPost,
		Route:         "/cart_items",
		Path:          "/cart_items",
		JSON:          catalogCartItemBody{UserID: userID, ProductID: productID, Quantity: quantity},
		Authenticated: true,
	}
}

func (v Variant) RemoveCartItem(itemID int) Request {
	if v == VariantLegacy {
		return Request{Method: http.MethodDelete, Route: "/cart/{id}", Path: "/cart/" + strconv.Itoa(itemID)}
	}
	return Request{
		Method: http.MethodDelete,
		Route:  "/cart_items/{id}",
		Path:   "/cart_items/" + strconv.Itoa(itemID),
	}
}

// Login sends the credentials urlencoded to the legacy backend, which reads an
// OAuth2 password form, and as JSON to the catalog backend.
func (v Variant) Login(username string, password string) Request {
	if v == VariantLegacy {
		return Request{
			Method: http.MethodPost,
			Route:  "/auth/login",
			Path:   "/auth/login",
			Form:   url.Values{"username": []string{username}, "password": []string{password}},
		}
	}
	return Request{
		Method: http.MethodPost,
		Route:  "/usuarios/login",
		Path:   "/usuarios/login",
		JSON:   credentialsBody{Username: username, Password: password},
	}
}

func (v Variant) Register(r Registration) Request {
	if v == VariantLegacy {
		return Request{
			Method: http.MethodPost,
			Route:  "/auth/register",
			Path:   "/auth/register",
			JSON: legacyRegistrationBody{
				Username:  r.Username,
				Email:     r.Email,
				Password:  r.Password,
				Birthdate: r.Birthdate,
			},
		}
	}
	return Request{
		Method: http.MethodPost,
		Route:  "/usuarios",
		Path:   "/usuarios",
		JSON: catalogRegistrationBody{
			Username:  r.Username,
			Email:     r.Email,
			Password:  r.Password,
			Birthdate: r.Birthdate,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Phone:     r.Phone,
			UserType:  r.UserType,
		},
	}
}

// Me fetches the identity. The legacy backend trusts a user_id query parameter,
// the catalog backend reads the bearer token.
func (v Variant) Me(userID int) Request {
	if v == VariantLegacy {
		return Request{
			Method: http.MethodGet,
			Route:  "/users/me",
			Path:   "/users/me",
			Query:  userQuery(userID),
		}
	}
	return Request{
		Method:        http.MethodGet,
		Route:         "/usuarios/me",
		Path:          "/usuarios/me",
		Authenticated: true,
	}
}

func (v Variant) UpdateMe(userID int, update ProfileUpdate) Request {
	if v == VariantLegacy {
		return Request{
			Method: http.MethodPut,
			Route:  "/users/me",
			Path:   "/users/me",
			Query:  userQuery(userID),
			JSON:   update,
		}
	}
	return Request{
		Method:        http.MethodPut,
		Route:         "/users/me",
		Path:          "/users/me",
		JSON:          update,
		Authenticated: true,
	}
}
