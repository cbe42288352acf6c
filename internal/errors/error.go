package errors

import (
	"errors"
)

var (
	ErrLoginRequired    = errors.New("login required")
	ErrNetwork          = errors.New("network failure")
	ErrDecodeBody       = errors.New("failed decoding response body")
	ErrStoreKeyNotFound = errors.New("key not found in token store")
	ErrUnknownVariant   = errors.New("unknown backend variant")
	ErrUnknownDriver    = errors.New("unknown session driver")
	ErrMissingProductID = errors.New("missing product id")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidForm      = errors.New("invalid form")
	ErrNoSession        = errors.New("backend returned no session")
)
