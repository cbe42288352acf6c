package client

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Alturino/kickshopping/internal/errors"
)

// APIError is a response outside the 2xx range.
type APIError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend responded with status=%d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("backend responded with status=%d %s detail=%s", e.StatusCode, e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return errors.ErrUnauthorized
	}
	return nil
}

// NetworkError is a request that never produced a response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s", errors.ErrNetwork.Error(), e.Err.Error())
}

func (e *NetworkError) Unwrap() []error {
	return []error{errors.ErrNetwork, e.Err}
}

func IsNetwork(err error) bool {
	return stdErrors.Is(err, errors.ErrNetwork)
}

func IsUnauthorized(err error) bool {
	return stdErrors.Is(err, errors.ErrUnauthorized)
}

// NetworkCause returns the transport failure carried by err, or err's own
// message when it is not a network error.
func NetworkCause(err error) string {
	var netErr *NetworkError
	if stdErrors.As(err, &netErr) {
		return netErr.Err.Error()
	}
	return err.Error()
}

// DetailOr returns the backend's detail message carried by err, or fallback.
func DetailOr(err error, fallback string) string {
	var apiErr *APIError
	if stdErrors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// StatusText returns the detail message, or the status text when the backend sent
// none.
func StatusText(err error) string {
	var apiErr *APIError
	if !stdErrors.As(err, &apiErr) {
		return ""
	}
	if apiErr.Detail != "" {
		return apiErr.Detail
	}
	return apiErr.Status
}

// parseDetail reads a FastAPI style error body: {"detail": "..."} or
// {"detail": [{"msg": "..."}, ...]} for validation errors.
func parseDetail(body []byte) string {
	envelope := struct {
		Detail json.RawMessage `json:"detail"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		return detail
	}

	items := []struct {
		Msg string `json:"msg"`
	}{}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
