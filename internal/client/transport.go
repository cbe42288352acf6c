package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/metric"
)

const maskedValue = "****"

// loggingTransport logs every outgoing request with its masked body and records
// the outcome in the client metrics.
type loggingTransport struct {
	next    http.RoundTripper
	metrics *metric.ClientMetrics
}

func newLoggingTransport(next http.RoundTripper, metrics *metric.ClientMetrics) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return loggingTransport{next: next, metrics: metrics}
}

func (t loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c := r.Context()
	route := routeFromContext(c)
	if route == "" {
		route = r.URL.Path
	}

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "loggingTransport RoundTrip").
		Str(log.KeyRequestID, r.Header.Get(HeaderRequestID)).
		Str(log.KeyRequestMethod, r.Method).
		Str(log.KeyRequestURL, r.URL.String()).
		Logger()

	if r.Body != nil && r.GetBody != nil {
		body, err := r.GetBody()
		if err == nil {
			raw, _ := io.ReadAll(body)
			body.Close()
			logger = logger.With().RawJSON(log.KeyRequestBody, maskBody(r.Header.Get(HeaderContentType), raw)).Logger()
		}
	}

	logger.Debug().Msg("sending request")
	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	elapsed := time.Since(start)
	if err != nil {
		t.metrics.Observe(r.Method, route, 0, elapsed)
		logger.Debug().Err(err).Dur(log.KeyElapsed, elapsed).Msg("request failed")
		return nil, err
	}
	t.metrics.Observe(r.Method, route, resp.StatusCode, elapsed)
	logger.Debug().
		Int(log.KeyResponseStatus, resp.StatusCode).
		Dur(log.KeyElapsed, elapsed).
		Msg("received response")
	return resp, nil
}

// maskBody renders a request body as JSON with the password replaced.
func maskBody(contentType string, raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}

	body := map[string]interface{}{}
	if contentType == HeaderValueForm {
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return []byte("null")
		}
		for k := range values {
			body[k] = values.Get(k)
		}
	} else if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&body); err != nil {
		return []byte("null")
	}

	if body["password"] != nil {
		body["password"] = maskedValue
	}
	masked, err := json.Marshal(body)
	if err != nil {
		return []byte("null")
	}
	return masked
}
