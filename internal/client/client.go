package client

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/kickshopping/internal/config"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/errors"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/metric"
	"github.com/Alturino/kickshopping/internal/otel"
)

// Request describes one backend call. Route is the templated path used as the
// metric label, Path the concrete one.
type Request struct {
	Method        string
	Route         string
	Path          string
	Query         url.Values
	JSON          any
	Form          url.Values
	Authenticated bool
}

type Response struct {
	StatusCode int
	Status     string
}

// TokenStore is the part of the session store the client reads the bearer
// token from.
type TokenStore interface {
	Get(c context.Context, key string) (string, error)
}

type Client struct {
	baseURL    string
	variant    Variant
	store      TokenStore
	httpClient *http.Client
}

func New(cfg config.Application, store TokenStore, metrics *metric.ClientMetrics) (*Client, error) {
	variant, err := ParseVariant(cfg.Variant)
	if err != nil {
		return nil, err
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("failed parsing base_url=%s with error=%w", cfg.BaseURL, err)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		variant: variant,
		store:   store,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(newLoggingTransport(http.DefaultTransport, metrics)),
			Timeout:   cfg.Timeout,
		},
	}, nil
}

func (cl *Client) Variant() Variant {
	return cl.variant
}

type routeKey struct{}

func routeFromContext(c context.Context) string {
	route, ok := c.Value(routeKey{}).(string)
	if !ok {
		return ""
	}
	return route
}

// Do sends req and decodes a 2xx JSON body into out. Non-2xx responses return
// *APIError and transport failures return *NetworkError. Nothing is retried.
func (cl *Client) Do(c context.Context, req Request, out any) (Response, error) {
	c, span := otel.Tracer.Start(
		c,
		"Client Do",
		trace.WithAttributes(
			attribute.String(log.KeyRequestMethod, req.Method),
			attribute.String(log.KeyPath, req.Route),
		),
	)
	defer span.End()

	requestID := uuid.NewString()
	c = log.AttachRequestIDToContext(c, requestID)
	c = context.WithValue(c, routeKey{}, req.Route)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client Do").
		Str(log.KeyRequestID, requestID).
		Str(log.KeyRequestMethod, req.Method).
		Str(log.KeyPath, req.Path).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "building request").Logger()
	logger.Trace().Msg("building request")
	httpReq, err := cl.newHTTPRequest(c, req)
	if err != nil {
		err = fmt.Errorf("failed building request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Response{}, err
	}
	httpReq.Header.Set(HeaderAccept, HeaderValueJSON)
	httpReq.Header.Set(HeaderRequestID, requestID)
	if req.Authenticated {
		token, err := cl.store.Get(c, constants.StoreKeyToken)
		if err != nil && !stdErrors.Is(err, errors.ErrStoreKeyNotFound) {
			logger.Warn().Err(err).Msg("failed reading token, sending request without it")
		}
		if token != "" {
			httpReq.Header.Set(HeaderAuthorization, BearerPrefix+token)
		}
	}
	logger.Trace().Msg("built request")

	logger = logger.With().Str(log.KeyProcess, "sending request").Logger()
	logger.Info().Msgf("sending %s %s", req.Method, req.Path)
	httpResp, err := cl.httpClient.Do(httpReq)
	if err != nil {
		err = &NetworkError{Err: err}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Response{}, err
	}
	defer httpResp.Body.Close()

	resp := Response{StatusCode: httpResp.StatusCode, Status: http.StatusText(httpResp.StatusCode)}
	span.SetAttributes(attribute.Int(log.KeyResponseStatus, resp.StatusCode))
	logger = logger.With().Int(log.KeyResponseStatus, resp.StatusCode).Logger()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		err = &NetworkError{Err: fmt.Errorf("failed reading response body with error=%w", err)}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return resp, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Detail: parseDetail(body)}
		otel.RecordError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return resp, err
	}
	logger.Info().Msgf("sent %s %s", req.Method, req.Path)

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return resp, nil
	}

	logger = logger.With().Str(log.KeyProcess, "decoding response body").Logger()
	logger.Trace().Msg("decoding response body")
	if err := json.Unmarshal(body, out); err != nil {
		err = fmt.Errorf("%w: %w", errors.ErrDecodeBody, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return resp, err
	}
	logger.Trace().Msg("decoded response body")

	return resp, nil
}

func (cl *Client) newHTTPRequest(c context.Context, req Request) (*http.Request, error) {
	target := cl.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = HeaderValueForm
	case req.JSON != nil:
		raw, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed marshalling request body with error=%w", err)
		}
		body = bytes.NewReader(raw)
		contentType = HeaderValueJSON
	}

	httpReq, err := http.NewRequestWithContext(c, req.Method, target, body)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = HeaderValueJSON
	}
	httpReq.Header.Set(HeaderContentType, contentType)
	return httpReq, nil
}
