package log

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type requestId struct{}

// RequestIDFromContext returns the request id attached by the remote client, or "".
func RequestIDFromContext(c context.Context) string {
	v, _ := c.Value(requestId{}).(string)
	return v
}

func AttachRequestIDToContext(c context.Context, h string) context.Context {
	return context.WithValue(c, requestId{}, h)
}

func AttachTraceIdFromContext() zerolog.HookFunc {
	return func(e *zerolog.Event, level zerolog.Level, message string) {
		c := e.GetCtx()
		if reqId := RequestIDFromContext(c); reqId != "" {
			e.Str(KeyRequestID, reqId)
		}
		spanCtx := trace.SpanContextFromContext(c)
		if spanCtx.IsValid() {
			e.Str("traceId", spanCtx.TraceID().String()).Str("spanId", spanCtx.SpanID().String())
		}
	}
}
