package context

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceContext identifies the operation a log line or audit row belongs to.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// NewOperation tags ctx with a fresh request id, e.g. once per CLI command.
func NewOperation(ctx context.Context) context.Context {
	return WithTrace(ctx, &TraceContext{RequestID: uuid.NewString()})
}

// GetTrace returns the TraceContext of ctx. Trace and span ids of the
// active span take precedence over stored ones.
func GetTrace(ctx context.Context) *TraceContext {
	stored, _ := ctx.Value(traceContextKey{}).(*TraceContext)

	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return stored
	}

	tc := &TraceContext{TraceID: sc.TraceID().String(), SpanID: sc.SpanID().String()}
	if stored != nil {
		tc.RequestID = stored.RequestID
	}
	return tc
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}
