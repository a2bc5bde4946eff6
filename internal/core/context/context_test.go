package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestGetTrace(t *testing.T) {
	assert.Nil(t, GetTrace(context.Background()))

	ctx := NewOperation(context.Background())
	tc := GetTrace(ctx)
	require.NotNil(t, tc)
	assert.NotEmpty(t, tc.RequestID)
	assert.Empty(t, tc.TraceID)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{2},
	})
	spanCtx := trace.ContextWithSpanContext(ctx, sc)

	withSpan := GetTrace(spanCtx)
	require.NotNil(t, withSpan)
	assert.Equal(t, sc.TraceID().String(), withSpan.TraceID)
	assert.Equal(t, sc.SpanID().String(), withSpan.SpanID)
	assert.Equal(t, tc.RequestID, GetRequestID(spanCtx))
}

func TestGetUsername(t *testing.T) {
	assert.Empty(t, GetUsername(context.Background()))

	ctx := WithUsername(context.Background(), "qc-admin")
	assert.Equal(t, "qc-admin", GetUsername(ctx))
	assert.Empty(t, GetUserID(ctx))
}
