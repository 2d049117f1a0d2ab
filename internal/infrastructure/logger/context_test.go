package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestWithRequestIDAndUser(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, l := WithRequestID(context.Background(), zap.New(core), "req-1")
	ctx, l = WithUser(ctx, l, "user-9", "gerente")
	l.Info("approved planning")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-9", GetUserID(ctx))
	assert.Equal(t, "gerente", GetRole(ctx))
	assert.Same(t, l, FromContext(ctx))

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-9", fields["user_id"])
	assert.Equal(t, "gerente", fields["role"])
}

func TestGettersOnEmptyContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetRole(ctx))
	assert.Empty(t, GetTraceID(ctx))
}

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestContextLogger_AddsTraceFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := WithContext(spanContext(t), zap.New(core))

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))

	L(ctx).With(zap.String("module", "visits")).Debug("week loaded")

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	assert.Equal(t, "visits", fields["module"])
}

func TestWithLogger_AttachesContextValues(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-5")
	ctx, _ = WithUser(ctx, zap.NewNop(), "user-3", "vendedor")

	cl := WithLogger(ctx, zap.New(core))
	cl.Warn("quotation expired")
	cl.Error("email failed")
	cl.Info("done")

	logs := recorded.All()
	require.Len(t, logs, 3)
	for _, entry := range logs {
		assert.Equal(t, "req-5", entry.ContextMap()["request_id"])
		assert.Equal(t, "user-3", entry.ContextMap()["user_id"])
	}
	assert.NotNil(t, cl.Zap())
}

func TestL_WithoutLoggerIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		L(context.Background()).Info("nothing")
	})
}
