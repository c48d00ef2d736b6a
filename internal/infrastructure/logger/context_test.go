package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newCaptureLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func TestWithContext_AndFromContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_MissingLoggerReturnsNop(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
	// Must not panic
	logger.Info("no-op")
}

func TestWithRequestID(t *testing.T) {
	logger, buf := newCaptureLogger()
	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	enriched.Info("test")
	assert.Contains(t, buf.String(), "req-123")
}

func TestWithTenantID(t *testing.T) {
	logger, buf := newCaptureLogger()
	ctx, enriched := WithTenantID(context.Background(), logger, "tenant-9")

	assert.Equal(t, "tenant-9", GetTenantID(ctx))
	enriched.Info("test")
	assert.Contains(t, buf.String(), "tenant-9")
}

func TestWithUserID(t *testing.T) {
	logger, buf := newCaptureLogger()
	ctx, enriched := WithUserID(context.Background(), logger, "user-7")

	assert.Equal(t, "user-7", GetUserID(ctx))
	enriched.Info("test")
	assert.Contains(t, buf.String(), "user-7")
}

func TestGetters_EmptyContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestContextEnrichment_Stacks(t *testing.T) {
	logger, buf := newCaptureLogger()
	ctx, enriched := WithRequestID(context.Background(), logger, "req-1")
	ctx, enriched = WithTenantID(ctx, enriched, "tenant-2")

	enriched.Info("layered")
	out := buf.String()
	assert.Contains(t, out, "req-1")
	assert.Contains(t, out, "tenant-2")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "tenant-2", GetTenantID(ctx))
}
