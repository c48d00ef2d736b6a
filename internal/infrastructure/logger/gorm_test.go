package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func newGormCapture(level gormlogger.LogLevel) (*GormLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	return NewGormLogger(zap.New(core), level), &buf
}

func TestNewGormLogger(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info)
	require.NotNil(t, gl)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info)

	silenced := gl.LogMode(gormlogger.Silent)
	require.NotNil(t, silenced)
	// Original is unchanged
	assert.Equal(t, gormlogger.Info, gl.logLevel)
}

func TestGormLogger_Info(t *testing.T) {
	gl, buf := newGormCapture(gormlogger.Info)
	gl.Info(context.Background(), "migrating %s", "products")
	assert.Contains(t, buf.String(), "migrating products")
}

func TestGormLogger_Info_Suppressed(t *testing.T) {
	gl, buf := newGormCapture(gormlogger.Silent)
	gl.Info(context.Background(), "hidden")
	assert.Empty(t, buf.String())
}

func TestGormLogger_Trace_Error(t *testing.T) {
	gl, buf := newGormCapture(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM sale_records", 0
	}, errors.New("connection refused"))

	out := buf.String()
	assert.Contains(t, out, "SQL Error")
	assert.Contains(t, out, "connection refused")
}

func TestGormLogger_Trace_RecordNotFoundIgnored(t *testing.T) {
	gl, buf := newGormCapture(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM sale_records WHERE id = $1", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Empty(t, buf.String())
}

func TestGormLogger_Trace_SlowQuery(t *testing.T) {
	gl, buf := newGormCapture(gormlogger.Warn)
	gl.slowThreshold = time.Nanosecond

	begin := time.Now().Add(-time.Second)
	gl.Trace(context.Background(), begin, func() (string, int64) {
		return "SELECT * FROM payment_installments", 10
	}, nil)

	assert.Contains(t, buf.String(), "SLOW SQL")
}

func TestGormLogger_Trace_Silent(t *testing.T) {
	gl, buf := newGormCapture(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	assert.Empty(t, buf.String())
}

func TestGormLogger_Trace_WithRequestID(t *testing.T) {
	gl, buf := newGormCapture(gormlogger.Info)
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-55")

	gl.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	assert.Contains(t, buf.String(), "req-55")
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, MapGormLogLevel(tc.input), "input %q", tc.input)
	}
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	var _ gormlogger.Interface = NewGormLogger(zap.NewNop(), gormlogger.Info)
}
