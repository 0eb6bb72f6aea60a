package logger

import (
	"testing"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerLevels(t *testing.T) {
	zcore, logs := observer.New(zap.DebugLevel)
	log := NewWithCore(zcore, core.LogLevelInfo)

	log.Debug("hidden", nil)
	log.Info("Payment attempt transitioned", map[string]any{"correlation_id": "ws_CO_1"})
	log.Warn("warned", nil)

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Payment attempt transitioned", entry.Message)
	assert.Equal(t, "ws_CO_1", entry.ContextMap()["correlation_id"])

	log.SetLevel(core.LogLevelDebug)
	assert.Equal(t, core.LogLevelDebug, log.GetLevel())
	log.Debug("visible", nil)
	assert.Equal(t, 3, logs.Len())

	log.SetLevel(core.LogLevelError)
	log.Warn("dropped", nil)
	log.Error("kept", nil)
	assert.Equal(t, 4, logs.Len())
	assert.Equal(t, "kept", logs.All()[3].Message)
}

func TestNoopLogger(t *testing.T) {
	log := NewNoopLogger()
	log.SetLevel(core.LogLevelWarn)
	assert.Equal(t, core.LogLevelWarn, log.GetLevel())
	log.Error("ignored", map[string]any{"k": "v"})
	assert.NoError(t, log.Flush())
}
