package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewZapLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log := NewZapLogger(&ZapLoggerConfig{
		Encoding:   "json",
		Level:      "info",
		FilePath:   path,
		MaxSizeMB:  1,
		MaxBackups: 1,
	})
	log.With(zap.String("component", "test")).Info("hello", zap.Int("n", 1))
	log.Debug("filtered out")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.NotContains(t, string(data), "filtered out")
}

func TestNewZapLogger_BadLevelFallsBackToInfo(t *testing.T) {
	log := NewZapLogger(&ZapLoggerConfig{Encoding: "console", Level: "loud"})
	assert.NotNil(t, log)
}
