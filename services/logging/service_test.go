package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewService(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"json format", Config{Level: Info, Format: "json"}},
		{"console format", Config{Level: Debug, Format: "console"}},
		{"default output", Config{Level: Warn, Format: "json", OutputPath: "stdout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(tt.config)
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.NotNil(t, svc.Logger())
		})
	}
}

func TestNilServiceIsSafe(t *testing.T) {
	var svc *Service

	assert.NotPanics(t, func() {
		svc.Debug("debug", zap.String("k", "v"))
		svc.Info("info")
		svc.Warn("warn")
		svc.Error("error")
	})
	assert.Nil(t, svc.Logger())
	assert.NoError(t, svc.Sync())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel(Debug))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel(Info))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel(Warn))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel(Error))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel(LogLevel("unknown")))
}
