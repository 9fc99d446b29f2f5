package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfig_Level(t *testing.T) {
	cfg, err := Config("debug")
	require.NoError(t, err)
	require.Equal(t, zapcore.DebugLevel, cfg.Level.Level())

	cfg, err = Config(" warn ")
	require.NoError(t, err)
	require.Equal(t, zapcore.WarnLevel, cfg.Level.Level())
}

func TestConfig_InvalidLevel(t *testing.T) {
	_, err := Config("loud")
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	logger, err := New("test", "info")
	require.NoError(t, err)
	require.NotNil(t, logger)
}
