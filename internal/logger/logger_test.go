package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/instill-ai/hashcash-client/internal/config"
)

func TestBuild_Levels(t *testing.T) {
	l, err := build(config.LogConfig{Level: "warn"})
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.InfoLevel))
	require.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = build(config.LogConfig{Level: "bogus"})
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zapcore.InfoLevel))
	require.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = build(config.LogConfig{Level: "info", Debug: true})
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestGetZapLogger_Singleton(t *testing.T) {
	a, err := GetZapLogger()
	require.NoError(t, err)
	b, err := GetZapLogger()
	require.NoError(t, err)
	require.Same(t, a, b)
}
