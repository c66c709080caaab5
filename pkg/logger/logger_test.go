package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/pkg/config"
)

func TestNew_LevelByEnv(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvDev})
	require.NoError(t, err)
	require.True(t, l.Desugar().Core().Enabled(zap.DebugLevel))

	l, err = New(&config.Config{Env: config.EnvProd})
	require.NoError(t, err)
	require.False(t, l.Desugar().Core().Enabled(zap.DebugLevel))
	require.True(t, l.Desugar().Core().Enabled(zap.InfoLevel))
}
