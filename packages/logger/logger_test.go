package logger

import (
	"testing"

	"github.com/cityofzion/neon-go/packages/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	root, err := New(config.LoggerParameters{Level: "debug", Encoding: "json"})
	require.NoError(t, err)
	assert.True(t, root.Core().Enabled(zapcore.DebugLevel))

	log := NewNamed(root, "provider")
	log.Debugw("resolved endpoint", "url", "http://localhost")

	_, err = New(config.LoggerParameters{Level: "loud"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotNil(t, NewNamed(nil, "x"))
	assert.NotNil(t, OrNop(nil))

	root, err := New(config.Default().Logger)
	require.NoError(t, err)
	assert.False(t, root.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, root.Core().Enabled(zapcore.InfoLevel))
}
