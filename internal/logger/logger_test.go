package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", &buf)
	require.NoError(t, err)

	log.Infow("connected", "driver", "pgsql")
	log.Warnw("slow statement", "driver", "pgsql")

	out := buf.String()
	assert.NotContains(t, out, "connected")
	assert.Contains(t, out, "slow statement")
	assert.Contains(t, out, "run_id")
	assert.Contains(t, out, `"driver": "pgsql"`)
}

func TestNew_DefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("", &buf)
	require.NoError(t, err)

	log.Warnw("hidden")
	log.Errorw("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", &bytes.Buffer{})
	assert.ErrorContains(t, err, "log level")
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().Errorw("dropped", "k", "v")
	})
}
