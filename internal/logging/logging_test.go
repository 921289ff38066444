package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "warn"})
	require.NoError(t, err)

	logger.Info("quiet")
	assert.Zero(t, buf.Len())

	logger.Warn("loud", "window", 7)
	assert.Contains(t, buf.String(), "loud")
	assert.Contains(t, buf.String(), "window=7")
}

func TestNewJSONFormat(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Format: "json"})
	require.NoError(t, err)

	logger.Info("window added", "window", 3)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "window added", rec["msg"])
	assert.EqualValues(t, 3, rec["window"])
}

func TestEnvOverridesLevel(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "error"})
	require.NoError(t, err)

	logger.Debug("tree dump")
	assert.Contains(t, buf.String(), "tree dump")
}

func TestParseErrors(t *testing.T) {
	_, err := ParseLevel("loud")
	assert.Error(t, err)
	_, err = ParseFormat("xml")
	assert.Error(t, err)

	level, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, level)
}
