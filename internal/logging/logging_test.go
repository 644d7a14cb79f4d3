package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/config"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Int("rows", 66).Msg("loaded")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, "warn", event["level"])
	assert.Equal(t, "loaded", event["message"])
	assert.Equal(t, "tradeboard", event["app"])
	assert.Equal(t, 66.0, event["rows"])
}

func TestConsoleLoggerDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "loud", Format: "console"}, &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("source", "embedded").Msg("table loaded")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "table loaded")
	assert.Contains(t, out, "source=embedded")
}
