package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Configure("warn", "json", &buf)

	logger.Info().Msg("dropped")
	logger.Warn().Str("category", "Food").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	require.Equal(t, "kept", entry["message"])
	require.Equal(t, "Food", entry["category"])
	require.Equal(t, "carbon-tracker", entry["service"])
}

func TestConfigureFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := Configure("shouting", "console", &buf)

	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	logger.Debug().Msg("hidden")
	require.Empty(t, buf.String())

	logger.Info().Msg("visible")
	require.Contains(t, buf.String(), "visible")
}
