package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupEmitsStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("timeless", "test", WithWriter(&buf))
	logger.Info("pair deployed", "vault", "0xabc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "timeless", line["service"])
	require.Equal(t, "test", line["env"])
	require.Equal(t, "INFO", line["severity"])
	require.Equal(t, "pair deployed", line["message"])
	require.Equal(t, "0xabc", line["vault"])
	require.Contains(t, line, "timestamp")
}

func TestSetupLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("timeless", "", WithWriter(&buf))
	logger.Debug("hidden")
	require.Zero(t, buf.Len())

	buf.Reset()
	logger = Setup("timeless", "", WithWriter(&buf), WithLevel(slog.LevelDebug))
	logger.Debug("visible")
	require.NotZero(t, buf.Len())
}
