package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "")

	logger.Debug().Msg("hidden")
	logger.Info().Str("op", "resize").Msg("done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "done", entry["message"])
	require.Equal(t, "resize", entry["op"])
	require.Equal(t, "photo-bot", entry["service"])
	require.Contains(t, entry, "time")
}

func TestNewLogger_Levels(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, newLogger(&bytes.Buffer{}, "development", "").GetLevel())
	require.Equal(t, zerolog.InfoLevel, newLogger(&bytes.Buffer{}, "production", "").GetLevel())
	require.Equal(t, zerolog.WarnLevel, newLogger(&bytes.Buffer{}, "development", "WARN").GetLevel())
	require.Equal(t, zerolog.InfoLevel, newLogger(&bytes.Buffer{}, "production", "nonsense").GetLevel())
}
