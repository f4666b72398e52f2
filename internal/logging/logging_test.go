package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"Warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewTagsServiceAndHost(t *testing.T) {
	var buf bytes.Buffer
	log := New("addition-service", "pod-1", "info", &buf)
	log.Info().Str(OPERATOR, "+").Msg("evaluated")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "addition-service", line[SERVICE])
	assert.Equal(t, "pod-1", line[HOST])
	assert.Equal(t, "+", line[OPERATOR])
	assert.Equal(t, "evaluated", line["message"])
}

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("parser-service", "pod-2", "error", &buf)
	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())
	log.Error().Msg("kept")
	assert.NotZero(t, buf.Len())
}
