package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNewWithWriter(t *testing.T) {
	t.Run("drops messages below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(Config{Level: "warn"}, &buf)

		log.Info().Msg("hidden")
		assert.Zero(t, buf.Len())

		log.Warn().Str("secid", "SU26238RMFS4").Msg("shown")
		assert.Contains(t, buf.String(), `"secid":"SU26238RMFS4"`)
		assert.Contains(t, buf.String(), `"message":"shown"`)
	})
}
