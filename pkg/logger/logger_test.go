package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestComponent_JSONConCampoComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Out: &buf})

	audit := l.Component("audit")
	audit.Info().Str("action", "Sale").Msg("registrado")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["component"])
	assert.Equal(t, "Sale", line["action"])
	assert.Equal(t, "registrado", line["message"])
	assert.Equal(t, "info", line["level"])
}

func TestNew_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "error", Out: &buf})

	l.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	l.Error().Msg("sí sale")
	assert.Contains(t, buf.String(), "sí sale")
}
