// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconfigure_AttachesServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Level: "debug", Output: &buf, Service: "svc-test", Version: "v9.9.9"})
	t.Cleanup(func() { Reconfigure(Config{Level: "info"}) })

	l := WithComponent("webapi")
	l.Debug().Str(FieldEndpoint, "v1/me").Msg("probe")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "svc-test", entry["service"])
	assert.Equal(t, "v9.9.9", entry["version"])
	assert.Equal(t, "webapi", entry[FieldComponent])
	assert.Equal(t, "v1/me", entry[FieldEndpoint])
	assert.Equal(t, "debug", entry["level"])
}

func TestReconfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Level: "chatty", Output: &buf})
	t.Cleanup(func() { Reconfigure(Config{Level: "info"}) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	l := Base()
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")
	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, "shown"))
}

func TestDerive(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Reconfigure(Config{Level: "info"}) })

	l := Derive(func(c *zerolog.Context) {
		*c = c.Str(FieldOperation, "login")
	})
	l.Info().Msg("x")
	assert.Contains(t, buf.String(), `"operation":"login"`)

	nilBuilder := Derive(nil)
	nilBuilder.Info().Msg("y")
	assert.Contains(t, buf.String(), `"message":"y"`)
}
