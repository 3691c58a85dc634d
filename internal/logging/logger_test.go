package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", FormatJSON)

	logger.Info().Msg("hidden")
	logger.Warn().Str("path", "library.db").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"path":"library.db"`)
}

func TestGormLogger_ForwardsToZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", FormatJSON)

	gl := GormLogger(logger, true)
	gl.Info(context.Background(), "opened %s", "library.db")

	assert.Contains(t, buf.String(), "opened library.db")
	assert.Contains(t, buf.String(), `"module":"gorm"`)
}

func TestGormLogger_SilentWithoutSQLLog(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", FormatJSON)

	gl := GormLogger(logger, false)
	gl.Info(context.Background(), "statement")

	assert.Empty(t, buf.String())
}
