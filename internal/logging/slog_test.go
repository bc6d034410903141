package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logger.Info("skipping account branch",
		Provider("google"),
		Account("acc-1"),
		Calendar("primary"),
		UserHash("jane@example.com"),
		Err(errors.New("503")),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "google", entry[KeyProvider])
	assert.Equal(t, "acc-1", entry[KeyAccount])
	assert.Equal(t, "primary", entry[KeyCalendar])
	assert.Equal(t, "503", entry[KeyError])
	assert.Equal(t, AnonymizeEmail("jane@example.com"), entry[KeyUserHash])
	assert.NotContains(t, buf.String(), "jane@example.com")
}

func TestErr_NilIsDropped(t *testing.T) {
	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("done", Err(nil))

	assert.NotContains(t, buf.String(), KeyError)
}

func TestAnonymizeEmail(t *testing.T) {
	assert.Empty(t, AnonymizeEmail(""))

	a := AnonymizeEmail("Jane@Example.com ")
	assert.Equal(t, a, AnonymizeEmail("jane@example.com"))
	assert.True(t, strings.HasPrefix(a, "user:"))
	assert.Len(t, a, len("user:")+16)
	assert.NotEqual(t, a, AnonymizeEmail("john@example.com"))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, FormatJSON, "warn").Info("hidden")
	assert.Zero(t, buf.Len())

	NewLogger(&buf, "JSON", "debug").Debug("shown")
	assert.True(t, json.Valid(buf.Bytes()))

	buf.Reset()
	NewLogger(&buf, "logfmt", "info").Info("fallback")
	assert.Contains(t, buf.String(), `msg=fallback`)
}
