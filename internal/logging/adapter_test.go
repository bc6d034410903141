package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

var _ Logger = (*SlogAdapter)(nil)

func TestNewSlogAdapter_NilUsesDefault(t *testing.T) {
	a := NewSlogAdapter(nil)
	assert.Same(t, slog.Default(), a.Logger())
	assert.Same(t, slog.Default(), DefaultLogger().Logger())
}

func TestSlogAdapter_LevelsAndWith(t *testing.T) {
	var buf bytes.Buffer
	a := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	a.Debug("hidden")
	a.Info("listing events", Provider("google"))
	a.With(Account("acc-1")).Warn("skipping account branch", "stage", "fetch")
	a.Error("failed", Err(assert.AnError))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=INFO msg=\"listing events\" provider=google")
	assert.Contains(t, out, "level=WARN msg=\"skipping account branch\" account=acc-1 stage=fetch")
	assert.Contains(t, out, "level=ERROR")
	assert.False(t, a.Enabled(context.Background(), slog.LevelDebug))
}

func TestDiscard(t *testing.T) {
	d := Discard()
	d.Error("dropped")
	assert.False(t, d.Enabled(context.Background(), slog.LevelError))
}
