package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

// stubHandler records whether it saw a record and can be made to fail.
type stubHandler struct {
	level   slog.Level
	err     error
	handled int
}

func (h *stubHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *stubHandler) Handle(_ context.Context, _ slog.Record) error {
	h.handled++
	return h.err
}

func (h *stubHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *stubHandler) WithGroup(_ string) slog.Handler      { return h }

func TestMultiHandlerFansOutPastFailure(t *testing.T) {
	ctx := context.Background()
	broken := &stubHandler{level: slog.LevelInfo, err: errors.New("sink down")}
	healthy := &stubHandler{level: slog.LevelInfo}
	m := NewMultiHandler(broken, healthy)

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	err := m.Handle(ctx, record)
	require.Error(t, err)

	// The failing sink must not starve the one after it.
	assert.Equal(t, 1, broken.handled)
	assert.Equal(t, 1, healthy.handled)
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	ctx := context.Background()
	errorsOnly := &stubHandler{level: slog.LevelError}
	info := &stubHandler{level: slog.LevelInfo}
	m := NewMultiHandler(errorsOnly, info)

	assert.True(t, m.Enabled(ctx, slog.LevelInfo))
	require.NoError(t, m.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "routine", 0)))
	assert.Equal(t, 0, errorsOnly.handled)
	assert.Equal(t, 1, info.handled)
}
