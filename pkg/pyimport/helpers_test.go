package pyimport

import (
	"context"
	"log/slog"
)

// recordingHandler keeps the messages of WARN and above.
type recordingHandler struct {
	records *[]string
}

func (h *recordingHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= slog.LevelWarn
}

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r.Message)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }
