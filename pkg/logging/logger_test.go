package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.With("component", "graph").Info("built graph", "modules", 3, "root", "/tmp/my project")

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "[INFO]  "), "unexpected prefix: %q", line)
	assert.Contains(t, line, "graph: built graph |")
	assert.Contains(t, line, "modules=3")
	assert.Contains(t, line, `root="/tmp/my project"`)
	assert.NotContains(t, line, "component=")
}

func TestCompactHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN]  ")
}

func TestCompactHandler_TraceLevel(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	l.Log(context.Background(), LevelTrace, "deep detail")

	assert.True(t, strings.HasPrefix(buf.String(), "[TRACE] "))
}

func TestCompactHandler_RunIDShortened(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, nil))

	l.Info("analysis started", "runID", "0123456789abcdef")

	assert.Contains(t, buf.String(), "run=01234567")
	assert.NotContains(t, buf.String(), "89abcdef")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{name: "trace", want: LevelTrace},
		{name: "DEBUG", want: slog.LevelDebug},
		{name: " info ", want: slog.LevelInfo},
		{name: "warning", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
		{name: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetup_UnknownFormat(t *testing.T) {
	err := Setup(&bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestStartRun(t *testing.T) {
	ctx, id := StartRun(context.Background())
	require.NotEmpty(t, id)
	assert.Equal(t, id, GetRunID(ctx))

	// An existing run ID is kept
	ctx2, id2 := StartRun(ctx)
	assert.Equal(t, id, id2)
	assert.Equal(t, id, GetRunID(ctx2))
}

func TestContextHelpers_AttachRunID(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, slog.LevelDebug, "text"))
	t.Cleanup(func() { _ = Setup(&bytes.Buffer{}, slog.LevelWarn, "text") })

	ctx := WithRunID(context.Background(), "feedfacecafebeef")
	InfoContext(ctx, "hello")

	assert.Contains(t, buf.String(), "run=feedface")
}

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, slog.LevelWarn, "json"))
	t.Cleanup(func() { _ = Setup(&bytes.Buffer{}, slog.LevelWarn, "text") })

	ctx := WithRunID(context.Background(), "0123456789abcdef")
	InfoContext(ctx, "hidden")
	WarnContext(ctx, "careful", "file", "a.py")
	ErrorContext(ctx, "broken")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"careful"`)
	assert.Contains(t, out, `"file":"a.py"`)
	assert.Contains(t, out, `"runID":"0123456789abcdef"`)
	assert.Contains(t, out, `"level":"ERROR"`)
}
