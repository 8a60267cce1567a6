package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStdlibLoggerFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(
		WithLoggerLevel(LevelDebug),
		WithLoggerWriter(buf),
		WithHandler(TextHandler),
	)
	ctx := WithStdlib(context.Background(), l)

	StdlibLogger(ctx).Debug("test message", "field", "name")
	require.Contains(t, buf.String(), "test message")
	require.Contains(t, buf.String(), "field=name")
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(
		WithLoggerLevel(LevelWarning),
		WithLoggerWriter(buf),
		WithHandler(TextHandler),
	)

	l.Info("hidden")
	l.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestTraceLevelName(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(
		WithLoggerLevel(LevelTrace),
		WithLoggerWriter(buf),
		WithHandler(JSONHandler),
	)

	l.Trace("very verbose")

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, "TRACE", out["level"])
	require.Equal(t, "very verbose", out["msg"])
}

func TestWithKeepsLevel(t *testing.T) {
	l := New(WithLoggerLevel(LevelError), WithLoggerWriter(&bytes.Buffer{}))
	require.Equal(t, LevelError, l.With("k", "v").Level())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelTrace, ParseLevel("TRACE"))
	require.Equal(t, LevelDebug, ParseLevel("debug"))
	require.Equal(t, LevelWarning, ParseLevel("warn"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, DefaultLevel, ParseLevel(""))
	require.Equal(t, DefaultLevel, ParseLevel("nope"))
}
