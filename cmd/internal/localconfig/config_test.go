package localconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/inngest/rpcvalidate/pkg/logger"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return logger.WithStdlib(context.Background(), logger.VoidLogger())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "conf.yaml", `
addr: 127.0.0.1:9090
reflection: true
fail-fast: false
`)

	conf, err := Load(testContext(), path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", conf.Addr)
	require.NotNil(t, conf.Reflection)
	require.True(t, *conf.Reflection)
	require.NotNil(t, conf.FailFast)
	require.False(t, *conf.FailFast)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "conf.json", `{"addr": ":7070", "fail-fast": true}`)

	conf, err := Load(testContext(), path)
	require.NoError(t, err)
	require.Equal(t, ":7070", conf.Addr)
	require.Nil(t, conf.Reflection)
	require.True(t, *conf.FailFast)
}

func TestLoad_Discovery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rpcvalidate.yml", "addr: :6060\n")
	t.Chdir(dir)

	conf, err := Load(testContext(), "")
	require.NoError(t, err)
	require.Equal(t, ":6060", conf.Addr)
}

func TestLoad_NoConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	conf, err := Load(testContext(), "")
	require.NoError(t, err)
	require.Equal(t, &Config{}, conf)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "conf.yaml", "addr: :9090\nreflection: false\n")
	t.Setenv("RPCVALIDATE_ADDR", ":5050")
	t.Setenv("RPCVALIDATE_REFLECTION", "true")
	t.Setenv("RPCVALIDATE_FAIL_FAST", "true")
	t.Setenv(EnvConfig, "ignored.yaml")

	conf, err := Load(testContext(), path)
	require.NoError(t, err)
	require.Equal(t, ":5050", conf.Addr)
	require.True(t, *conf.Reflection)
	require.True(t, *conf.FailFast)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(testContext(), filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing.yaml")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "conf.json", "{not json")
		_, err := Load(testContext(), path)
		require.Error(t, err)
	})
}
