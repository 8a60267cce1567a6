package localconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inngest/rpcvalidate/cmd/internal/envflags"
	"github.com/inngest/rpcvalidate/pkg/logger"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

const (
	EnvPrefix = "RPCVALIDATE_"
	// EnvConfig names the config file to load.
	EnvConfig = EnvPrefix + "CONFIG"
)

// configNames are looked up in the working directory when no config file is
// given.
var configNames = []string{"rpcvalidate.json", "rpcvalidate.yaml", "rpcvalidate.yml"}

// Config is the serve command's configuration.  Unset booleans are nil so
// that flags can tell "off" apart from "not configured".
type Config struct {
	Addr       string `koanf:"addr"`
	Reflection *bool  `koanf:"reflection"`
	FailFast   *bool  `koanf:"fail-fast"`
}

// FromCommand loads configuration for cmd, reading the file named by the
// --config flag or RPCVALIDATE_CONFIG.
func FromCommand(ctx context.Context, cmd *cli.Command) (*Config, error) {
	return Load(ctx, envflags.GetEnvOrFlag(cmd, "config", EnvConfig))
}

// Load reads configuration from multiple sources in priority order:
// 1. The config file at path, or the first rpcvalidate.{json,yaml,yml} in
// the working directory when path is empty (lowest priority)
// 2. Environment variables with the RPCVALIDATE_ prefix
// CLI flags are applied by the caller and take precedence over both.
func Load(ctx context.Context, path string) (*Config, error) {
	l := logger.StdlibLogger(ctx)
	k := koanf.New(".")

	if path != "" {
		if err := loadConfigFromPath(k, path); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		l.Debug("using config", "file", path)
	} else {
		for _, name := range configNames {
			if _, err := os.Stat(name); err != nil {
				continue
			}
			if err := loadConfigFromPath(k, name); err != nil {
				l.Warn("error reading config file", "file", name, "error", err)
				continue
			}
			l.Debug("using config", "file", name)
			break
		}
	}

	if err := loadEnvironmentVariables(k); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	conf := &Config{}
	if err := k.Unmarshal("", conf); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return conf, nil
}

func loadConfigFromPath(k *koanf.Koanf, path string) error {
	ext := filepath.Ext(path)

	var parser koanf.Parser
	switch ext {
	case ".json":
		parser = json.Parser()
	default:
		// YAML is a superset of JSON, so it covers files without an extension.
		parser = yaml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}

// loadEnvironmentVariables maps RPCVALIDATE_FAIL_FAST to fail-fast and so on.
func loadEnvironmentVariables(k *koanf.Koanf) error {
	return k.Load(env.ProviderWithValue(EnvPrefix, "", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(key, EnvPrefix)
		if key == "CONFIG" {
			return "", nil
		}
		return strings.ToLower(strings.ReplaceAll(key, "_", "-")), value
	}), nil)
}
