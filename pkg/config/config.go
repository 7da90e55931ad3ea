// Package config loads billscan's runtime settings. The core analysis
// operations take no configuration at all; settings here drive only the CLI
// and the bill library.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix maps nested keys to environment variables, e.g. "library.path"
// resolves to BILLSCAN_LIBRARY_PATH.
const envPrefix = "BILLSCAN"

// Config holds the CLI and library settings.
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Log     LogConfig     `mapstructure:"log"`
	Output  OutputConfig  `mapstructure:"output"`
}

// LibraryConfig locates the persistent bill library.
type LibraryConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig controls JSON emission.
type OutputConfig struct {
	Pretty bool `mapstructure:"pretty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("library.path", ".billscan")
	v.SetDefault("log.level", "info")
	v.SetDefault("output.pretty", true)
	return v
}

// Load reads configuration from the optional YAML file at configPath plus
// BILLSCAN_* environment overrides. An empty configPath skips the file and
// uses environment variables and defaults only.
func Load(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %q: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the CLI cannot run with.
func (c *Config) Validate() error {
	if c.Library.Path == "" {
		return fmt.Errorf("library.path must not be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
