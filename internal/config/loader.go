package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigPath     = "ROOMCHAT_CONFIG"
	defaultConfigName = "roomchat.yaml"
)

// flagKeys maps config keys to the command-line flags that override them.
var flagKeys = map[string]string{
	"addr":       "addr",
	"admin_addr": "admin-addr",
	"log_level":  "log-level",
	"log_format": "log-format",
}

// Load builds configuration from defaults, an optional config file, env vars
// and flags, and returns the resolved path.
// Precedence: defaults < config file < env vars < flags.
// A missing file is fine unless explicitPath names it.
func Load(logger *zerolog.Logger, explicitPath string, flags *pflag.FlagSet) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("admin_addr", cfg.AdminAddr)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("event_buffer", cfg.EventBuffer)
	v.SetDefault("max_pending_input", cfg.MaxPendingInput)
	v.SetDefault("max_outbound_bytes", cfg.MaxOutboundBytes)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)

	v.SetEnvPrefix("ROOMCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return cfg, "", fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath == "" && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			if logger != nil {
				logger.Debug().Str("path", configPath).Msg("no config file, using defaults")
			}
		} else {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
	} else if logger != nil {
		logger.Info().Str("path", configPath).Msg("config loaded")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, configPath, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, configPath, nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

// WriteDefault writes the default configuration as yaml to path (or the
// resolved default location when path is empty) and returns where it went.
func WriteDefault(path string) (string, error) {
	path = resolveConfigPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, err
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return path, err
	}
	return path, os.WriteFile(path, data, 0o600)
}
