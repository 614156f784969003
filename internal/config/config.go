package config

import (
	"errors"
	"time"

	"github.com/andy6609/roomchat-server/internal/chat"
)

// Config holds server configuration values.
type Config struct {
	Addr             string        `mapstructure:"addr" yaml:"addr"`
	AdminAddr        string        `mapstructure:"admin_addr" yaml:"admin_addr"`
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat        string        `mapstructure:"log_format" yaml:"log_format"`
	EventBuffer      int           `mapstructure:"event_buffer" yaml:"event_buffer"`
	MaxPendingInput  int           `mapstructure:"max_pending_input" yaml:"max_pending_input"`
	MaxOutboundBytes int           `mapstructure:"max_outbound_bytes" yaml:"max_outbound_bytes"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:             ":8000",
		AdminAddr:        ":9090",
		LogLevel:         "info",
		LogFormat:        "console",
		EventBuffer:      128,
		MaxPendingInput:  1 << 20,
		MaxOutboundBytes: 4 << 20,
		ShutdownTimeout:  5 * time.Second,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("addr must not be empty")
	case c.EventBuffer < 0:
		return errors.New("event_buffer must not be negative")
	case c.MaxPendingInput < 0:
		return errors.New("max_pending_input must not be negative")
	case c.MaxOutboundBytes < 0:
		return errors.New("max_outbound_bytes must not be negative")
	case c.ShutdownTimeout < 0:
		return errors.New("shutdown_timeout must not be negative")
	}
	return nil
}

// ChatOptions maps the config onto the chat server options.
func (c Config) ChatOptions() chat.Options {
	return chat.Options{
		Addr:             c.Addr,
		EventBuffer:      c.EventBuffer,
		MaxPendingInput:  c.MaxPendingInput,
		MaxOutboundBytes: c.MaxOutboundBytes,
	}
}
