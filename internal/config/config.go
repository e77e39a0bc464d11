// Package config loads pgntool settings from defaults, an optional config
// file, PGNTOOL_* environment variables and command line flags, in that
// order of increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	OutputPGN     = "pgn"
	OutputHistory = "history"
	OutputFEN     = "fen"
)

// Config holds the pgntool settings.
type Config struct {
	// Strict rejects a game at its first illegal move instead of skipping the move.
	Strict bool `mapstructure:"strict"`
	// Output selects what is printed per game.
	Output string `mapstructure:"output"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"strict":          "strict",
	"output":          "output",
	"log-level":       "log.level",
	"log-development": "log.development",
}

// Load reads the configuration. configPath may be empty; flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("strict", false)
	v.SetDefault("output", OutputPGN)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetEnvPrefix("PGNTOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the output format and the log level.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputPGN, OutputHistory, OutputFEN:
	default:
		return fmt.Errorf("invalid output %q: want %s, %s or %s", c.Output, OutputPGN, OutputHistory, OutputFEN)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) level() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}

// NewLogger builds a zap logger writing to stderr at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
