package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/engine"
	"github.com/conorfennell/knoldeck/internal/knol"
	"github.com/conorfennell/knoldeck/internal/srs"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read into the config.
const EnvPrefix = "KNOLDECK_"

// Config is the runtime configuration. Values are layered as flag defaults,
// then the YAML file, then KNOLDECK_* variables, then flags set by the user.
type Config struct {
	DecksDir         string  `koanf:"decks_dir" validate:"required"`
	Store            string  `koanf:"store" validate:"oneof=csv sqlite"`
	DB               string  `koanf:"db" validate:"required_if=Store sqlite"`
	IntervalModifier float64 `koanf:"interval_modifier" validate:"gt=0"`
	Threshold        float64 `koanf:"threshold" validate:"gte=0,lte=1"`
	IndexCapacity    int     `koanf:"index_capacity" validate:"gtfield=MaxCards"`
	MaxCards         int     `koanf:"max_cards" validate:"gt=0"`
	LogLevel         string  `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat        string  `koanf:"log_format" validate:"oneof=text json"`
}

// RegisterFlags adds every config flag, with its default, to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML config file")
	fs.String("decks-dir", "decks", "Directory holding CSV decks")
	fs.String("store", "csv", "Record store backend: csv or sqlite")
	fs.String("db", "knoldeck.db", "Path to the SQLite database file")
	fs.Float64("interval-modifier", 1, "Multiplier applied to every new interval")
	fs.Float64("threshold", engine.DefaultThreshold, "Minimum hardness or easiness for custom study")
	fs.Int("index-capacity", knol.DefaultCapacity, "Slots in the question index")
	fs.Int("max-cards", domain.MaxDeckSize, "Maximum cards per deck")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
	fs.String("log-format", "text", "Log format: text or json")
}

// flagKey maps a flag name to its config key.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// envKey maps KNOLDECK_DECKS_DIR to decks_dir.
func envKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
}

// Load builds the config from fs, which must carry the flags added by
// RegisterFlags and have been parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	flags := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if f.Name == "config" {
			return "", nil
		}
		return flagKey(f.Name), posflag.FlagVal(fs, f)
	})
	if err := k.Load(flags, nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := domain.Validator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Params returns the update constants with the configured modifier.
func (c *Config) Params() *srs.Params {
	p := srs.DefaultParams()
	p.IntervalModifier = c.IntervalModifier
	return p
}

// SessionOptions returns the engine options the config controls.
func (c *Config) SessionOptions() []engine.Option {
	return []engine.Option{
		engine.WithParams(c.Params()),
		engine.WithThreshold(c.Threshold),
		engine.WithIndexCapacity(c.IndexCapacity),
		engine.WithMaxCards(c.MaxCards),
	}
}

// NewLogger builds the slog logger described by the config.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
