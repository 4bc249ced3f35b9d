package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Recursive        bool          `mapstructure:"recursive"`
	IncludeHidden    bool          `mapstructure:"include_hidden"`
	Extensions       []string      `mapstructure:"extensions"`
	Regex            bool          `mapstructure:"regex"`
	CaseSensitive    bool          `mapstructure:"case_sensitive"`
	Workers          int           `mapstructure:"workers"`
	HeavyConcurrency int           `mapstructure:"heavy_concurrency"`
	BinaryTimeout    time.Duration `mapstructure:"binary_timeout"`
	Format           string        `mapstructure:"format"`
	Color            string        `mapstructure:"color"`
	Highlight        string        `mapstructure:"highlight"`
	Style            string        `mapstructure:"style"`
	LogLevel         string        `mapstructure:"log_level"`
}

// Accepted values for the presentation keys
var (
	Formats  = []string{"text", "json", "yaml", "html"}
	Colors   = []string{"auto", "always", "never"}
	Palettes = []string{"red", "green", "yellow", "blue", "magenta", "cyan", "none"}
	Styles   = []string{"color", "bold", "underline", "none"}
	Levels   = []string{"debug", "info", "warn", "error"}
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// New returns a viper instance seeded with defaults, config search paths and env binding
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("recursive", false)
	v.SetDefault("include_hidden", false)
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("regex", false)
	v.SetDefault("case_sensitive", false)
	v.SetDefault("workers", 0)           // derived from document count
	v.SetDefault("heavy_concurrency", 0) // derived from document count
	v.SetDefault("binary_timeout", 30*time.Second)
	v.SetDefault("format", "text")
	v.SetDefault("color", "auto")
	v.SetDefault("highlight", "red")
	v.SetDefault("style", "color")
	v.SetDefault("log_level", "warn")

	v.SetConfigName("findtext")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "findtext"))
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("FINDTEXT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and unmarshals the merged settings.
// An explicit file must exist; the default search paths are optional.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.Extensions = NormalizeExtensions(c.Extensions)
	return &c, nil
}

// Validate rejects values the renderers and engine cannot honor
func (c *Config) Validate() error {
	c.Format = strings.ToLower(c.Format)
	c.Color = strings.ToLower(c.Color)
	c.Highlight = strings.ToLower(c.Highlight)
	c.Style = strings.ToLower(c.Style)
	c.LogLevel = strings.ToLower(c.LogLevel)

	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w: format %q (want one of %s)", ErrInvalidConfig, c.Format, strings.Join(Formats, ", "))
	}
	if !slices.Contains(Colors, c.Color) {
		return fmt.Errorf("%w: color %q (want one of %s)", ErrInvalidConfig, c.Color, strings.Join(Colors, ", "))
	}
	if !slices.Contains(Palettes, c.Highlight) {
		return fmt.Errorf("%w: highlight %q (want one of %s)", ErrInvalidConfig, c.Highlight, strings.Join(Palettes, ", "))
	}
	if !slices.Contains(Styles, c.Style) {
		return fmt.Errorf("%w: style %q (want one of %s)", ErrInvalidConfig, c.Style, strings.Join(Styles, ", "))
	}
	if !slices.Contains(Levels, c.LogLevel) {
		return fmt.Errorf("%w: log level %q (want one of %s)", ErrInvalidConfig, c.LogLevel, strings.Join(Levels, ", "))
	}
	if c.Workers < 0 || c.HeavyConcurrency < 0 {
		return fmt.Errorf("%w: worker counts must not be negative", ErrInvalidConfig)
	}
	if c.BinaryTimeout < 0 {
		return fmt.Errorf("%w: binary timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
