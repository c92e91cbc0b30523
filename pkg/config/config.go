// Package config loads chat widget settings from defaults, an optional TOML
// file, a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvListen       = "CHATWIDGET_LISTEN"
	EnvUpstream     = "CHATWIDGET_UPSTREAM"
	EnvEndpoint     = "CHATWIDGET_ENDPOINT"
	EnvAllowOrigins = "CHATWIDGET_ALLOW_ORIGINS"
	EnvDebug        = "CHATWIDGET_DEBUG"
)

// Config is the full widget configuration.
type Config struct {
	Debug bool `toml:"debug"`

	Server ServerConfig `toml:"server"`
	Widget WidgetConfig `toml:"widget"`
}

// ServerConfig configures the widget host server.
type ServerConfig struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string `toml:"listen"`

	// Backend that answers questions (e.g., "http://localhost:8000")
	UpstreamURL string `toml:"upstream"`

	// Comma separated origins allowed by CORS, "*" for any
	AllowOrigins string `toml:"allow_origins"`

	// Upper bound on a forwarded request; zero means no bound
	UpstreamTimeout Duration `toml:"upstream_timeout"`
}

// WidgetConfig configures the terminal widget and one-shot client.
type WidgetConfig struct {
	// Base URL of the server exposing the response endpoint
	Endpoint string `toml:"endpoint"`

	// Messages one of which is shown when the widget starts
	Greetings []string `toml:"greetings"`

	NoColor bool `toml:"no_color"`
}

// Duration is a time.Duration read from strings such as "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			UpstreamURL:     "http://localhost:8000",
			AllowOrigins:    "*",
			UpstreamTimeout: Duration{5 * time.Minute},
		},
		Widget: WidgetConfig{
			Endpoint: "http://localhost:8080",
		},
	}
}

// Load builds the configuration. path may be empty, in which case only the
// defaults, .env and the environment are consulted.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", path, err)
		}
	}

	// A missing .env file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not read .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvListen); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv(EnvUpstream); v != "" {
		c.Server.UpstreamURL = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Widget.Endpoint = v
	}
	if v := os.Getenv(EnvAllowOrigins); v != "" {
		c.Server.AllowOrigins = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvDebug, v, err)
		}
		c.Debug = debug
	}

	return nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		return fmt.Errorf("server listen address is empty")
	}
	if !isHTTPURL(c.Server.UpstreamURL) {
		return fmt.Errorf("server upstream %q is not an http(s) URL", c.Server.UpstreamURL)
	}
	if !isHTTPURL(c.Widget.Endpoint) {
		return fmt.Errorf("widget endpoint %q is not an http(s) URL", c.Widget.Endpoint)
	}
	if c.Server.UpstreamTimeout.Duration < 0 {
		return fmt.Errorf("server upstream timeout is negative")
	}

	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
