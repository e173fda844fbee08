// Package config holds the settings of the diagnostic command line tool.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the diagnostic tool configuration.
type Config struct {
	// Definition is an optional path to a wizard definition file. Empty uses
	// the embedded Session 0 definition.
	Definition string `yaml:"definition,omitempty"`

	Sink     SinkConfig     `yaml:"sink"`
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
	Theme    ThemeConfig    `yaml:"theme"`
	Logging  LoggingConfig  `yaml:"logging"`
	Feedback FeedbackConfig `yaml:"feedback"`
}

// SinkConfig configures delivery to the external form service.
type SinkConfig struct {
	Endpoint string `yaml:"endpoint"`
	FormName string `yaml:"form_name"`
	Timeout  string `yaml:"timeout"`
	// Contract validates entries against the form service contract before
	// sending.
	Contract bool `yaml:"contract"`
	// Async delivers in the background after submit.
	Async bool `yaml:"async"`
}

// StoreConfig configures the fallback store. DSN is "memory", a SQLite path,
// or a postgres:// URL.
type StoreConfig struct {
	DSN string `yaml:"dsn"`
}

// ServerConfig configures the web front end.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	SessionTTL   string `yaml:"session_ttl"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

// ThemeConfig selects the feedback theme.
type ThemeConfig struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant,omitempty"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FeedbackConfig tunes generated feedback.
type FeedbackConfig struct {
	// SessionOneStart is printed in the text artifact; empty prints a
	// placeholder.
	SessionOneStart string `yaml:"session_one_start,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sink: SinkConfig{
			Endpoint: "http://localhost:8888/",
			FormName: "session0-diagnostic",
			Timeout:  "15s",
			Contract: true,
		},
		Store: StoreConfig{
			DSN: "diagnostic.db",
		},
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: "2h",
		},
		Theme: ThemeConfig{
			Name: "masterclass",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults; an
// empty path does too.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// SinkTimeout returns the delivery timeout, falling back to 15s.
func (c *Config) SinkTimeout() time.Duration {
	d, err := time.ParseDuration(c.Sink.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// SessionTTL returns the idle lifetime of a web session, falling back to 2h.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil || d < 0 {
		return 2 * time.Hour
	}
	return d
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Sink.Endpoint)
	switch {
	case strings.TrimSpace(c.Sink.Endpoint) == "":
		errs = append(errs, errors.New("sink endpoint is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("sink endpoint: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("sink endpoint %q must be http or https", c.Sink.Endpoint))
	}
	if strings.TrimSpace(c.Sink.FormName) == "" {
		errs = append(errs, errors.New("sink form name is required"))
	}
	if c.Sink.Timeout != "" {
		if _, err := time.ParseDuration(c.Sink.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("sink timeout: %w", err))
		}
	}
	if strings.TrimSpace(c.Store.DSN) == "" {
		errs = append(errs, errors.New("store dsn is required"))
	}
	if c.Server.SessionTTL != "" {
		if _, err := time.ParseDuration(c.Server.SessionTTL); err != nil {
			errs = append(errs, fmt.Errorf("server session ttl: %w", err))
		}
	}

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	valid := false
	for _, l := range validLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, fmt.Errorf("invalid log level %q (valid: %v)", c.Logging.Level, validLevels))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
