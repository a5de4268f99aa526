package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/opd-ai/jackroute/factory"
	"github.com/opd-ai/jackroute/readiness"
	"github.com/opd-ai/jackroute/report"
	"github.com/sirupsen/logrus"
)

// Config is the CLI's file configuration. Flags override environment
// variables, which override the file, which overrides Default.
type Config struct {
	Client          string `toml:"client"`
	ReportPath      string `toml:"report_path"`
	ReadyPort       string `toml:"ready_port"`
	PollInterval    string `toml:"poll_interval"`
	MaxWaitAttempts int    `toml:"max_wait_attempts"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`

	// JACK tool settings, applied where the JACKROUTE_* variable is unset.
	JackLsp        string `toml:"jack_lsp"`
	JackConnect    string `toml:"jack_connect"`
	CommandTimeout string `toml:"command_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ReportPath:   report.DefaultPath,
		PollInterval: readiness.DefaultPollInterval.String(),
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// DefaultConfigPath returns $JACKROUTE_CONFIG, or config.toml under the
// user's configuration directory.
func DefaultConfigPath() string {
	if env := os.Getenv("JACKROUTE_CONFIG"); env != "" {
		return env
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "jackroute", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "jackroute", "config.toml")
}

// LoadConfig reads path over the defaults and applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if client := os.Getenv("JACKROUTE_CLIENT"); client != "" {
		cfg.Client = client
	}
	if reportPath := os.Getenv("JACKROUTE_REPORT"); reportPath != "" {
		cfg.ReportPath = reportPath
	}
	if level := os.Getenv("JACKROUTE_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if _, err := cfg.Poll(); err != nil {
		return nil, err
	}
	if _, err := cfg.TimeoutMillis(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TimeoutMillis parses CommandTimeout. Zero means unset.
func (c *Config) TimeoutMillis() (int, error) {
	if c.CommandTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CommandTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid command_timeout %q: %w", c.CommandTimeout, err)
	}
	ms := int(d / time.Millisecond)
	if ms < factory.MinCommandTimeout || ms > factory.MaxCommandTimeout {
		return 0, fmt.Errorf("command_timeout %s outside [%dms, %dms]", d, factory.MinCommandTimeout, factory.MaxCommandTimeout)
	}
	return ms, nil
}

// applyTo copies the JACK tool settings into the factory's configuration,
// leaving alone anything set through the environment.
func (c *Config) applyTo(f *factory.GraphFactory) error {
	gc := f.GetCurrentConfig()
	changed := false
	set := func(env, value string, dst *string) {
		if value != "" && os.Getenv(env) == "" {
			*dst = value
			changed = true
		}
	}
	set(factory.EnvLspCommand, c.JackLsp, &gc.LspCommand)
	set(factory.EnvConnectCommand, c.JackConnect, &gc.ConnectCommand)

	ms, err := c.TimeoutMillis()
	if err != nil {
		return err
	}
	if ms > 0 && os.Getenv(factory.EnvCommandTimeout) == "" {
		gc.CommandTimeout = ms
		changed = true
	}

	if !changed {
		return nil
	}
	return f.UpdateConfig(gc)
}

// Poll parses PollInterval.
func (c *Config) Poll() (time.Duration, error) {
	if c.PollInterval == "" {
		return readiness.DefaultPollInterval, nil
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid poll_interval %q: %w", c.PollInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("poll_interval must be positive, got %s", d)
	}
	return d, nil
}

// configureLogging applies the level and format to the standard logger.
func configureLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)

	switch strings.ToLower(format) {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}
