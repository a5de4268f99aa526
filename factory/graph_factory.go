package factory

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/limits"
	"github.com/opd-ai/jackroute/real"
	"github.com/opd-ai/jackroute/simulation"
	"github.com/sirupsen/logrus"
)

// Validation constants for configuration bounds checking.
const (
	// MinCommandTimeout is the minimum allowed tool timeout in milliseconds.
	MinCommandTimeout = 100
	// MaxCommandTimeout is the maximum allowed tool timeout in milliseconds (1 minute).
	MaxCommandTimeout = 60000
)

// Environment variables read by NewGraphFactory.
const (
	EnvUseSimulation  = "JACKROUTE_USE_SIMULATION"
	EnvCommandTimeout = "JACKROUTE_COMMAND_TIMEOUT"
	EnvLspCommand     = "JACKROUTE_JACK_LSP"
	EnvConnectCommand = "JACKROUTE_JACK_CONNECT"
	EnvSnapshot       = "JACKROUTE_SNAPSHOT"
)

// GraphFactory creates graph server implementations based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type GraphFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.GraphConfig
}

// NewGraphFactory creates a new factory with default configuration and
// JACKROUTE_* environment overrides applied.
func NewGraphFactory() *GraphFactory {
	defaultConfig := createDefaultConfig()
	applyEnvironmentOverrides(defaultConfig)
	logConfigurationInfo(defaultConfig)

	return &GraphFactory{
		defaultConfig: defaultConfig,
	}
}

// createDefaultConfig initializes the default graph configuration.
//
// Default Value Rationale:
//   - UseSimulation: false - the live server is the normal target
//   - CommandTimeout: 2000ms - jack_lsp answers in milliseconds; a stuck server should not stall routing for long
//   - LspCommand/ConnectCommand: resolved through PATH
func createDefaultConfig() *interfaces.GraphConfig {
	return &interfaces.GraphConfig{
		UseSimulation:  false,
		CommandTimeout: 2000,
		LspCommand:     "jack_lsp",
		ConnectCommand: "jack_connect",
	}
}

// applyEnvironmentOverrides reads the JACKROUTE_* variables into config.
// A value that does not parse, or a timeout outside
// [MinCommandTimeout, MaxCommandTimeout], is logged and the earlier setting
// stays in effect.
func applyEnvironmentOverrides(config *interfaces.GraphConfig) {
	ignore := func(key, value, reason string) {
		logrus.WithFields(logrus.Fields{
			"function": "applyEnvironmentOverrides",
			"env_var":  key,
			"value":    value,
			"reason":   reason,
		}).Warn("Ignoring invalid JACKROUTE setting")
	}

	if value := os.Getenv(EnvUseSimulation); value != "" {
		if useSim, err := strconv.ParseBool(value); err != nil {
			ignore(EnvUseSimulation, value, err.Error())
		} else {
			config.UseSimulation = useSim
		}
	}

	if value := os.Getenv(EnvCommandTimeout); value != "" {
		if ms, err := parseTimeoutMillis(value); err != nil {
			ignore(EnvCommandTimeout, value, err.Error())
		} else {
			config.CommandTimeout = ms
		}
	}

	for key, dst := range map[string]*string{
		EnvLspCommand:     &config.LspCommand,
		EnvConnectCommand: &config.ConnectCommand,
		EnvSnapshot:       &config.SnapshotPath,
	} {
		if value := os.Getenv(key); value != "" {
			*dst = value
		}
	}
}

// parseTimeoutMillis accepts plain milliseconds ("1500") or a duration
// ("1.5s") and checks the bounds.
func parseTimeoutMillis(value string) (int, error) {
	ms, err := strconv.Atoi(value)
	if err != nil {
		d, derr := time.ParseDuration(value)
		if derr != nil {
			return 0, fmt.Errorf("not milliseconds or a duration: %q", value)
		}
		ms = int(d / time.Millisecond)
	}
	if ms < MinCommandTimeout || ms > MaxCommandTimeout {
		return 0, fmt.Errorf("%dms outside [%d, %d]", ms, MinCommandTimeout, MaxCommandTimeout)
	}
	return ms, nil
}

// logConfigurationInfo logs the final configuration settings for debugging purposes.
func logConfigurationInfo(config *interfaces.GraphConfig) {
	logrus.WithFields(logrus.Fields{
		"function":        "NewGraphFactory",
		"use_simulation":  config.UseSimulation,
		"command_timeout": config.CommandTimeout,
		"lsp":             config.LspCommand,
		"connect":         config.ConnectCommand,
		"snapshot":        config.SnapshotPath,
	}).Info("Created graph factory with configuration")
}

// CreateGraph creates a graph for clientName using the default configuration.
func (f *GraphFactory) CreateGraph(clientName string) (interfaces.IGraphServer, error) {
	config := f.GetCurrentConfig()
	config.ClientName = clientName
	return f.CreateGraphWithConfig(config)
}

// CreateGraphWithConfig creates a graph with a custom configuration. A nil
// config uses the factory default.
func (f *GraphFactory) CreateGraphWithConfig(config *interfaces.GraphConfig) (interfaces.IGraphServer, error) {
	if config == nil {
		config = f.GetCurrentConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph configuration: %w", err)
	}
	if config.ClientName != "" {
		if err := limits.ValidateClientName(config.ClientName); err != nil {
			return nil, fmt.Errorf("invalid graph configuration: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":       "CreateGraphWithConfig",
		"use_simulation": config.UseSimulation,
		"client":         config.ClientName,
	}).Info("Creating graph implementation")

	if config.UseSimulation {
		if config.SnapshotPath == "" {
			return simulation.NewGraph(config.ClientName), nil
		}
		snap, err := simulation.LoadSnapshot(config.SnapshotPath)
		if err != nil {
			return nil, err
		}
		return snap.Graph(config.ClientName), nil
	}

	return real.NewJackGraph(config), nil
}

// SwitchToSimulation switches the configuration to use simulation, replaying
// the snapshot at path when it is not empty.
func (f *GraphFactory) SwitchToSimulation(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToSimulation",
		"previous": f.defaultConfig.UseSimulation,
		"snapshot": path,
	}).Info("Switching factory to simulation mode")

	f.defaultConfig.UseSimulation = true
	f.defaultConfig.SnapshotPath = path
}

// SwitchToReal switches the configuration to use the JACK tools.
func (f *GraphFactory) SwitchToReal() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToReal",
		"previous": f.defaultConfig.UseSimulation,
	}).Info("Switching factory to real mode")

	f.defaultConfig.UseSimulation = false
}

// GetCurrentConfig returns a copy of the current default configuration.
func (f *GraphFactory) GetCurrentConfig() *interfaces.GraphConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()

	cp := *f.defaultConfig
	return &cp
}

// IsUsingSimulation returns true if the factory is configured for simulation.
func (f *GraphFactory) IsUsingSimulation() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.defaultConfig.UseSimulation
}

// UpdateConfig replaces the factory's default configuration.
func (f *GraphFactory) UpdateConfig(config *interfaces.GraphConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid graph configuration: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "UpdateConfig",
		"old_simulation": f.defaultConfig.UseSimulation,
		"new_simulation": config.UseSimulation,
		"old_timeout":    f.defaultConfig.CommandTimeout,
		"new_timeout":    config.CommandTimeout,
	}).Info("Updating factory configuration")

	cp := *config
	f.defaultConfig = &cp
	return nil
}
