package config

import (
	"fmt"
	"sync"
)

// Override adjusts a loaded configuration, typically from command-line flags.
type Override func(*Config)

var (
	// globalConfig is the configuration the process is running with.
	globalConfig *Config

	// globalOverrides are reapplied by ReloadConfig so flag values survive a
	// change to the config file.
	globalOverrides []Override

	// configMutex protects globalConfig and globalOverrides.
	configMutex sync.RWMutex
)

// Initialize loads path with environment overrides, applies overrides in
// order, validates the result and publishes it as the global configuration.
// An empty path means defaults plus environment.
//
// On error nothing is published.
func Initialize(path string, overrides ...Override) (*Config, error) {
	cfg, err := loadWithOverrides(path, overrides)
	if err != nil {
		return nil, err
	}

	configMutex.Lock()
	globalConfig = cfg
	globalOverrides = overrides
	configMutex.Unlock()

	return cfg, nil
}

// GetConfig returns the published configuration, or nil before Initialize.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig publishes cfg directly, without loading or overrides.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
	globalOverrides = nil
}

// ReloadConfig reloads path, reapplies the overrides given to Initialize and
// passes the result to apply. The new configuration is published only when
// loading, validation and apply all succeed; otherwise the previous one stays
// in effect. A nil apply publishes unconditionally.
func ReloadConfig(path string, apply func(*Config) error) (*Config, error) {
	configMutex.RLock()
	overrides := globalOverrides
	configMutex.RUnlock()

	cfg, err := loadWithOverrides(path, overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}
	if apply != nil {
		if err := apply(cfg); err != nil {
			return nil, err
		}
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return cfg, nil
}

func loadWithOverrides(path string, overrides []Override) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return cfg, nil
	}

	for _, o := range overrides {
		o(cfg)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
