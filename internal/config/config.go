// Package config resolves gpudrv's file locations from defaults and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvConfigFile is the environment variable to override the settings file path
	EnvConfigFile = "GPUDRV_CONFIG"

	// EnvLogFile is the environment variable to override the log file path
	EnvLogFile = "GPUDRV_LOG_FILE"

	// EnvRoot is the environment variable to change the directory probes
	// resolve absolute paths against (/usr/bin, /etc/os-release, /sys)
	EnvRoot = "GPUDRV_ROOT"

	// DefaultConfigFile is the system-wide settings file
	DefaultConfigFile = "/etc/gpudrv/config.toml"

	// DefaultLogFile is the log file name, relative to the working directory
	DefaultLogFile = "gpudrv.log"
)

// Config holds gpudrv file locations
type Config struct {
	ConfigFile string // $GPUDRV_CONFIG or /etc/gpudrv/config.toml
	LogFile    string // $GPUDRV_LOG_FILE, empty when not overridden
	Root       string // $GPUDRV_ROOT or /
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	cfg := &Config{
		ConfigFile: DefaultConfigFile,
		LogFile:    os.Getenv(EnvLogFile),
		Root:       "/",
	}

	if p := os.Getenv(EnvConfigFile); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", EnvConfigFile, err)
		}
		cfg.ConfigFile = abs
	}

	if root := os.Getenv(EnvRoot); root != "" {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvRoot, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("invalid %s: %s is not a directory", EnvRoot, root)
		}
		cfg.Root = root
	}

	return cfg, nil
}

// ResolveLogFile picks the log file path: the environment override wins,
// then the configured setting, then DefaultLogFile.
func (c *Config) ResolveLogFile(configured string) string {
	switch {
	case c.LogFile != "":
		return c.LogFile
	case configured != "":
		return configured
	default:
		return DefaultLogFile
	}
}
