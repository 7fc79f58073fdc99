// Package userconfig provides settings management for gpudrv.
// Settings are stored in /etc/gpudrv/config.toml (or $GPUDRV_CONFIG) and
// can be modified via the `gpudrv config` command.
package userconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tsukumogami/gpudrv/internal/config"
)

const (
	// DefaultLogMaxSizeMB is the size at which the log file is rotated.
	DefaultLogMaxSizeMB = 5

	// DefaultLogMaxBackups is the number of rotated log files kept.
	DefaultLogMaxBackups = 3
)

// Config represents user-configurable settings.
type Config struct {
	// ConfirmActions asks for y/n confirmation before install and uninstall.
	// Default is true.
	ConfirmActions bool `toml:"confirm_actions"`

	// LogFile overrides the log file location. Empty means gpudrv.log in
	// the working directory.
	LogFile string `toml:"log_file,omitempty"`

	// LogMaxSizeMB is the rotation threshold in megabytes.
	LogMaxSizeMB int `toml:"log_max_size_mb"`

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups int `toml:"log_max_backups"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		ConfirmActions: true,
		LogMaxSizeMB:   DefaultLogMaxSizeMB,
		LogMaxBackups:  DefaultLogMaxBackups,
	}
}

// Load reads the config file and returns the configuration.
// Returns default values if the file doesn't exist.
// Returns an error only for file parsing issues, not missing files.
func Load() (*Config, error) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return DefaultConfig(), nil // Silently use defaults
	}

	return loadFromPath(cfg.ConfigFile)
}

// loadFromPath reads config from a specific file path (for testing).
func loadFromPath(path string) (*Config, error) {
	userCfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return userCfg, nil // File doesn't exist, use defaults
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), userCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return userCfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return c.saveToPath(cfg.ConfigFile)
}

// saveToPath writes config to a specific file path (for testing).
func (c *Config) saveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get returns the value of a config key as a string.
// Returns empty string and false if the key doesn't exist.
func (c *Config) Get(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "confirm_actions":
		return strconv.FormatBool(c.ConfirmActions), true
	case "log_file":
		return c.LogFile, true
	case "log_max_size_mb":
		return strconv.Itoa(c.LogMaxSizeMB), true
	case "log_max_backups":
		return strconv.Itoa(c.LogMaxBackups), true
	default:
		return "", false
	}
}

// Set updates a config value from a string.
// Returns an error if the key doesn't exist or the value is invalid.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "confirm_actions":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for confirm_actions: must be true or false")
		}
		c.ConfirmActions = b
		return nil
	case "log_file":
		c.LogFile = strings.TrimSpace(value)
		return nil
	case "log_max_size_mb":
		n, err := positiveInt(value)
		if err != nil {
			return fmt.Errorf("invalid value for log_max_size_mb: %w", err)
		}
		c.LogMaxSizeMB = n
		return nil
	case "log_max_backups":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value for log_max_backups: must be a non-negative integer")
		}
		c.LogMaxBackups = n
		return nil
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}

func positiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

// AvailableKeys returns a list of all configurable keys with descriptions.
func AvailableKeys() map[string]string {
	return map[string]string{
		"confirm_actions": "Ask for confirmation before install and uninstall (true/false)",
		"log_file":        "Log file path (empty for gpudrv.log in the working directory)",
		"log_max_size_mb": "Rotate the log file after this many megabytes",
		"log_max_backups": "Number of rotated log files to keep",
	}
}
