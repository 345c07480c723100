// Package conf loads and holds the agent configuration.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings is the root configuration structure.
type Settings struct {
	Debug bool `yaml:"debug"` // Enable debug logging

	Main struct {
		Name string    `yaml:"name"` // Node name, used to identify this agent
		Log  LogConfig `yaml:"log"`  // Agent log file settings
	} `yaml:"main"`

	Monitor MonitorSettings `yaml:"monitor"`

	HTTP HTTPSettings `yaml:"http"`
	NATS NATSSettings `yaml:"nats"`
}

// HTTPSettings configures the read API and metrics server.
type HTTPSettings struct {
	Enabled bool   `yaml:"enabled"` // Serve the read API and metrics
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
}

// NATSSettings configures snapshot publishing to NATS JetStream.
type NATSSettings struct {
	Enabled bool   `yaml:"enabled"` // Publish snapshots to NATS JetStream
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// MonitorSettings configures the filesystem polling service.
type MonitorSettings struct {
	Interval int             `yaml:"interval"` // Poll interval in seconds
	Checks   []CheckSettings `yaml:"checks"`   // Monitored filesystems
}

// CheckSettings configures one monitored filesystem path.
type CheckSettings struct {
	Path     string  `yaml:"path"`     // Mountpoint, device path or connection string
	Warning  float64 `yaml:"warning"`  // Space usage warning threshold, percent (0 disables)
	Critical float64 `yaml:"critical"` // Space usage critical threshold, percent (0 disables)
}

// LogConfig holds file logging settings.
type LogConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"maxsizemb"`
	MaxBackups int    `yaml:"maxbackups"`
	MaxAgeDays int    `yaml:"maxagedays"`
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment into a Settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with defaults and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config file anywhere on the search path, run on defaults
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the config file search path: the current
// working directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "diskwatch"))
	}
	return paths, nil
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, loading it if necessary.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SaveYAMLConfig writes settings to configPath as YAML. The write goes
// through a temporary file in the same directory so the replacement is
// atomic.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary config file: %w", err)
	}
	tempName := tempFile.Name()

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		os.Remove(tempName)
		return fmt.Errorf("error writing temporary config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("error closing temporary config file: %w", err)
	}

	if err := os.Rename(tempName, configPath); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}
