package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override file settings,
// e.g. FRAMECHECK_SERVER_BASE_DIR
const EnvPrefix = "FRAMECHECK"

// ConfigRepository is an implementation of port.ConfigRepository
type ConfigRepository struct{}

// NewConfigRepository creates a new ConfigRepository instance
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := model.NewConfig()
	v.SetDefault("log_level", string(defaults.LogLevel))
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("server.listen_address", defaults.Server.ListenAddress)
	v.SetDefault("server.base_dir", defaults.Server.BaseDir)
	v.SetDefault("server.marker_file", defaults.Server.MarkerFile)
	v.SetDefault("server.buffer_size", defaults.Server.BufferSize)
	v.SetDefault("server.max_connections", defaults.Server.MaxConnections)
	v.SetDefault("server.read_header_timeout", defaults.Server.ReadHeaderTimeout)
	v.SetDefault("probe.target", defaults.Probe.Target)
	v.SetDefault("probe.timeout", defaults.Probe.Timeout)
	v.SetDefault("probe.dial_timeout", defaults.Probe.DialTimeout)
	v.SetDefault("probe.max_response_bytes", defaults.Probe.MaxResponseBytes)
	v.SetDefault("feed.address", defaults.Feed.Address)
	v.SetDefault("feed.write_timeout", defaults.Feed.WriteTimeout)
	return v
}

// Load loads configuration from file. A missing file yields the defaults
// with environment overrides applied.
func (r *ConfigRepository) Load(configPath string) (*model.Config, error) {
	// If configPath is empty, look in the default location
	if configPath == "" {
		var err error
		configPath, err = r.GetDefaultPath()
		if err != nil {
			return nil, err
		}
	}

	v := newViper()

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error checking config file: %w", err)
	}

	config := model.NewConfig()
	config.LogLevel = model.LogLevel(v.GetString("log_level"))
	config.LogFile = v.GetString("log_file")

	config.Server.ListenAddress = v.GetString("server.listen_address")
	config.Server.BaseDir = v.GetString("server.base_dir")
	config.Server.MarkerFile = v.GetString("server.marker_file")
	config.Server.BufferSize = v.GetInt("server.buffer_size")
	config.Server.MaxConnections = v.GetInt("server.max_connections")
	config.Server.ReadHeaderTimeout = v.GetDuration("server.read_header_timeout")

	config.Probe.Target = v.GetString("probe.target")
	config.Probe.Timeout = v.GetDuration("probe.timeout")
	config.Probe.DialTimeout = v.GetDuration("probe.dial_timeout")
	config.Probe.MaxResponseBytes = v.GetInt("probe.max_response_bytes")

	config.Feed.Address = v.GetString("feed.address")
	config.Feed.WriteTimeout = v.GetDuration("feed.write_timeout")

	if config.Server.BufferSize <= 0 {
		return nil, fmt.Errorf("server.buffer_size must be positive, got %d", config.Server.BufferSize)
	}
	if config.Probe.Timeout <= 0 {
		return nil, fmt.Errorf("probe.timeout must be positive, got %s", config.Probe.Timeout)
	}

	return config, nil
}

// Save saves configuration to file
func (r *ConfigRepository) Save(config *model.Config, configPath string) error {
	// If configPath is empty, use default location
	if configPath == "" {
		var err error
		configPath, err = r.GetDefaultPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("log_level", string(config.LogLevel))
	v.Set("log_file", config.LogFile)
	v.Set("server.listen_address", config.Server.ListenAddress)
	v.Set("server.base_dir", config.Server.BaseDir)
	v.Set("server.marker_file", config.Server.MarkerFile)
	v.Set("server.buffer_size", config.Server.BufferSize)
	v.Set("server.max_connections", config.Server.MaxConnections)
	v.Set("server.read_header_timeout", config.Server.ReadHeaderTimeout.String())
	v.Set("probe.target", config.Probe.Target)
	v.Set("probe.timeout", config.Probe.Timeout.String())
	v.Set("probe.dial_timeout", config.Probe.DialTimeout.String())
	v.Set("probe.max_response_bytes", config.Probe.MaxResponseBytes)
	v.Set("feed.address", config.Feed.Address)
	v.Set("feed.write_timeout", config.Feed.WriteTimeout.String())

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	return nil
}

// GetDefaultPath returns the default path for configuration file
func (r *ConfigRepository) GetDefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".framecheck", "config.yaml"), nil
}

// Ensure ConfigRepository implements port.ConfigRepository
var _ port.ConfigRepository = (*ConfigRepository)(nil)
