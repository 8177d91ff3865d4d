package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
)

// ConfigService is a service for managing configuration
type ConfigService struct {
	configRepo port.ConfigRepository
	logger     port.Logger
}

// NewConfigService creates a new ConfigService instance
func NewConfigService(configRepo port.ConfigRepository, logger port.Logger) *ConfigService {
	return &ConfigService{
		configRepo: configRepo,
		logger:     logger,
	}
}

// LoadConfig loads configuration from a file
func (s *ConfigService) LoadConfig(configPath string) (*model.Config, error) {
	// If configPath is empty, use the default path
	if configPath == "" {
		var err error
		configPath, err = s.configRepo.GetDefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default path: %w", err)
		}
	}

	config, err := s.configRepo.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	s.logger.Debug("Configuration loaded from %s", configPath)

	return config, nil
}

// SaveConfig saves configuration to a file
func (s *ConfigService) SaveConfig(config *model.Config, configPath string) error {
	// If configPath is empty, use the default path
	if configPath == "" {
		var err error
		configPath, err = s.configRepo.GetDefaultPath()
		if err != nil {
			return fmt.Errorf("failed to get default path: %w", err)
		}
	}

	if err := s.configRepo.Save(config, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	s.logger.Info("Configuration saved to %s", configPath)

	return nil
}

// ConfigKeys lists the keys accepted by Set
var ConfigKeys = []string{
	"log_level", "log_file",
	"server.listen_address", "server.base_dir", "server.marker_file",
	"server.buffer_size", "server.max_connections", "server.read_header_timeout",
	"probe.target", "probe.timeout", "probe.dial_timeout", "probe.max_response_bytes",
	"feed.address", "feed.write_timeout",
}

// Set changes one configuration value from its string form
func (s *ConfigService) Set(config *model.Config, key, value string) error {
	var err error
	switch key {
	case "log_level":
		config.LogLevel = model.LogLevel(value)
	case "log_file":
		config.LogFile = value
	case "server.listen_address":
		config.Server.ListenAddress = value
	case "server.base_dir":
		config.Server.BaseDir = value
	case "server.marker_file":
		config.Server.MarkerFile = value
	case "server.buffer_size":
		err = assign(&config.Server.BufferSize, value, positiveInt)
	case "server.max_connections":
		err = assign(&config.Server.MaxConnections, value, strconv.Atoi)
	case "server.read_header_timeout":
		err = assign(&config.Server.ReadHeaderTimeout, value, time.ParseDuration)
	case "probe.target":
		config.Probe.Target = value
	case "probe.timeout":
		err = assign(&config.Probe.Timeout, value, time.ParseDuration)
	case "probe.dial_timeout":
		err = assign(&config.Probe.DialTimeout, value, time.ParseDuration)
	case "probe.max_response_bytes":
		err = assign(&config.Probe.MaxResponseBytes, value, positiveInt)
	case "feed.address":
		config.Feed.Address = value
	case "feed.write_timeout":
		err = assign(&config.Feed.WriteTimeout, value, time.ParseDuration)
	default:
		return fmt.Errorf("invalid configuration key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return nil
}

// assign parses value and stores it in dst; dst is left untouched on error
func assign[T any](dst *T, value string, parse func(string) (T, error)) error {
	v, err := parse(value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func positiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}
