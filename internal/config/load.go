package config

import (
	"fmt"

	"github.com/yndnr/userdir-go/internal/core/domain"
	"github.com/yndnr/userdir-go/internal/core/service"
	"github.com/yndnr/userdir-go/internal/infra/confloader"
	"github.com/yndnr/userdir-go/internal/telemetry/logger"
)

// Load builds the configuration from defaults, the optional file at path,
// the environment and overrides, then verifies it.
func Load(path string, overrides map[string]any) (*Config, error) {
	cfg := Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ToDirectoryConfig converts the configuration for service.NewDirectory.
func ToDirectoryConfig(cfg *Config) (service.DirectoryConfig, error) {
	if cfg == nil {
		return service.DirectoryConfig{}, fmt.Errorf("config is nil")
	}

	side, err := domain.ParseSide(cfg.Directory.Side)
	if err != nil {
		return service.DirectoryConfig{}, err
	}

	return service.DirectoryConfig{
		Side:                 side,
		Capacity:             cfg.Directory.Capacity,
		MaxSessions:          cfg.Directory.MaxSessions,
		SessionIdleThreshold: cfg.Maintenance.SessionIdleThreshold,
		Maintenance: service.MaintenanceConfig{
			InactivityThreshold: cfg.Maintenance.InactivityThreshold,
			DedupInterval:       cfg.Maintenance.DedupInterval,
			CompactInterval:     cfg.Maintenance.CompactInterval,
			ReclaimSessions:     cfg.Maintenance.ReclaimSessions,
		},
	}, nil
}

// ToLoggerConfig converts the log section for logger.New.
func ToLoggerConfig(cfg *Config) logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = cfg.Log.Level
	lc.Format = cfg.Log.Format
	return lc
}
