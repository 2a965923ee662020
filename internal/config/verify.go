package config

import (
	"errors"
	"strings"

	"github.com/yndnr/userdir-go/internal/core/domain"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyDirectory(&cfg.Directory); err != nil {
		return err
	}
	if err := verifyMaintenance(&cfg.Maintenance); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyDirectory(cfg *DirectorySection) error {
	if _, err := domain.ParseSide(cfg.Side); err != nil {
		return errors.New("directory.side must be \"a\" or \"b\"")
	}
	if cfg.Capacity < 1 {
		return errors.New("directory.capacity must be at least 1")
	}
	if cfg.MaxSessions < 1 {
		return errors.New("directory.max_sessions must be at least 1")
	}
	return nil
}

func verifyMaintenance(cfg *MaintenanceSection) error {
	if cfg.InactivityThreshold < 0 {
		return errors.New("maintenance.inactivity_threshold must not be negative")
	}
	if cfg.SessionIdleThreshold < 0 {
		return errors.New("maintenance.session_idle_threshold must not be negative")
	}
	if cfg.DedupInterval < 1 {
		return errors.New("maintenance.dedup_interval must be at least 1")
	}
	if cfg.CompactInterval < 1 {
		return errors.New("maintenance.compact_interval must be at least 1")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.New("log.level must be one of debug, info, warn, error")
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return errors.New("log.format must be json or text")
	}
	return nil
}
