package config

// Default configuration values.
const (
	DefaultSide        = "a"
	DefaultCapacity    = 1000
	DefaultMaxSessions = 100

	DefaultInactivityThreshold  = 5
	DefaultSessionIdleThreshold = 1
	DefaultDedupInterval        = 4
	DefaultCompactInterval      = 8

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Directory: DirectorySection{
			Side:        DefaultSide,
			Capacity:    DefaultCapacity,
			MaxSessions: DefaultMaxSessions,
		},
		Maintenance: MaintenanceSection{
			InactivityThreshold:  DefaultInactivityThreshold,
			SessionIdleThreshold: DefaultSessionIdleThreshold,
			DedupInterval:        DefaultDedupInterval,
			CompactInterval:      DefaultCompactInterval,
			ReclaimSessions:      true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
