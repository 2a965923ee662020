package config

// Config is the root configuration.
type Config struct {
	Directory   DirectorySection   `koanf:"directory" yaml:"directory"`
	Maintenance MaintenanceSection `koanf:"maintenance" yaml:"maintenance"`
	Log         LogSection         `koanf:"log" yaml:"log"`
}

// DirectorySection sizes the directory.
type DirectorySection struct {
	// Side is the owning side, "a" or "b".
	Side string `koanf:"side" yaml:"side"`

	// Capacity is the number of record slots.
	Capacity int `koanf:"capacity" yaml:"capacity"`

	// MaxSessions is the number of session table slots.
	MaxSessions int `koanf:"max_sessions" yaml:"max_sessions"`
}

// MaintenanceSection configures the daily tick.
type MaintenanceSection struct {
	// InactivityThreshold is the number of idle days after which an
	// inactive record is evicted.
	InactivityThreshold int `koanf:"inactivity_threshold" yaml:"inactivity_threshold"`

	// SessionIdleThreshold is the idle time above which a session expires.
	SessionIdleThreshold int `koanf:"session_idle_threshold" yaml:"session_idle_threshold"`

	DedupInterval   int  `koanf:"dedup_interval" yaml:"dedup_interval"`
	CompactInterval int  `koanf:"compact_interval" yaml:"compact_interval"`
	ReclaimSessions bool `koanf:"reclaim_sessions" yaml:"reclaim_sessions"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}
