package service

import (
	"context"
	"errors"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/userdir-go/internal/core/domain"
	"github.com/yndnr/userdir-go/internal/telemetry/logger"
)

// Maintenance defaults.
const (
	DefaultInactivityThreshold = 5
	DefaultDedupInterval       = 4
	DefaultCompactInterval     = 8
)

// MaintainedStore is the part of a record store the maintainer drives.
type MaintainedStore interface {
	SessionStore
	Records() []*domain.UserRecord
	Evict(by domain.Side, id int) error
	Deduplicate(by domain.Side) ([]*domain.UserRecord, error)
	Compact() int
}

// MaintenanceObserver receives tick events.
type MaintenanceObserver interface {
	TickCompleted(day int, failed bool)
}

type nopMaintenanceObserver struct{}

func (nopMaintenanceObserver) TickCompleted(int, bool) {}

// MaintenanceConfig holds the tick thresholds and schedules.
type MaintenanceConfig struct {
	// InactivityThreshold is the number of idle days after which an
	// inactive record is evicted.
	InactivityThreshold int

	// DedupInterval and CompactInterval schedule the store passes on
	// days divisible by them.
	DedupInterval   int
	CompactInterval int

	// ReclaimSessions runs RevokeAllExpired at the end of every tick.
	ReclaimSessions bool
}

// DefaultMaintenanceConfig returns the default schedule.
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		InactivityThreshold: DefaultInactivityThreshold,
		DedupInterval:       DefaultDedupInterval,
		CompactInterval:     DefaultCompactInterval,
		ReclaimSessions:     true,
	}
}

// Validate checks the schedule.
func (c MaintenanceConfig) Validate() error {
	if c.InactivityThreshold < 0 {
		return domain.ErrInvalidArgument.WithDetails("inactivity threshold must not be negative")
	}
	if c.DedupInterval <= 0 || c.CompactInterval <= 0 {
		return domain.ErrInvalidArgument.WithDetails("maintenance intervals must be positive")
	}
	return nil
}

// TickReport summarizes one maintenance tick.
type TickReport struct {
	TickID string `json:"tick_id" yaml:"tick_id"`
	Day    int    `json:"day" yaml:"day"`

	Validated         int   `json:"validated" yaml:"validated"`
	Evicted           []int `json:"evicted,omitempty" yaml:"evicted,omitempty"`
	SessionsReclaimed int   `json:"sessions_reclaimed" yaml:"sessions_reclaimed"`

	Deduplicated bool  `json:"deduplicated" yaml:"deduplicated"`
	Duplicates   []int `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`

	Compacted         bool `json:"compacted" yaml:"compacted"`
	CompactedRecords  int  `json:"compacted_records" yaml:"compacted_records"`
	CompactedSessions int  `json:"compacted_sessions" yaml:"compacted_sessions"`
}

// Maintainer runs the daily tick against one store and its sessions.
type Maintainer struct {
	mu sync.Mutex

	side     domain.Side
	store    MaintainedStore
	sessions *SessionManager
	peers    []SessionStore
	cfg      MaintenanceConfig
	day      int
	observer MaintenanceObserver
}

// MaintainerOption configures the Maintainer.
type MaintainerOption func(*Maintainer)

// WithPeers sets the peer stores searched when reclaiming sessions.
func WithPeers(peers ...SessionStore) MaintainerOption {
	return func(m *Maintainer) {
		m.peers = append(m.peers, peers...)
	}
}

// WithMaintenanceObserver sets the tick observer.
func WithMaintenanceObserver(o MaintenanceObserver) MaintainerOption {
	return func(m *Maintainer) {
		if o != nil {
			m.observer = o
		}
	}
}

// NewMaintainer creates a maintainer acting as side on store.
func NewMaintainer(side domain.Side, store MaintainedStore, sessions *SessionManager, cfg MaintenanceConfig, opts ...MaintainerOption) (*Maintainer, error) {
	if !side.Valid() {
		return nil, domain.ErrInvalidArgument.WithDetails("maintainer side is required")
	}
	if store == nil || sessions == nil {
		return nil, domain.ErrMissingArgument.WithDetails("store and session manager are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Maintainer{
		side:     side,
		store:    store,
		sessions: sessions,
		cfg:      cfg,
		observer: nopMaintenanceObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// AddPeer registers another store searched when reclaiming sessions.
func (m *Maintainer) AddPeer(p SessionStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peers = append(m.peers, p)
}

// Day returns the day of the last tick.
func (m *Maintainer) Day() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.day
}

// Advance runs the tick for the day after the last one.
func (m *Maintainer) Advance(ctx context.Context) (*TickReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickLocked(ctx, m.day+1)
}

// Tick runs maintenance for day. Per-record failures do not stop the
// pass; they are joined into the returned error.
func (m *Maintainer) Tick(ctx context.Context, day int) (*TickReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickLocked(ctx, day)
}

func (m *Maintainer) tickLocked(ctx context.Context, day int) (*TickReport, error) {
	report := &TickReport{TickID: ulid.Make().String(), Day: day}
	ctx = logger.WithTraceID(ctx, report.TickID)
	log := logger.L(ctx).With("day", day)

	var errs []error

	// 1. Age or evict every live record
	for _, rec := range m.store.Records() {
		if !rec.IsActive && rec.InactivityCount > m.cfg.InactivityThreshold {
			if err := m.store.Evict(m.side, rec.ID); err != nil {
				log.Warn("evict failed", "user_id", rec.ID, "error", err)
				errs = append(errs, err)
				continue
			}
			m.dropSession(rec)
			report.Evicted = append(report.Evicted, rec.ID)
			log.Debug("record evicted", "user_id", rec.ID, "inactivity_count", rec.InactivityCount)
			continue
		}

		result := m.sessions.Validate(rec.SessionToken)
		err := m.store.Update(rec.ID, func(r *domain.UserRecord) error {
			r.IsActive = result == domain.Fresh
			r.InactivityCount++
			return nil
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report.Validated++
	}

	// 2. Reclaim expired sessions
	if m.cfg.ReclaimSessions {
		reclaimed, err := m.sessions.RevokeAllExpired(m.peers...)
		if err != nil {
			log.Warn("session reclaim reported inconsistencies", "error", err)
			errs = append(errs, err)
		}
		report.SessionsReclaimed = len(reclaimed)
	}

	// 3. Scheduled passes: dedup before compaction
	if day%m.cfg.DedupInterval == 0 {
		released, err := m.store.Deduplicate(m.side)
		if err != nil {
			errs = append(errs, err)
		}
		for _, rec := range released {
			m.dropSession(rec)
			report.Duplicates = append(report.Duplicates, rec.ID)
		}
		report.Deduplicated = true
	}
	if day%m.cfg.CompactInterval == 0 {
		report.CompactedRecords = m.store.Compact()
		report.CompactedSessions = m.sessions.Compact()
		report.Compacted = true
	}

	m.day = day
	err := errors.Join(errs...)
	m.observer.TickCompleted(day, err != nil)

	log.Info("maintenance tick",
		"validated", report.Validated,
		"evicted", len(report.Evicted),
		"duplicates", len(report.Duplicates),
		"sessions_reclaimed", report.SessionsReclaimed,
		"compacted", report.Compacted,
	)
	return report, err
}

// dropSession revokes the session of a record that no longer exists.
func (m *Maintainer) dropSession(rec *domain.UserRecord) {
	if rec.SessionToken == "" {
		return
	}
	_ = m.sessions.RevokeRecord(rec.ID, rec.SessionToken)
}
