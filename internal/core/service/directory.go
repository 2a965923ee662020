package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/userdir-go/internal/core/boundary"
	"github.com/yndnr/userdir-go/internal/core/domain"
	"github.com/yndnr/userdir-go/internal/storage/memory"
	"github.com/yndnr/userdir-go/internal/telemetry/logger"
	"github.com/yndnr/userdir-go/pkg/token"
)

// Observer receives every event a directory produces.
type Observer interface {
	memory.Observer
	boundary.Observer
	SessionObserver
	MaintenanceObserver
}

// DirectoryConfig sizes a directory and its maintenance schedule.
type DirectoryConfig struct {
	Side                 domain.Side
	Capacity             int
	MaxSessions          int
	SessionIdleThreshold int
	Maintenance          MaintenanceConfig
}

// DefaultDirectoryConfig returns the default configuration for side.
func DefaultDirectoryConfig(side domain.Side) DirectoryConfig {
	return DirectoryConfig{
		Side:                 side,
		Capacity:             memory.DefaultCapacity,
		MaxSessions:          DefaultMaxSessions,
		SessionIdleThreshold: DefaultSessionIdleThreshold,
		Maintenance:          DefaultMaintenanceConfig(),
	}
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*directoryOptions)

type directoryOptions struct {
	log      logger.Logger
	observer Observer
	clock    func() time.Time
}

// WithLogger sets the directory logger.
func WithLogger(l logger.Logger) DirectoryOption {
	return func(o *directoryOptions) {
		o.log = l
	}
}

// WithObserver sets the metrics observer for all components.
func WithObserver(obs Observer) DirectoryOption {
	return func(o *directoryOptions) {
		o.observer = obs
	}
}

// WithDirectoryClock sets the time source for session tokens.
func WithDirectoryClock(now func() time.Time) DirectoryOption {
	return func(o *directoryOptions) {
		o.clock = now
	}
}

// Directory is one side's view of the user directory: a record store,
// its session table and the maintainer that ages both.
type Directory struct {
	mu     sync.Mutex
	closed bool

	id         string
	side       domain.Side
	store      *memory.Store
	sessions   *SessionManager
	maintainer *Maintainer
	peers      []*memory.Store
	log        logger.Logger
}

// NewDirectory creates an empty directory owned by cfg.Side.
func NewDirectory(cfg DirectoryConfig, opts ...DirectoryOption) (*Directory, error) {
	if !cfg.Side.Valid() {
		return nil, domain.ErrInvalidArgument.WithDetails("directory side is required")
	}
	if cfg.Capacity <= 0 || cfg.MaxSessions <= 0 {
		return nil, domain.ErrInvalidArgument.WithDetails("capacity and max sessions must be positive")
	}

	o := directoryOptions{log: logger.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	storeOpts := []memory.Option{
		memory.WithCapacity(cfg.Capacity),
		memory.WithName("store-" + cfg.Side.String()),
	}
	sessionOpts := []SessionOption{
		WithMaxSessions(cfg.MaxSessions),
		WithIdleThreshold(cfg.SessionIdleThreshold),
		WithClock(o.clock),
	}
	var maintOpts []MaintainerOption
	if o.observer != nil {
		storeOpts = append(storeOpts,
			memory.WithObserver(o.observer),
			memory.WithProtocol(boundary.New(o.observer)),
		)
		sessionOpts = append(sessionOpts, WithSessionObserver(o.observer))
		maintOpts = append(maintOpts, WithMaintenanceObserver(o.observer))
	}

	store := memory.New(cfg.Side, storeOpts...)
	sessions := NewSessionManager(store, sessionOpts...)
	maintainer, err := NewMaintainer(cfg.Side, store, sessions, cfg.Maintenance, maintOpts...)
	if err != nil {
		return nil, err
	}

	d := &Directory{
		id:         ulid.Make().String(),
		side:       cfg.Side,
		store:      store,
		sessions:   sessions,
		maintainer: maintainer,
	}
	d.log = logger.ForDirectory(o.log, d.id, d.side.String())
	d.log.Debug("directory created", "capacity", cfg.Capacity, "max_sessions", cfg.MaxSessions)
	return d, nil
}

// ID returns the directory instance id.
func (d *Directory) ID() string { return d.id }

// Side returns the owning side.
func (d *Directory) Side() domain.Side { return d.side }

// Store returns the directory's record store.
func (d *Directory) Store() *memory.Store { return d.store }

// Sessions returns the directory's session manager.
func (d *Directory) Sessions() *SessionManager { return d.sessions }

func (d *Directory) ctx(ctx context.Context) context.Context {
	ctx = logger.WithLogger(ctx, d.log)
	return ctx
}

func (d *Directory) checkOpen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return domain.ErrDirectoryClosed
	}
	return nil
}

// AttachPeer registers the other side's store. Expired sessions whose
// record moved there are then resolved instead of reported inconsistent.
func (d *Directory) AttachPeer(peer *memory.Store) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if peer == nil {
		return domain.ErrMissingArgument.WithDetails("peer store is required")
	}
	if peer == d.store {
		return domain.ErrInvalidArgument.WithDetails("a directory cannot peer with itself")
	}

	d.mu.Lock()
	d.peers = append(d.peers, peer)
	d.mu.Unlock()

	d.maintainer.AddPeer(peer)
	return nil
}

// ============================================================================
// Records
// ============================================================================

// CreateUser returns a new, unassigned record owned by this side.
func (d *Directory) CreateUser(username, email, password string) (*domain.UserRecord, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return domain.NewUserRecord(username, email, password, d.side)
}

// AddUser inserts rec and returns its assigned id.
func (d *Directory) AddUser(ctx context.Context, rec *domain.UserRecord) (int, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}

	id, err := d.store.Insert(rec)
	if err != nil {
		return 0, err
	}
	logger.L(d.ctx(ctx)).Debug("user added", "user_id", id, "username", rec.Username)
	return id, nil
}

// Register creates and inserts a user in one call.
func (d *Directory) Register(ctx context.Context, username, email, password string) (int, error) {
	rec, err := d.CreateUser(username, email, password)
	if err != nil {
		return 0, err
	}
	return d.AddUser(ctx, rec)
}

// User returns a snapshot of the first record named username.
func (d *Directory) User(username string) (*domain.UserRecord, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return d.store.FindByUsername(username)
}

// UserByID returns a snapshot of the record with the given id.
func (d *Directory) UserByID(id int) (*domain.UserRecord, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return d.store.Get(id)
}

// Records returns snapshots of all live records in slot order.
func (d *Directory) Records() []*domain.UserRecord {
	return d.store.Records()
}

// GetPassword returns the stored password of username.
func (d *Directory) GetPassword(username string) (string, error) {
	rec, err := d.User(username)
	if err != nil {
		return "", err
	}
	return rec.Password, nil
}

// UpdateUsername renames the first record named oldName.
func (d *Directory) UpdateUsername(ctx context.Context, oldName, newName string) error {
	rec, err := d.User(oldName)
	if err != nil {
		return err
	}

	err = d.store.Update(rec.ID, func(r *domain.UserRecord) error {
		r.Username = newName
		return nil
	})
	if err != nil {
		return err
	}

	d.sessions.Rename(rec.ID, newName)
	logger.L(d.ctx(ctx)).Debug("username updated", "user_id", rec.ID, "username", newName)
	return nil
}

// Release frees the record with the given id and revokes its session.
func (d *Directory) Release(ctx context.Context, id int) error {
	rec, err := d.UserByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Let the store tell a released id from an unknown one.
			return d.store.Release(d.side, id)
		}
		return err
	}

	if err := d.store.Release(d.side, id); err != nil {
		return err
	}
	if rec.SessionToken != "" {
		_ = d.sessions.RevokeRecord(id, rec.SessionToken)
	}
	logger.L(d.ctx(ctx)).Debug("user released", "user_id", id)
	return nil
}

// ============================================================================
// Sessions
// ============================================================================

// Login opens a session for username and returns its token. A previous
// session of the record is revoked.
func (d *Directory) Login(ctx context.Context, username string) (string, error) {
	rec, err := d.User(username)
	if err != nil {
		return "", err
	}
	return d.login(d.ctx(ctx), rec)
}

// Authenticate verifies password before logging username in.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (string, error) {
	rec, err := d.User(username)
	if err != nil {
		return "", domain.ErrInvalidCredentials.WithCause(err)
	}
	if !token.Equal(rec.Password, password) {
		return "", domain.ErrInvalidCredentials
	}
	return d.login(d.ctx(ctx), rec)
}

func (d *Directory) login(ctx context.Context, rec *domain.UserRecord) (string, error) {
	// 1. Open the new session
	tok, err := d.sessions.Create(rec.ID, rec.Username)
	if err != nil {
		return "", err
	}

	// 2. Bind it to the record
	var previous string
	err = d.store.Update(rec.ID, func(r *domain.UserRecord) error {
		previous = r.SessionToken
		r.ResetLogin(tok)
		return nil
	})
	if err != nil {
		_ = d.sessions.Revoke(tok)
		return "", err
	}

	// 3. Drop the replaced session
	if previous != "" {
		_ = d.sessions.RevokeRecord(rec.ID, previous)
	}

	logger.L(ctx).Debug("user logged in", "user_id", rec.ID, "session_token", tok)
	return tok, nil
}

// Validate validates a session token without touching any record.
func (d *Directory) Validate(tok string) domain.Validation {
	return d.sessions.Validate(tok)
}

// ============================================================================
// Boundary
// ============================================================================

// Share makes the record visible to the peer with this side as primary.
func (d *Directory) Share(id int) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	return d.store.Share(d.side, id)
}

// Transfer hands exclusive ownership of the record to the peer.
func (d *Directory) Transfer(id int) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	return d.store.Transfer(d.side, id)
}

// Borrow returns a handle to a record in peer for this side.
func (d *Directory) Borrow(peer *memory.Store, id int) (*memory.Borrow, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if peer == nil {
		return nil, domain.ErrMissingArgument.WithDetails("peer store is required")
	}
	return peer.Borrow(d.side, id)
}

// Clone copies the record with the given id into this directory as a
// new record owned by this side. Returns the new id.
func (d *Directory) Clone(ctx context.Context, id int) (int, error) {
	return d.CloneFrom(ctx, d.store, id)
}

// CloneFrom copies a record of src, which may be the peer's store, into
// this directory. The copy is owned by this side and starts logged out.
func (d *Directory) CloneFrom(ctx context.Context, src *memory.Store, id int) (int, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	if src == nil {
		return 0, domain.ErrMissingArgument.WithDetails("source store is required")
	}

	c, err := src.Clone(d.side, id)
	if err != nil {
		return 0, err
	}
	newID, err := d.store.Insert(c)
	if err != nil {
		return 0, err
	}
	logger.L(d.ctx(ctx)).Debug("user cloned", "source", src.Name(), "source_id", id, "user_id", newID)
	return newID, nil
}

// HandOff moves every record this side may release into dst, owned by
// dst's side. Returns the ids assigned in dst.
func (d *Directory) HandOff(ctx context.Context, dst *Directory) ([]int, error) {
	return move(ctx, d, dst, d.side)
}

// Join pulls from peer the records this side holds release rights on:
// those the peer transferred to this side and those this side shares as
// primary. Records owned by the peer stay where they are and are
// reported with ErrForbiddenRelease.
func (d *Directory) Join(ctx context.Context, peer *Directory) ([]int, error) {
	return move(ctx, peer, d, d.side)
}

// move hands every record of src that side by may release over to dst.
// A moved record's session is revoked in src and the record arrives in
// dst logged out.
func move(ctx context.Context, src, dst *Directory, by domain.Side) ([]int, error) {
	if src == nil || dst == nil {
		return nil, domain.ErrMissingArgument.WithDetails("peer directory is required")
	}
	if src == dst {
		return nil, domain.ErrInvalidArgument.WithDetails("a directory cannot hand off to itself")
	}
	if err := src.checkOpen(); err != nil {
		return nil, err
	}
	if err := dst.checkOpen(); err != nil {
		return nil, err
	}

	var (
		ids  []int
		errs []error
	)
	for _, rec := range src.store.Records() {
		id, err := memory.Handoff(src.store, dst.store, by, rec.ID, domain.OwnedBy(dst.side))
		if err != nil {
			errs = append(errs, fmt.Errorf("handoff of %s user_id=%d: %w", src.store.Name(), rec.ID, err))
			if errors.Is(err, domain.ErrCapacityExceeded) {
				break
			}
			continue
		}
		ids = append(ids, id)

		moved, err := dst.store.Get(id)
		if err != nil || moved.SessionToken == "" {
			continue
		}
		_ = src.sessions.RevokeRecord(rec.ID, moved.SessionToken)
		_ = dst.store.Update(id, func(r *domain.UserRecord) error {
			r.Deactivate()
			return nil
		})
	}

	logger.L(dst.ctx(ctx)).Info("records handed off",
		"from", src.store.Name(), "by", by.String(), "moved", len(ids), "failed", len(errs))
	return ids, errors.Join(errs...)
}

// ============================================================================
// Maintenance
// ============================================================================

// Tick runs maintenance for day.
func (d *Directory) Tick(ctx context.Context, day int) (*TickReport, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return d.maintainer.Tick(d.ctx(ctx), day)
}

// Advance runs maintenance for the next day.
func (d *Directory) Advance(ctx context.Context) (*TickReport, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return d.maintainer.Advance(d.ctx(ctx))
}

// Day returns the day of the last tick.
func (d *Directory) Day() int { return d.maintainer.Day() }

// Close releases every record this side may release and revokes their
// sessions. Records held by the peer are left alone and reported.
// Further calls return ErrDirectoryClosed.
func (d *Directory) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return domain.ErrDirectoryClosed
	}
	d.closed = true
	d.mu.Unlock()

	released, err := d.store.ReleaseAll(d.side)
	for _, rec := range released {
		if rec.SessionToken != "" {
			_ = d.sessions.RevokeRecord(rec.ID, rec.SessionToken)
		}
	}
	d.sessions.Compact()

	log := logger.L(d.ctx(ctx))
	if err != nil {
		log.Warn("directory closed with records left", "released", len(released), "error", err)
		return err
	}
	log.Info("directory closed", "released", len(released))
	return nil
}
