package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yndnr/userdir-go/internal/core/domain"
	"github.com/yndnr/userdir-go/pkg/token"
)

// Session table defaults.
const (
	DefaultMaxSessions          = 100
	DefaultSessionIdleThreshold = 1
)

// SessionStore is the part of a record store the session manager needs
// to clear a record's session binding.
type SessionStore interface {
	Name() string
	FindBySessionToken(token string) (*domain.UserRecord, error)
	Update(id int, fn func(*domain.UserRecord) error) error
}

// SessionObserver receives session events.
type SessionObserver interface {
	SessionCreated()
	SessionExpired()
	SessionRevoked()
	SessionsActiveChanged(n int)
}

type nopSessionObserver struct{}

func (nopSessionObserver) SessionCreated()           {}
func (nopSessionObserver) SessionExpired()           {}
func (nopSessionObserver) SessionRevoked()           {}
func (nopSessionObserver) SessionsActiveChanged(int) {}

// SessionManager is a bounded session table bound to one record store.
//
// Entries are appended. Revoked entries leave a tombstone in place until
// Compact runs; an expired entry stays inactive until RevokeAllExpired
// reclaims it.
type SessionManager struct {
	mu sync.Mutex

	entries       []*domain.SessionEntry
	capacity      int
	idleThreshold int
	active        int

	store    SessionStore
	now      func() time.Time
	observer SessionObserver
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// WithMaxSessions sets the table capacity.
func WithMaxSessions(n int) SessionOption {
	return func(m *SessionManager) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithIdleThreshold sets the idle time above which a session expires.
func WithIdleThreshold(n int) SessionOption {
	return func(m *SessionManager) {
		if n >= 0 {
			m.idleThreshold = n
		}
	}
}

// WithClock sets the time source used for token derivation.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSessionObserver sets the event observer.
func WithSessionObserver(o SessionObserver) SessionOption {
	return func(m *SessionManager) {
		if o != nil {
			m.observer = o
		}
	}
}

// NewSessionManager creates a session manager bound to store.
func NewSessionManager(store SessionStore, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		capacity:      DefaultMaxSessions,
		idleThreshold: DefaultSessionIdleThreshold,
		store:         store,
		now:           time.Now,
		observer:      nopSessionObserver{},
	}

	for _, opt := range opts {
		opt(m)
	}

	m.entries = make([]*domain.SessionEntry, 0, m.capacity)
	return m
}

// Capacity returns the table capacity.
func (m *SessionManager) Capacity() int { return m.capacity }

// IdleThreshold returns the idle threshold.
func (m *SessionManager) IdleThreshold() int { return m.idleThreshold }

// ============================================================================
// Create / Validate
// ============================================================================

// Create opens a session for the record and returns its token.
// The token is derived from username and the current time. A reading
// whose token is still held by an entry is moved forward one
// nanosecond at a time until the token is unused.
func (m *SessionManager) Create(userID int, username string) (string, error) {
	if userID <= 0 {
		return "", domain.ErrInvalidArgument.WithDetails("user_id must be positive")
	}
	if username == "" {
		return "", domain.ErrMissingArgument.WithDetails("username is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= m.capacity {
		m.compactLocked()
	}
	if len(m.entries) >= m.capacity {
		return "", domain.ErrSessionLimitExceeded.WithDetails(
			fmt.Sprintf("%d sessions open", len(m.entries)))
	}

	at := m.now()
	tok := token.Derive(username, at)
	for m.holdsTokenLocked(tok) {
		at = at.Add(time.Nanosecond)
		tok = token.Derive(username, at)
	}
	m.entries = append(m.entries, &domain.SessionEntry{
		UserID:   userID,
		Username: username,
		Token:    tok,
		Active:   true,
	})
	m.active++
	m.observer.SessionCreated()
	m.observer.SessionsActiveChanged(m.active)
	return tok, nil
}

// Validate ages the active session carrying tok. A session whose idle
// time is above the threshold is marked inactive and reported Expired;
// otherwise its idle time is incremented and it is Fresh.
func (m *SessionManager) Validate(tok string) domain.Validation {
	if tok == "" {
		return domain.NotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.findActiveLocked(tok)
	if e == nil {
		return domain.NotFound
	}

	if e.IdleTime > m.idleThreshold {
		e.Active = false
		m.active--
		m.observer.SessionExpired()
		m.observer.SessionsActiveChanged(m.active)
		return domain.Expired
	}

	e.IdleTime++
	return domain.Fresh
}

func (m *SessionManager) holdsTokenLocked(tok string) bool {
	for _, e := range m.entries {
		if e != nil && token.Equal(e.Token, tok) {
			return true
		}
	}
	return false
}

func (m *SessionManager) findActiveLocked(tok string) *domain.SessionEntry {
	for _, e := range m.entries {
		if e != nil && e.Active && token.Equal(e.Token, tok) {
			return e
		}
	}
	return nil
}

// Lookup returns a copy of the active entry carrying tok.
func (m *SessionManager) Lookup(tok string) (*domain.SessionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e := m.findActiveLocked(tok); e != nil {
		return e.Clone(), nil
	}
	return nil, domain.ErrSessionNotFound
}

// Rename refreshes the cached username of every entry of userID.
func (m *SessionManager) Rename(userID int, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e != nil && e.UserID == userID {
			e.Username = username
		}
	}
}

// ============================================================================
// Revocation
// ============================================================================

// Revoke tombstones the entry carrying tok, active or expired.
// It does not touch the record; callers that still hold the record
// clear its binding themselves.
func (m *SessionManager) Revoke(tok string) error {
	if tok == "" {
		return domain.ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e != nil && token.Equal(e.Token, tok) {
			m.tombstoneLocked(i)
			return nil
		}
	}
	return domain.ErrSessionNotFound
}

// RevokeRecord tombstones the entry carrying tok only if it belongs to
// userID. Records released from a store drop their session through this.
func (m *SessionManager) RevokeRecord(userID int, tok string) error {
	if tok == "" {
		return domain.ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e != nil && e.UserID == userID && token.Equal(e.Token, tok) {
			m.tombstoneLocked(i)
			return nil
		}
	}
	return domain.ErrSessionNotFound
}

func (m *SessionManager) tombstoneLocked(i int) {
	if m.entries[i].Active {
		m.active--
		m.observer.SessionsActiveChanged(m.active)
	}
	m.entries[i] = nil
	m.observer.SessionRevoked()
}

// RevokeAllExpired reclaims every entry that has expired or is above
// the idle threshold. The owning record is located by token in the bound
// store, then in each peer, and has its session binding cleared. An
// entry whose record is in no store is reported as ErrInconsistent; the
// entry is reclaimed regardless. Returns copies of the reclaimed entries.
func (m *SessionManager) RevokeAllExpired(peers ...SessionStore) ([]*domain.SessionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stores := make([]SessionStore, 0, len(peers)+1)
	if m.store != nil {
		stores = append(stores, m.store)
	}
	for _, p := range peers {
		if p != nil {
			stores = append(stores, p)
		}
	}

	var (
		reclaimed []*domain.SessionEntry
		errs      []error
	)
	for i, e := range m.entries {
		if e == nil || (e.Active && e.IdleTime <= m.idleThreshold) {
			continue
		}
		if e.Active {
			m.observer.SessionExpired()
		}

		if err := clearBinding(stores, e.Token); err != nil {
			errs = append(errs, domain.ErrInconsistent.WithDetails(
				fmt.Sprintf("session of user_id=%d (%s)", e.UserID, e.Username)).WithCause(err))
		}

		reclaimed = append(reclaimed, e.Clone())
		m.tombstoneLocked(i)
	}

	return reclaimed, errors.Join(errs...)
}

// clearBinding deactivates the first record carrying tok.
func clearBinding(stores []SessionStore, tok string) error {
	for _, s := range stores {
		rec, err := s.FindBySessionToken(tok)
		if err != nil {
			continue
		}
		return s.Update(rec.ID, func(r *domain.UserRecord) error {
			r.Deactivate()
			return nil
		})
	}
	return domain.ErrNotFound.WithDetails("no store holds the session's record")
}

// ============================================================================
// Table maintenance
// ============================================================================

// Compact removes tombstoned entries and returns how many were removed.
func (m *SessionManager) Compact() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compactLocked()
}

func (m *SessionManager) compactLocked() int {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e != nil {
			kept = append(kept, e)
		}
	}
	removed := len(m.entries) - len(kept)
	clear(m.entries[len(kept):])
	m.entries = kept
	return removed
}

// Entries returns copies of all entries that are not tombstoned.
func (m *SessionManager) Entries() []*domain.SessionEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.SessionEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if e != nil {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Active returns the number of active sessions.
func (m *SessionManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Len returns the number of occupied slots, tombstones included.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
