package memory

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/yndnr/userdir-go/internal/core/boundary"
	"github.com/yndnr/userdir-go/internal/core/domain"
)

// DefaultCapacity is the default number of record slots.
const DefaultCapacity = 1000

// Release reasons reported to the observer.
const (
	ReasonExplicit  = "explicit"
	ReasonEvicted   = "evicted"
	ReasonDuplicate = "duplicate"
	ReasonHandoff   = "handoff"
	ReasonTeardown  = "teardown"
)

// Observer receives store events. Implementations must not call back
// into the store.
type Observer interface {
	RecordInserted(store string)
	RecordReleased(store, reason string)
	RecordsLive(store string, n int)
	Compacted(store string, removed int)
}

type nopObserver struct{}

func (nopObserver) RecordInserted(string)         {}
func (nopObserver) RecordReleased(string, string) {}
func (nopObserver) RecordsLive(string, int)       {}
func (nopObserver) Compacted(string, int)         {}

// storeSerial orders locks when an operation spans two stores.
var storeSerial atomic.Uint64

// Store is a bounded slot table of user records owned by one side.
type Store struct {
	mu sync.RWMutex

	slots  []*domain.UserRecord
	count  int
	lastID int
	live   int

	name     string
	owner    domain.Side
	serial   uint64
	protocol *boundary.Protocol
	observer Observer
}

// Option configures the Store.
type Option func(*Store)

// WithCapacity sets the number of slots.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.slots = make([]*domain.UserRecord, n)
		}
	}
}

// WithName sets the label used in logs and metrics.
func WithName(name string) Option {
	return func(s *Store) {
		s.name = name
	}
}

// WithProtocol sets the ownership protocol consulted on release.
func WithProtocol(p *boundary.Protocol) Option {
	return func(s *Store) {
		s.protocol = p
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// New creates a store owned by owner.
func New(owner domain.Side, opts ...Option) *Store {
	s := &Store{
		slots:    make([]*domain.UserRecord, DefaultCapacity),
		name:     "store-" + owner.String(),
		owner:    owner,
		serial:   storeSerial.Add(1),
		protocol: boundary.New(nil),
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the store label.
func (s *Store) Name() string { return s.name }

// Owner returns the side that owns this store.
func (s *Store) Owner() domain.Side { return s.owner }

// Capacity returns the number of slots.
func (s *Store) Capacity() int { return len(s.slots) }

// Count returns the logical count: live records plus tombstones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Live returns the number of live records.
func (s *Store) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// Insert appends a record and returns its assigned ID.
//
// The store keeps its own copy. A record without a tag is tagged as
// owned by the store's side.
func (s *Store) Insert(rec *domain.UserRecord) (int, error) {
	if rec == nil {
		return 0, domain.ErrMissingArgument.WithDetails("record is required")
	}
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count >= len(s.slots) {
		return 0, domain.ErrCapacityExceeded.WithDetails(
			fmt.Sprintf("%s holds %d slots", s.name, len(s.slots)))
	}

	stored := rec.Snapshot()
	if stored.Ownership.IsZero() {
		stored.Ownership = domain.OwnedBy(s.owner)
	}
	s.appendLocked(stored)
	return stored.ID, nil
}

// appendLocked assigns the next ID and places rec at count.
// Caller must hold the write lock and have checked capacity.
func (s *Store) appendLocked(rec *domain.UserRecord) {
	s.lastID++
	rec.ID = s.lastID
	s.slots[s.count] = rec
	s.count++
	s.live++
	s.observer.RecordInserted(s.name)
	s.observer.RecordsLive(s.name, s.live)
}

// Get returns a snapshot of the record with the given ID.
func (s *Store) Get(id int) (*domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot := s.slotOfLocked(id)
	if slot < 0 {
		return nil, domain.ErrNotFound.WithDetails(fmt.Sprintf("user_id=%d", id))
	}
	return s.slots[slot].Snapshot(), nil
}

// FindByUsername returns a snapshot of the first record named username.
func (s *Store) FindByUsername(username string) (*domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := 0; i < s.count; i++ {
		if rec := s.slots[i]; rec != nil && rec.Username == username {
			return rec.Snapshot(), nil
		}
	}
	return nil, domain.ErrNotFound.WithDetails("username " + username)
}

// FindBySessionToken returns a snapshot of the record bound to token.
func (s *Store) FindBySessionToken(token string) (*domain.UserRecord, error) {
	if token == "" {
		return nil, domain.ErrNotFound.WithDetails("empty session token")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := 0; i < s.count; i++ {
		if rec := s.slots[i]; rec != nil && rec.SessionToken == token {
			return rec.Snapshot(), nil
		}
	}
	return nil, domain.ErrNotFound.WithDetails("no record for session token")
}

// slotOfLocked returns the slot holding id, or -1.
func (s *Store) slotOfLocked(id int) int {
	if id <= 0 {
		return -1
	}
	for i := 0; i < s.count; i++ {
		if rec := s.slots[i]; rec != nil && rec.ID == id {
			return i
		}
	}
	return -1
}

// Update applies fn to a working copy of the record and commits it when
// fn succeeds and the result is valid. fn may not change the ID or the
// ownership tag; use Retag for the latter.
func (s *Store) Update(id int, fn func(*domain.UserRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slotOfLocked(id)
	if slot < 0 {
		return domain.ErrNotFound.WithDetails(fmt.Sprintf("user_id=%d", id))
	}
	return s.updateSlotLocked(slot, fn)
}

func (s *Store) updateSlotLocked(slot int, fn func(*domain.UserRecord) error) error {
	current := s.slots[slot]
	work := current.Snapshot()
	if err := fn(work); err != nil {
		return err
	}
	if work.ID != current.ID || work.Ownership != current.Ownership {
		return domain.ErrInvalidArgument.WithDetails("update may not change id or ownership")
	}
	if err := work.Validate(); err != nil {
		return err
	}
	s.slots[slot] = work
	return nil
}

// Release frees the record with the given ID on behalf of side by.
func (s *Store) Release(by domain.Side, id int) error {
	return s.releaseID(by, id, ReasonExplicit)
}

// Evict frees an aged-out record on behalf of side by.
func (s *Store) Evict(by domain.Side, id int) error {
	return s.releaseID(by, id, ReasonEvicted)
}

func (s *Store) releaseID(by domain.Side, id int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slotOfLocked(id)
	if slot < 0 {
		if id > 0 && id <= s.lastID {
			return s.protocol.AlreadyReleased(id)
		}
		return domain.ErrNotFound.WithDetails(fmt.Sprintf("user_id=%d", id))
	}
	_, err := s.releaseAtLocked(by, slot, reason)
	return err
}

// releaseAtLocked is release by slot index. It checks the protocol and
// tombstones slot; a tombstoned slot reports ErrAlreadyReleased. Slot
// positions are only meaningful within one pass under the lock.
func (s *Store) releaseAtLocked(by domain.Side, slot int, reason string) (*domain.UserRecord, error) {
	if slot < 0 || slot >= s.count {
		return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("slot %d outside [0,%d)", slot, s.count))
	}
	rec := s.slots[slot]
	if err := s.protocol.CheckRelease(rec, by); err != nil {
		return nil, err
	}
	s.slots[slot] = nil
	s.live--
	s.observer.RecordReleased(s.name, reason)
	s.observer.RecordsLive(s.name, s.live)
	return rec, nil
}

// Retag atomically replaces the ownership tag of a record. Only the side
// holding release rights may retag.
func (s *Store) Retag(by domain.Side, id int, to domain.Ownership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slotOfLocked(id)
	if slot < 0 {
		return domain.ErrNotFound.WithDetails(fmt.Sprintf("user_id=%d", id))
	}
	if err := s.protocol.CheckRetag(s.slots[slot], by, to); err != nil {
		return err
	}
	retagged := s.slots[slot].Snapshot()
	retagged.Ownership = to
	s.slots[slot] = retagged
	return nil
}

// Share makes a record visible to both sides with by as primary.
func (s *Store) Share(by domain.Side, id int) error {
	return s.Retag(by, id, domain.SharedWith(by))
}

// Transfer hands exclusive ownership of a record to the other side.
func (s *Store) Transfer(by domain.Side, id int) error {
	return s.Retag(by, id, domain.OwnedBy(by.Other()))
}

// Clone returns an unassigned copy of the record owned by side by.
// The copy is not inserted anywhere.
func (s *Store) Clone(by domain.Side, id int) (*domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot := s.slotOfLocked(id)
	if slot < 0 {
		return nil, domain.ErrNotFound.WithDetails(fmt.Sprintf("user_id=%d", id))
	}
	c, err := s.protocol.Clone(s.slots[slot], by)
	if err != nil {
		return nil, err
	}
	c.ID = 0
	return c, nil
}

// Compact removes tombstones in one stable pass and returns how many
// slots were reclaimed. IDs are unchanged; slot positions are not.
func (s *Store) Compact() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	write := 0
	for read := 0; read < s.count; read++ {
		if s.slots[read] == nil {
			continue
		}
		if write != read {
			s.slots[write] = s.slots[read]
			s.slots[read] = nil
		}
		write++
	}

	removed := s.count - write
	s.count = write
	s.observer.Compacted(s.name, removed)
	return removed
}

// Records returns snapshots of all live records in slot order.
func (s *Store) Records() []*domain.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.UserRecord, 0, s.live)
	for i := 0; i < s.count; i++ {
		if rec := s.slots[i]; rec != nil {
			out = append(out, rec.Snapshot())
		}
	}
	return out
}

// IDs returns the IDs of all live records in slot order.
func (s *Store) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, s.live)
	for i := 0; i < s.count; i++ {
		if rec := s.slots[i]; rec != nil {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

// ReleaseAll frees every record side by may release and returns their
// snapshots. Records held by the other side stay in place and are
// reported as ErrForbiddenRelease.
func (s *Store) ReleaseAll(by domain.Side) ([]*domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		released []*domain.UserRecord
		errs     []error
	)
	for i := 0; i < s.count; i++ {
		if s.slots[i] == nil {
			continue
		}
		rec, err := s.releaseAtLocked(by, i, ReasonTeardown)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		released = append(released, rec)
	}
	return released, errors.Join(errs...)
}
