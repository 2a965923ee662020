package memory

import (
	"github.com/yndnr/userdir-go/internal/core/domain"
)

// Borrow is a borrowed reference to a record. It remembers the slot the
// record occupied when borrowed and re-validates by ID on every use, so
// a compaction moving the record is transparent while a release is not.
type Borrow struct {
	store *Store
	by    domain.Side
	id    int
	hint  int
}

// Borrow returns a handle to the record with the given ID for side by.
func (s *Store) Borrow(by domain.Side, id int) (*Borrow, error) {
	if !by.Valid() {
		return nil, domain.ErrInvalidArgument.WithDetails("borrowing side is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	slot := s.slotOfLocked(id)
	if slot < 0 {
		return nil, domain.ErrNotFound.WithDetails("cannot borrow released record")
	}
	return &Borrow{store: s, by: by, id: id, hint: slot}, nil
}

// ID returns the borrowed record's ID.
func (h *Borrow) ID() int { return h.id }

// Side returns the borrowing side.
func (h *Borrow) Side() domain.Side { return h.by }

// resolveLocked finds the current slot of the borrowed record.
func (h *Borrow) resolveLocked() (int, error) {
	s := h.store
	if h.hint < s.count {
		if rec := s.slots[h.hint]; rec != nil && rec.ID == h.id {
			return h.hint, nil
		}
	}
	slot := s.slotOfLocked(h.id)
	if slot < 0 {
		return -1, s.protocol.StaleHandle(h.id)
	}
	h.hint = slot
	return slot, nil
}

// Resolve returns a snapshot of the borrowed record, or ErrStaleHandle when
// the record has been released.
func (h *Borrow) Resolve() (*domain.UserRecord, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	slot, err := h.resolveLocked()
	if err != nil {
		return nil, err
	}
	return h.store.slots[slot].Snapshot(), nil
}

// Update applies fn to the borrowed record as Store.Update does.
func (h *Borrow) Update(fn func(*domain.UserRecord) error) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	slot, err := h.resolveLocked()
	if err != nil {
		return err
	}
	return h.store.updateSlotLocked(slot, fn)
}
