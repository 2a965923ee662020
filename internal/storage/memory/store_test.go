package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/userdir-go/internal/core/boundary"
	"github.com/yndnr/userdir-go/internal/core/domain"
)

func newRecord(t *testing.T, name string, creator domain.Side) *domain.UserRecord {
	t.Helper()
	rec, err := domain.NewUserRecord(name, name+"@example.com", "pw-"+name, creator)
	require.NoError(t, err)
	return rec
}

func insert(t *testing.T, s *Store, name string) int {
	t.Helper()
	id, err := s.Insert(newRecord(t, name, s.Owner()))
	require.NoError(t, err)
	return id
}

type countingObserver struct {
	inserted   int
	released   map[string]int
	live       int
	compacted  int
	violations map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{released: map[string]int{}, violations: map[string]int{}}
}

func (o *countingObserver) RecordInserted(string) { o.inserted++ }
func (o *countingObserver) RecordReleased(_ string, r string) { o.released[r]++ }
func (o *countingObserver) RecordsLive(_ string, n int) { o.live = n }
func (o *countingObserver) Compacted(_ string, removed int) { o.compacted += removed }
func (o *countingObserver) ProtocolViolation(kind string) { o.violations[kind]++ }

func TestStore_InsertAssignsSequentialIDs(t *testing.T) {
	s := New(domain.SideA)

	for want := 1; want <= 4; want++ {
		rec := newRecord(t, "user", domain.SideA)
		id, err := s.Insert(rec)
		require.NoError(t, err)
		assert.Equal(t, want, id)
		assert.Zero(t, rec.ID, "caller's record must not be mutated")
	}

	assert.Equal(t, 4, s.Count())
	assert.Equal(t, 4, s.Live())
	assert.Equal(t, []int{1, 2, 3, 4}, s.IDs())
}

func TestStore_InsertValidation(t *testing.T) {
	s := New(domain.SideA)

	_, err := s.Insert(nil)
	assert.ErrorIs(t, err, domain.ErrMissingArgument)

	_, err = s.Insert(&domain.UserRecord{})
	assert.ErrorIs(t, err, domain.ErrRecordValidation)
	assert.Zero(t, s.Count())
}

func TestStore_InsertUntaggedRecordIsOwnedByStoreSide(t *testing.T) {
	s := New(domain.SideB)

	id, err := s.Insert(&domain.UserRecord{Username: "bare"})
	require.NoError(t, err)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.OwnedBy(domain.SideB), got.Ownership)
}

func TestStore_CapacityExceeded(t *testing.T) {
	s := New(domain.SideA, WithCapacity(2))
	insert(t, s, "u1")
	insert(t, s, "u2")

	_, err := s.Insert(newRecord(t, "u3", domain.SideA))
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 2, s.Count())

	// Tombstones still occupy slots until compaction.
	require.NoError(t, s.Release(domain.SideA, 1))
	_, err = s.Insert(newRecord(t, "u3", domain.SideA))
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	assert.Equal(t, 1, s.Compact())
	id, err := s.Insert(newRecord(t, "u3", domain.SideA))
	require.NoError(t, err)
	assert.Equal(t, 3, id)
}

func TestStore_LookupsReturnSnapshots(t *testing.T) {
	s := New(domain.SideA)
	id := insert(t, s, "alice")

	got, err := s.Get(id)
	require.NoError(t, err)
	got.Username = "mallory"

	again, err := s.FindByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, id, again.ID)

	_, err = s.FindByUsername("mallory")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Get(99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_FindBySessionToken(t *testing.T) {
	s := New(domain.SideA)
	id := insert(t, s, "alice")
	insert(t, s, "bob")

	require.NoError(t, s.Update(id, func(r *domain.UserRecord) error {
		r.ResetLogin("sess_token")
		return nil
	}))

	got, err := s.FindBySessionToken("sess_token")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = s.FindBySessionToken("")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.FindBySessionToken("sess_other")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpdateIsAllOrNothing(t *testing.T) {
	s := New(domain.SideA)
	id := insert(t, s, "alice")

	boom := errors.New("boom")
	err := s.Update(id, func(r *domain.UserRecord) error {
		r.Username = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.Update(id, func(r *domain.UserRecord) error {
		r.Username = "this-username-is-definitely-longer-than-forty-nine-bytes"
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrRecordValidation)

	err = s.Update(id, func(r *domain.UserRecord) error {
		r.Ownership = domain.OwnedBy(domain.SideB)
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, domain.OwnedBy(domain.SideA), got.Ownership)

	assert.ErrorIs(t, s.Update(42, func(*domain.UserRecord) error { return nil }), domain.ErrNotFound)
}

func TestStore_ReleaseLeavesTombstone(t *testing.T) {
	obs := newCountingObserver()
	s := New(domain.SideA, WithObserver(obs), WithProtocol(boundary.New(obs)))
	insert(t, s, "u1")
	insert(t, s, "u2")
	insert(t, s, "u3")

	require.NoError(t, s.Release(domain.SideA, 2))

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 2, s.Live())
	assert.Equal(t, []int{1, 3}, s.IDs())
	assert.Equal(t, 1, obs.released[ReasonExplicit])
	assert.Equal(t, 2, obs.live)

	err := s.Release(domain.SideA, 2)
	assert.ErrorIs(t, err, domain.ErrAlreadyReleased)
	assert.Equal(t, 1, obs.violations[boundary.ViolationAlreadyReleased])

	assert.ErrorIs(t, s.Release(domain.SideA, 7), domain.ErrNotFound)
}

func TestStore_ReleaseRespectsOwnership(t *testing.T) {
	s := New(domain.SideA)
	own := insert(t, s, "mine")

	foreign, err := s.Insert(newRecord(t, "theirs", domain.SideB))
	require.NoError(t, err)

	shared := insert(t, s, "shared")
	require.NoError(t, s.Share(domain.SideA, shared))

	assert.ErrorIs(t, s.Release(domain.SideA, foreign), domain.ErrForbiddenRelease)
	assert.ErrorIs(t, s.Release(domain.SideB, shared), domain.ErrForbiddenRelease)
	assert.NoError(t, s.Release(domain.SideB, foreign))
	assert.NoError(t, s.Release(domain.SideA, shared))
	assert.NoError(t, s.Release(domain.SideA, own))
	assert.Zero(t, s.Live())
}

func TestStore_ReleaseBySlot(t *testing.T) {
	s := New(domain.SideA)
	insert(t, s, "u1")
	insert(t, s, "u2")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.releaseAtLocked(domain.SideA, 0, ReasonExplicit)
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.Username)

	_, err = s.releaseAtLocked(domain.SideA, 0, ReasonExplicit)
	assert.ErrorIs(t, err, domain.ErrAlreadyReleased)
	_, err = s.releaseAtLocked(domain.SideA, 2, ReasonExplicit)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = s.releaseAtLocked(domain.SideA, -1, ReasonExplicit)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, 1, s.live)
}

func TestStore_RetagAndTransfer(t *testing.T) {
	s := New(domain.SideA)
	id := insert(t, s, "alice")

	assert.ErrorIs(t, s.Retag(domain.SideA, id, domain.Ownership{}), domain.ErrUndefinedOwnership)

	require.NoError(t, s.Transfer(domain.SideA, id))
	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.OwnedBy(domain.SideB), got.Ownership)

	// A has given up its rights.
	assert.ErrorIs(t, s.Transfer(domain.SideA, id), domain.ErrForbiddenRelease)
	assert.ErrorIs(t, s.Release(domain.SideA, id), domain.ErrForbiddenRelease)
	assert.NoError(t, s.Release(domain.SideB, id))
}

func TestStore_CloneIsUnassignedAndOwnedByCloner(t *testing.T) {
	s := New(domain.SideA)
	id := insert(t, s, "alice")

	c, err := s.Clone(domain.SideB, id)
	require.NoError(t, err)
	assert.Zero(t, c.ID)
	assert.Equal(t, domain.OwnedBy(domain.SideB), c.Ownership)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, 1, s.Live(), "clone must not insert")

	require.NoError(t, s.Update(id, func(r *domain.UserRecord) error {
		r.ResetLogin("sess_0123456789abcdef0123456789")
		return nil
	}))
	c, err = s.Clone(domain.SideA, id)
	require.NoError(t, err)
	assert.Empty(t, c.SessionToken, "clone starts logged out")
	assert.False(t, c.IsActive)

	_, err = s.Clone(domain.SideB, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_CompactIsStableAndKeepsIDs(t *testing.T) {
	obs := newCountingObserver()
	s := New(domain.SideA, WithObserver(obs))
	for _, n := range []string{"u1", "u2", "u3", "u4", "u5"} {
		insert(t, s, n)
	}
	require.NoError(t, s.Release(domain.SideA, 2))
	require.NoError(t, s.Release(domain.SideA, 4))

	assert.Equal(t, 2, s.Compact())
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 3, s.Live())
	assert.Equal(t, []int{1, 3, 5}, s.IDs())
	assert.Equal(t, 2, obs.compacted)

	got, err := s.Get(5)
	require.NoError(t, err)
	assert.Equal(t, "u5", got.Username)

	// Idempotent.
	assert.Zero(t, s.Compact())
	assert.Equal(t, []int{1, 3, 5}, s.IDs())
}

func TestStore_IDsAreNeverReused(t *testing.T) {
	s := New(domain.SideA)
	insert(t, s, "u1")
	insert(t, s, "u2")
	require.NoError(t, s.Release(domain.SideA, 2))
	s.Compact()

	id := insert(t, s, "u3")
	assert.Equal(t, 3, id)
	assert.ErrorIs(t, s.Release(domain.SideA, 2), domain.ErrAlreadyReleased)
}

func TestStore_ReleaseAll(t *testing.T) {
	s := New(domain.SideA)
	insert(t, s, "u1")
	_, err := s.Insert(newRecord(t, "theirs", domain.SideB))
	require.NoError(t, err)
	insert(t, s, "u3")

	released, err := s.ReleaseAll(domain.SideA)
	assert.ErrorIs(t, err, domain.ErrForbiddenRelease)
	require.Len(t, released, 2)
	assert.Equal(t, "u1", released[0].Username)
	assert.Equal(t, "u3", released[1].Username)
	assert.Equal(t, []int{2}, s.IDs())
}
