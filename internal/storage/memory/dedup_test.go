package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/userdir-go/internal/core/domain"
)

func insertTriple(t *testing.T, s *Store, owner domain.Side, username, email, password string) int {
	t.Helper()
	rec, err := domain.NewUserRecord(username, email, password, owner)
	require.NoError(t, err)
	id, err := s.Insert(rec)
	require.NoError(t, err)
	return id
}

func TestDeduplicate_EarliestSurvives(t *testing.T) {
	s := New(domain.SideA)
	insertTriple(t, s, domain.SideA, "alice", "a@x", "pw")
	insertTriple(t, s, domain.SideA, "bob", "b@x", "pw")
	insertTriple(t, s, domain.SideA, "alice", "a@x", "pw")
	insertTriple(t, s, domain.SideA, "alice", "a@x", "other")
	insertTriple(t, s, domain.SideA, "alice", "a@x", "pw")

	released, err := s.Deduplicate(domain.SideA)
	require.NoError(t, err)

	ids := make([]int, 0, len(released))
	for _, r := range released {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []int{3, 5}, ids)
	assert.Equal(t, []int{1, 2, 4}, s.IDs())
}

func TestDeduplicate_Idempotent(t *testing.T) {
	s := New(domain.SideA)
	insertTriple(t, s, domain.SideA, "alice", "a@x", "pw")
	insertTriple(t, s, domain.SideA, "alice", "a@x", "pw")

	_, err := s.Deduplicate(domain.SideA)
	require.NoError(t, err)

	released, err := s.Deduplicate(domain.SideA)
	require.NoError(t, err)
	assert.Empty(t, released)
	assert.Equal(t, []int{1}, s.IDs())
}

func TestDeduplicate_SkipsTombstones(t *testing.T) {
	s := New(domain.SideA)
	insertTriple(t, s, domain.SideA, "alice", "a@x", "pw")
	insertTriple(t, s, domain.SideA, "alice", "a@x", "pw")
	require.NoError(t, s.Release(domain.SideA, 1))

	released, err := s.Deduplicate(domain.SideA)
	require.NoError(t, err)
	assert.Empty(t, released)
	assert.Equal(t, []int{2}, s.IDs())
}

func TestDeduplicate_ForbiddenDuplicateStaysAndPassContinues(t *testing.T) {
	s := New(domain.SideA)
	insertTriple(t, s, domain.SideA, "alice", "a@x", "pw")
	insertTriple(t, s, domain.SideB, "alice", "a@x", "pw")
	insertTriple(t, s, domain.SideA, "alice", "a@x", "pw")

	released, err := s.Deduplicate(domain.SideA)
	assert.ErrorIs(t, err, domain.ErrForbiddenRelease)
	require.Len(t, released, 1)
	assert.Equal(t, 3, released[0].ID)
	assert.Equal(t, []int{1, 2}, s.IDs())
}

func TestFingerprint_SeparatesFields(t *testing.T) {
	a := &domain.UserRecord{Username: "ab", Email: "c"}
	b := &domain.UserRecord{Username: "a", Email: "bc"}
	assert.NotEqual(t, fingerprint(a), fingerprint(b))
	assert.Equal(t, fingerprint(a), fingerprint(a.Snapshot()))
}
