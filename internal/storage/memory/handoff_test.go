package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/userdir-go/internal/core/domain"
)

func TestHandoff_MovesRecord(t *testing.T) {
	src := New(domain.SideA)
	dst := New(domain.SideB)
	insert(t, dst, "existing")
	id := insert(t, src, "alice")

	newID, err := Handoff(src, dst, domain.SideA, id, domain.OwnedBy(domain.SideB))
	require.NoError(t, err)
	assert.Equal(t, 2, newID)

	assert.Zero(t, src.Live())
	got, err := dst.Get(newID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, domain.OwnedBy(domain.SideB), got.Ownership)

	_, err = Handoff(src, dst, domain.SideA, id, domain.OwnedBy(domain.SideB))
	assert.ErrorIs(t, err, domain.ErrAlreadyReleased)
}

func TestHandoff_FullDestinationChangesNothing(t *testing.T) {
	src := New(domain.SideA)
	dst := New(domain.SideB, WithCapacity(1))
	insert(t, dst, "existing")
	id := insert(t, src, "alice")

	_, err := Handoff(src, dst, domain.SideA, id, domain.OwnedBy(domain.SideB))
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	assert.Equal(t, []int{id}, src.IDs())
	assert.Equal(t, 1, dst.Live())
}

func TestHandoff_Rejections(t *testing.T) {
	src := New(domain.SideA)
	dst := New(domain.SideB)
	id := insert(t, src, "alice")

	_, err := Handoff(src, dst, domain.SideB, id, domain.OwnedBy(domain.SideB))
	assert.ErrorIs(t, err, domain.ErrForbiddenRelease)

	_, err = Handoff(src, dst, domain.SideA, id, domain.Ownership{})
	assert.ErrorIs(t, err, domain.ErrUndefinedOwnership)

	_, err = Handoff(src, src, domain.SideA, id, domain.OwnedBy(domain.SideB))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = Handoff(nil, dst, domain.SideA, id, domain.OwnedBy(domain.SideB))
	assert.ErrorIs(t, err, domain.ErrMissingArgument)

	_, err = Handoff(src, dst, domain.SideA, 9, domain.OwnedBy(domain.SideB))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []int{id}, src.IDs())
	assert.Zero(t, dst.Live())
}

func TestHandoff_PullByNonOwnerLeavesSourceIntact(t *testing.T) {
	src := New(domain.SideB)
	dst := New(domain.SideA)
	owned := insert(t, src, "erin")
	shared := insert(t, src, "grace")
	require.NoError(t, src.Share(domain.SideB, shared))

	for _, id := range []int{owned, shared} {
		_, err := Handoff(src, dst, domain.SideA, id, domain.OwnedBy(domain.SideA))
		assert.ErrorIs(t, err, domain.ErrForbiddenRelease, "user_id=%d", id)
	}

	assert.Equal(t, []int{owned, shared}, src.IDs())
	got, err := src.Get(shared)
	require.NoError(t, err)
	assert.Equal(t, domain.SharedWith(domain.SideB), got.Ownership)
	assert.Zero(t, dst.Live())
}
