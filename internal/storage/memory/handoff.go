package memory

import (
	"fmt"

	"github.com/yndnr/userdir-go/internal/core/domain"
)

// Handoff moves a record from src to dst under the tag to, as one step.
// Side by must hold release rights on the record in src. The record gets
// a fresh ID in dst, which is returned. When dst is full nothing changes.
func Handoff(src, dst *Store, by domain.Side, id int, to domain.Ownership) (int, error) {
	if src == nil || dst == nil {
		return 0, domain.ErrMissingArgument.WithDetails("source and destination stores are required")
	}
	if src == dst {
		return 0, domain.ErrInvalidArgument.WithDetails("handoff within one store, use Retag")
	}

	first, second := src, dst
	if dst.serial < src.serial {
		first, second = dst, src
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	slot := src.slotOfLocked(id)
	if slot < 0 {
		if id > 0 && id <= src.lastID {
			return 0, src.protocol.AlreadyReleased(id)
		}
		return 0, domain.ErrNotFound.WithDetails(fmt.Sprintf("user_id=%d", id))
	}
	if err := src.protocol.CheckRetag(src.slots[slot], by, to); err != nil {
		return 0, err
	}
	if dst.count >= len(dst.slots) {
		return 0, domain.ErrCapacityExceeded.WithDetails(
			fmt.Sprintf("%s holds %d slots", dst.name, len(dst.slots)))
	}

	moved := src.slots[slot].Snapshot()
	moved.Ownership = to
	if _, err := src.releaseAtLocked(by, slot, ReasonHandoff); err != nil {
		return 0, err
	}
	dst.appendLocked(moved)
	return moved.ID, nil
}
