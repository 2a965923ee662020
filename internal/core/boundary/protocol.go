package boundary

import (
	"fmt"

	"github.com/yndnr/userdir-go/internal/core/domain"
)

// Violation kinds reported to the observer.
const (
	ViolationForbiddenRelease = "forbidden_release"
	ViolationAlreadyReleased  = "already_released"
	ViolationStaleHandle      = "stale_handle"
	ViolationUndefinedOwner   = "undefined_ownership"
)

// Observer receives protocol violations.
type Observer interface {
	ProtocolViolation(kind string)
}

type nopObserver struct{}

func (nopObserver) ProtocolViolation(string) {}

// Protocol checks release, clone and retag requests against record tags.
// The zero value is usable and reports violations nowhere.
type Protocol struct {
	observer Observer
}

// New creates a Protocol that reports violations to obs.
func New(obs Observer) *Protocol {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Protocol{observer: obs}
}

func (p *Protocol) report(kind string) {
	if p == nil || p.observer == nil {
		return
	}
	p.observer.ProtocolViolation(kind)
}

// CheckRelease verifies that side by may free rec.
// A nil rec is a slot that was already tombstoned.
func (p *Protocol) CheckRelease(rec *domain.UserRecord, by domain.Side) error {
	if rec == nil {
		p.report(ViolationAlreadyReleased)
		return domain.ErrAlreadyReleased
	}
	if !rec.Ownership.Valid() {
		p.report(ViolationUndefinedOwner)
		return domain.ErrUndefinedOwnership.WithDetails(fmt.Sprintf("user_id=%d", rec.ID))
	}
	if !rec.Ownership.CanRelease(by) {
		p.report(ViolationForbiddenRelease)
		return domain.ErrForbiddenRelease.WithDetails(
			fmt.Sprintf("user_id=%d is %s, release requested by %s", rec.ID, rec.Ownership, by))
	}
	return nil
}

// CheckRetag verifies that side by may change rec's tag to to.
// Retagging requires the same rights as releasing.
func (p *Protocol) CheckRetag(rec *domain.UserRecord, by domain.Side, to domain.Ownership) error {
	if !to.Valid() {
		p.report(ViolationUndefinedOwner)
		return domain.ErrUndefinedOwnership.WithDetails("target tag " + to.String())
	}
	return p.CheckRelease(rec, by)
}

// Clone returns a new record with rec's fields, owned by the cloning side.
// The copy carries no session binding.
func (p *Protocol) Clone(rec *domain.UserRecord, by domain.Side) (*domain.UserRecord, error) {
	if rec == nil {
		p.report(ViolationAlreadyReleased)
		return nil, domain.ErrAlreadyReleased
	}
	if !by.Valid() {
		return nil, domain.ErrInvalidArgument.WithDetails("cloning side is required")
	}
	c := rec.Snapshot()
	c.Ownership = domain.OwnedBy(by)
	c.Deactivate()
	return c, nil
}

// StaleHandle records and returns a stale-handle error for id.
func (p *Protocol) StaleHandle(id int) error {
	p.report(ViolationStaleHandle)
	return domain.ErrStaleHandle.WithDetails(fmt.Sprintf("user_id=%d", id))
}

// AlreadyReleased records and returns an already-released error for id.
func (p *Protocol) AlreadyReleased(id int) error {
	p.report(ViolationAlreadyReleased)
	return domain.ErrAlreadyReleased.WithDetails(fmt.Sprintf("user_id=%d", id))
}
