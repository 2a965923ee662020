package domain

import "fmt"

// Side identifies one of the two runtimes sharing the directory.
type Side uint8

const (
	// SideA is the runtime that hosts the session manager and maintenance.
	SideA Side = iota + 1
	// SideB is the peer runtime.
	SideB
)

// ParseSide converts "a"/"b" (any case) to a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "a", "A":
		return SideA, nil
	case "b", "B":
		return SideB, nil
	default:
		return 0, ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown side %q", s))
	}
}

// Valid reports whether s is SideA or SideB.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s Side) String() string {
	switch s {
	case SideA:
		return "a"
	case SideB:
		return "b"
	default:
		return "unknown"
	}
}

// OwnershipKind classifies how a record is held.
type OwnershipKind uint8

const (
	// Exclusive records are owned by exactly one side.
	Exclusive OwnershipKind = iota + 1
	// Shared records are visible to both sides; only the primary may release.
	Shared
)

// Ownership is the tag stored on every record.
//
// For Exclusive records Primary is the owner. For Shared records Primary
// is the side with release rights; the other side only borrows.
type Ownership struct {
	Kind    OwnershipKind
	Primary Side
}

// OwnedBy returns the exclusive tag for side.
func OwnedBy(side Side) Ownership {
	return Ownership{Kind: Exclusive, Primary: side}
}

// SharedWith returns a shared tag whose release rights belong to primary.
func SharedWith(primary Side) Ownership {
	return Ownership{Kind: Shared, Primary: primary}
}

// IsZero reports whether the tag was never set.
func (o Ownership) IsZero() bool {
	return o.Kind == 0 && o.Primary == 0
}

// Valid reports whether the tag names a known kind and side.
func (o Ownership) Valid() bool {
	return (o.Kind == Exclusive || o.Kind == Shared) && o.Primary.Valid()
}

// CanRelease reports whether side holds release rights.
func (o Ownership) CanRelease(side Side) bool {
	return o.Valid() && o.Primary == side
}

// IsBorrower reports whether side only borrows the record.
func (o Ownership) IsBorrower(side Side) bool {
	return o.Kind == Shared && o.Primary != side
}

func (o Ownership) String() string {
	switch o.Kind {
	case Exclusive:
		return "owned-by-" + o.Primary.String()
	case Shared:
		return "shared(primary=" + o.Primary.String() + ")"
	default:
		return "undefined"
	}
}

// MarshalText renders the tag in its String form for reports.
func (o Ownership) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
