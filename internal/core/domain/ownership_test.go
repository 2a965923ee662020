package domain

import "testing"

func TestOwnership_CanRelease(t *testing.T) {
	tests := []struct {
		name     string
		tag      Ownership
		side     Side
		release  bool
		borrower bool
	}{
		{"owner a releases own", OwnedBy(SideA), SideA, true, false},
		{"b cannot release a-owned", OwnedBy(SideA), SideB, false, false},
		{"owner b releases own", OwnedBy(SideB), SideB, true, false},
		{"shared primary releases", SharedWith(SideB), SideB, true, false},
		{"shared secondary only borrows", SharedWith(SideB), SideA, false, true},
		{"zero tag releases nothing", Ownership{}, SideA, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tag.CanRelease(tt.side); got != tt.release {
				t.Errorf("CanRelease(%s) = %v, want %v", tt.side, got, tt.release)
			}
			if got := tt.tag.IsBorrower(tt.side); got != tt.borrower {
				t.Errorf("IsBorrower(%s) = %v, want %v", tt.side, got, tt.borrower)
			}
		})
	}
}

func TestOwnership_String(t *testing.T) {
	if got := OwnedBy(SideA).String(); got != "owned-by-a" {
		t.Errorf("String() = %q", got)
	}
	if got := SharedWith(SideB).String(); got != "shared(primary=b)" {
		t.Errorf("String() = %q", got)
	}
	if got := (Ownership{}).String(); got != "undefined" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseSide(t *testing.T) {
	for _, in := range []string{"a", "A"} {
		if s, err := ParseSide(in); err != nil || s != SideA {
			t.Errorf("ParseSide(%q) = %v, %v", in, s, err)
		}
	}
	if s, err := ParseSide("b"); err != nil || s != SideB {
		t.Errorf("ParseSide(b) = %v, %v", s, err)
	}
	if _, err := ParseSide("c"); !IsDomainError(err, "UD-ARG-1001") {
		t.Errorf("ParseSide(c) err = %v, want invalid argument", err)
	}
	if SideA.Other() != SideB || SideB.Other() != SideA {
		t.Error("Other() should flip sides")
	}
}
