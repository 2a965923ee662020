package token

import (
	"strings"
	"testing"
	"time"
)

func TestDerive_Format(t *testing.T) {
	tok := Derive("alice", time.Unix(1700000000, 0))

	if len(tok) != Length {
		t.Errorf("len(token) = %d, want %d", len(tok), Length)
	}
	if !strings.HasPrefix(tok, Prefix) {
		t.Errorf("token %q missing prefix %q", tok, Prefix)
	}
	if !IsWellFormed(tok) {
		t.Errorf("IsWellFormed(%q) = false", tok)
	}
}

func TestDerive_Deterministic(t *testing.T) {
	at := time.Unix(1700000000, 42)

	if Derive("bob", at) != Derive("bob", at) {
		t.Error("Derive should be deterministic for the same input")
	}
	if Derive("bob", at) == Derive("bob", at.Add(time.Nanosecond)) {
		t.Error("Derive should change with the timestamp")
	}
	if Derive("bob", at) == Derive("bobby", at) {
		t.Error("Derive should change with the username")
	}
}

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"sess_", false},
		{"sess_zzzzzzzzzzzzzzzzzzzzzzzzzz", false},
		{"tmtk_0123456789abcdef0123456789", false},
		{"sess_0123456789abcdef0123456789", false},
		{"sess_0123456789abcdef0123456789"[:Length], true},
	}

	for _, tt := range tests {
		if got := IsWellFormed(tt.in); got != tt.want {
			t.Errorf("IsWellFormed(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("hunter2", "hunter2") {
		t.Error("Equal should accept identical secrets")
	}
	if Equal("hunter2", "hunter3") {
		t.Error("Equal should reject different secrets")
	}
	if Equal("hunter2", "hunter22") {
		t.Error("Equal should reject different lengths")
	}
}
