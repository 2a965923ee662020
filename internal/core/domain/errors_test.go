package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("UD-TEST-1000", "test message"),
			expected: "[UD-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("UD-TEST-1001", "test message").WithDetails("user_id=4"),
			expected: "[UD-TEST-1001] test message: user_id=4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	detailed := ErrForbiddenRelease.WithDetails("user_id=3 held by b")

	if !errors.Is(detailed, ErrForbiddenRelease) {
		t.Error("errors.Is should match the sentinel after WithDetails")
	}
	if errors.Is(detailed, ErrAlreadyReleased) {
		t.Error("errors.Is should not match a different code")
	}
	if errors.Is(detailed, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_IsThroughJoin(t *testing.T) {
	joined := errors.Join(
		ErrForbiddenRelease.WithDetails("user_id=1"),
		ErrInconsistent.WithDetails("user_id=2"),
	)

	if !errors.Is(joined, ErrForbiddenRelease) {
		t.Error("joined error should contain ErrForbiddenRelease")
	}
	if !errors.Is(joined, ErrInconsistent) {
		t.Error("joined error should contain ErrInconsistent")
	}
	if errors.Is(joined, ErrStaleHandle) {
		t.Error("joined error should not contain ErrStaleHandle")
	}
}

func TestDomainError_WithCauseKeepsOriginal(t *testing.T) {
	cause := fmt.Errorf("root cause")
	wrapped := ErrInternal.WithCause(cause)

	if ErrInternal.Cause != nil {
		t.Error("WithCause should not modify the sentinel")
	}
	if errors.Unwrap(wrapped) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(wrapped), cause)
	}
}

func TestIsDomainErrorAndCode(t *testing.T) {
	if !IsDomainError(ErrStaleHandle, "UD-OWN-4101") {
		t.Error("IsDomainError should match the code")
	}
	if !IsDomainError(ErrStaleHandle, "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}
	if IsDomainError(fmt.Errorf("plain"), "") {
		t.Error("IsDomainError should reject plain errors")
	}
	if got := GetErrorCode(fmt.Errorf("wrapped: %w", ErrNotFound)); got != "UD-REC-4040" {
		t.Errorf("GetErrorCode() = %q, want UD-REC-4040", got)
	}
	if got := GetErrorCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetErrorCode() = %q, want empty", got)
	}
}
