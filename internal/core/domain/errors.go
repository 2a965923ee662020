package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes follow the format UD-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "UD-REC-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support by comparing codes.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Record Errors (REC)
// ============================================================================

var (
	// ErrNotFound indicates a lookup matched no live record.
	ErrNotFound = NewDomainError("UD-REC-4040", "record not found")

	// ErrCapacityExceeded indicates the record store has no free slot.
	ErrCapacityExceeded = NewDomainError("UD-REC-5070", "record store capacity exceeded")

	// ErrRecordValidation indicates record fields violate constraints.
	ErrRecordValidation = NewDomainError("UD-REC-4001", "record validation failed")

	// ErrInvalidCredentials indicates a password mismatch on login.
	ErrInvalidCredentials = NewDomainError("UD-REC-4010", "invalid credentials")
)

// ============================================================================
// Ownership Errors (OWN)
// ============================================================================

var (
	// ErrForbiddenRelease indicates a side tried to release, retag or hand off
	// a record it holds no release rights over.
	ErrForbiddenRelease = NewDomainError("UD-OWN-4030", "release forbidden for this side")

	// ErrAlreadyReleased indicates the slot or identity was released before.
	ErrAlreadyReleased = NewDomainError("UD-OWN-4100", "record already released")

	// ErrStaleHandle indicates a borrowed handle no longer resolves to the
	// identity it was taken for.
	ErrStaleHandle = NewDomainError("UD-OWN-4101", "stale record handle")

	// ErrUndefinedOwnership indicates a record carries no valid tag.
	ErrUndefinedOwnership = NewDomainError("UD-OWN-4002", "undefined ownership")
)

// ============================================================================
// Session Errors (SESS)
// ============================================================================

var (
	// ErrSessionLimitExceeded indicates the session table is full.
	ErrSessionLimitExceeded = NewDomainError("UD-SESS-5070", "session limit exceeded")

	// ErrSessionNotFound indicates no active session matches the token.
	ErrSessionNotFound = NewDomainError("UD-SESS-4040", "session not found")

	// ErrInconsistent indicates a session references a record no store holds.
	ErrInconsistent = NewDomainError("UD-SESS-5001", "session references a missing record")
)

// ============================================================================
// System and Argument Errors
// ============================================================================

var (
	// ErrDirectoryClosed indicates the directory was torn down.
	ErrDirectoryClosed = NewDomainError("UD-SYS-5030", "directory closed")

	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = NewDomainError("UD-SYS-5000", "internal error")

	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("UD-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("UD-ARG-1002", "missing required argument")
)
