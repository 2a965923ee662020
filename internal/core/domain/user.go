package domain

import (
	"strings"
)

// Record field limits, in bytes. They match the fixed-size buffers the
// peer runtime lays records out in, minus the terminator.
const (
	MaxUsernameLength = 49
	MaxEmailLength    = 49
	MaxPasswordLength = 99
	MaxTokenLength    = 31
)

// UserRecord is a single directory entry.
type UserRecord struct {
	// ID is assigned by the store at insertion and never reused.
	ID int `json:"user_id" yaml:"user_id"`

	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"-" yaml:"-" table:"-"`

	// InactivityCount is the number of maintenance days since the last login.
	InactivityCount int `json:"inactivity_count" yaml:"inactivity_count"`

	// IsActive mirrors the validity of the record's session at the last tick.
	IsActive bool `json:"is_active" yaml:"is_active"`

	// SessionToken is the token of the record's current session, if any.
	SessionToken string `json:"session_token,omitempty" yaml:"session_token,omitempty" table:"wide"`

	Ownership Ownership `json:"ownership" yaml:"ownership"`
}

// NewUserRecord creates an unassigned record owned by the creating side.
// New records start active with no session, as freshly signed-up users do.
func NewUserRecord(username, email, password string, creator Side) (*UserRecord, error) {
	if !creator.Valid() {
		return nil, ErrInvalidArgument.WithDetails("creator side is required")
	}
	r := &UserRecord{
		Username:  username,
		Email:     email,
		Password:  password,
		IsActive:  true,
		Ownership: OwnedBy(creator),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the field limits.
func (r *UserRecord) Validate() error {
	var violations []string

	if r.Username == "" {
		violations = append(violations, "username is required")
	}
	if len(r.Username) > MaxUsernameLength {
		violations = append(violations, "username exceeds 49 bytes")
	}
	if len(r.Email) > MaxEmailLength {
		violations = append(violations, "email exceeds 49 bytes")
	}
	if len(r.Password) > MaxPasswordLength {
		violations = append(violations, "password exceeds 99 bytes")
	}
	if len(r.SessionToken) > MaxTokenLength {
		violations = append(violations, "session token exceeds 31 bytes")
	}
	if !r.Ownership.IsZero() && !r.Ownership.Valid() {
		violations = append(violations, "ownership tag is undefined")
	}

	if len(violations) > 0 {
		return ErrRecordValidation.WithDetails(strings.Join(violations, "; "))
	}
	return nil
}

// SameCredentials reports whether both records carry the identical
// (username, email, password) triple.
func (r *UserRecord) SameCredentials(other *UserRecord) bool {
	return r.Username == other.Username &&
		r.Email == other.Email &&
		r.Password == other.Password
}

// Snapshot returns an exact copy, ownership included.
// Stores hand out snapshots so callers never alias a slot.
func (r *UserRecord) Snapshot() *UserRecord {
	c := *r
	return &c
}

// ResetLogin marks the record as freshly logged in with token.
func (r *UserRecord) ResetLogin(token string) {
	r.InactivityCount = 0
	r.IsActive = true
	r.SessionToken = token
}

// Deactivate clears the session binding.
func (r *UserRecord) Deactivate() {
	r.IsActive = false
	r.SessionToken = ""
}
