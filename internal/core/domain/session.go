package domain

// SessionEntry is one row of the session table.
type SessionEntry struct {
	UserID   int    `json:"user_id" yaml:"user_id"`
	Username string `json:"username" yaml:"username"`
	Token    string `json:"session_token" yaml:"session_token"`
	Active   bool   `json:"is_active" yaml:"is_active"`

	// IdleTime counts validations since the session was created.
	IdleTime int `json:"idle_time" yaml:"idle_time"`
}

// Clone returns a copy of the entry.
func (e *SessionEntry) Clone() *SessionEntry {
	c := *e
	return &c
}

// Validation is the outcome of validating a session token.
type Validation uint8

const (
	// NotFound means no active entry carries the token.
	NotFound Validation = iota
	// Fresh means the session is within its idle threshold.
	Fresh
	// Expired means the session just crossed its idle threshold.
	Expired
)

func (v Validation) String() string {
	switch v {
	case Fresh:
		return "fresh"
	case Expired:
		return "expired"
	default:
		return "not_found"
	}
}
