package token

import (
	"encoding/hex"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Prefix marks session tokens so the logger can mask them.
const Prefix = "sess_"

// Length is the total token length in bytes.
const Length = 31

// Derive builds the session token for username logging in at.
func Derive(username string, at time.Time) string {
	buf := make([]byte, 0, len(username)+1+20)
	buf = append(buf, username...)
	buf = append(buf, 0)
	buf = strconv.AppendInt(buf, at.UnixNano(), 10)

	sum := blake2b.Sum256(buf)
	body := hex.EncodeToString(sum[:])
	return Prefix + body[:Length-len(Prefix)]
}

// IsWellFormed reports whether s has the token shape.
func IsWellFormed(s string) bool {
	if len(s) != Length || s[:len(Prefix)] != Prefix {
		return false
	}
	_, err := hex.DecodeString(s[len(Prefix):])
	return err == nil
}
