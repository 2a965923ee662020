package token

import "crypto/subtle"

// Equal compares two secrets in constant time.
//
// Used for password checks on login so response timing does not leak
// how much of a guess matched.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
