// Package token provides session token derivation and comparison.
//
// Token Format:
//
//   - Prefix: sess_ (5 characters)
//   - Body: 26 hex characters of a BLAKE2b-256 digest
//   - Total: 31 characters, the peer runtime's token buffer minus its terminator
//
// Tokens are a deterministic function of the username and the login
// instant. Collisions require the same user logging in twice within the
// same nanosecond, which the session table tolerates.
package token
