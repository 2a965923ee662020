// Package memory provides the in-memory record store.
//
// A Store is a fixed-capacity slot table. Slots [0, Count) are either a
// live record or a tombstone left by a release; Compact closes the gaps.
// Identity is the record ID, which survives compaction. Slot positions do
// not, so every lookup from outside the store goes through ID, username
// or session token, and every read returns a snapshot.
//
// Each mutation runs under the store mutex as a single step. Release,
// retag and handoff consult the boundary protocol first.
package memory
