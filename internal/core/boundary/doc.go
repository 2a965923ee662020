// Package boundary implements the ownership protocol shared by both sides.
//
// Every path that frees, clones or retags a record consults a Protocol:
//
//   - Release: only the side holding release rights may free a record.
//     Exclusive records belong to their owner; shared records to their primary.
//   - Clone: copies every field except the tag; the clone is owned by the
//     cloning side and is a new entity, never an alias.
//   - Retag: transfers or shares a record; only the releasing side may do it.
//
// Violations are returned as domain errors and counted by the observer.
// Nothing is silently skipped.
package boundary
