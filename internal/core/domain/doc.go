// Package domain defines the core domain models for userdir.
//
// Domain models are pure value objects without any IO dependencies
// or framework coupling. This package contains:
//
//   - Side and Ownership: which runtime may release a record
//   - UserRecord: a directory entry and its lifecycle fields
//   - SessionEntry: a login session bound to a record by token
//   - Errors: domain error definitions with stable codes
//
// Records handed out of a store are snapshots; nothing outside the
// store holds a pointer into its slot table.
package domain
