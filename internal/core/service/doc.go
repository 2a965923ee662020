// Package service provides the directory services.
//
// This package contains:
//
//   - SessionManager: session table bound to one record store
//   - Maintainer: the day-driven maintenance tick
//   - Directory: the facade one side of the boundary drives
//
// Services depend on small store interfaces so the record store can be
// swapped in tests; the directory wires the concrete memory store.
package service
