// Package metric provides Prometheus metrics for userdir.
//
// Registry owns a private prometheus.Registry and implements the observer
// interfaces of the record store, the boundary protocol, the session
// manager and the maintainer, so one value can be handed to a directory
// and collects everything. WriteText renders the current values in the
// Prometheus text exposition format.
package metric
