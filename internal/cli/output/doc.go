// Package output renders directory snapshots and simulation reports for
// the userdir command line.
//
// Three formats are supported: an aligned table for terminals, and JSON
// or YAML for scripting. Table columns are derived from struct tags:
// fields tagged `table:"-"` are never shown and fields tagged
// `table:"wide"` only appear in wide mode.
package output
