// Package command defines the userdir command line using urfave/cli/v2.
//
//   - root.go: application, global flags, shared helpers
//   - simulate.go: the simulate command and its day loop
//   - scenario.go: the built-in scenarios
//   - report.go: the simulation report and its table rendering
//   - shell.go: the interactive shell over one directory
//   - config.go: configuration inspection
//   - version.go: build information
//
// Commands write to the application's Writer and log to its ErrWriter,
// so they can be driven from tests.
package command
