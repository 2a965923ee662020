// Package repl implements the interactive shell of userdir: a line-based
// loop that runs directory operations against one live directory.
//
//   - repl.go: the loop and command dispatch
//   - commands.go: the shell commands
//   - completer.go: prefix completion over command names
//   - history.go: command history with optional file persistence
package repl
