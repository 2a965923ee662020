// Package logger provides structured logging for userdir.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: construction, level parsing, directory tagging, process default
//   - context.go: context propagation of the logger and tick id
//   - redact.go: masking of credentials and session tokens
package logger
