// Package main provides the entry point for userdir.
//
// userdir drives an in-memory user directory through simulated days of
// logins and maintenance and prints the resulting database:
//
//	userdir simulate --scenario lifecycle --days 8
//	userdir -o json simulate --scenario handoff --metrics
//	userdir --config userdir.yaml config show
//	userdir version
//
// Configuration is read from an optional YAML file, then USERDIR_*
// environment variables, then command line flags.
package main
