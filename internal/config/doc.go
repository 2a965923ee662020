// Package config defines the userdir configuration structure.
//
// Configuration is layered by confloader: defaults, then a YAML file,
// then USERDIR_* environment variables, then command-line overrides.
package config
