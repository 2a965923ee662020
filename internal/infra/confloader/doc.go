// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Overrides loaded with LoadMap (command-line flags)
//  2. Environment variables
//  3. Configuration file (YAML)
//  4. Values already present in the target struct
package confloader
