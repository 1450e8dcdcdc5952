// Package config loads envedit settings.
//
// Settings come from three layers, later ones winning:
//   - built-in defaults
//   - $XDG_CONFIG_HOME/envedit/config.toml
//   - ENVEDIT_* environment variables
//
// Command-line flags are applied on top by the caller.
package config
