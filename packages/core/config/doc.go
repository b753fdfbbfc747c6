// Package config handles session profile loading for the webbrowser CLI.
//
// It provides functionality for:
//   - Loading a profile from .webbrowser.json / .webbrowser.yaml files
//   - Default configuration values
//   - Merging profiles with command line overrides
//   - ${VAR} expansion of string values
package config
