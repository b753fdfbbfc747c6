// Package cmd implements the webbrowser CLI commands using Cobra.
//
// Available commands:
//   - get: GET one or more paths in one session
//   - post, put: Send a raw body or form fields
//   - delete: DELETE one or more paths
//   - inputs: List the form inputs of an HTML page
//   - link: Find (and optionally follow) the URL$1 link of a page
//   - init: Write a session profile
//   - version: Show version information
//
// Connection, credential and output settings come from persistent flags,
// WEBBROWSER_* environment variables and an optional config file, in that
// order of precedence.
package cmd
