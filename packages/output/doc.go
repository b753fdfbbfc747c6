// Package output renders request exchanges for the webbrowser CLI.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//   - Body: The decoded response body only, for piping
//
// Each formatter implements the Formatter interface. JSON accumulates
// exchanges and writes them on Flush.
package output
