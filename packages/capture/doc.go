// Package capture extracts values from a session response for display or
// scripting.
//
// Values can come from:
//   - The JSON body, addressed with a gjson path (e.g. "data.token")
//   - A response header
//   - The status code or duration
package capture
