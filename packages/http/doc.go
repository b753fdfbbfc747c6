// Package http provides a cookie-aware HTTP session for scripted interactions
// with a single web host.
//
// A Session wraps the standard library's http package with:
//   - Scoped connection management (Open/Close, Do, HTTPSession, HTTPSSession)
//   - Optional certificate verification for self-signed embedded devices
//   - A cookie jar fed from Set-Cookie headers and replayed on every request
//   - Browser-like default headers with per-request overrides
//   - GET/POST/PUT/DELETE helpers that classify status codes
//   - Basic and Bearer authorization helpers
//   - A debug wire trace
//
// Redirects are never followed; a 302 is reported as an empty result.
// A Session is not safe for concurrent use; create one per goroutine.
package http
