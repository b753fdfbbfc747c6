package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Response is the last exchange a Session saw. Body is already decoded from
// any Content-Encoding; redirects are never followed, so a 3xx response is
// kept as-is with its Location.
type Response struct {
	// Method and RequestURI describe the request as it went on the wire,
	// query string included
	Method     string
	RequestURI string
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header returns the first value of key, matched case-insensitively
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

// HeaderValues returns every value of key
func (r *Response) HeaderValues(key string) []string {
	return r.Headers.Values(key)
}

// Location is the redirect target of a 3xx response, or ""
func (r *Response) Location() string {
	if !r.IsRedirect() {
		return ""
	}
	return r.Header("Location")
}

// Reason is the reason phrase of the status line ("Not Found" for a 404).
// Servers that send a bare code get the canonical text.
func (r *Response) Reason() string {
	reason := strings.TrimSpace(strings.TrimPrefix(r.Status, strconv.Itoa(r.StatusCode)))
	if reason == "" {
		return http.StatusText(r.StatusCode)
	}
	return reason
}

// IsJSON reports whether the server labelled the body as JSON, including
// vendor types such as application/problem+json
func (r *Response) IsJSON() bool {
	ct := r.Header("Content-Type")
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
