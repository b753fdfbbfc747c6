package http

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFormContentType is returned when FormFields are sent with a content
// type that is not application/octet-stream. The fields would otherwise be
// dropped.
var ErrFormContentType = errors.New("http: form fields require an application/octet-stream content type")

// StatusError reports an HTTP status the session does not accept.
type StatusError struct {
	StatusCode int
	Status     string
	Query      string
	Payload    string
	Body       string
}

func (e *StatusError) Error() string {
	parts := []string{fmt.Sprintf("%d", e.StatusCode)}
	for _, p := range []string{e.Status, e.Query, e.Payload, e.Body} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func newStatusError(resp *Response, query, payload string) *StatusError {
	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Reason(),
		Query:      query,
		Payload:    payload,
		Body:       resp.BodyString(),
	}
}

// StatusCode extracts the status code from a *StatusError anywhere in err's
// chain. It returns 0 when err carries no status.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Result is the outcome of a DELETE. Exactly one of Body (success) or
// Failure is meaningful.
type Result struct {
	StatusCode int
	Body       []byte
	Failure    *StatusError
}

func (r *Result) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil on success
func (r *Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}
