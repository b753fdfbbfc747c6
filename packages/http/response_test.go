package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponse_IsSuccess(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   bool
	}{
		{200, true},
		{201, true},
		{204, true},
		{299, true},
		{300, false},
		{400, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		resp := &Response{StatusCode: tt.statusCode}
		assert.Equal(t, tt.expected, resp.IsSuccess(), "StatusCode: %d", tt.statusCode)
	}
}

func TestResponse_IsJSON(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/html", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		resp := &Response{Headers: http.Header{"Content-Type": {tt.contentType}}}
		assert.Equal(t, tt.expected, resp.IsJSON(), "Content-Type: %s", tt.contentType)
	}
}

func TestResponse_Reason(t *testing.T) {
	assert.Equal(t, "Not Found", (&Response{StatusCode: 404, Status: "404 Not Found"}).Reason())
	assert.Equal(t, "Found", (&Response{StatusCode: 302, Status: "302"}).Reason())
	assert.Equal(t, "", (&Response{StatusCode: 299, Status: "299"}).Reason())
}

func TestResponse_Location(t *testing.T) {
	headers := http.Header{"Location": {"/next"}}
	assert.Equal(t, "/next", (&Response{StatusCode: 302, Headers: headers}).Location())
	assert.Equal(t, "", (&Response{StatusCode: 200, Headers: headers}).Location())
}

func TestResponse_HeaderValues(t *testing.T) {
	resp := &Response{Headers: http.Header{"Set-Cookie": {"a=1", "b=2"}}}
	assert.Equal(t, "a=1", resp.Header("set-cookie"))
	assert.Equal(t, []string{"a=1", "b=2"}, resp.HeaderValues("Set-Cookie"))
}

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{StatusCode: 503, Status: "Service Unavailable", Query: "/x"}
	assert.Equal(t, "503 Service Unavailable /x", err.Error())
}
