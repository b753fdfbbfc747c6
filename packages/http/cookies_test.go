package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSetCookie(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected map[string]string
	}{
		{
			name:     "single pair",
			line:     "session=abc",
			expected: map[string]string{"session": "abc"},
		},
		{
			name:     "several pairs",
			line:     "a=1; b=2; c=3",
			expected: map[string]string{"a": "1", "b": "2", "c": "3"},
		},
		{
			name:     "value keeps everything after the first equals",
			line:     "token=YWJj==; sig=k=v",
			expected: map[string]string{"token": "YWJj==", "sig": "k=v"},
		},
		{
			name:     "attributes are recorded like pairs",
			line:     "id=7; path=/; HttpOnly",
			expected: map[string]string{"id": "7", "path": "/", "HttpOnly": ""},
		},
		{
			name:     "empty value",
			line:     "cleared=",
			expected: map[string]string{"cleared": ""},
		},
		{
			name:     "empty line",
			line:     "",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSetCookie(tt.line))
		})
	}
}

func TestSession_SaveCookies(t *testing.T) {
	jars := []map[string]string{
		{"a": "1"},
		{"session": "abc", "user": "bob", "csrf": "x=y=z"},
		{"empty": "", "n": "0"},
	}

	for _, jar := range jars {
		// one pair per Set-Cookie line
		perLine := New("example.com")
		header := make(http.Header)
		for k, v := range jar {
			header.Add("Set-Cookie", k+"="+v)
		}
		perLine.SaveCookies(header)
		assert.Equal(t, jar, perLine.Cookies())

		// all pairs joined into one line
		joined := New("example.com")
		pairs := make([]string, 0, len(jar))
		for k, v := range jar {
			pairs = append(pairs, k+"="+v)
		}
		joined.SaveCookies(http.Header{"Set-Cookie": {strings.Join(pairs, "; ")}})
		assert.Equal(t, jar, joined.Cookies())
	}
}

func TestSession_SaveCookiesOverwrites(t *testing.T) {
	s := New("example.com", WithCookies(map[string]string{"session": "old", "keep": "1"}))
	s.SaveCookies(http.Header{"Set-Cookie": {"session=new"}})

	assert.Equal(t, map[string]string{"session": "new", "keep": "1"}, s.Cookies())
}

func TestSession_AddCookies(t *testing.T) {
	s := New("example.com")
	s.AddCookies(map[string]string{"a": "1", "b": "2"})
	s.AddCookies(map[string]string{"b": "3"})
	s.AddCookies(nil)

	assert.Equal(t, map[string]string{"a": "1", "b": "3"}, s.Cookies())
}

func TestSession_CookiesIsACopy(t *testing.T) {
	s := New("example.com", WithCookies(map[string]string{"a": "1"}))
	jar := s.Cookies()
	jar["a"] = "changed"

	assert.Equal(t, "1", s.Cookies()["a"])
}

func TestFormatCookies(t *testing.T) {
	assert.Equal(t, "", FormatCookies(nil))
	assert.Equal(t, "a=1", FormatCookies(map[string]string{"a": "1"}))
	assert.Equal(t, "a=1; b=; c=3", FormatCookies(map[string]string{"c": "3", "a": "1", "b": ""}))
}

func TestCookiesString_RoundTrip(t *testing.T) {
	jar := map[string]string{"session": "abc123", "theme": "dark", "lang": "en-NZ"}
	s := New("example.com", WithCookies(jar))

	parsed := make(map[string]string)
	for _, pair := range strings.Split(s.CookiesString(), "; ") {
		name, value, _ := strings.Cut(pair, "=")
		parsed[name] = value
	}
	assert.Equal(t, jar, parsed)
}
