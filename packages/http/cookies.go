package http

import (
	"net/http"
	"sort"
	"strings"
)

// AddCookies merges cookies into the jar, replacing same-named entries
func (s *Session) AddCookies(cookies map[string]string) {
	for k, v := range cookies {
		s.cookies[k] = v
	}
}

// SaveCookies records every Set-Cookie line of header in the jar
func (s *Session) SaveCookies(header http.Header) {
	for _, line := range header.Values("Set-Cookie") {
		for name, value := range ParseSetCookie(line) {
			s.cookies[name] = value
		}
	}
}

// Cookies returns a copy of the jar
func (s *Session) Cookies() map[string]string {
	result := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		result[k] = v
	}
	return result
}

// CookiesString renders the jar as a Cookie header value
func (s *Session) CookiesString() string {
	return FormatCookies(s.cookies)
}

// ParseSetCookie splits a Set-Cookie line on "; " and each segment at its
// first '='. Attribute segments such as "path=/" are returned like any other
// pair; a segment without '=' maps to an empty value.
func ParseSetCookie(line string) map[string]string {
	result := make(map[string]string)
	for _, segment := range strings.Split(line, "; ") {
		if segment == "" {
			continue
		}
		name, value, _ := strings.Cut(segment, "=")
		result[name] = value
	}
	return result
}

// FormatCookies renders cookies as "name=value; name=value" sorted by name
func FormatCookies(cookies map[string]string) string {
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + "=" + cookies[name]
	}
	return strings.Join(pairs, "; ")
}
