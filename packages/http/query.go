package http

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// FormValuesToString renders values as a query string to append to target.
// Keys and values are percent-encoded independently; values are formatted
// with %v first. The string starts with '&' when target already carries a
// query, '?' otherwise, and is empty for no values.
func FormValuesToString(target string, values map[string]any) string {
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	if strings.Contains(target, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fmt.Sprintf("%v", values[k])))
	}
	return b.String()
}

// encodeFormFields renders fields as an application/x-www-form-urlencoded body
func encodeFormFields(fields map[string]string) string {
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	return strings.TrimPrefix(FormValuesToString("", values), "?")
}
