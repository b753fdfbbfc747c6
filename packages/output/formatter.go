package output

import (
	"fmt"

	"github.com/abdul-hamid-achik/webbrowser/packages/expect"
	"github.com/abdul-hamid-achik/webbrowser/packages/http"
)

// Exchange is one request and what came back from it. Response is nil when
// the request never got an answer. Body is what the session returned to
// the caller, which is nil for a 302 even when the server sent one.
type Exchange struct {
	Method   string
	URL      string
	Response *http.Response
	Body     []byte
	Err      error
	Captures map[string]any
	Cookies  map[string]string
	Checks   []*expect.Result
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatExchange(ex *Exchange)
	FormatFields(title string, fields map[string]string)
	FormatError(err error)
	Flush() error
}

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}
