package output

import (
	"encoding/json"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary   JSONSummary         `json:"summary"`
	Exchanges []JSONExchange      `json:"exchanges"`
	Fields    map[string]JSONKeys `json:"fields,omitempty"`
	Errors    []string            `json:"errors,omitempty"`
	Time      string              `json:"time"`
}

// JSONKeys is a scraped name/value table
type JSONKeys map[string]string

// JSONSummary counts exchanges by outcome
type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONExchange represents a single request and its response
type JSONExchange struct {
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	Error    string            `json:"error,omitempty"`
	Response *JSONResponse     `json:"response,omitempty"`
	Captures map[string]any    `json:"captures,omitempty"`
	Cookies  map[string]string `json:"cookies,omitempty"`
	Checks   []JSONCheck       `json:"expectations,omitempty"`
}

// JSONCheck represents one evaluated expectation
type JSONCheck struct {
	Expression string `json:"expression"`
	Passed     bool   `json:"passed"`
	Actual     any    `json:"actual"`
	Message    string `json:"message,omitempty"`
}

// JSONResponse represents response details. Body is embedded as JSON when it
// parses, otherwise as a string.
type JSONResponse struct {
	StatusCode int                 `json:"statusCode"`
	Status     string              `json:"status"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Body       any                 `json:"body,omitempty"`
	Size       int                 `json:"size"`
	DurationMs int64               `json:"durationMs"`
}

// JSONFormatter collects exchanges and writes one document on Flush
type JSONFormatter struct {
	writer    io.Writer
	exchanges []JSONExchange
	fields    map[string]JSONKeys
	errors    []string
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:    os.Stdout,
		exchanges: make([]JSONExchange, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatExchange(ex *Exchange) {
	item := JSONExchange{
		Method:   ex.Method,
		URL:      ex.URL,
		Captures: ex.Captures,
		Cookies:  ex.Cookies,
	}
	if ex.Err != nil {
		item.Error = ex.Err.Error()
	}
	for _, c := range ex.Checks {
		item.Checks = append(item.Checks, JSONCheck{
			Expression: c.Expectation.String(),
			Passed:     c.Passed,
			Actual:     c.Actual,
			Message:    c.Message,
		})
	}
	if resp := ex.Response; resp != nil {
		item.Response = &JSONResponse{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Headers:    resp.Headers,
			Body:       bodyValue(ex.Body),
			Size:       len(ex.Body),
			DurationMs: resp.DurationMs(),
		}
	}
	f.exchanges = append(f.exchanges, item)
}

func bodyValue(body []byte) any {
	switch {
	case len(body) == 0:
		return nil
	case gjson.ValidBytes(body):
		return json.RawMessage(body)
	case utf8.Valid(body):
		return string(body)
	default:
		return body // base64 via encoding/json
	}
}

func (f *JSONFormatter) FormatFields(title string, fields map[string]string) {
	if f.fields == nil {
		f.fields = make(map[string]JSONKeys)
	}
	if fields == nil {
		fields = map[string]string{}
	}
	f.fields[title] = fields
}

func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush() error {
	var passed, failed int
	for _, ex := range f.exchanges {
		if ex.Error == "" {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		Summary: JSONSummary{
			Total:  len(f.exchanges),
			Passed: passed,
			Failed: failed,
		},
		Exchanges: f.exchanges,
		Fields:    f.fields,
		Errors:    f.errors,
		Time:      time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
