package capture

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/webbrowser/packages/http"
	"github.com/abdul-hamid-achik/webbrowser/packages/scrape"
	"github.com/tidwall/gjson"
)

type Source string

const (
	SourceBody     Source = "body"
	SourceHeader   Source = "header"
	SourceCookie   Source = "cookie"
	SourceHTML     Source = "html"
	SourceStatus   Source = "status"
	SourceDuration Source = "duration"
)

// Capture names one value to pull out of a response. Path is a gjson path
// for body, a header or cookie name, or "selector[@attr]" for html.
type Capture struct {
	Name   string
	Source Source
	Path   string
}

// ParseCapture reads "name=source:path", "source:path" or a bare gjson path
// (meaning body). The name defaults to the path. An '=' inside the path,
// as in html:input[name=csrf]@value, does not start a name.
func ParseCapture(spec string) (*Capture, error) {
	name, rest, named := strings.Cut(spec, "=")
	if !named || strings.ContainsAny(name, ":[") {
		name, rest, named = "", spec, false
	}

	c := &Capture{Source: SourceBody, Path: rest}
	src, path, found := strings.Cut(rest, ":")
	switch s := Source(src); {
	case found && (s == SourceBody || s == SourceHeader || s == SourceCookie || s == SourceHTML):
		c.Source, c.Path = s, path
	case s == SourceStatus || s == SourceDuration:
		c.Source, c.Path = s, ""
	}

	if c.Path == "" && c.Source != SourceBody && c.Source != SourceStatus && c.Source != SourceDuration {
		return nil, fmt.Errorf("capture %q: %s needs a name or selector", spec, c.Source)
	}

	c.Name = name
	if !named {
		c.Name = rest
	}
	return c, nil
}

type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
	isJSON   bool
	cookies  map[string]string
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{response: resp}
	if resp.IsJSON() || gjson.ValidBytes(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
		e.isJSON = true
	}
	return e
}

func (e *Extractor) Extract(c *Capture) (any, bool) {
	switch c.Source {
	case SourceBody:
		return e.extractFromBody(c.Path)
	case SourceHeader:
		return nonEmpty(e.response.Header(c.Path))
	case SourceCookie:
		return e.extractCookie(c.Path)
	case SourceHTML:
		return e.extractHTML(c.Path)
	case SourceStatus:
		return e.response.StatusCode, true
	case SourceDuration:
		return e.response.DurationMs(), true
	default:
		return nil, false
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.isJSON {
		if path == "" {
			return e.response.BodyString(), true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// extractCookie looks name up in this response's Set-Cookie lines only;
// the session jar is not consulted.
func (e *Extractor) extractCookie(name string) (any, bool) {
	if e.cookies == nil {
		e.cookies = make(map[string]string)
		for _, line := range e.response.HeaderValues("Set-Cookie") {
			for k, v := range http.ParseSetCookie(line) {
				e.cookies[k] = v
			}
		}
	}
	value, ok := e.cookies[name]
	return value, ok
}

func (e *Extractor) extractHTML(path string) (any, bool) {
	selector, attr := path, ""
	if i := strings.LastIndex(path, "@"); i >= 0 {
		selector, attr = path[:i], path[i+1:]
	}

	value, ok, err := scrape.Select(e.response.Body, selector, attr)
	if err != nil || !ok {
		return nil, false
	}
	return value, true
}

func nonEmpty(value string) (any, bool) {
	if value == "" {
		return nil, false
	}
	return value, true
}

// ExtractAll returns the values that could be found, keyed by capture name
func ExtractAll(resp *http.Response, captures []*Capture) map[string]any {
	extractor := NewExtractor(resp)
	results := make(map[string]any)

	for _, c := range captures {
		if value, ok := extractor.Extract(c); ok {
			results[c.Name] = value
		}
	}

	return results
}
