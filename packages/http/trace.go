package http

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/fatih/color"
)

// tracer writes a colorized dump of the session's traffic when debug is on.
// A disabled tracer does nothing.
type tracer struct {
	w       io.Writer
	id      string
	enabled bool
	out     *color.Color
	in      *color.Color
	warn    *color.Color
	dim     *color.Color
}

func newTracer(w io.Writer, id string, enabled bool) *tracer {
	return &tracer{
		w:       w,
		id:      id,
		enabled: enabled && w != nil,
		out:     color.New(color.FgCyan),
		in:      color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		dim:     color.New(color.Faint),
	}
}

func (t *tracer) prefix() string {
	return t.dim.Sprintf("[%s]", t.id)
}

func (t *tracer) lines(c *color.Color, marker string, dump []byte) {
	scanner := bufio.NewScanner(bytes.NewReader(dump))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fmt.Fprintf(t.w, "%s %s %s\n", t.prefix(), c.Sprint(marker), line)
	}
}

func (t *tracer) connected(scheme, addr string, insecure bool) {
	if !t.enabled {
		return
	}
	fmt.Fprintf(t.w, "%s %s %s://%s\n", t.prefix(), t.out.Sprint("connected"), scheme, addr)
	if insecure {
		fmt.Fprintf(t.w, "%s %s\n", t.prefix(), t.warn.Sprint("certificate verification disabled"))
	}
}

func (t *tracer) closed(addr string) {
	if !t.enabled {
		return
	}
	fmt.Fprintf(t.w, "%s %s %s\n", t.prefix(), t.dim.Sprint("closed"), addr)
}

func (t *tracer) request(req *http.Request) {
	if !t.enabled {
		return
	}
	dump, err := httputil.DumpRequestOut(req, false)
	if err != nil {
		fmt.Fprintf(t.w, "%s %s %s %s\n", t.prefix(), t.out.Sprint(">"), req.Method, req.URL)
		return
	}
	t.lines(t.out, ">", dump)
}

func (t *tracer) response(resp *http.Response, duration time.Duration) {
	if !t.enabled {
		return
	}
	dump, err := httputil.DumpResponse(resp, false)
	if err != nil {
		fmt.Fprintf(t.w, "%s %s %s\n", t.prefix(), t.in.Sprint("<"), resp.Status)
		return
	}
	t.lines(t.in, "<", dump)
	fmt.Fprintf(t.w, "%s %s\n", t.prefix(), t.dim.Sprintf("(%dms)", duration.Milliseconds()))
}
