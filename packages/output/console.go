package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/fatih/color"
)

// maxBodyPreview bounds how much of a body is shown without --verbose
const maxBodyPreview = 4096

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatExchange(ex *Exchange) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold(ex.Method), ex.URL)

	if resp := ex.Response; resp != nil {
		status := fmt.Sprintf("%d %s", resp.StatusCode, resp.Reason())
		switch {
		case resp.IsSuccess():
			status = green(status)
		case resp.IsRedirect():
			status = yellow(status)
		default:
			status = red(status)
		}
		fmt.Fprintf(f.writer, "  %s %s\n", status, cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))
		if loc := resp.Location(); loc != "" {
			fmt.Fprintf(f.writer, "  %s %s\n", yellow("Location:"), loc)
		}

		if f.verbose {
			names := make([]string, 0, len(resp.Headers))
			for name := range resp.Headers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				for _, v := range resp.Headers[name] {
					fmt.Fprintf(f.writer, "  %s: %s\n", cyan(name), v)
				}
			}
		}
	}

	for _, c := range ex.Checks {
		if c.Passed {
			fmt.Fprintf(f.writer, "  %s %s\n", green("✓"), c.Expectation)
			continue
		}
		fmt.Fprintf(f.writer, "  %s %s\n", red("✗"), c.Expectation)
		fmt.Fprintf(f.writer, "    %s %s\n", red("→"), c.Message)
		fmt.Fprintf(f.writer, "      Actual: %s\n", formatValue(c.Actual, 100))
	}

	if ex.Err != nil {
		fmt.Fprintf(f.writer, "  %s %v\n", red("x"), ex.Err)
	}

	if len(ex.Body) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", f.preview(ex.Body))
	}

	if len(ex.Captures) > 0 {
		fmt.Fprintf(f.writer, "  Captures:\n")
		for _, name := range sortedKeys(ex.Captures) {
			fmt.Fprintf(f.writer, "    %s = %s\n", name, formatValue(ex.Captures[name], 100))
		}
	}

	if f.verbose && len(ex.Cookies) > 0 {
		fmt.Fprintf(f.writer, "  Cookies:\n")
		for _, name := range sortedKeys(ex.Cookies) {
			fmt.Fprintf(f.writer, "    %s = %s\n", name, ex.Cookies[name])
		}
	}
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) preview(body []byte) string {
	if !utf8.Valid(body) {
		return fmt.Sprintf("[binary body, %d bytes]", len(body))
	}
	if !f.verbose && len(body) > maxBodyPreview {
		return string(body[:maxBodyPreview]) + fmt.Sprintf("\n... (%d more bytes, use --verbose)", len(body)-maxBodyPreview)
	}
	return string(body)
}

// FormatFields prints a name/value table, e.g. scraped form inputs
func (f *ConsoleFormatter) FormatFields(title string, fields map[string]string) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(f.writer, "%s\n", bold(title))
	if len(fields) == 0 {
		fmt.Fprintf(f.writer, "  (none)\n")
		return
	}
	for _, name := range sortedKeys(fields) {
		fmt.Fprintf(f.writer, "  %s = %s\n", cyan(name), fields[name])
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) Flush() error {
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
