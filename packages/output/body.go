package output

import (
	"fmt"
	"io"
	"os"
)

// BodyFormatter writes decoded bodies verbatim, errors go to a separate stream
type BodyFormatter struct {
	writer    io.Writer
	errWriter io.Writer
}

type BodyOption func(*BodyFormatter)

func NewBodyFormatter(opts ...BodyOption) *BodyFormatter {
	f := &BodyFormatter{
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func BodyWithWriter(w io.Writer) BodyOption {
	return func(f *BodyFormatter) {
		f.writer = w
	}
}

func BodyWithErrWriter(w io.Writer) BodyOption {
	return func(f *BodyFormatter) {
		f.errWriter = w
	}
}

func (f *BodyFormatter) FormatExchange(ex *Exchange) {
	if len(ex.Body) > 0 {
		_, _ = f.writer.Write(ex.Body)
	}
	if ex.Err != nil {
		fmt.Fprintf(f.errWriter, "%s %s: %v\n", ex.Method, ex.URL, ex.Err)
	}
}

func (f *BodyFormatter) FormatFields(_ string, fields map[string]string) {
	for _, name := range sortedKeys(fields) {
		fmt.Fprintf(f.writer, "%s=%s\n", name, fields[name])
	}
}

func (f *BodyFormatter) FormatError(err error) {
	fmt.Fprintf(f.errWriter, "Error: %v\n", err)
}

func (f *BodyFormatter) Flush() error {
	return nil
}
