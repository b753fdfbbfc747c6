package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/webbrowser/packages/expect"
	whttp "github.com/abdul-hamid-achik/webbrowser/packages/http"
	"github.com/abdul-hamid-achik/webbrowser/packages/schema"
)

// Exit codes for the webbrowser CLI
const (
	// ExitSuccess indicates every request succeeded
	ExitSuccess = 0

	// ExitRequestFailure indicates a response status the session rejects
	ExitRequestFailure = 1

	// ExitSchemaError indicates a response body failed schema validation
	ExitSchemaError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitExpectationFailure indicates a response did not meet --expect checks
	ExitExpectationFailure = 5

	// ExitScrapeFailure indicates a page could not be parsed or lacked the
	// inputs or link a command looks for
	ExitScrapeFailure = 6

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError attaches an exit code to err. Reported is set once a formatter
// has already shown the error to the user.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// exitCode maps err to a process exit status
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}

	var (
		validationErr *schema.ValidationError
		expectErr     *expect.Error
	)
	switch {
	case errors.As(err, &expectErr):
		return ExitExpectationFailure
	case errors.As(err, &validationErr):
		return ExitSchemaError
	case whttp.StatusCode(err) != 0:
		return ExitRequestFailure
	case errors.Is(err, whttp.ErrFormContentType):
		return ExitUsageError
	default:
		return ExitNetworkError
	}
}
