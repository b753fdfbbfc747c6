package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/webbrowser/packages/capture"
	"github.com/abdul-hamid-achik/webbrowser/packages/expect"
	whttp "github.com/abdul-hamid-achik/webbrowser/packages/http"
	"github.com/abdul-hamid-achik/webbrowser/packages/output"
	"github.com/abdul-hamid-achik/webbrowser/packages/schema"
	"github.com/spf13/cobra"
)

var (
	queryFlags      []string
	dataFlag        string
	fieldFlags      []string
	contentTypeFlag string
)

var getCmd = &cobra.Command{
	Use:   "get <path>...",
	Short: "GET one or more paths in a single session",
	Long: `GET each path in order over one session. Cookies set by earlier
responses are sent with later requests, and values captured with --select
can be used in later paths as {{name}}.

Examples:
  webbrowser get / --host example.com
  webbrowser get /search -q term=go -q page=2 --host example.com
  webbrowser get /api/login /api/items/{{id}} -s id=body:items.0.id --host localhost -p 8080`,
	Args: cobra.MinimumNArgs(1),
	RunE: getCommand,
}

var postCmd = &cobra.Command{
	Use:   "post <path>",
	Short: "POST a body to a path",
	Long: `POST a raw body (--data) or form fields (--field). The default content
type is application/x-www-form-urlencoded. --data @file reads the body
from a file, --data @- from stdin.

Examples:
  webbrowser post /login --field user=admin --field pass=admin --host 192.168.1.1
  webbrowser post /api/items -d '{"name":"x"}' --content-type application/json --host localhost`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand(cmd, http.MethodPost, args[0])
	},
}

var putCmd = &cobra.Command{
	Use:   "put <path>",
	Short: "PUT a body to a path",
	Long: `PUT a raw body (--data) or form fields (--field). The default content
type is application/octet-stream.

Examples:
  webbrowser put /firmware.bin -d @firmware.bin --host 192.168.1.1
  webbrowser put /api/items/7 -d '{"name":"y"}' --content-type application/json --host localhost`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand(cmd, http.MethodPut, args[0])
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <path>...",
	Short: "DELETE one or more paths in a single session",
	Args:  cobra.MinimumNArgs(1),
	RunE:  deleteCommand,
}

func init() {
	getCmd.Flags().StringArrayVarP(&queryFlags, "query", "q", nil, "Query parameter as name=value, repeatable")

	for _, c := range []*cobra.Command{postCmd, putCmd} {
		c.Flags().StringVarP(&dataFlag, "data", "d", "", "Raw request body, @file to read a file, @- for stdin")
		c.Flags().StringArrayVarP(&fieldFlags, "field", "f", nil, "Form field as name=value, repeatable")
		c.Flags().StringVar(&contentTypeFlag, "content-type", "", "Content-Type of the body")
	}
}

func getCommand(cmd *cobra.Command, args []string) error {
	query, err := parsePairs(queryFlags, "=")
	if err != nil {
		return withCode(ExitUsageError, err)
	}

	return withSession(cmd, func(ctx context.Context, r *runner) error {
		for _, path := range args {
			var opts []whttp.RequestOption
			if query != nil {
				opts = append(opts, whttp.WithFormValues(toAny(r.resolver.ResolveAll(query))))
			}
			if err := r.exchange(ctx, http.MethodGet, path, r.session.Get, opts...); err != nil {
				return err
			}
		}
		return nil
	})
}

func sendCommand(cmd *cobra.Command, method, path string) error {
	opts, err := bodyOptions(cmd.InOrStdin())
	if err != nil {
		return withCode(ExitUsageError, err)
	}

	return withSession(cmd, func(ctx context.Context, r *runner) error {
		send := r.session.Post
		if method == http.MethodPut {
			send = r.session.Put
		}
		return r.exchange(ctx, method, path, send, opts...)
	})
}

func deleteCommand(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, r *runner) error {
		for _, path := range args {
			if err := r.exchange(ctx, http.MethodDelete, path, r.deleteBody); err != nil {
				return err
			}
		}
		return nil
	})
}

// deleteBody adapts Delete to the shape of the other verbs
func (r *runner) deleteBody(ctx context.Context, query string, opts ...whttp.RequestOption) ([]byte, error) {
	result, err := r.session.Delete(ctx, query, opts...)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, result.Err()
	}
	return result.Body, nil
}

// bodyOptions builds the body for post/put from --data, --field and
// --content-type
func bodyOptions(stdin io.Reader) ([]whttp.RequestOption, error) {
	fields, err := parsePairs(fieldFlags, "=")
	if err != nil {
		return nil, err
	}
	if fields != nil && dataFlag != "" {
		return nil, fmt.Errorf("--data and --field cannot be combined")
	}

	var opts []whttp.RequestOption
	contentType := contentTypeFlag

	switch {
	case fields != nil:
		// form fields are encoded from an octet-stream body
		if contentType == "" {
			contentType = whttp.ContentTypeOctetStream
		}
		opts = append(opts, whttp.WithBody(whttp.FormFields(fields)))
	case dataFlag != "":
		data, err := readData(dataFlag, stdin)
		if err != nil {
			return nil, err
		}
		opts = append(opts, whttp.WithBody(whttp.RawBody(data)))
	}

	if contentType != "" {
		opts = append(opts, whttp.WithContentType(contentType))
	}
	return opts, nil
}

func readData(value string, stdin io.Reader) (string, error) {
	name, isFile := strings.CutPrefix(value, "@")
	if !isFile {
		return value, nil
	}

	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

func toAny(values map[string]string) map[string]any {
	result := make(map[string]any, len(values))
	for k, v := range values {
		result[k] = v
	}
	return result
}

type sendFunc func(ctx context.Context, query string, opts ...whttp.RequestOption) ([]byte, error)

// fetched is one request's outcome before it is reported
type fetched struct {
	query    string
	body     []byte
	response *whttp.Response
	captures map[string]any
	err      error
}

// fetch sends one request with the session-wide options, answering a Digest
// challenge once when enabled, then applies --select captures
func (r *runner) fetch(ctx context.Context, path string, send sendFunc, extra ...whttp.RequestOption) *fetched {
	f := &fetched{query: r.resolver.Resolve(path)}

	opts := r.requestOptions(extra)
	prev := r.session.LastResponse()
	f.body, f.err = send(ctx, f.query, opts...)

	if r.digest {
		resp := r.session.LastResponse()
		unauthorized := resp != nil && resp != prev && resp.StatusCode == http.StatusUnauthorized
		if unauthorized && (f.err == nil || whttp.StatusCode(f.err) == http.StatusUnauthorized) {
			auth, err := r.session.DigestAuthorization(r.cfg.Username, r.cfg.Password)
			if err == nil {
				prev = resp
				f.body, f.err = send(ctx, f.query, append(opts, whttp.WithAuthorization(auth))...)
			}
		}
	}

	// a failure before any I/O leaves the previous response in place
	if resp := r.session.LastResponse(); resp != prev {
		f.response = resp
	}

	if f.response != nil && len(r.captures) > 0 {
		f.captures = capture.ExtractAll(f.response, r.captures)
		r.resolver.SetCaptures(f.captures)
	}
	return f
}

func (r *runner) requestOptions(extra []whttp.RequestOption) []whttp.RequestOption {
	var opts []whttp.RequestOption
	if r.authorization != "" {
		opts = append(opts, whttp.WithAuthorization(r.authorization))
	}
	if len(r.cfg.Headers) > 0 {
		opts = append(opts, whttp.WithHeaders(r.resolver.ResolveAll(r.cfg.Headers)))
	}
	return append(opts, extra...)
}

// check runs --expect and --schema against a fetched response. The first
// failure wins: transport or status, then expectations, then schema.
func (r *runner) check(f *fetched) ([]*expect.Result, error) {
	err := f.err

	var checks []*expect.Result
	if f.response != nil && len(r.expectations) > 0 {
		var checkErr error
		checks, checkErr = expect.EvaluateAll(f.response, r.expectations)
		if err == nil {
			err = checkErr
		}
	}

	if err == nil && r.schemaPath != "" && f.response != nil && f.response.IsSuccess() && len(f.body) > 0 {
		err = schema.ValidateFile(r.schemaPath, f.body)
	}
	return checks, err
}

// show hands one exchange and its check results to the formatter
func (r *runner) show(method string, f *fetched, checks []*expect.Result, err error) {
	r.formatter.FormatExchange(&output.Exchange{
		Method:   method,
		URL:      r.session.RequestURL(f.query),
		Response: f.response,
		Body:     f.body,
		Err:      err,
		Captures: f.captures,
		Cookies:  r.session.Cookies(),
		Checks:   checks,
	})
}

func (r *runner) report(method string, f *fetched) error {
	checks, err := r.check(f)
	r.show(method, f, checks, err)
	return err
}

func (r *runner) exchange(ctx context.Context, method, path string, send sendFunc, extra ...whttp.RequestOption) error {
	return r.report(method, r.fetch(ctx, path, send, extra...))
}
