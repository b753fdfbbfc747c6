package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	// ContentTypeForm is the default POST content type
	ContentTypeForm = "application/x-www-form-urlencoded"
	// ContentTypeOctetStream is the default PUT content type, and the one
	// FormFields bodies must be sent with
	ContentTypeOctetStream = "application/octet-stream"
)

// defaultHeaders is the browser-like header set sent with every request
var defaultHeaders = [][2]string{
	{"Accept", "*/*"},
	{"Accept-Encoding", "gzip, deflate, br"},
	{"Accept-Language", "en-US,en;q=0.5"},
	{"Connection", "keep-alive"},
	{"User-Agent", "Mozilla/5.0"},
	{"DNT", "1"},
}

// Body is a request payload: either RawBody or FormFields.
type Body interface {
	isBody()
}

// RawBody is sent as-is (JSON, XML, plain text...)
type RawBody string

// FormFields are form-encoded into the body. They are only accepted with an
// application/octet-stream content type.
type FormFields map[string]string

func (RawBody) isBody()    {}
func (FormFields) isBody() {}

type requestConfig struct {
	formValues    map[string]any
	authorization string
	contentType   string
	body          Body
	headers       map[string]string
	cookies       map[string]string
}

type RequestOption func(*requestConfig)

// WithFormValues appends values to the GET query string
func WithFormValues(values map[string]any) RequestOption {
	return func(c *requestConfig) {
		c.formValues = values
	}
}

// WithAuthorization sets the Authorization header, see BasicAuthorization
// and BearerAuthorization
func WithAuthorization(value string) RequestOption {
	return func(c *requestConfig) {
		c.authorization = value
	}
}

func WithContentType(contentType string) RequestOption {
	return func(c *requestConfig) {
		c.contentType = contentType
	}
}

func WithBody(body Body) RequestOption {
	return func(c *requestConfig) {
		c.body = body
	}
}

// WithHeaders adds headers after the defaults, replacing any of them
func WithHeaders(headers map[string]string) RequestOption {
	return func(c *requestConfig) {
		c.headers = headers
	}
}

// WithCookieValues merges cookies into the session jar before sending
func WithCookieValues(cookies map[string]string) RequestOption {
	return func(c *requestConfig) {
		c.cookies = cookies
	}
}

func newRequestConfig(contentType string, opts []RequestOption) *requestConfig {
	c := &requestConfig{contentType: contentType}
	for _, opt := range opts {
		opt(c)
	}
	if c.contentType == "" {
		c.contentType = contentType
	}
	return c
}

// Get fetches query (a path, optionally with a query string) and returns
// the body. Redirects (302) yield a nil body and no error; 4xx bodies are
// returned for the caller to inspect; any other status >= 300 is a
// *StatusError.
func (s *Session) Get(ctx context.Context, query string, opts ...RequestOption) ([]byte, error) {
	cfg := newRequestConfig(ContentTypeForm, opts)
	extra := FormValuesToString(query, cfg.formValues)
	query += extra

	resp, err := s.send(ctx, http.MethodGet, query, cfg, nil)
	if err != nil {
		return nil, err
	}
	return classify(resp, query, strings.TrimLeft(extra, "?&"))
}

// Post sends a body to query. The default content type is
// application/x-www-form-urlencoded. Status handling matches Get.
func (s *Session) Post(ctx context.Context, query string, opts ...RequestOption) ([]byte, error) {
	return s.sendWithBody(ctx, http.MethodPost, query, ContentTypeForm, opts)
}

// Put sends a body to query. The default content type is
// application/octet-stream. Status handling matches Get.
func (s *Session) Put(ctx context.Context, query string, opts ...RequestOption) ([]byte, error) {
	return s.sendWithBody(ctx, http.MethodPut, query, ContentTypeOctetStream, opts)
}

// Delete removes query. Unlike the other verbs, any status >= 300 is
// reported as a Result failure rather than an error; the returned error is
// reserved for transport problems and misuse.
func (s *Session) Delete(ctx context.Context, query string, opts ...RequestOption) (*Result, error) {
	cfg := newRequestConfig(ContentTypeForm, opts)
	resp, err := s.send(ctx, http.MethodDelete, query, cfg, nil)
	if err != nil {
		return nil, err
	}

	result := &Result{StatusCode: resp.StatusCode}
	if resp.StatusCode >= 300 {
		result.Failure = newStatusError(resp, query, "")
		return result, nil
	}
	result.Body = resp.Body
	return result, nil
}

func (s *Session) sendWithBody(ctx context.Context, method, query, contentType string, opts []RequestOption) ([]byte, error) {
	cfg := newRequestConfig(contentType, opts)

	payload, err := encodeBody(cfg)
	if err != nil {
		return nil, err
	}

	resp, err := s.send(ctx, method, query, cfg, &payload)
	if err != nil {
		return nil, err
	}
	return classify(resp, query, payload)
}

// encodeBody renders cfg.body. Encoding FormFields switches the content type
// to application/x-www-form-urlencoded, which is what the fields become.
func encodeBody(cfg *requestConfig) (string, error) {
	switch body := cfg.body.(type) {
	case nil:
		return "", nil
	case RawBody:
		return string(body), nil
	case FormFields:
		if !strings.Contains(cfg.contentType, ContentTypeOctetStream) {
			return "", fmt.Errorf("%w: got %q", ErrFormContentType, cfg.contentType)
		}
		cfg.contentType = ContentTypeForm
		return encodeFormFields(body), nil
	default:
		return "", fmt.Errorf("http: unsupported body type %T", body)
	}
}

// classify maps a response to the verbs' return contract
func classify(resp *Response, query, payload string) ([]byte, error) {
	switch {
	case resp.StatusCode < 300:
		return resp.Body, nil
	case resp.StatusCode == http.StatusFound:
		return nil, nil
	case resp.IsClientError():
		return resp.Body, nil
	default:
		return nil, newStatusError(resp, query, payload)
	}
}

// RequestURL builds the absolute URL for query on this session's host.
// A leading '/' on query is optional.
func (s *Session) RequestURL(query string) string {
	return fmt.Sprintf("%s://%s/%s", s.scheme(), s.addr(), strings.TrimPrefix(query, "/"))
}

func (s *Session) buildHeaders(cfg *requestConfig) http.Header {
	h := make(http.Header)
	setHeader(h, "Host", s.host)
	for _, kv := range defaultHeaders {
		setHeader(h, kv[0], kv[1])
	}
	setHeader(h, "Content-Type", cfg.contentType)
	if len(s.cookies) > 0 {
		setHeader(h, "Cookie", s.CookiesString())
	}
	if cfg.authorization != "" {
		setHeader(h, "Authorization", cfg.authorization)
	}

	keys := make([]string, 0, len(cfg.headers))
	for k := range cfg.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		setHeader(h, k, cfg.headers[k])
	}
	return h
}

// setHeader stores key with its casing preserved on the wire, replacing any
// existing key that differs only in case.
func setHeader(h http.Header, key, value string) {
	for existing := range h {
		if strings.EqualFold(existing, key) {
			delete(h, existing)
		}
	}
	h[key] = []string{value}
}

func takeHeader(h http.Header, key string) string {
	for existing, values := range h {
		if strings.EqualFold(existing, key) {
			delete(h, existing)
			if len(values) > 0 {
				return values[0]
			}
		}
	}
	return ""
}

func (s *Session) send(ctx context.Context, method, query string, cfg *requestConfig, payload *string) (*Response, error) {
	if s.client == nil {
		return nil, ErrNotOpen
	}

	s.AddCookies(cfg.cookies)

	reqURL := s.RequestURL(query)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader([]byte(*payload))
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request for %q: %w", query, err)
	}
	if payload != nil && len(*payload) == 0 {
		// Send Content-Length: 0 rather than omitting it
		httpReq.Body = http.NoBody
		httpReq.ContentLength = 0
	}

	header := s.buildHeaders(cfg)
	if host := takeHeader(header, "Host"); host != "" {
		httpReq.Host = host
	}
	httpReq.Header = header

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	s.trace.request(httpReq)

	start := time.Now()
	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	s.trace.response(httpResp, time.Since(start))

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	duration := time.Since(start)

	decoded, err := decodeBody(httpResp.Header.Get("Content-Encoding"), raw)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Method:     method,
		RequestURI: httpReq.URL.RequestURI(),
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    httpResp.Header,
		Body:       decoded,
		Duration:   duration,
	}
	s.response = resp
	s.SaveCookies(resp.Headers)
	return resp, nil
}
