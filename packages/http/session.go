package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// DefaultHTTPPort is used when no port is given for a plain session
	DefaultHTTPPort = 80
	// DefaultHTTPSPort is used when no port is given for a TLS session
	DefaultHTTPSPort = 443
	// DefaultDialTimeout bounds the initial TCP connect
	DefaultDialTimeout = 30 * time.Second
	// DefaultKeepAlive is the TCP keep-alive period of session connections
	DefaultKeepAlive = 30 * time.Second
	// DefaultIdleConnTimeout is how long the idle session connection is kept
	DefaultIdleConnTimeout = 90 * time.Second
)

var (
	// ErrNotOpen is returned when a request is issued outside an open session
	ErrNotOpen = errors.New("http: session is not open")
	// ErrAlreadyOpen is returned by Open on a session that is already connected
	ErrAlreadyOpen = errors.New("http: session is already open")
)

// Session holds the connection parameters, cookie jar and last response for
// one logical conversation with a host.
type Session struct {
	host       string
	port       int
	useSSL     bool
	verifyCert bool
	debug      bool
	timeout    time.Duration

	cookies  map[string]string
	response *Response

	id        string
	trace     *tracer
	limiter   *rate.Limiter
	traceOut  io.Writer
	client    *http.Client
	transport *http.Transport
	handoff   *connHandoff
}

type Option func(*Session)

// New creates a session for host. No network I/O happens until Open.
func New(host string, opts ...Option) *Session {
	s := &Session{
		host:       host,
		verifyCert: true,
		cookies:    make(map[string]string),
		traceOut:   os.Stderr,
		id:         uuid.New().String()[:8],
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.port == 0 {
		s.port = DefaultHTTPPort
		if s.useSSL {
			s.port = DefaultHTTPSPort
		}
	}

	s.trace = newTracer(s.traceOut, s.id, s.debug)
	return s
}

// WithPort sets the server port. Zero selects 80 or 443 depending on TLS.
func WithPort(port int) Option {
	return func(s *Session) {
		s.port = port
	}
}

// WithTLS selects https
func WithTLS(useSSL bool) Option {
	return func(s *Session) {
		s.useSSL = useSSL
	}
}

// WithVerifyCert enables or disables certificate validation. Many embedded
// devices serve self-signed certificates, so verification has to be turned
// off to talk to them.
func WithVerifyCert(verify bool) Option {
	return func(s *Session) {
		s.verifyCert = verify
	}
}

// WithCookies seeds the cookie jar
func WithCookies(cookies map[string]string) Option {
	return func(s *Session) {
		for k, v := range cookies {
			s.cookies[k] = v
		}
	}
}

func WithDebug(debug bool) Option {
	return func(s *Session) {
		s.debug = debug
	}
}

// WithTraceWriter sets where the debug trace is written (default stderr)
func WithTraceWriter(w io.Writer) Option {
	return func(s *Session) {
		s.traceOut = w
	}
}

// WithTimeout bounds each request. Zero means no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithRateLimit paces requests to at most rps per second. Useful against
// small devices that fall over when polled too quickly.
func WithRateLimit(rps float64) Option {
	return func(s *Session) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func (s *Session) Host() string { return s.host }

func (s *Session) Port() int { return s.port }

func (s *Session) UseSSL() bool { return s.useSSL }

func (s *Session) VerifyCert() bool { return s.verifyCert }

// ID is the short identifier printed in debug traces
func (s *Session) ID() string { return s.id }

func (s *Session) addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

func (s *Session) scheme() string {
	if s.useSSL {
		return "https"
	}
	return "http"
}

func (s *Session) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         s.host,
		InsecureSkipVerify: !s.verifyCert,
		NextProtos:         []string{"http/1.1"},
	}
}

// Open connects to host:port, completing the TLS handshake for https
// sessions. Connection and certificate failures are returned here rather
// than on the first request.
func (s *Session) Open(ctx context.Context) error {
	if s.client != nil {
		return ErrAlreadyOpen
	}

	netDialer := &net.Dialer{
		Timeout:   DefaultDialTimeout,
		KeepAlive: DefaultKeepAlive,
	}

	var dial dialFunc = netDialer.DialContext
	if s.useSSL {
		tlsDialer := &tls.Dialer{NetDialer: netDialer, Config: s.tlsConfig()}
		dial = tlsDialer.DialContext
	}

	conn, err := dial(ctx, "tcp", s.addr())
	if err != nil {
		return fmt.Errorf("connect %s: %w", s.addr(), err)
	}
	s.trace.connected(s.scheme(), s.addr(), s.useSSL && !s.verifyCert)

	s.handoff = newConnHandoff(conn, dial)

	transport := &http.Transport{
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		// Accept-Encoding is set explicitly, so decoding is done by the session
		DisableCompression: true,
		TLSClientConfig:    s.tlsConfig(),
	}
	if s.useSSL {
		transport.DialTLSContext = s.handoff.DialContext
	} else {
		transport.DialContext = s.handoff.DialContext
	}

	s.transport = transport
	s.client = &http.Client{
		Transport: transport,
		Timeout:   s.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return nil
}

// Close releases the session's connections. It is safe to call on a session
// that was never opened.
func (s *Session) Close() error {
	if s.client == nil {
		return nil
	}
	s.transport.CloseIdleConnections()
	err := s.handoff.Close()
	s.client = nil
	s.transport = nil
	s.handoff = nil
	s.trace.closed(s.addr())
	return err
}

// Do opens the session, runs fn and closes the session whether fn returns
// normally, fails or panics. fn's error takes precedence over a close error.
func (s *Session) Do(ctx context.Context, fn func(*Session) error) (err error) {
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close session: %w", cerr)
		}
	}()
	return fn(s)
}

// HTTPSession runs fn against a plain http session to host
func HTTPSession(ctx context.Context, host string, fn func(*Session) error, opts ...Option) error {
	opts = append(opts, WithTLS(false))
	return New(host, opts...).Do(ctx, fn)
}

// HTTPSSession runs fn against a TLS session to host. Pass
// WithVerifyCert(false) for devices with self-signed certificates.
func HTTPSSession(ctx context.Context, host string, fn func(*Session) error, opts ...Option) error {
	opts = append(opts, WithTLS(true))
	return New(host, opts...).Do(ctx, fn)
}

// LastResponse returns the response of the most recent request, or nil
func (s *Session) LastResponse() *Response {
	return s.response
}

// HeaderValue returns a header of the last response
func (s *Session) HeaderValue(key string) string {
	if s.response == nil {
		return ""
	}
	return s.response.Header(key)
}
