package http

import (
	"context"
	"net"
	"sync"
)

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// connHandoff gives the connection established by Open to the transport's
// first dial; later dials (after the server drops keep-alive) go to dial.
type connHandoff struct {
	mu   sync.Mutex
	conn net.Conn
	dial dialFunc
}

func newConnHandoff(conn net.Conn, dial dialFunc) *connHandoff {
	return &connHandoff{conn: conn, dial: dial}
}

func (h *connHandoff) take() net.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.conn
	h.conn = nil
	return c
}

func (h *connHandoff) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if c := h.take(); c != nil {
		return c, nil
	}
	return h.dial(ctx, network, addr)
}

// Close closes the pre-dialed connection if the transport never claimed it
func (h *connHandoff) Close() error {
	if c := h.take(); c != nil {
		return c.Close()
	}
	return nil
}
