// Package tcp implements a small TCP client for request/response style
// exchanges with line-of-business servers. A Client is a single-use
// connection handle: Connect once, Send and Receive as needed, Disconnect
// when done. Receive reads at most one chunk per call and never blocks past
// its context or a concurrent Disconnect.
package tcp

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// State describes the connection lifecycle of a Client.
type State int32

const (
	// StateDisconnected means no connection is open.
	StateDisconnected State = iota
	// StateConnecting means a dial is in progress.
	StateConnecting
	// StateConnected means the connection is established.
	StateConnected
	// StateFailed means the last dial attempt failed.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrNotConnected is returned by Send and Receive when no connection is
	// open. Calling either before Connect, or after Disconnect, is a caller
	// error rather than a silent no-op.
	ErrNotConnected = errors.New("tcp: not connected")

	// ErrClosed is returned by Receive when the connection has been closed,
	// either by the peer or by a concurrent Disconnect.
	ErrClosed = errors.New("tcp: connection closed")

	// ErrAlreadyConnected is returned by Connect on a client that already
	// holds an open connection.
	ErrAlreadyConnected = errors.New("tcp: already connected")
)

// Client is a single TCP connection handle. The zero value is not usable;
// construct with NewClient. Methods are safe for concurrent use, and a
// Disconnect unblocks any pending Receive.
type Client struct {
	opts options

	mu   sync.Mutex
	conn net.Conn

	state atomic.Int32
}

// NewClient creates a disconnected client.
func NewClient(opt ...Option) *Client {
	var opts options
	for _, o := range opt {
		o(&opts)
	}
	checkOptions(&opts)
	return &Client{opts: opts}
}

// State reports the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	if old := c.state.Swap(int32(s)); old == int32(s) {
		return
	}
	if c.opts.onState != nil {
		c.opts.onState(s)
	}
}

// Connect dials host:port. The dial is bounded by the configured dial
// timeout and by ctx, whichever expires first. On failure the client ends
// in the failed state and can be dialed again.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	c.setState(StateConnecting)
	slog.Debug("tcp: dialing", "addr", addr)

	dialer := net.Dialer{Timeout: c.opts.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.setState(StateFailed)
		return errors.Wrapf(err, "connect %s", addr)
	}

	c.mu.Lock()
	if c.conn != nil {
		// Lost a race with a concurrent Connect.
		c.mu.Unlock()
		_ = conn.Close()
		return ErrAlreadyConnected
	}
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected)
	slog.Debug("tcp: connected", "addr", addr)
	return nil
}

// Send writes data to the connection. It returns ErrNotConnected when no
// connection is open.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	if _, err := conn.Write(data); err != nil {
		return errors.Wrap(err, "tcp: send")
	}
	return nil
}

// Receive performs one bounded read and returns whatever the peer sent, up
// to the configured chunk size. It returns ErrNotConnected when no
// connection is open, ErrClosed when the peer closed the connection or a
// concurrent Disconnect tore it down, and the context error when ctx
// expires first.
func (c *Client) Receive(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil, ErrNotConnected
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	} else {
		_ = conn.SetReadDeadline(time.Time{})
	}
	// Cancellation interrupts a pending read by forcing the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, c.opts.chunkSize)
	n, err := conn.Read(buf)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, errors.Wrap(err, "tcp: receive")
	}
	return buf[:n], nil
}

// Disconnect closes the connection and moves the client to the
// disconnected state. It is idempotent and unblocks any pending Receive.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
		slog.Debug("tcp: disconnected")
	}
	c.setState(StateDisconnected)
}
