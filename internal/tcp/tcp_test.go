package tcp

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoListener accepts one connection and echoes whatever it reads.
func echoListener(t *testing.T) (host string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			if _, err := conn.Write(buf[:n]); err != nil {
				return
			}
		}
	}()

	return splitAddr(t, ln.Addr())
}

func splitAddr(t *testing.T, addr net.Addr) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr.String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestClientSendReceive(t *testing.T) {
	host, port := echoListener(t)

	c := NewClient()
	require.NoError(t, c.Connect(context.Background(), host, port))
	defer c.Disconnect()

	assert.Equal(t, StateConnected, c.State())

	require.NoError(t, c.Send([]byte("hello")))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestClientSendNotConnected(t *testing.T) {
	c := NewClient()
	err := c.Send([]byte("hi"))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestClientReceiveNotConnected(t *testing.T) {
	c := NewClient()
	_, err := c.Receive(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestClientSendAfterDisconnect(t *testing.T) {
	host, port := echoListener(t)

	c := NewClient()
	require.NoError(t, c.Connect(context.Background(), host, port))
	c.Disconnect()

	err := c.Send([]byte("hi"))
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClientConnectTwice(t *testing.T) {
	host, port := echoListener(t)

	c := NewClient()
	require.NoError(t, c.Connect(context.Background(), host, port))
	defer c.Disconnect()

	err := c.Connect(context.Background(), host, port)
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestClientConnectFailure(t *testing.T) {
	// A listener that is closed immediately gives us a port that refuses
	// connections.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port := splitAddr(t, ln.Addr())
	require.NoError(t, ln.Close())

	c := NewClient(DialTimeoutOption(2 * time.Second))
	err = c.Connect(context.Background(), host, port)
	require.Error(t, err)
	assert.Equal(t, StateFailed, c.State())
}

func TestClientReceiveChunkSize(t *testing.T) {
	host, port := echoListener(t)

	c := NewClient(ChunkSizeOption(4))
	require.NoError(t, c.Connect(context.Background(), host, port))
	defer c.Disconnect()

	require.NoError(t, c.Send([]byte("abcdefgh")))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, err := c.Receive(ctx)
	require.NoError(t, err)
	// One call returns at most chunkSize bytes; the remainder stays
	// buffered for the next call.
	assert.LessOrEqual(t, len(data), 4)
	assert.Equal(t, "abcd"[:len(data)], string(data))
}

func TestClientReceivePeerClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	host, port := splitAddr(t, ln.Addr())

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_ = conn.Close()
	}()

	c := NewClient()
	require.NoError(t, c.Connect(context.Background(), host, port))
	defer c.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = c.Receive(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClientDisconnectUnblocksReceive(t *testing.T) {
	// Server accepts but never writes, so Receive blocks until Disconnect.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	host, port := splitAddr(t, ln.Addr())

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1)
		_, _ = conn.Read(buf)
	}()

	c := NewClient()
	require.NoError(t, c.Connect(context.Background(), host, port))

	done := make(chan error, 1)
	go func() {
		_, err := c.Receive(context.Background())
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	c.Disconnect()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("receive did not unblock after disconnect")
	}
}

func TestClientReceiveContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	host, port := splitAddr(t, ln.Addr())

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1)
		_, _ = conn.Read(buf)
	}()

	c := NewClient()
	require.NoError(t, c.Connect(context.Background(), host, port))
	defer c.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = c.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientDisconnectIdempotent(t *testing.T) {
	host, port := echoListener(t)

	var mu sync.Mutex
	var states []State
	c := NewClient(OnStateOption(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}))

	require.NoError(t, c.Connect(context.Background(), host, port))
	c.Disconnect()
	c.Disconnect()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateConnecting, StateConnected, StateDisconnected}, states)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestCheckOptionsDefaults(t *testing.T) {
	var opts options
	checkOptions(&opts)
	assert.Equal(t, defaultChunkSize, opts.chunkSize)
	assert.Equal(t, defaultDialTimeout, opts.dialTimeout)
}

func TestWrappedErrorsExposeCause(t *testing.T) {
	c := NewClient(DialTimeoutOption(time.Second))
	err := c.Connect(context.Background(), "127.0.0.1", 1)
	require.Error(t, err)
	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr))
}
