// Package ws implements a thin WebSocket client for streaming endpoints.
// It exposes text and binary sends plus a channel-based receive loop, so
// callers range over messages instead of re-arming a read callback after
// every frame.
package ws

import (
	"context"
	"fmt"
	"sync"

	"github.com/coder/websocket"

	"github.com/netcanis/feat-network/internal/validation"
)

// maxReadSize caps the maximum WebSocket frame size to 1 MB. Streaming
// payloads here are small JSON or short binary blobs; anything larger is
// likely malformed.
const maxReadSize = 1 << 20 // 1 MB

// MessageType identifies the frame type of a received message.
type MessageType int

const (
	// TextMessage is a UTF-8 text frame.
	TextMessage MessageType = iota
	// BinaryMessage is a binary frame.
	BinaryMessage
)

// Message is a single frame received from the server. Err is non-nil on
// read error or disconnect; once an errored Message is delivered the
// channel closes and no further messages arrive.
type Message struct {
	Type MessageType
	Data []byte
	Err  error
}

// Client is a connected WebSocket session.
type Client struct {
	conn *websocket.Conn
	url  string

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to a ws:// or wss:// URL. The URL is validated before any
// network traffic: non-WebSocket schemes and private or loopback hosts are
// rejected up front.
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	if err := validation.ValidateWebSocketURL(rawURL); err != nil {
		return nil, err
	}

	conn, _, err := websocket.Dial(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	conn.SetReadLimit(maxReadSize)

	return &Client{conn: conn, url: rawURL}, nil
}

// SendText writes a text frame.
func (c *Client) SendText(ctx context.Context, data string) error {
	if err := c.conn.Write(ctx, websocket.MessageText, []byte(data)); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

// SendBinary writes a binary frame.
func (c *Client) SendBinary(ctx context.Context, data []byte) error {
	if err := c.conn.Write(ctx, websocket.MessageBinary, data); err != nil {
		return fmt.Errorf("write binary: %w", err)
	}
	return nil
}

// Listen starts the read loop and returns a channel of messages. The
// channel closes when the connection drops, Close is called, or ctx is
// cancelled; the final message before close carries the terminating error.
func (c *Client) Listen(ctx context.Context) <-chan Message {
	ch := make(chan Message, 64)
	go func() {
		defer close(ch)
		for {
			typ, data, err := c.conn.Read(ctx)
			if err != nil {
				select {
				case ch <- Message{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			msg := Message{Type: TextMessage, Data: data}
			if typ == websocket.MessageBinary {
				msg.Type = BinaryMessage
			}
			select {
			case ch <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Close performs the closing handshake with a "going away" status. It is
// idempotent; repeated calls return the result of the first close.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close(websocket.StatusGoingAway, "going away")
	})
	return c.closeErr
}
