package tcp

import (
	"time"
)

// Default configuration values.
const (
	// defaultChunkSize is the maximum number of bytes returned by a single
	// Receive call.
	defaultChunkSize = 1024
	// defaultDialTimeout bounds connection establishment.
	defaultDialTimeout = 10 * time.Second
)

// options holds the configuration for a client.
type options struct {
	dialTimeout time.Duration
	chunkSize   int
	// onState is called on every connection state transition.
	onState func(State)
}

// Option is a function that configures client options.
type Option func(*options)

// DialTimeoutOption returns an Option that sets the connect timeout.
func DialTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// ChunkSizeOption returns an Option that sets the maximum number of bytes a
// single Receive call returns.
func ChunkSizeOption(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// OnStateOption returns an Option that sets the state-change callback.
// The callback observes connecting, connected, failed, and disconnected
// transitions. It is invoked synchronously and should return quickly.
func OnStateOption(cb func(State)) Option {
	return func(o *options) {
		o.onState = cb
	}
}

// checkOptions sets default values for client options.
func checkOptions(opts *options) {
	if opts.dialTimeout <= 0 {
		opts.dialTimeout = defaultDialTimeout
	}
	if opts.chunkSize <= 0 {
		opts.chunkSize = defaultChunkSize
	}
}
