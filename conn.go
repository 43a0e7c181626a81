// Package chatclient implements a single-connection text chat client.
// A Client opens one stream to a chat host, polls it for inbound text and
// peer disconnection, and lets the caller send text at any time. Messages and
// faults are delivered to subscribers asynchronously.
package chatclient

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/pkg/errors"
)

// Transcript lines written by the connection handle.
const (
	connectedLine    = "Client connected host %s on port %d"
	disconnectedLine = "Client disconnected."
)

// Conn is the connection handle. It owns at most one stream at a time and is
// either fully open or fully closed. Send may run concurrently with Poll and
// ReceiveAvailable.
type Conn struct {
	endpoint Endpoint
	opts     options

	mu      sync.RWMutex
	raw     net.Conn
	probe   prober
	opening bool // a dial is in flight
	opened  bool // set once Open succeeds, so a closed handle reports stale

	wmu sync.Mutex // serializes writers
}

// NewConn creates a closed handle for endpoint.
func NewConn(endpoint Endpoint, opt ...Option) *Conn {
	return newConnWithOptions(endpoint, newOptions(opt...))
}

func newConnWithOptions(endpoint Endpoint, opts options) *Conn {
	return &Conn{endpoint: endpoint, opts: opts}
}

// Endpoint returns the endpoint the handle connects to.
func (c *Conn) Endpoint() Endpoint {
	return c.endpoint
}

// Open establishes the stream. It returns ErrPortOutOfRange for an invalid
// port, ErrAlreadyOpen when the handle is connected, and a socket fault when
// the host refuses or the dial times out. The handle stays closed while
// the dial is in flight and a concurrent Open returns ErrAlreadyOpen.
func (c *Conn) Open(ctx context.Context) error {
	if err := c.endpoint.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.raw != nil || c.opening {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.opening = true
	c.mu.Unlock()

	raw, err := c.opts.dial(ctx, "tcp", c.endpoint.String())

	c.mu.Lock()
	c.opening = false
	if err == nil {
		c.raw = raw
		c.probe = newProber(raw)
		c.opened = true
	}
	c.mu.Unlock()

	if err != nil {
		return &dialError{err: errors.Wrapf(err, "connect %s", c.endpoint)}
	}

	c.opts.metrics.connections.Inc()
	c.opts.metrics.connected.Set(1)
	c.opts.logger.Info("connection established", "addr", c.endpoint.String())
	c.opts.sink.Log(fmt.Sprintf(connectedLine, c.endpoint.Host, c.endpoint.Port))

	return nil
}

// IsOpen reports whether the handle currently owns a stream.
func (c *Conn) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.raw != nil
}

// Addr returns the remote address of the stream, or nil when closed.
func (c *Conn) Addr() net.Addr {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.raw == nil {
		return nil
	}
	return c.raw.RemoteAddr()
}

// Poll probes liveness, waiting up to the probe timeout for the stream to
// become readable. It returns true when the peer has gone away: the stream is
// readable but has no bytes behind it. False means the peer is still there or
// data is pending; it does not mean data is available.
func (c *Conn) Poll() (bool, error) {
	p, err := c.prober()
	if err != nil {
		return false, err
	}

	readable, err := p.wait(c.opts.probeTimeout)
	if err != nil {
		return false, errors.Wrap(err, "poll")
	}
	if !readable {
		return false, nil
	}

	n, err := p.pending()
	if err != nil {
		return false, errors.Wrap(err, "poll")
	}

	return n == 0, nil
}

// ReceiveAvailable returns the bytes one read yields without blocking, at
// most the configured read buffer size. An empty result means nothing is
// available right now.
func (c *Conn) ReceiveAvailable() ([]byte, error) {
	p, err := c.prober()
	if err != nil {
		return nil, err
	}

	n, err := p.pending()
	if err != nil {
		return nil, errors.Wrap(err, "receive")
	}
	if n == 0 {
		return nil, nil
	}
	if n > c.opts.readBufferSize {
		n = c.opts.readBufferSize
	}

	buf := make([]byte, n)
	read, err := p.Read(buf)
	if err != nil {
		return nil, errors.Wrap(err, "receive")
	}

	c.opts.metrics.bytesReceived.Add(float64(read))
	return buf[:read], nil
}

// Send writes data to the stream. It fails with ErrNotOpen before the first
// Open and ErrClosed after Close.
func (c *Conn) Send(data []byte) error {
	c.mu.RLock()
	raw, opened := c.raw, c.opened
	c.mu.RUnlock()

	if raw == nil {
		if opened {
			return ErrClosed
		}
		return ErrNotOpen
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if _, err := raw.Write(data); err != nil {
		return errors.Wrap(err, "send")
	}

	c.opts.metrics.bytesSent.Add(float64(len(data)))
	return nil
}

// Close tears the stream down. It is idempotent and never fails; errors from
// the underlying close are logged and dropped.
func (c *Conn) Close() {
	c.mu.Lock()
	raw := c.raw
	c.raw, c.probe = nil, nil
	c.mu.Unlock()

	if raw == nil {
		return
	}

	if err := raw.Close(); err != nil {
		c.opts.logger.Debug("close error", "addr", c.endpoint.String(), "error", err)
	}

	c.opts.metrics.connected.Set(0)
	c.opts.logger.Info("connection closed", "addr", c.endpoint.String())
	c.opts.sink.Log(disconnectedLine)
}

func (c *Conn) prober() (prober, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.probe == nil {
		if c.opened {
			return nil, ErrClosed
		}
		return nil, ErrNotOpen
	}
	return c.probe, nil
}
