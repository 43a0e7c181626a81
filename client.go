package chatclient

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// State is the lifecycle state of a Client.
type State int32

const (
	// StateIdle means no connection is open or being opened.
	StateIdle State = iota
	// StateConnecting means the handle is being opened.
	StateConnecting
	// StateListening means the polling loop is running.
	StateListening
	// StateDisconnecting means the handle is being torn down.
	StateDisconnecting
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateListening:
		return "Listening"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return "Unknown"
	}
}

// Client is the chat client controller. Connect runs the polling loop on the
// calling goroutine; SendMessage and Disconnect may be called from any other
// goroutine. Faults never surface as return values: they are delivered to
// OnError subscribers.
type Client struct {
	opts      options
	assembler *Assembler
	notify    *notifier

	port  atomic.Int64
	stop  atomic.Bool
	wake  chan struct{} // signalled on stop so the loop need not finish its sleep
	state atomic.Int32

	mu   sync.RWMutex
	conn *Conn // current or most recent handle, nil before the first Connect

	// transcript orders an outbound line before any reply it provokes.
	transcript sync.Mutex
}

// New creates an idle client. Call Close when done with it.
func New(opt ...Option) *Client {
	opts := newOptions(opt...)

	c := &Client{
		opts:      opts,
		assembler: NewAssembler(opts.encoding),
		notify:    newNotifier(opts.logger),
		wake:      make(chan struct{}, 1),
	}
	c.port.Store(int64(opts.port))

	return c
}

// Hostname returns the host the client connects to.
func (c *Client) Hostname() string {
	return c.opts.hostname
}

// Port returns the port the client connects to.
func (c *Client) Port() int {
	return int(c.port.Load())
}

// SetPort changes the port used by the next Connect.
func (c *Client) SetPort(port int) {
	c.port.Store(int64(port))
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Stopped reports whether a stop has been requested and not yet observed.
func (c *Client) Stopped() bool {
	return c.stop.Load()
}

// SetStop sets the stop flag. The polling loop reads it at the top of every
// cycle, so a stop takes effect within one polling interval.
func (c *Client) SetStop(stop bool) {
	c.stop.Store(stop)
	if stop {
		c.signalStop()
	}
}

func (c *Client) signalStop() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// OnMessage subscribes fn to received messages and returns a function that
// unsubscribes it. Subscribers run on the client's dispatcher goroutine.
func (c *Client) OnMessage(fn func(message string)) func() {
	return c.notify.subscribeMessage(fn)
}

// OnError subscribes fn to error records and returns a function that
// unsubscribes it. Subscribers run on the client's dispatcher goroutine.
func (c *Client) OnError(fn func(err *Error)) func() {
	return c.notify.subscribeError(fn)
}

// Connect opens the connection and runs the polling loop until the stop flag
// is set, ctx is done, the peer disconnects or a fault occurs. It returns
// after the handle has been torn down. Connect is a no-op while the client
// is not idle.
func (c *Client) Connect(ctx context.Context) {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateConnecting)) {
		c.opts.logger.Debug("connect ignored", "state", c.State().String())
		return
	}

	endpoint := Endpoint{Host: c.opts.hostname, Port: c.Port()}
	conn := newConnWithOptions(endpoint, c.opts)

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	defer c.teardown(conn)

	if err := conn.Open(ctx); err != nil {
		c.fail(err)
		return
	}

	c.state.Store(int32(StateListening))

	if err := c.listen(ctx, conn); err != nil {
		c.fail(err)
	}
}

// listen runs polling cycles: drain inbound data, probe liveness, sleep.
func (c *Client) listen(ctx context.Context, conn *Conn) error {
	for !c.stopRequested(ctx) {
		msg, ok, err := c.assembler.Drain(conn)
		if err != nil {
			return err
		}
		if ok {
			c.receive(msg)
		}

		gone, err := conn.Poll()
		if err != nil {
			return err
		}
		if gone {
			return ErrHostDisconnected
		}

		if !c.sleep(ctx) {
			return nil
		}
	}

	return nil
}

// sleep waits one polling interval and reports false if ctx ended first.
// A stop request cuts the wait short; the loop top then observes it.
func (c *Client) sleep(ctx context.Context) bool {
	timer := time.NewTimer(c.opts.pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-c.wake:
		return true
	case <-timer.C:
		return true
	}
}

func (c *Client) stopRequested(ctx context.Context) bool {
	return c.stop.Load() || ctx.Err() != nil
}

// teardown is the single exit path of Connect.
func (c *Client) teardown(conn *Conn) {
	c.state.Store(int32(StateDisconnecting))
	conn.Close()
	c.stop.Store(false)
	select {
	case <-c.wake:
	default:
	}
	c.state.Store(int32(StateIdle))
}

func (c *Client) receive(msg string) {
	c.opts.metrics.messagesReceived.Inc()
	c.notify.push(event{message: msg})

	c.transcript.Lock()
	c.opts.sink.Log(msg)
	c.transcript.Unlock()
}

// fail reports err to error subscribers.
func (c *Client) fail(err error) {
	record := Classify(err)

	c.opts.metrics.recordError(record.Kind)
	c.opts.logger.Warn("chat client fault", "kind", record.Kind.String(), "error", err)
	c.notify.push(event{err: record})
}

// SendMessage writes text to the connection. Failures are delivered to
// OnError subscribers; nothing is retried.
func (c *Client) SendMessage(text string) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		c.fail(ErrNotOpen)
		return
	}

	data, err := encodeText(c.opts.encoding, text)
	if err != nil {
		c.fail(err)
		return
	}

	c.transcript.Lock()
	defer c.transcript.Unlock()

	if err := conn.Send(data); err != nil {
		c.fail(err)
		return
	}

	c.opts.metrics.messagesSent.Inc()
	c.opts.sink.Log(text)
}

// Disconnect asks the running loop to stop. The loop tears the connection
// down when it observes the request.
func (c *Client) Disconnect() {
	c.SetStop(true)
}

// Close requests a stop, delivers queued notifications and stops the
// dispatcher. Notifications raised afterwards are dropped.
func (c *Client) Close() {
	c.Disconnect()
	c.notify.close()
}
