package chatclient

import (
	"bufio"
	"io"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
)

// prober answers the two questions the polling loop asks of a stream:
// is anything readable, and how much can be read without blocking.
type prober interface {
	io.Reader
	// wait blocks up to timeout until the stream is readable. A stream whose
	// peer has closed is readable.
	wait(timeout time.Duration) (bool, error)
	// pending reports the number of bytes readable without blocking.
	pending() (int, error)
}

// peekWait bounds the read attempt that asks a deadline prober for pending data.
const peekWait = time.Millisecond

// deadlineProber works on any net.Conn by reading ahead into a buffer under
// a short read deadline.
type deadlineProber struct {
	conn   net.Conn
	reader *bufio.Reader
}

func newDeadlineProber(conn net.Conn) *deadlineProber {
	return &deadlineProber{conn: conn, reader: bufio.NewReader(conn)}
}

func (p *deadlineProber) Read(b []byte) (int, error) {
	return p.reader.Read(b)
}

func (p *deadlineProber) wait(timeout time.Duration) (bool, error) {
	if p.reader.Buffered() > 0 {
		return true, nil
	}
	return p.peek(timeout)
}

func (p *deadlineProber) pending() (int, error) {
	if n := p.reader.Buffered(); n > 0 {
		return n, nil
	}
	if _, err := p.peek(peekWait); err != nil {
		return 0, err
	}
	return p.reader.Buffered(), nil
}

func (p *deadlineProber) peek(timeout time.Duration) (bool, error) {
	if err := p.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		if closedStream(err) {
			return true, nil
		}
		return false, err
	}
	_, err := p.reader.Peek(1)
	_ = p.conn.SetReadDeadline(time.Time{})

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return false, nil
	case closedStream(err):
		// readable with nothing behind it: the peer is gone
		return true, nil
	default:
		return false, err
	}
}

// closedStream reports errors that non-socket conns such as net.Pipe return
// once either end has been closed.
func closedStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed)
}
