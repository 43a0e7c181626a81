package chatclient

import (
	"net"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// newProber polls the socket descriptor directly when the connection exposes
// one and falls back to read deadlines otherwise.
func newProber(conn net.Conn) prober {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return newDeadlineProber(conn)
	}

	rc, err := sc.SyscallConn()
	if err != nil {
		return newDeadlineProber(conn)
	}

	return &fdProber{conn: conn, rc: rc}
}

// fdProber uses poll(2) for readability and TIOCINQ for the pending count.
type fdProber struct {
	conn net.Conn
	rc   syscall.RawConn
}

func (p *fdProber) Read(b []byte) (int, error) {
	return p.conn.Read(b)
}

func (p *fdProber) wait(timeout time.Duration) (bool, error) {
	var (
		ready bool
		perr  error
	)

	err := p.rc.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		for {
			var n int
			n, perr = unix.Poll(fds, int(timeout/time.Millisecond))
			if perr == unix.EINTR {
				continue
			}
			// POLLHUP and POLLERR are reported even though only POLLIN was asked for.
			ready = n > 0 && fds[0].Revents != 0
			return
		}
	})
	if err != nil {
		return false, err
	}
	if perr != nil {
		return false, os.NewSyscallError("poll", perr)
	}

	return ready, nil
}

func (p *fdProber) pending() (int, error) {
	var (
		n    int
		ierr error
	)

	err := p.rc.Control(func(fd uintptr) {
		n, ierr = unix.IoctlGetInt(int(fd), unix.TIOCINQ)
	})
	if err != nil {
		return 0, err
	}
	if ierr != nil {
		return 0, os.NewSyscallError("ioctl", ierr)
	}

	return n, nil
}
