//go:build !linux

package chatclient

import "net"

func newProber(conn net.Conn) prober {
	return newDeadlineProber(conn)
}
