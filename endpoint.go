package chatclient

import (
	"net"
	"strconv"

	"github.com/pkg/errors"
)

// Default endpoint of the chat host.
const (
	DefaultHostname = "127.0.0.1"
	DefaultPort     = 13000
)

// Valid port range.
const (
	MinPort = 0
	MaxPort = 65535
)

// Endpoint is the remote host a connection is opened to.
type Endpoint struct {
	Host string
	Port int
}

// Validate reports ErrPortOutOfRange for ports outside MinPort..MaxPort.
func (e Endpoint) Validate() error {
	if e.Port < MinPort || e.Port > MaxPort {
		return errors.Wrapf(ErrPortOutOfRange, "port %d not in [%d, %d]", e.Port, MinPort, MaxPort)
	}
	return nil
}

// String returns host:port.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}
