// Package peer runs a local chat host: a TCP listener that hands every
// accepted connection to a Handler. Tests and the echo example use it as the
// remote end of a chat client.
package peer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Handler serves one accepted connection. The server closes conn after
// Handle returns; ctx is done when the server shuts down.
type Handler interface {
	Handle(ctx context.Context, conn *net.TCPConn)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, conn *net.TCPConn)

// Handle calls f(ctx, conn).
func (f HandlerFunc) Handle(ctx context.Context, conn *net.TCPConn) {
	f(ctx, conn)
}

// Server is a TCP listener with tracked connections.
type Server struct {
	listener *net.TCPListener
	logger   *slog.Logger

	mu     sync.Mutex
	conns  map[*net.TCPConn]struct{}
	closed bool
}

// Option configures a Server.
type Option func(*Server)

// LoggerOption sets the logger for the server.
func LoggerOption(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Listen binds a server to addr, e.g. "127.0.0.1:0".
func Listen(addr string, opts ...Option) (*Server, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	listener, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		listener: listener,
		logger:   slog.Default(),
		conns:    make(map[*net.TCPConn]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Serve accepts connections and runs handler for each until ctx is done or
// Close is called. It returns once every handler has returned.
func (s *Server) Serve(ctx context.Context, handler Handler) error {
	s.logger.Info("peer started", "addr", s.Addr())

	ctx, cancel := context.WithCancel(ctx)
	group, child := errgroup.WithContext(ctx)

	group.Go(func() error {
		<-child.Done()
		s.shutdown()
		return nil
	})

	var err error
	for {
		conn, aerr := s.listener.AcceptTCP()
		if aerr != nil {
			if !s.isClosed() && ctx.Err() == nil {
				s.logger.Error("accept error", "error", aerr)
				err = aerr
			}
			break
		}

		if !s.track(conn) {
			conn.Close()
			break
		}

		s.logger.Debug("accepted connection", "remote_addr", conn.RemoteAddr())
		group.Go(func() error {
			defer s.untrack(conn)
			handler.Handle(child, conn)
			return nil
		})
	}

	cancel()
	_ = group.Wait()
	s.logger.Info("peer stopped", "addr", s.Addr())

	return err
}

// Close stops the server and closes every open connection.
func (s *Server) Close() error {
	return s.shutdown()
}

// Addr returns the listener's address.
func (s *Server) Addr() *net.TCPAddr {
	return s.listener.Addr().(*net.TCPAddr)
}

// Port returns the listener's port.
func (s *Server) Port() int {
	return s.Addr().Port
}

// ConnCount returns the number of open connections.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// CloseConns closes every open connection but keeps accepting new ones.
func (s *Server) CloseConns() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.conns {
		conn.Close()
	}
}

func (s *Server) shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	return s.listener.Close()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(conn *net.TCPConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn *net.TCPConn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()

	conn.Close()
}

// Echo returns a handler that writes every byte it reads back to the sender.
func Echo() Handler {
	return HandlerFunc(func(ctx context.Context, conn *net.TCPConn) {
		if _, err := io.Copy(conn, conn); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.Debug("echo stopped", "remote_addr", conn.RemoteAddr(), "error", err)
		}
	})
}
