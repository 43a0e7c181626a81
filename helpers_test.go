package chatclient

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/Zereker/chatclient/internal/peer"
)

const waitTimeout = 3 * time.Second

// recordSink records transcript lines for assertions.
type recordSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordSink) Log(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

func (s *recordSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *recordSink) count(line string) int {
	n := 0
	for _, l := range s.Lines() {
		if l == line {
			n++
		}
	}
	return n
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startPeer runs a local host with handler and stops it when the test ends.
func startPeer(t *testing.T, handler peer.Handler) *peer.Server {
	t.Helper()

	server, err := peer.Listen("127.0.0.1:0", peer.LoggerOption(quietLogger()))
	if err != nil {
		t.Fatalf("failed to start peer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Serve(ctx, handler)
	}()

	t.Cleanup(func() {
		cancel()
		server.Close()
		<-done
	})

	return server
}

// capturePeer starts a host that hands every accepted connection to the test.
func capturePeer(t *testing.T) (*peer.Server, <-chan *net.TCPConn) {
	t.Helper()

	conns := make(chan *net.TCPConn, 4)
	server := startPeer(t, peer.HandlerFunc(func(ctx context.Context, conn *net.TCPConn) {
		conns <- conn
		<-ctx.Done()
	}))

	return server, conns
}

func acceptConn(t *testing.T, conns <-chan *net.TCPConn) *net.TCPConn {
	t.Helper()

	select {
	case conn := <-conns:
		return conn
	case <-time.After(waitTimeout):
		t.Fatal("timeout waiting for peer to accept")
		return nil
	}
}

// unusedPort returns a port nothing listens on.
func unusedPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	return port
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}
