package peer

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"
)

func quietOption() Option {
	return LoggerOption(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serve(t *testing.T, s *Server, handler Handler) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, handler)
	}()

	return cancel, done
}

func waitServe(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

func TestListen(t *testing.T) {
	s, err := Listen("127.0.0.1:0", quietOption())
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer s.Close()

	if s.Port() == 0 {
		t.Error("expected an assigned port")
	}
}

func TestListen_Occupied(t *testing.T) {
	s, err := Listen("127.0.0.1:0", quietOption())
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer s.Close()

	if _, err := Listen(s.Addr().String(), quietOption()); err == nil {
		t.Error("expected error for occupied port")
	}
}

func TestServer_Echo(t *testing.T) {
	s, err := Listen("127.0.0.1:0", quietOption())
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	cancel, done := serve(t, s, Echo())
	defer cancel()

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("hello")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 5)
	if _, err := io.ReadFull(conn, buf); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(buf) != "hello" {
		t.Errorf("echo = %q, want hello", buf)
	}

	cancel()
	if err := waitServe(t, done); err != nil {
		t.Errorf("Serve returned %v", err)
	}
}

func TestServer_CloseClosesConns(t *testing.T) {
	s, err := Listen("127.0.0.1:0", quietOption())
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	accepted := make(chan struct{}, 1)
	cancel, done := serve(t, s, HandlerFunc(func(ctx context.Context, conn *net.TCPConn) {
		accepted <- struct{}{}
		<-ctx.Done()
	}))
	defer cancel()

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	select {
	case <-accepted:
	case <-time.After(5 * time.Second):
		t.Fatal("connection not accepted")
	}
	if n := s.ConnCount(); n != 1 {
		t.Errorf("ConnCount = %d, want 1", n)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := waitServe(t, done); err != nil {
		t.Errorf("Serve returned %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("expected EOF after Close, got %v", err)
	}
	if n := s.ConnCount(); n != 0 {
		t.Errorf("ConnCount = %d after Close, want 0", n)
	}
}

func TestServer_CloseConns(t *testing.T) {
	s, err := Listen("127.0.0.1:0", quietOption())
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	cancel, done := serve(t, s, Echo())

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.ConnCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	s.CloseConns()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("expected EOF after CloseConns, got %v", err)
	}

	cancel()
	waitServe(t, done)
}
