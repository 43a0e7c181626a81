package chatclient

import (
	"context"
	"net"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

func TestHostnameOption(t *testing.T) {
	var opts options
	HostnameOption("chat.example")(&opts)

	if opts.hostname != "chat.example" {
		t.Errorf("hostname = %q, want chat.example", opts.hostname)
	}
}

func TestPortOption(t *testing.T) {
	var opts options
	PortOption(4242)(&opts)

	if opts.port != 4242 {
		t.Errorf("port = %d, want 4242", opts.port)
	}
}

func TestPollIntervalOption(t *testing.T) {
	var opts options
	PollIntervalOption(time.Second)(&opts)

	if opts.pollInterval != time.Second {
		t.Errorf("pollInterval = %v, want %v", opts.pollInterval, time.Second)
	}
}

func TestProbeTimeoutOption(t *testing.T) {
	var opts options
	ProbeTimeoutOption(time.Second)(&opts)

	if opts.probeTimeout != time.Second {
		t.Errorf("probeTimeout = %v, want %v", opts.probeTimeout, time.Second)
	}
}

func TestReadBufferSizeOption(t *testing.T) {
	var opts options
	ReadBufferSizeOption(1024)(&opts)

	if opts.readBufferSize != 1024 {
		t.Errorf("readBufferSize = %d, want 1024", opts.readBufferSize)
	}
}

func TestEncodingOption(t *testing.T) {
	var opts options
	EncodingOption(charmap.Windows1252)(&opts)

	if opts.encoding != charmap.Windows1252 {
		t.Error("encoding not set correctly")
	}
}

func TestSinkAndLoggerOption(t *testing.T) {
	sink := &recordSink{}
	logger := &mockLogger{}

	var opts options
	SinkOption(sink)(&opts)
	LoggerOption(logger)(&opts)

	if opts.sink != sink {
		t.Error("sink not set correctly")
	}
	if opts.logger != logger {
		t.Error("logger not set correctly")
	}
}

func TestDialerOption(t *testing.T) {
	called := false
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		called = true
		return nil, net.ErrClosed
	}

	opts := newOptions(DialerOption(dial))
	_, _ = opts.dial(context.Background(), "tcp", "127.0.0.1:1")

	if !called {
		t.Error("custom dialer not used")
	}
}

func TestCheckOptions_DefaultValues(t *testing.T) {
	opts := newOptions()

	if opts.hostname != DefaultHostname {
		t.Errorf("hostname = %q, want %q", opts.hostname, DefaultHostname)
	}
	if opts.port != DefaultPort {
		t.Errorf("port = %d, want %d", opts.port, DefaultPort)
	}
	if opts.pollInterval != defaultPollInterval {
		t.Errorf("pollInterval = %v, want %v", opts.pollInterval, defaultPollInterval)
	}
	if opts.probeTimeout != defaultProbeTimeout {
		t.Errorf("probeTimeout = %v, want %v", opts.probeTimeout, defaultProbeTimeout)
	}
	if opts.dialTimeout != defaultDialTimeout {
		t.Errorf("dialTimeout = %v, want %v", opts.dialTimeout, defaultDialTimeout)
	}
	if opts.readBufferSize != defaultReadBufferSize {
		t.Errorf("readBufferSize = %d, want %d", opts.readBufferSize, defaultReadBufferSize)
	}
	if opts.encoding != charmap.ISO8859_1 {
		t.Error("encoding should default to ISO-8859-1")
	}
	if opts.logger == nil || opts.sink == nil || opts.metrics == nil || opts.dial == nil {
		t.Error("logger, sink, metrics and dial should have defaults")
	}
}

func TestCheckOptions_EmptyHostname(t *testing.T) {
	opts := newOptions(HostnameOption(""))

	if opts.hostname != DefaultHostname {
		t.Errorf("hostname = %q, want %q", opts.hostname, DefaultHostname)
	}
}
