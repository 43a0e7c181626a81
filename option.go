package chatclient

import (
	"context"
	"net"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DialFunc opens the stream to addr.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// options holds the configuration for a client and its connection handle.
type options struct {
	hostname string
	port     int

	logger   Logger
	sink     Sink
	metrics  *Metrics
	encoding encoding.Encoding
	dial     DialFunc

	pollInterval   time.Duration // sleep between polling cycles
	probeTimeout   time.Duration // bounded wait of the liveness probe
	dialTimeout    time.Duration
	readBufferSize int // bytes requested per read while draining
}

// Default configuration values.
const (
	defaultPollInterval   = 200 * time.Millisecond
	defaultProbeTimeout   = 200 * time.Millisecond
	defaultDialTimeout    = 10 * time.Second
	defaultReadBufferSize = 256
)

// Option is a function that configures client options.
type Option func(*options)

func newOptions(opt ...Option) options {
	opts := options{
		hostname: DefaultHostname,
		port:     DefaultPort,
	}
	for _, o := range opt {
		o(&opts)
	}
	checkOptions(&opts)
	return opts
}

// checkOptions sets default values for unset options.
func checkOptions(opts *options) {
	if opts.hostname == "" {
		opts.hostname = DefaultHostname
	}

	if opts.logger == nil {
		opts.logger = defaultLogger()
	}

	if opts.sink == nil {
		opts.sink = nopSink{}
	}

	if opts.metrics == nil {
		opts.metrics = NewMetrics(nil)
	}

	if opts.encoding == nil {
		opts.encoding = charmap.ISO8859_1
	}

	if opts.pollInterval <= 0 {
		opts.pollInterval = defaultPollInterval
	}

	if opts.probeTimeout <= 0 {
		opts.probeTimeout = defaultProbeTimeout
	}

	if opts.dialTimeout <= 0 {
		opts.dialTimeout = defaultDialTimeout
	}

	if opts.readBufferSize <= 0 {
		opts.readBufferSize = defaultReadBufferSize
	}

	if opts.dial == nil {
		d := &net.Dialer{Timeout: opts.dialTimeout}
		opts.dial = d.DialContext
	}
}

// HostnameOption sets the host to connect to. Defaults to 127.0.0.1.
func HostnameOption(hostname string) Option {
	return func(o *options) {
		o.hostname = hostname
	}
}

// PortOption sets the port to connect to. Defaults to 13000.
// The port is validated when connecting, not here.
func PortOption(port int) Option {
	return func(o *options) {
		o.port = port
	}
}

// LoggerOption sets the diagnostic logger.
// If not set, the default slog logger will be used.
func LoggerOption(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// SinkOption sets the transcript sink. Without one the transcript is discarded.
func SinkOption(sink Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// MetricsOption sets the metrics the client records into.
func MetricsOption(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// EncodingOption sets the single-byte text encoding used on the wire.
// Defaults to ISO-8859-1.
func EncodingOption(enc encoding.Encoding) Option {
	return func(o *options) {
		o.encoding = enc
	}
}

// DialerOption replaces the function used to open the stream.
func DialerOption(dial DialFunc) Option {
	return func(o *options) {
		o.dial = dial
	}
}

// PollIntervalOption sets the sleep between polling cycles.
func PollIntervalOption(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// ProbeTimeoutOption sets how long the liveness probe waits for readability.
func ProbeTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		o.probeTimeout = d
	}
}

// DialTimeoutOption sets the timeout of the default dialer.
// It has no effect together with DialerOption.
func DialTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// ReadBufferSizeOption sets how many bytes a single read requests while draining.
func ReadBufferSizeOption(size int) Option {
	return func(o *options) {
		o.readBufferSize = size
	}
}
