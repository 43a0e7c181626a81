package chatclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a client records into.
type Metrics struct {
	connections      prometheus.Counter
	connected        prometheus.Gauge
	messagesSent     prometheus.Counter
	messagesReceived prometheus.Counter
	bytesSent        prometheus.Counter
	bytesReceived    prometheus.Counter
	errors           *prometheus.CounterVec
}

// NewMetrics creates the client collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		connections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatclient",
			Name:      "connections_total",
			Help:      "Total number of connections opened to the chat host",
		}),
		connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatclient",
			Name:      "connected",
			Help:      "1 while a connection to the chat host is open",
		}),
		messagesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatclient",
			Name:      "messages_sent_total",
			Help:      "Total number of messages sent",
		}),
		messagesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatclient",
			Name:      "messages_received_total",
			Help:      "Total number of messages assembled from inbound data",
		}),
		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatclient",
			Name:      "sent_bytes_total",
			Help:      "Total number of bytes written to the stream",
		}),
		bytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatclient",
			Name:      "received_bytes_total",
			Help:      "Total number of bytes read from the stream",
		}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatclient",
			Name:      "errors_total",
			Help:      "Total number of error notifications by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) recordError(kind ErrorKind) {
	m.errors.WithLabelValues(kind.String()).Inc()
}
