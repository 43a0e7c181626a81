package sink

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultStream is the Redis stream transcript lines are appended to.
const DefaultStream = "chat_history_stream"

const defaultRedisTimeout = 2 * time.Second

// streamAdder is the part of *redis.Client the sink uses.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Redis appends each transcript line as an entry of a Redis stream.
type Redis struct {
	client  streamAdder
	stream  string
	timeout time.Duration
	now     func() time.Time
}

// NewRedis creates a sink appending to stream, or to DefaultStream when empty.
func NewRedis(client *redis.Client, stream string) *Redis {
	return newRedis(client, stream)
}

func newRedis(client streamAdder, stream string) *Redis {
	if stream == "" {
		stream = DefaultStream
	}
	return &Redis{
		client:  client,
		stream:  stream,
		timeout: defaultRedisTimeout,
		now:     time.Now,
	}
}

// Log adds line to the stream. Failures are reported to the default slog
// logger and otherwise ignored.
func (r *Redis) Log(line string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"line": line,
			"time": r.now().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		slog.Error("transcript append failed", "stream", r.stream, "error", err)
	}
}
