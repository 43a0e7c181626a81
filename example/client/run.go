package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Zereker/chatclient"
	"github.com/Zereker/chatclient/sink"
)

const quitCommand = "/quit"

type config struct {
	host        string
	port        int
	logDir      string
	redisAddr   string
	redisStream string
	metricsAddr string
	verbose     bool
}

func run(ctx context.Context, cfg config, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var sinks []chatclient.Sink
	if cfg.logDir != "" {
		sinks = append(sinks, sink.NewFile(cfg.logDir))
	}
	if cfg.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.redisAddr})
		defer rdb.Close()
		sinks = append(sinks, sink.NewRedis(rdb, cfg.redisStream))
	}
	if cfg.verbose {
		sinks = append(sinks, sink.NewSlog(logger))
	}

	registry := prometheus.NewRegistry()

	client := chatclient.New(
		chatclient.HostnameOption(cfg.host),
		chatclient.PortOption(cfg.port),
		chatclient.LoggerOption(logger),
		chatclient.SinkOption(sink.Multi(sinks...)),
		chatclient.MetricsOption(chatclient.NewMetrics(registry)),
	)
	defer client.Close()

	client.OnMessage(func(message string) {
		fmt.Fprintf(out, "<< %s\n", message)
	})
	client.OnError(func(err *chatclient.Error) {
		switch err.Kind {
		case chatclient.KindHostDisconnected:
			fmt.Fprintln(out, err.Message)
		default:
			fmt.Fprintf(out, "Error (%s): %s\n", err.Kind, err.Message)
		}
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, child := errgroup.WithContext(runCtx)

	group.Go(func() error {
		defer cancel()
		fmt.Fprintf(out, "Connecting to %s:%d\n", client.Hostname(), client.Port())
		client.Connect(child)
		fmt.Fprintln(out, "Disconnected")
		return nil
	})

	lines := readLines(child, in)
	group.Go(func() error {
		return sendLines(child, client, lines)
	})

	if cfg.metricsAddr != "" {
		serveMetrics(child, group, cfg.metricsAddr, registry)
	}

	return group.Wait()
}

// sendLines sends every line until input ends, /quit is read or ctx is done.
// Sending runs here, off the polling loop, so a stalled write never delays
// received messages. Failed sends are reported by the error subscriber.
func sendLines(ctx context.Context, client *chatclient.Client, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || line == quitCommand {
				client.Disconnect()
				return nil
			}
			if line == "" {
				continue
			}
			client.SendMessage(line)
		}
	}
}

// readLines scans in on its own goroutine. The channel closes at end of
// input or, after the next line is read, once ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func serveMetrics(ctx context.Context, group *errgroup.Group, addr string, registry *prometheus.Registry) {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "metrics server")
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
}
