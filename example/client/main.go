// Command client is a terminal front end for the chat client: lines read
// from stdin are sent, received messages are printed, and /quit disconnects.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfg config

	cmd := &cobra.Command{
		Use:           "client",
		Short:         "Connect to a chat host and chat from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.host, "host", "127.0.0.1", "chat host to connect to")
	flags.IntVarP(&cfg.port, "port", "p", 13000, "chat host port")
	flags.StringVar(&cfg.logDir, "log-dir", "logs", "directory for transcript files, empty to disable")
	flags.StringVar(&cfg.redisAddr, "redis-addr", "", "Redis address to append the transcript to a stream")
	flags.StringVar(&cfg.redisStream, "redis-stream", "chat_history_stream", "Redis stream name")
	flags.StringVar(&cfg.metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "log diagnostics and the transcript to stderr")

	return cmd
}
