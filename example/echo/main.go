// Command echo runs a local chat host that echoes every byte back, for
// trying the chat client.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Zereker/chatclient/internal/peer"
)

func main() {
	var addr string

	cmd := &cobra.Command{
		Use:           "echo",
		Short:         "Run a local echo chat host",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := peer.Listen(addr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			slog.Info("echo host listening", "addr", server.Addr())
			return server.Serve(ctx, peer.Echo())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:13000", "address to listen on")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
