package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mailmirror/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP server exposing the account, sync and mailbox endpoints.

The server runs until interrupted. The listen address comes from the --addr
flag, falling back to the server.addr config key.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, else :3000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if accountService == nil || syncService == nil || mailboxService == nil {
		return errors.New("services not configured")
	}

	addr := serveAddr
	if addr == "" && configStore != nil {
		addr = configStore.GetString("server.addr")
	}
	if addr == "" {
		addr = ":3000"
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := httpapi.NewServer(accountService, syncService, mailboxService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	cmd.Printf("Serving on %s. Press Ctrl+C to stop.\n", addr)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	cmd.Println("Server stopped.")
	return nil
}
