package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mailmirror/internal/core/ports/driving"
)

var (
	syncPage     int
	syncPageSize int
)

var syncCmd = &cobra.Command{
	Use:   "sync <account-id>",
	Short: "Synchronise threads for an account",
	Long: `Runs one sync pass for the account and prints the resulting page.

Page 1 pulls threads newer than the local copy; higher pages pull older
ones. Results always come from the local store, newest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVar(&syncPage, "page", 1, "page number")
	syncCmd.Flags().IntVar(&syncPageSize, "page-size", driving.DefaultPageSize, "threads per page")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	accountID := args[0]
	cmd.Printf("Synchronising account %s (page %d)...\n", accountID, syncPage)

	threads, err := syncService.Sync(cmd.Context(), accountID, syncPage, syncPageSize)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("%d threads on page %d.\n", len(threads), syncPage)
	for _, thread := range threads {
		date := "(no date)"
		if thread.Date != nil {
			date = thread.Date.Format("2006-01-02 15:04")
		}
		cmd.Printf("  %s  %s  %s\n", thread.ThreadID, date, thread.Subject)
	}
	return nil
}
