// Package cli provides the command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driving"
	"github.com/custodia-labs/mailmirror/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services injected by the entry point before Execute runs. Commands check
// for nil so tests can swap individual services.
var (
	configStore    driven.ConfigStore
	accountService driving.AccountService
	syncService    driving.SyncService
	mailboxService driving.MailboxService
)

// Services bundles everything the commands need.
type Services struct {
	Config   driven.ConfigStore
	Accounts driving.AccountService
	Syncer   driving.SyncService
	Mailbox  driving.MailboxService
}

// SetServices wires the service layer into the commands.
func SetServices(s Services) {
	configStore = s.Config
	accountService = s.Accounts
	syncService = s.Syncer
	mailboxService = s.Mailbox
}

var rootCmd = &cobra.Command{
	Use:   "mailmirror",
	Short: "Mirror Gmail accounts into a local store",
	Long: `Mailmirror keeps a local copy of Gmail threads for registered accounts.

Register accounts, run sync passes, and serve the HTTP API that the
original mail clients talk to.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
