// Command mailmirror mirrors Gmail accounts into a local SQLite store and
// serves the HTTP API over it.
package main

import (
	"context"
	"fmt"
	"os"

	configfile "github.com/custodia-labs/mailmirror/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mailmirror/internal/adapters/driven/gmail"
	"github.com/custodia-labs/mailmirror/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mailmirror/internal/adapters/driving/cli"
	"github.com/custodia-labs/mailmirror/internal/core/services"
	"github.com/custodia-labs/mailmirror/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if configStore.GetBool("verbose") {
		logger.SetVerbose(true)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := configStore.Watch(ctx); err != nil {
		logger.Warn("Config watcher unavailable: %v", err)
	}

	store, err := sqlite.NewStore(configStore.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	provider := gmail.NewProvider(gmail.Config{
		ClientID:     configStore.GetString("google.client_id"),
		ClientSecret: configStore.GetString("google.client_secret"),
		RedirectURL:  configStore.GetString("google.redirect_url"),
	})

	scopes := configStore.GetStringSlice("google.scopes")
	if len(scopes) == 0 {
		scopes = gmail.DefaultScopes
	}

	accounts := store.AccountStore()
	threads := store.ThreadStore()

	tokens := services.NewTokenManager(accounts, provider)
	cli.SetServices(cli.Services{
		Config:   configStore,
		Accounts: services.NewAccountManager(accounts, provider, scopes),
		Syncer:   services.NewSyncEngine(tokens, threads),
		Mailbox:  services.NewMailboxWriter(tokens, accounts, threads),
	})

	return cli.Execute()
}
