package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mailmirror/internal/adapters/driving/oauth"
	"github.com/custodia-labs/mailmirror/internal/logger"
)

var accountsAuthorize bool

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage registered accounts",
	Long: `List registered accounts or add a new one.

Adding an account prints the authorization URL the account owner must
visit; the OAuth callback is handled by the running HTTP server.`,
	RunE: runAccountsList,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered accounts",
	RunE:  runAccountsList,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add <full-name> <email>",
	Short: "Register an account",
	Long: `Registers an account and prints the authorization URL.

With --authorize, a local callback server is started on the configured
redirect URL, the browser is opened, and the flow completes in place.`,
	Args: cobra.ExactArgs(2),
	RunE: runAccountsAdd,
}

func init() {
	accountsAddCmd.Flags().BoolVar(&accountsAuthorize, "authorize", false,
		"complete the OAuth flow locally")
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsAddCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	accounts, err := accountService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	if len(accounts) == 0 {
		cmd.Println("No accounts registered.")
		return nil
	}

	for _, account := range accounts {
		authorized := "not authorized"
		if account.HasToken() {
			authorized = "authorized"
		}
		cmd.Printf("%s  %s <%s>  %s\n", account.ID, account.FullName, account.Email, authorized)
	}
	return nil
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	account, authURL, err := accountService.Create(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("registering account: %w", err)
	}

	cmd.Printf("Registered account %s.\n", account.ID)

	if !accountsAuthorize {
		cmd.Println("Visit the following URL to authorize access:")
		cmd.Println(authURL)
		return nil
	}

	return authorizeLocally(cmd, account.Email, authURL)
}

// authorizeLocally runs the callback flow in place of the HTTP webhook. The
// callback server listens on the configured redirect URL so the provider can
// reach it.
func authorizeLocally(cmd *cobra.Command, email, authURL string) error {
	port, path, err := redirectEndpoint()
	if err != nil {
		return err
	}

	callback := oauth.NewCallbackServer(port, path, email)
	if err := callback.Start(); err != nil {
		return fmt.Errorf("starting callback server: %w", err)
	}
	defer func() {
		if stopErr := callback.Stop(); stopErr != nil {
			logger.Warn("Stopping callback server: %v", stopErr)
		}
	}()

	cmd.Println("Opening browser for authorization...")
	if err := oauth.OpenBrowser(authURL); err != nil {
		cmd.Println("Could not open a browser. Visit this URL instead:")
		cmd.Println(authURL)
	}

	code, err := callback.WaitForCode(5 * time.Minute)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	if _, err := accountService.CompleteOAuth(cmd.Context(), code, email); err != nil {
		return fmt.Errorf("completing authorization: %w", err)
	}

	cmd.Println("Account authorized.")
	return nil
}

// redirectEndpoint derives the callback port and path from the configured
// redirect URL.
func redirectEndpoint() (int, string, error) {
	if configStore == nil {
		return 0, "", errors.New("config not available")
	}

	raw := configStore.GetString("google.redirect_url")
	if raw == "" {
		return 0, "", errors.New("google.redirect_url is not configured")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return 0, "", fmt.Errorf("invalid redirect URL %q: %w", raw, err)
	}

	port := 80
	if p := parsed.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return 0, "", fmt.Errorf("invalid redirect URL port %q: %w", p, err)
		}
	}
	return port, parsed.Path, nil
}
