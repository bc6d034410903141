package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/provider"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage connected calendar accounts",
	}

	cmd.AddCommand(newAccountsListCmd())
	cmd.AddCommand(newAccountsConnectCmd())
	cmd.AddCommand(newAccountsAddCmd())
	cmd.AddCommand(newAccountsRemoveCmd())
	return cmd
}

func parseProviderID(name string) (provider.ID, error) {
	id := provider.ID(strings.ToLower(strings.TrimSpace(name)))
	if !id.Valid() {
		return "", fmt.Errorf("unsupported provider %q (supported: google, microsoft)", name)
	}
	return id, nil
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the accounts of the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.store.List(a.context(cmd), a.user())
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}
			return printAccounts(cmd.OutOrStdout(), list)
		},
	}
}

func printAccounts(w io.Writer, list []accounts.Account) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No accounts connected.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROVIDER\tEMAIL\tTOKEN EXPIRES")
	for _, acct := range list {
		expires := "-"
		if !acct.ExpiresAt.IsZero() {
			expires = acct.ExpiresAt.Local().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", acct.ID, acct.ProviderID, acct.Email, expires)
	}
	return tw.Flush()
}

func newAccountsConnectCmd() *cobra.Command {
	var (
		providerName string
		code         string
		email        string
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect an account through the OAuth consent flow",
		Long: `Print the consent URL of the provider, read the authorization code from
the redirect and store the account with its access and refresh token.

The code can be passed with --code to skip the prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProviderID(providerName)
			if err != nil {
				return err
			}

			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if code == "" {
				url, _, err := a.connector.AuthURL(id, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Visit this URL in your browser and grant access:\n\n  %s\n\n", url)
				fmt.Fprint(cmd.OutOrStdout(), "Paste the authorization code: ")
				code, err = readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
			}

			account, err := a.connector.Connect(a.context(cmd), a.user(), id, code, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected %s account %s\n", account.ProviderID, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "Provider: google or microsoft")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the consent redirect")
	cmd.Flags().StringVar(&email, "email", "", "Email address shown in listings")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("no input")
	}
	return line, nil
}

func newAccountsAddCmd() *cobra.Command {
	var (
		providerName string
		accessToken  string
		refreshToken string
		email        string
		expiresIn    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account from existing tokens",
		Long: `Store an account whose tokens were obtained elsewhere. Both tokens are
required; without --expires-in the access token is never refreshed
proactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProviderID(providerName)
			if err != nil {
				return err
			}
			if accessToken == "" || refreshToken == "" {
				return fmt.Errorf("--access-token and --refresh-token are required")
			}

			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			account := &accounts.Account{
				UserID:       a.user(),
				ProviderID:   id,
				Email:        email,
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
			}
			if expiresIn > 0 {
				account.ExpiresAt = time.Now().Add(expiresIn).UTC()
			}
			if err := a.store.Create(a.context(cmd), account); err != nil {
				return fmt.Errorf("failed to store account: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s account %s\n", account.ProviderID, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "Provider: google or microsoft")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "OAuth access token")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "OAuth refresh token")
	cmd.Flags().StringVar(&email, "email", "", "Email address shown in listings")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "Remaining lifetime of the access token, e.g. 55m")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

func newAccountsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <account-id>",
		Short: "Remove an account and its stored tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.connector.Disconnect(a.context(cmd), a.user(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed account %s\n", args[0])
			return nil
		},
	}
}
