package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chateshreyas231/dineasy-sub000/internal/config"
	"github.com/chateshreyas231/dineasy-sub000/internal/creds"
	"github.com/chateshreyas231/dineasy-sub000/internal/db"
	"github.com/chateshreyas231/dineasy-sub000/internal/migrate"
)

func newCredsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage encrypted provider credentials",
	}
	cmd.AddCommand(newCredsSetCmd())
	return cmd
}

func newCredsSetCmd() *cobra.Command {
	var apiKey, authToken string

	c := &cobra.Command{
		Use:   "set <provider>",
		Short: "Store credentials for a provider (encrypted at rest)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			aead, err := creds.NewAEAD(cfg.CredEncKey)
			if err != nil {
				return err
			}
			credStore := creds.NewStore(d, aead)
			if err := credStore.Set(ctx, args[0], creds.Secret{APIKey: apiKey, AuthToken: authToken}); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "stored credentials for %q\n", args[0])
			return nil
		},
	}

	c.Flags().StringVar(&apiKey, "api-key", "", "provider API key")
	c.Flags().StringVar(&authToken, "auth-token", "", "provider auth token")
	return c
}
