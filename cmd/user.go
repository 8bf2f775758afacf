package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chateshreyas231/dineasy-sub000/internal/auth"
	"github.com/chateshreyas231/dineasy-sub000/internal/config"
	"github.com/chateshreyas231/dineasy-sub000/internal/db"
	"github.com/chateshreyas231/dineasy-sub000/internal/migrate"
	"github.com/chateshreyas231/dineasy-sub000/internal/store"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var username, password, pushToken string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a local user (username/password, optional push token)",
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

			users := store.NewUsers(d)
			authStore := auth.NewStore(users, cfg.CookieHashKey, cfg.CookieBlockKey)
			id, err := authStore.CreateUser(ctx, username, password, pushToken)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created user %q (%s)\n", username, id)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().StringVar(&pushToken, "push-token", "", "device push token for notifications")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	return c
}
