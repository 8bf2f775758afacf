package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chateshreyas231/dineasy-sub000/internal/config"
	"github.com/chateshreyas231/dineasy-sub000/internal/db"
	"github.com/chateshreyas231/dineasy-sub000/internal/domain/monitor"
	"github.com/chateshreyas231/dineasy-sub000/internal/migrate"
	"github.com/chateshreyas231/dineasy-sub000/internal/store"
)

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Manage availability monitors (non-UI)",
	}
	cmd.AddCommand(newMonitorCreateCmd())
	cmd.AddCommand(newMonitorListCmd())
	cmd.AddCommand(newMonitorStopCmd())
	return cmd
}

func openJobStore(ctx context.Context) (*db.DB, *store.Jobs, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, store.NewJobs(d), nil
}

func newMonitorCreateCmd() *cobra.Command {
	var (
		userID      string
		placeID     string
		partySize   int
		windowStart string
		windowEnd   string
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a monitor; a running server picks it up within one interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			d, jobs, err := openJobStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			start, err := time.Parse(time.RFC3339, windowStart)
			if err != nil {
				return fmt.Errorf("window-start: %w", err)
			}
			end, err := time.Parse(time.RFC3339, windowEnd)
			if err != nil {
				return fmt.Errorf("window-end: %w", err)
			}

			j := monitor.Job{
				ID:              uuid.NewString(),
				UserID:          userID,
				PlaceID:         placeID,
				TimeWindowStart: start,
				TimeWindowEnd:   end,
				PartySize:       partySize,
				Status:          monitor.StatusActive,
			}
			if err := j.Validate(); err != nil {
				return err
			}
			if _, err := jobs.FindActiveJob(ctx, userID, placeID); err == nil {
				return fmt.Errorf("an active monitor already exists for this place")
			} else if !db.IsNotFound(err) {
				return err
			}
			if err := jobs.CreateJob(ctx, j); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created monitor %s\n", j.ID)
			return nil
		},
	}

	c.Flags().StringVar(&userID, "user", "", "owning user id")
	c.Flags().StringVar(&placeID, "place", "", "place id to watch")
	c.Flags().IntVar(&partySize, "party-size", 2, "party size")
	c.Flags().StringVar(&windowStart, "window-start", "", "window start (RFC3339)")
	c.Flags().StringVar(&windowEnd, "window-end", "", "window end (RFC3339)")
	_ = c.MarkFlagRequired("user")
	_ = c.MarkFlagRequired("place")
	_ = c.MarkFlagRequired("window-start")
	_ = c.MarkFlagRequired("window-end")
	return c
}

func newMonitorListCmd() *cobra.Command {
	var userID string

	c := &cobra.Command{
		Use:   "list",
		Short: "List a user's monitors",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			d, jobs, err := openJobStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			js, err := jobs.ListJobsByUser(ctx, userID)
			if err != nil {
				return err
			}
			for _, j := range js {
				checked := "never"
				if j.LastCheckedAt != nil {
					checked = j.LastCheckedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(os.Stdout, "%s  %-9s  place=%s  party=%d  window=[%s, %s]  checked=%s\n",
					j.ID, j.Status, j.PlaceID, j.PartySize,
					j.TimeWindowStart.Format(time.RFC3339), j.TimeWindowEnd.Format(time.RFC3339), checked)
			}
			return nil
		},
	}

	c.Flags().StringVar(&userID, "user", "", "user id")
	_ = c.MarkFlagRequired("user")
	return c
}

func newMonitorStopCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "stop <monitor-id>",
		Short: "Cancel an active monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			d, jobs, err := openJobStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			won, err := jobs.TransitionJob(ctx, args[0], monitor.StatusActive, monitor.StatusCancelled)
			if err != nil {
				return err
			}
			if won {
				fmt.Fprintln(os.Stdout, "monitor cancelled")
			} else {
				fmt.Fprintln(os.Stdout, "monitor was not active (already finished or unknown)")
			}
			return nil
		},
	}
	return c
}
