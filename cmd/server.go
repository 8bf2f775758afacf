package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chateshreyas231/dineasy-sub000/internal/aggregator"
	"github.com/chateshreyas231/dineasy-sub000/internal/auth"
	"github.com/chateshreyas231/dineasy-sub000/internal/cache"
	"github.com/chateshreyas231/dineasy-sub000/internal/config"
	"github.com/chateshreyas231/dineasy-sub000/internal/creds"
	"github.com/chateshreyas231/dineasy-sub000/internal/db"
	"github.com/chateshreyas231/dineasy-sub000/internal/logging"
	"github.com/chateshreyas231/dineasy-sub000/internal/migrate"
	"github.com/chateshreyas231/dineasy-sub000/internal/notify"
	"github.com/chateshreyas231/dineasy-sub000/internal/places"
	"github.com/chateshreyas231/dineasy-sub000/internal/provider"
	"github.com/chateshreyas231/dineasy-sub000/internal/provider/deeplink"
	"github.com/chateshreyas231/dineasy-sub000/internal/provider/opentable"
	"github.com/chateshreyas231/dineasy-sub000/internal/provider/resy"
	"github.com/chateshreyas231/dineasy-sub000/internal/scheduler"
	"github.com/chateshreyas231/dineasy-sub000/internal/store"
	"github.com/chateshreyas231/dineasy-sub000/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the API server + monitor scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel, cfg.LogConsole)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}
			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			aead, err := creds.NewAEAD(cfg.CredEncKey)
			if err != nil {
				return err
			}
			credStore := creds.NewStore(d, aead)

			otSecret, err := credStore.Get(ctx, "opentable")
			if err != nil {
				return err
			}
			if otSecret.AuthToken == "" {
				otSecret.AuthToken = cfg.OpenTableToken
			}
			resySecret, err := credStore.Get(ctx, "resy")
			if err != nil {
				return err
			}
			if resySecret.APIKey == "" {
				resySecret.APIKey = cfg.ResyAPIKey
			}
			if resySecret.AuthToken == "" {
				resySecret.AuthToken = cfg.ResyAuthToken
			}

			ttl := cache.NewTTL()
			ttl.StartJanitor(cfg.PlaceCacheTTL)
			defer ttl.Close()

			placesClient := places.NewClient(cfg.PlacesBaseURL, cfg.PlacesAPIKey)
			placeLookup := places.NewCached(placesClient, ttl, cfg.PlaceCacheTTL)

			// registration order is the priority order monitor ticks use;
			// the deeplink fallback goes last and is search-only
			registry := provider.NewRegistry(
				resy.New(resy.Config{APIKey: resySecret.APIKey, AuthToken: resySecret.AuthToken}),
				opentable.New(opentable.Config{Token: otSecret.AuthToken, PersistedQueryHash: cfg.OpenTablePQHash}),
				deeplink.New(placesClient),
			)

			engine := aggregator.NewEngine(registry, log)

			var notifier notify.Notifier
			if cfg.PushWebhookURL != "" {
				notifier = notify.NewWebhook(cfg.PushWebhookURL, cfg.PushWebhookKey)
			} else {
				notifier = notify.LogNotifier{Log: log}
			}

			users := store.NewUsers(d)
			jobs := store.NewJobs(d)
			bookings := store.NewBookings(d)

			monitors := scheduler.New(scheduler.Config{
				Interval: cfg.MonitorInterval,
				MaxTicks: cfg.MonitorMaxTicks,
				Workers:  cfg.MonitorWorkers,
			}, jobs, bookings, users, registry, placeLookup, notifier, log)
			if err := monitors.Start(ctx); err != nil {
				return err
			}
			defer monitors.Stop()

			authStore := auth.NewStore(users, cfg.CookieHashKey, cfg.CookieBlockKey)
			srv := &web.Server{
				Auth:     authStore,
				Engine:   engine,
				Monitors: monitors,
				Bookings: bookings,
				Log:      log,
			}
			return web.Start(ctx, cfg.ListenAddr, srv.Routes(), log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	return cmd
}
