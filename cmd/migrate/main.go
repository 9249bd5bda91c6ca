package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	natsadapter "github.com/samirrijal/findmypet/internal/adapters/nats"
	"github.com/samirrijal/findmypet/internal/adapters/postgres"
	"github.com/samirrijal/findmypet/internal/core/ports"
	"github.com/samirrijal/findmypet/internal/pkg/config"
	"github.com/samirrijal/findmypet/internal/pkg/logging"
	"github.com/samirrijal/findmypet/internal/seed"
	"github.com/samirrijal/findmypet/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Database schema and demo data for Find My Pet",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load("findmypet-migrate")
			if err != nil {
				return err
			}
			logging.Setup(cfg.Log.Level, "text")
			return nil
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all embedded migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := db.Migrate(cmd.Context(), migrations.FS)
			if err != nil {
				return err
			}
			for _, f := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "OK  %s\n", f)
			}
			slog.Info("migrations up to date", "applied", len(applied))
			return nil
		},
	})

	var publish bool
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the Knez Mihailova demo data set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			var pub ports.EventPublisher
			if publish {
				p, err := natsadapter.NewPublisher(cfg.NATS.URL)
				if err != nil {
					slog.Warn("nats unavailable, seeding without events", "error", err)
				} else {
					defer p.Close()
					pub = p
				}
			}

			res, err := seed.Load(ctx, postgres.NewWatcherRepo(db), postgres.NewPetRepo(db, 0), pub, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d pets, published %d events\n", res.Users, res.Pets, res.Published)
			return nil
		},
	}
	seedCmd.Flags().BoolVar(&publish, "publish", true, "publish a reported event per pet")
	root.AddCommand(seedCmd)

	return root
}

func connect(ctx context.Context, cfg *config.Config) (*postgres.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	return db, nil
}
