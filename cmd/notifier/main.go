package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/findmypet/internal/adapters/memory"
	natsadapter "github.com/samirrijal/findmypet/internal/adapters/nats"
	"github.com/samirrijal/findmypet/internal/adapters/postgres"
	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/ports"
	"github.com/samirrijal/findmypet/internal/core/usecases"
	"github.com/samirrijal/findmypet/internal/pkg/config"
	"github.com/samirrijal/findmypet/internal/pkg/logging"
	"github.com/samirrijal/findmypet/internal/workflows"
)

func main() {
	cfg, err := config.Load("findmypet-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var watchers ports.WatcherRepository
	if cfg.Store.Driver == "memory" {
		watchers = memory.NewPetStore(0)
	} else {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		watchers = postgres.NewWatcherRepo(db)
	}

	// Push delivery is not wired; AlertService logs each alert instead.
	alerts := usecases.NewAlertService(watchers, nil)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.NearbyAlertWorkflow)
	w.RegisterActivity(&workflows.AlertActivities{Alerts: alerts})

	// Bridge: one workflow per reported pet.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribePetEvents(ctx, "nearby-alerts", natsadapter.SubjectReported,
		func(ctx context.Context, e *domain.PetEvent) error {
			run, err := workflows.StartNearbyAlert(ctx, c, cfg.Temporal.TaskQueue, *e)
			if err != nil {
				return err
			}
			if run == nil {
				logging.FromContext(ctx).Debug("nearby alert already sent", "pet_id", e.PetID)
				return nil
			}
			logging.FromContext(ctx).Info("nearby alert started", "pet_id", e.PetID, "workflow_id", run.GetID(), "run_id", run.GetRunID())
			return nil
		})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("notifier worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Start(); err != nil {
		log.Fatalf("worker: %v", err)
	}
	<-ctx.Done()
	w.Stop()
	slog.Info("notifier stopped")
}
