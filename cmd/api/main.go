package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/findmypet/internal/adapters/http"
	"github.com/samirrijal/findmypet/internal/adapters/memory"
	natsadapter "github.com/samirrijal/findmypet/internal/adapters/nats"
	"github.com/samirrijal/findmypet/internal/adapters/postgres"
	"github.com/samirrijal/findmypet/internal/adapters/valkey"
	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/ports"
	"github.com/samirrijal/findmypet/internal/core/usecases"
	"github.com/samirrijal/findmypet/internal/pkg/config"
	"github.com/samirrijal/findmypet/internal/pkg/logging"
	"github.com/samirrijal/findmypet/internal/pkg/metrics"
	"github.com/samirrijal/findmypet/internal/pkg/telemetry"
	"github.com/samirrijal/findmypet/internal/seed"
)

var version = "dev"

func main() {
	cfg, err := config.Load("findmypet-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Record store
	var (
		store ports.PetRecordStore
		db    *postgres.DB
	)
	switch cfg.Store.Driver {
	case "memory":
		mem := memory.NewPetStore(cfg.Store.MaxCandidates)
		res, err := seed.Load(ctx, mem, mem, nil, time.Now())
		if err != nil {
			log.Fatalf("seed memory store: %v", err)
		}
		slog.Info("memory store seeded", "users", res.Users, "pets", res.Pets)
		store = mem
	default:
		db, err = postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		store = postgres.NewPetRepo(db, cfg.Store.MaxCandidates)
		go reportPoolStats(ctx, db)
	}

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(valkey.Options{
		Addr:               cfg.Valkey.Addr,
		Password:           cfg.Valkey.Password,
		DB:                 cfg.Valkey.DB,
		DisableClientCache: cfg.Valkey.DisableClientCache,
	})
	if err != nil {
		slog.Warn("valkey unavailable, listing cache disabled", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// Use cases
	locale, _ := usecases.LocaleByName(cfg.Presenter.Locale)
	presenter := usecases.NewPresenter(
		usecases.WithPhotoURLs(cfg.Presenter.UploadsPrefix, cfg.Presenter.NoImageURL),
		usecases.WithLocale(locale),
	)
	listingSvc := usecases.NewListingService(store, cacheSvc, presenter, cfg.Listing.CacheTTLSeconds)
	petSvc := usecases.NewPetService(store, presenter)

	// Report changes invalidate cached listing pages.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable, cached pages expire by TTL only", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribePetEvents(ctx, "listing-cache", natsadapter.SubjectAll,
			func(ctx context.Context, e *domain.PetEvent) error {
				return listingSvc.Invalidate(ctx)
			})
		if err != nil {
			slog.Warn("listing cache subscription failed", "error", err)
		}
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	deps := &http.Dependencies{
		Listing: listingSvc,
		Pets:    petSvc,
		NATS:    natsConn,
		DB:      db,
		Cache:   cache,
		Version: version,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Find My Pet API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "store", cfg.Store.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the DB pool gauges until ctx is done.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Stat())
		}
	}
}
