// Command server runs the cycle tracking HTTP service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"cycletracker/internal/audit"
	audithandler "cycletracker/internal/audit/handler"
	cyclehandler "cycletracker/internal/cycle/handler"
	cyclemetrics "cycletracker/internal/cycle/metrics"
	"cycletracker/internal/cycle/service"
	cyclestore "cycletracker/internal/cycle/store"
	"cycletracker/internal/observation"
	obshandler "cycletracker/internal/observation/handler"
	"cycletracker/internal/observation/whitelist"
	"cycletracker/internal/platform/config"
	"cycletracker/internal/platform/httpserver"
	"cycletracker/internal/platform/logger"
	"cycletracker/internal/platform/metrics"
	"cycletracker/internal/platform/middleware"
	platformredis "cycletracker/internal/platform/redis"
)

// main wires dependencies and the server lifecycle. Business logic lives in
// the internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		cycles     service.Store
		auditStore audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		cycles = cyclestore.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
		log.Info("using postgres storage")
	} else {
		cycles = cyclestore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
		log.Info("using in-memory storage")
	}

	// Whitelist: embedded copy unless a file is present; Redis mirror when
	// configured so all processes share one loaded list.
	var codes whitelist.Store
	fileStore, err := whitelist.NewFileStore(cfg.WhitelistPath)
	switch {
	case err == nil:
		codes = fileStore
		log.Info("whitelist loaded", "path", cfg.WhitelistPath, "entries", fileStore.Len())
	default:
		codes = whitelist.Default()
		log.Info("whitelist file not found, using embedded copy", "path", cfg.WhitelistPath)
	}
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		codes, err = whitelist.NewRedisStore(ctx, redisClient.Client, codes)
		if err != nil {
			return err
		}
		log.Info("whitelist mirrored to redis")
	}

	publisher := audit.NewPublisher(auditStore, log, 64)
	validator := observation.NewValidator(codes)
	cycleService := service.New(cycles, validator,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(cyclemetrics.New()),
	)

	platformMetrics := metrics.New()
	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Use(middleware.ContentTypeJSON)
	router.Use(metrics.LatencyMiddleware(platformMetrics))

	cyclehandler.New(cycleService, log).Register(router)
	obshandler.New(codes, log).Register(router)
	audithandler.New(publisher, log).Register(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router, cfg.ReadHeaderTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := publisher.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting cycletracker", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
