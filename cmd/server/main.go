// Command server starts the submission intake HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenboard/eco-intake/internal/adapter/filestore"
	httpserver "github.com/greenboard/eco-intake/internal/adapter/httpserver"
	"github.com/greenboard/eco-intake/internal/adapter/inspect"
	"github.com/greenboard/eco-intake/internal/adapter/integrity"
	"github.com/greenboard/eco-intake/internal/adapter/notify/redpanda"
	"github.com/greenboard/eco-intake/internal/adapter/observability"
	"github.com/greenboard/eco-intake/internal/adapter/repo/postgres"
	"github.com/greenboard/eco-intake/internal/app"
	"github.com/greenboard/eco-intake/internal/config"
	"github.com/greenboard/eco-intake/internal/domain"
	"github.com/greenboard/eco-intake/internal/usecase"
)

// poolAdapter adapts *pgxpool.Pool to postgres.Beginner.
type poolAdapter struct{ *pgxpool.Pool }

func (p poolAdapter) Begin(ctx context.Context) (postgres.Tx, error) {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP and submission instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// Infra: DB pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Repositories
	subRepo := postgres.NewSubmissionRepo(pool, poolAdapter{pool})
	stuRepo := postgres.NewStudentRepo(pool)

	// Durable file store plus the orphan sweeper that reclaims storage
	// writes whose submission record never committed.
	store := filestore.NewLocal(cfg.StorageDir)
	sweeper := filestore.NewSweeper(store, subRepo, cfg.SweepGracePeriod)
	go sweeper.RunPeriodic(ctx, cfg.SweepInterval)
	slog.Info("orphan sweeper started", slog.Duration("interval", cfg.SweepInterval), slog.Duration("grace", cfg.SweepGracePeriod))

	// Event notifier (Redpanda producer). Notifications are best-effort;
	// intake runs without them when the broker is unreachable at boot.
	var notifier domain.Notifier
	var broker app.BrokerPinger
	rp, err := redpanda.NewNotifier(cfg.KafkaBrokers, cfg.NotifyTimeout)
	if err != nil {
		slog.Warn("redpanda producer connect failed, notifications disabled", slog.Any("error", err))
	} else {
		notifier = rp
		broker = rp
		defer func() {
			if err := rp.Close(); err != nil {
				slog.Error("failed to close notifier", slog.Any("error", err))
			}
		}()
	}

	// Pipeline collaborators
	inspector := inspect.New(cfg.InspectTimeout)
	scorer := integrity.NewRandomScorer()

	// Usecases
	intakeSvc := usecase.NewIntakeService(subRepo, store, inspector, scorer, notifier, cfg.MaxUploadBytes())
	intakeSvc.NotifyTimeout = cfg.NotifyTimeout
	statsSvc := usecase.NewStatsService(subRepo, stuRepo)

	// Readiness checks
	dbCheck, brokerCheck := app.BuildReadinessChecks(pool, broker)

	// HTTP server
	srv := httpserver.NewServer(cfg, intakeSvc, statsSvc, dbCheck, brokerCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
