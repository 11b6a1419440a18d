// Package main is the entry point for the jackpot engine server. It wires
// together configuration, the database, the bet-event bus consumer, the HTTP
// API, and the Prometheus metrics exporter.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/evetabi/jackpot/internal/api"
	"github.com/evetabi/jackpot/internal/bus"
	"github.com/evetabi/jackpot/internal/config"
	"github.com/evetabi/jackpot/internal/configresolver"
	"github.com/evetabi/jackpot/internal/metrics"
	"github.com/evetabi/jackpot/internal/policy"
	"github.com/evetabi/jackpot/internal/repository"
	"github.com/evetabi/jackpot/internal/service"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

func main() {
	// ── 1. Logger ─────────────────────────────────────────────────────────────
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting jackpot engine server", "env", cfg.Server.Env, "port", cfg.Server.Port)

	// ── 2. Database ───────────────────────────────────────────────────────────
	db, err := sqlx.Connect("postgres", cfg.DB.DSN)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err = db.Ping(); err != nil {
		logger.Error("database ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	// ── 3. Migrations ─────────────────────────────────────────────────────────
	if err = runMigrations(db, "migrations"); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// ── 4. Policy registry + resolver ─────────────────────────────────────────
	registry, err := policy.NewRegistry(
		[]policy.ContributionFormula{policy.FixedContribution{}, policy.VariableContribution{}},
		[]policy.RewardFormula{policy.FixedReward{}, policy.VariableReward{}},
	)
	if err != nil {
		logger.Error("policy registry build failed", "err", err)
		os.Exit(1)
	}
	resolver := configresolver.NewResolver()
	rng := policy.NewCryptoSource()

	// ── 5. Repositories ───────────────────────────────────────────────────────
	jackpotRepo := repository.NewJackpotRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	rewardRepo := repository.NewRewardRepository(db)

	// ── 6. Services ───────────────────────────────────────────────────────────
	contributionSvc := service.NewContributionService(db, jackpotRepo, contributionRepo, resolver, registry)

	evaluationSvc := service.NewEvaluationService(
		db, jackpotRepo, contributionRepo, rewardRepo, resolver, registry, rng,
		service.AwaitConfig{
			InitialBackoff: cfg.Eval.AwaitInitialBackoff,
			MaxBackoff:     cfg.Eval.AwaitMaxBackoff,
			Deadline:       cfg.Eval.AwaitDeadline,
		},
	)

	// ── 7. Bus producer + consumer ────────────────────────────────────────────
	producer := bus.NewProducer(cfg.Bus)
	consumer := bus.NewConsumer(cfg.Bus, contributionSvc, logger)

	// ── 8. Root context + signal handling ─────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 9. Start bus consumer ─────────────────────────────────────────────────
	go consumer.Run(ctx)
	logger.Info("bus consumer started", "topic", cfg.Bus.Topic, "group", cfg.Bus.GroupID)

	// ── 10. Start metrics server ───────────────────────────────────────────────
	metricsSrv := metrics.NewServer(cfg.Metrics.ListenAddr)
	go func() {
		if err := metricsSrv.Start(ctx); err != nil {
			logger.Error("metrics server error", "err", err)
		}
	}()
	logger.Info("metrics server listening", "addr", cfg.Metrics.ListenAddr)

	// ── 11. HTTP router ────────────────────────────────────────────────────────
	router := api.SetupRouter(api.RouterDeps{
		Publisher: producer,
		Evaluator: evaluationSvc,
		Cfg:       cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
			stop() // trigger graceful shutdown
		}
	}()

	// ── 12. Graceful shutdown ─────────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received, draining connections…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}
	if err = producer.Close(); err != nil {
		logger.Error("bus producer close error", "err", err)
	}

	db.Close()
	logger.Info("server stopped cleanly")
}

// runMigrations reads all *.sql files from dir, sorted by name, and executes
// them sequentially.  Idempotent: SQL files should use IF NOT EXISTS / ON CONFLICT.
func runMigrations(db *sqlx.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("runMigrations: read dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("runMigrations: read %q: %w", f, err)
		}
		if _, err = db.Exec(string(data)); err != nil {
			return fmt.Errorf("runMigrations: exec %q: %w", f, err)
		}
		slog.Info("migration applied", "file", filepath.Base(f))
	}
	return nil
}
