package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emilythestrangee/qa-forum/backend/internal/cache"
	"github.com/emilythestrangee/qa-forum/backend/internal/config"
	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/metrics"
	"github.com/emilythestrangee/qa-forum/backend/internal/middleware"
	"github.com/emilythestrangee/qa-forum/backend/internal/server"
	"github.com/emilythestrangee/qa-forum/backend/internal/store"
	"github.com/emilythestrangee/qa-forum/backend/internal/tracing"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use log before zap is initialized
		log.Fatalf("Failed to load config: %v", err)
	}

	logMode := "dev"
	if cfg.IsProduction() {
		logMode = "prod"
	}
	appLog, err := logger.New(logMode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLog); err != nil {
		appLog.Error("server exited with error", "error", err)
		stop()
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, appLog *logger.Logger) error {
	shutdownTracing := tracing.Init(ctx, appLog, cfg.Tracing, cfg.Env)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			appLog.Warn("otel shutdown failed", "error", err)
		}
	}()

	db, err := database.New(cfg.Database, appLog)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db.GetDB()); err != nil {
		return err
	}

	// Pass a nil interface when Redis is not configured
	var limiter middleware.VoteLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		limiter = cache.NewVoteRateLimiter(redisClient, cfg.Redis.RateLimitKeyPrefix, cfg.Redis.VotesPerMinute, time.Minute)
		appLog.Info("vote rate limiting enabled", "votes_per_minute", cfg.Redis.VotesPerMinute)
	} else {
		appLog.Warn("REDIS_URL not set, vote rate limiting disabled")
	}

	registry := metrics.NewRegistry()
	svc := voting.NewService(voting.ServiceDeps{
		Store:        store.New(db.GetDB()),
		Log:          appLog.With("component", "voting"),
		Hooks:        metrics.NewVotingMetrics(registry),
		Policy:       voting.Policy{ForbidSelfVote: cfg.Voting.ForbidSelfVote},
		MaxAttempts:  cfg.Voting.MaxAttempts,
		RetryBackoff: cfg.Voting.RetryBackoff,
	})

	srv := server.NewServer(cfg, server.Deps{
		Service:  svc,
		Health:   db,
		Limiter:  limiter,
		Registry: registry,
		Log:      appLog,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLog.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLog.Info("shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
