package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recfeed/internal/config"
	dbRedis "github.com/kailas-cloud/recfeed/internal/db/redis"
	logpkg "github.com/kailas-cloud/recfeed/internal/logger"
	"github.com/kailas-cloud/recfeed/internal/metrics"
	contentrepo "github.com/kailas-cloud/recfeed/internal/repository/content"
	interestrepo "github.com/kailas-cloud/recfeed/internal/repository/interest"
	recrepo "github.com/kailas-cloud/recfeed/internal/repository/recommendation"
	"github.com/kailas-cloud/recfeed/internal/usecase/recommendation"
	"github.com/kailas-cloud/recfeed/internal/usecase/selection"
	"github.com/kailas-cloud/recfeed/internal/version"
)

// app is the composition root shared by every command.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	store  *dbRedis.Store

	contents  *contentrepo.Repo
	interests *interestrepo.Repo
	records   *recrepo.Repo
	breaker   *contentrepo.Breaker
	recs      *recommendation.Service
}

func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting recfeed",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("create database store: %w", err)
	}

	a := &app{env: env, cfg: cfg, logger: logger, store: store}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		a.close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterRecommendationMetrics()

	a.contents = contentrepo.New(store, logger)
	a.interests = interestrepo.New(store)
	a.records = recrepo.New(store)

	if err := a.contents.EnsureIndex(ctx); err != nil {
		a.close()
		return nil, err
	}
	if err := a.records.EnsureIndex(ctx); err != nil {
		a.close()
		return nil, err
	}

	a.breaker = contentrepo.NewBreaker(a.contents, contentrepo.BreakerConfig{
		MaxFailures: cfg.Upstream.BreakerMaxFailures,
		OpenTimeout: time.Duration(cfg.Upstream.BreakerOpenTimeoutSec) * time.Second,
	}, logger)

	rc := cfg.Recommendation
	a.recs = recommendation.New(a.interests, a.breaker, a.records, logger).
		WithSelection(selection.Config{
			MinItems:   rc.MinItems,
			MaxItems:   rc.MaxItems,
			PerPrimary: rc.PerPrimary,
			PoolSize:   rc.PoolSize,
		}).
		WithCandidateWindow(rc.CandidateWindow).
		WithRetention(rc.Retention()).
		WithCleanupTimeout(rc.CleanupTimeout())

	return a, nil
}

// close waits for background cleanups, then releases the connection.
func (a *app) close() {
	if a.recs != nil {
		a.recs.Wait()
	}
	a.store.Close()
	_ = a.logger.Sync()
}
