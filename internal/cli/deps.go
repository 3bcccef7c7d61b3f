package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveywizard/internal/config"
	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/persistence"
	"github.com/goliatone/go-surveywizard/pkg/scenarios"
	"github.com/goliatone/go-surveywizard/pkg/schema"
	"github.com/goliatone/go-surveywizard/pkg/submission"
)

type closer func()

func noop() {}

func loadSchema(cfg *config.Config) (model.Schema, error) {
	if cfg.Schema.Path == "" {
		return schema.Default()
	}
	return schema.LoadFile(cfg.Schema.Path)
}

// openStore returns the snapshot store. An unreachable redis is logged and
// the wizard degrades to memory on its own.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (persistence.Store, closer, error) {
	switch cfg.Session.Store {
	case "redis":
		client, err := persistence.ConnectRedis(cfg.Session.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		store := persistence.NewRedisStore(client, persistence.WithTTL(cfg.Session.TTL))
		if err := store.Ping(ctx); err != nil {
			logger.Warn("redis unavailable; snapshots will not persist until it recovers", zap.Error(err))
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return persistence.NewMemoryStore(), noop, nil
	}
}

func openSink(ctx context.Context, cfg *config.Config, logger *zap.Logger) (submission.Sink, closer, error) {
	switch cfg.Submission.Sink {
	case "sqlite":
		sink, err := submission.NewSQLiteSink(cfg.Submission.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return sink, func() { _ = sink.Close() }, nil
	case "postgres":
		sink, err := submission.NewPostgresSink(ctx, cfg.Submission.PostgresURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to database: %w", err)
		}
		return sink, sink.Close, nil
	default:
		return submission.NewLogSink(logger), noop, nil
	}
}

func newScenarioService(cfg *config.Config, logger *zap.Logger) *scenarios.Service {
	return scenarios.NewService(
		scenarios.WithDelay(cfg.Scenarios.Delay),
		scenarios.WithLogger(logger),
	)
}
