// Command prune-tokens deletes every expired bearer token once and exits.
// The server never sweeps on its own; run this from cron when the table
// should not wait for expired tokens to be presented again.
package main

import (
	"context"
	"os"
	"time"

	"github.com/Skotchmaster/library/internal/app"
	"github.com/Skotchmaster/library/internal/config"
	"github.com/Skotchmaster/library/internal/db"
	"github.com/Skotchmaster/library/internal/logging"
	"github.com/Skotchmaster/library/internal/tokens"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustOneOf(cfg.TokenStore, "TOKEN_STORE", config.TokenStoreSQL, config.TokenStoreRedis)

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "cmd", "prune-tokens")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	n, err := run(logging.IntoContext(ctx, logger), cfg)
	cancel()
	if err != nil {
		logger.Error("prune_tokens_error", "error", err)
		os.Exit(1)
	}
	logger.Info("prune_tokens_done", "deleted", n)
}

func run(ctx context.Context, cfg config.Config) (int64, error) {
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return 0, err
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	store, closeStore, err := app.TokenStore(ctx, cfg, gdb)
	if err != nil {
		return 0, err
	}
	defer func() { _ = closeStore() }()

	return tokens.NewService(store).PruneExpired(ctx)
}
