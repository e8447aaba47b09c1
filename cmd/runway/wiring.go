package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/runway/internal/config"
	"github.com/kailas-cloud/runway/internal/db"
	"github.com/kailas-cloud/runway/internal/db/memory"
	dbRedis "github.com/kailas-cloud/runway/internal/db/redis"
	ledgerrepo "github.com/kailas-cloud/runway/internal/repository/ledger"
	ledgeruc "github.com/kailas-cloud/runway/internal/usecase/ledger"
)

// openStore is swapped in tests.
var openStore = newStore

// newStore creates the database store for the configured driver and waits
// until it answers.
func newStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverMemory:
		logger.Warn("Using in-memory store, ledger will not survive a restart")
		store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s store: %w", cfg.Driver, err)
	}
	return store, nil
}

// openLedger builds the ledger on top of store.
func openLedger(ctx context.Context, store db.Store, notifier ledgeruc.Notifier) *ledgeruc.Ledger {
	repo := ledgerrepo.New(store, cfg.Storage.KeyPrefix)
	l := ledgeruc.New(ctx, repo, cfg.Ledger.InitialBalance, logger)
	if notifier != nil {
		l.WithNotifier(notifier)
	}
	return l
}
