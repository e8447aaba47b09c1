package runway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/runway/internal/db"
	"github.com/kailas-cloud/runway/internal/db/memory"
	dbRedis "github.com/kailas-cloud/runway/internal/db/redis"
	"github.com/kailas-cloud/runway/internal/domain/token"
	ledgerrepo "github.com/kailas-cloud/runway/internal/repository/ledger"
	healthuc "github.com/kailas-cloud/runway/internal/usecase/health"
	ledgeruc "github.com/kailas-cloud/runway/internal/usecase/ledger"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренний интерфейс для подмены в тестах.
type ledgerUseCase interface {
	State() token.State
	Balance() int64
	HasEnoughTokens(f token.Feature) bool
	SpendTokensForAI(ctx context.Context, f token.Feature) bool
	EarnTokensForStep(ctx context.Context, s token.Step) bool
	Subscribe(fn ledgeruc.Listener) func()
	Reset(ctx context.Context)
}

// Client is the runway SDK entry point.
type Client struct {
	store     db.Store
	ledger    ledgerUseCase
	healthSvc healthUseCase
	obs       *observer
	stopGauge func()
}

// New creates a Client, connects to the database and loads the ledger.
// The provided context is used for the readiness check and the initial load.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("runway: store required (use WithRedis, WithValkey or WithMemory)")
	}
	if cfg.initialBalance < 0 {
		return nil, fmt.Errorf("runway: initial balance %d must not be negative", cfg.initialBalance)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("runway: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(ctx, store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		if len(cfg.addrs) == 0 {
			return nil, fmt.Errorf("runway: %s address required", cfg.driver)
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("runway: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("runway: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) *Client {
	repo := ledgerrepo.New(store, cfg.keyPrefix)
	l := ledgeruc.New(ctx, repo, cfg.initialBalance, zap.NewNop())

	obs.balance(l.Balance())
	stop := l.Subscribe(func(s token.State) { obs.balance(s.Balance) })

	return &Client{
		store:     store,
		ledger:    l,
		healthSvc: healthuc.New(store, nil),
		obs:       obs,
		stopGauge: stop,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.stopGauge != nil {
		c.stopGauge()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Balance returns the current token balance.
func (c *Client) Balance() int64 {
	return c.ledger.Balance()
}

// State returns a snapshot of the ledger.
func (c *Client) State() State {
	return fromInternalState(c.ledger.State())
}

// HasEnoughTokens reports whether the balance covers the cost of f.
// Unknown features report false.
func (c *Client) HasEnoughTokens(f Feature) bool {
	return c.ledger.HasEnoughTokens(f)
}

// SpendTokensForAI charges the cost of f. It returns false, leaving the
// ledger untouched, when the balance is too low or f is unknown.
func (c *Client) SpendTokensForAI(ctx context.Context, f Feature) (ok bool) {
	start := time.Now()
	defer func() { c.obs.observeBool("ledger.spend", start, ok) }()

	return c.ledger.SpendTokensForAI(ctx, f)
}

// EarnTokensForStep issues the one-time reward of s. It returns false when
// the reward was already issued or s is unknown.
func (c *Client) EarnTokensForStep(ctx context.Context, s Step) (ok bool) {
	start := time.Now()
	defer func() { c.obs.observeBool("ledger.earn", start, ok) }()

	return c.ledger.EarnTokensForStep(ctx, s)
}

// Subscribe registers fn to receive a snapshot after every change. Listeners
// run synchronously on the goroutine that made the change, in registration
// order. fn may read the client but must not spend, earn or reset from inside
// the callback. The returned function unsubscribes and may be called more
// than once.
func (c *Client) Subscribe(fn func(State)) (unsubscribe func()) {
	return c.ledger.Subscribe(func(s token.State) {
		fn(fromInternalState(s))
	})
}

// Reset restores the initial balance and clears history and completed steps.
func (c *Client) Reset(ctx context.Context) {
	start := time.Now()
	defer func() { c.obs.observe("ledger.reset", start, nil) }()

	c.ledger.Reset(ctx)
}
