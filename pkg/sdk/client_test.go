package runway

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newMemoryClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), append([]Option{WithMemory()}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_NoStore(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no store configured")
	}
}

func TestNew_NegativeInitialBalance(t *testing.T) {
	_, err := New(context.Background(), WithMemory(), WithInitialBalance(-1))
	if err == nil {
		t.Fatal("expected error for negative initial balance")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	_, err := createStore(cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_RedisWithoutAddress(t *testing.T) {
	cfg := &clientConfig{driver: "redis"}
	_, err := createStore(cfg)
	if err == nil {
		t.Fatal("expected error for missing address")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := defaultConfig()
	if cfg.initialBalance != 250 {
		t.Errorf("default initialBalance = %d, want 250", cfg.initialBalance)
	}
	if cfg.keyPrefix != "runway:" {
		t.Errorf("default keyPrefix = %q, want runway:", cfg.keyPrefix)
	}

	WithValkey("localhost:6379", "secret").apply(cfg)
	if cfg.driver != "valkey" || cfg.addrs[0] != "localhost:6379" || cfg.password != "secret" {
		t.Errorf("WithValkey: got driver=%q addrs=%v password=%q", cfg.driver, cfg.addrs, cfg.password)
	}

	WithRedis("redis:6379", "").apply(cfg)
	if cfg.driver != "redis" || cfg.addrs[0] != "redis:6379" {
		t.Errorf("WithRedis: got driver=%q addrs=%v", cfg.driver, cfg.addrs)
	}

	WithMemory().apply(cfg)
	if cfg.driver != "memory" || cfg.addrs != nil {
		t.Errorf("WithMemory: got driver=%q addrs=%v", cfg.driver, cfg.addrs)
	}

	WithStandalone().apply(cfg)
	if !cfg.standalone {
		t.Error("expected standalone")
	}

	WithKeyPrefix("test:").apply(cfg)
	WithInitialBalance(10).apply(cfg)
	if cfg.keyPrefix != "test:" || cfg.initialBalance != 10 {
		t.Errorf("got prefix=%q balance=%d", cfg.keyPrefix, cfg.initialBalance)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	// Close на клиенте с nil store не паникует.
	c := &Client{store: nil}
	c.Close()
}

func TestClient_DefaultState(t *testing.T) {
	c := newMemoryClient(t)

	s := c.State()
	if s.Balance != 250 || c.Balance() != 250 {
		t.Errorf("balance = %d, want 250", s.Balance)
	}
	if len(s.Transactions) != 0 || len(s.CompletedSteps) != 0 {
		t.Errorf("expected empty history, got %+v", s)
	}
}

func TestClient_SpendAndEarn(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient(t)

	if !c.HasEnoughTokens(FeatureResearchAnalysis) {
		t.Fatal("expected enough tokens for research analysis")
	}
	if !c.SpendTokensForAI(ctx, FeatureResearchAnalysis) {
		t.Fatal("spend failed")
	}
	if !c.EarnTokensForStep(ctx, StepHomebaseStartupInfo) {
		t.Fatal("earn failed")
	}
	if c.EarnTokensForStep(ctx, StepHomebaseStartupInfo) {
		t.Error("second earn for the same step must fail")
	}

	s := c.State()
	if s.Balance != 265 {
		t.Errorf("balance = %d, want 265", s.Balance)
	}
	if len(s.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(s.Transactions))
	}
	spend := s.Transactions[0]
	if spend.Kind != KindSpend || spend.Amount != 15 || spend.Reason != "Research analysis" || spend.ID == "" {
		t.Errorf("unexpected spend transaction %+v", spend)
	}
	if s.Transactions[1].Kind != KindEarn || s.Transactions[1].Amount != 30 {
		t.Errorf("unexpected earn transaction %+v", s.Transactions[1])
	}
	if len(s.CompletedSteps) != 1 || s.CompletedSteps[0] != string(StepHomebaseStartupInfo) {
		t.Errorf("completed steps = %v", s.CompletedSteps)
	}
}

func TestClient_SpendInsufficient(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient(t, WithInitialBalance(10))

	if c.HasEnoughTokens(FeatureResearchAnalysis) {
		t.Error("10 tokens must not cover research analysis")
	}
	if c.SpendTokensForAI(ctx, FeatureResearchAnalysis) {
		t.Error("spend must fail")
	}
	if c.Balance() != 10 || len(c.State().Transactions) != 0 {
		t.Errorf("state changed after failed spend: %+v", c.State())
	}
}

func TestClient_UnknownKeys(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient(t)

	if c.HasEnoughTokens(Feature("NOPE")) {
		t.Error("unknown feature must not be affordable")
	}
	if c.SpendTokensForAI(ctx, Feature("NOPE")) {
		t.Error("unknown feature must not be charged")
	}
	if c.EarnTokensForStep(ctx, Step("NOPE")) {
		t.Error("unknown step must not be rewarded")
	}
	if c.Balance() != 250 {
		t.Errorf("balance = %d, want 250", c.Balance())
	}
}

func TestClient_Subscribe(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient(t)

	var (
		mu       sync.Mutex
		balances []int64
	)
	stop := c.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		balances = append(balances, s.Balance)
	})

	c.SpendTokensForAI(ctx, FeatureAIChatMessage)
	c.EarnTokensForStep(ctx, StepMomTestGoodScore)
	stop()
	stop()
	c.SpendTokensForAI(ctx, FeatureAIChatMessage)

	mu.Lock()
	defer mu.Unlock()
	want := []int64{245, 285}
	if len(balances) != len(want) {
		t.Fatalf("got %v, want %v", balances, want)
	}
	for i := range want {
		if balances[i] != want[i] {
			t.Errorf("event %d: balance = %d, want %d", i, balances[i], want[i])
		}
	}
}

func TestClient_Reset(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient(t)

	c.SpendTokensForAI(ctx, FeatureMissionSteps)
	c.EarnTokensForStep(ctx, StepProductActionTable)

	notified := 0
	c.Subscribe(func(State) { notified++ })
	c.Reset(ctx)

	s := c.State()
	if s.Balance != 250 || len(s.Transactions) != 0 || len(s.CompletedSteps) != 0 {
		t.Errorf("unexpected state after reset: %+v", s)
	}
	if notified != 1 {
		t.Errorf("notified = %d, want 1", notified)
	}
	if !c.EarnTokensForStep(ctx, StepProductActionTable) {
		t.Error("step must be rewardable again after reset")
	}
}

func TestClient_StateIsACopy(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient(t)
	c.EarnTokensForStep(ctx, StepSalesValueProposition)

	s := c.State()
	s.Balance = 0
	s.CompletedSteps[0] = "MUTATED"
	s.Transactions[0].Amount = 1

	fresh := c.State()
	if fresh.Balance != 285 || fresh.CompletedSteps[0] != string(StepSalesValueProposition) || fresh.Transactions[0].Amount != 35 {
		t.Errorf("client state was modified through snapshot: %+v", fresh)
	}
}

func TestClient_PingAndHealth(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient(t)

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	h := c.Health(ctx)
	if h.Status != "ok" || h.Checks["database"] != "ok" {
		t.Errorf("unexpected health %+v", h)
	}
}

func TestCatalogLookups(t *testing.T) {
	e, err := Cost(FeatureWhatIfAnalysis)
	if err != nil || e.Amount != 20 {
		t.Errorf("Cost = %+v, %v", e, err)
	}
	e, err = Reward(StepInterviewQuestionsSaved)
	if err != nil || e.Amount != 20 {
		t.Errorf("Reward = %+v, %v", e, err)
	}
	if _, err := Cost(Feature("NOPE")); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("expected ErrUnknownFeature, got %v", err)
	}
	if _, err := Reward(Step("NOPE")); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("expected ErrUnknownStep, got %v", err)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	// nil observer should not panic.
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
	obs.observeBool("test", time.Now(), false)
	obs.balance(1)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if matchLabels(m, labels) {
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
				return m.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}

func TestObserver_WithPrometheus(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c := newMemoryClient(t, WithInitialBalance(10), WithPrometheus(reg))

	c.SpendTokensForAI(ctx, FeatureAIChatMessage)
	c.SpendTokensForAI(ctx, FeatureResearchAnalysis)

	ok := counterValue(t, reg, "runway_sdk_operations_total",
		map[string]string{"operation": "ledger.spend", "status": "ok"})
	rejected := counterValue(t, reg, "runway_sdk_operations_total",
		map[string]string{"operation": "ledger.spend", "status": "rejected"})
	if ok != 1 || rejected != 1 {
		t.Errorf("ok=%v rejected=%v, want 1 and 1", ok, rejected)
	}

	if got := counterValue(t, reg, "runway_sdk_balance_tokens", nil); got != 5 {
		t.Errorf("balance gauge = %v, want 5", got)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("first newObserver: %v", err)
	}
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("second newObserver: %v", err)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	// Проверяем что логгер не паникует при вызове.
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
	obs.observeBool("test.op", time.Now(), false)
}
