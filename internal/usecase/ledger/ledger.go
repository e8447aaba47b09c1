// Package ledger implements the token ledger: a persisted balance with an
// append-only transaction log and one-time step rewards.
package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/runway/internal/domain"
	"github.com/kailas-cloud/runway/internal/domain/token"
	"github.com/kailas-cloud/runway/internal/metrics"
)

// Ledger is the authoritative token balance for one runway instance.
//
// Mutations are serialized by writeMu, which is held across the
// check-then-act step, persistence and listener delivery, so listeners
// observe mutations in the order they were applied. Readers only take mu
// and are never blocked by storage I/O.
type Ledger struct {
	writeMu sync.Mutex

	mu      sync.RWMutex
	state   token.State
	initial int64

	subMu     sync.Mutex
	listeners []*subscription
	nextSubID uint64

	store    Store
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger
}

type subscription struct {
	id uint64
	fn Listener
}

// New creates a ledger and loads its state from store. A missing, unreadable
// or corrupt record falls back to the default state; construction never fails.
// store may be nil (in-memory only).
func New(ctx context.Context, store Store, initialBalance int64, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		state:   token.DefaultState(initialBalance),
		initial: initialBalance,
		store:   store,
		now:     time.Now,
		logger:  logger,
	}
	l.load(ctx)
	metrics.LedgerBalance.Set(float64(l.state.Balance))
	return l
}

// WithNotifier attaches the toast side effect.
func (l *Ledger) WithNotifier(n Notifier) *Ledger {
	l.writeMu.Lock()
	l.notifier = n
	l.writeMu.Unlock()
	return l
}

func (l *Ledger) load(ctx context.Context) {
	if l.store == nil {
		return
	}

	s, err := l.store.Load(ctx)
	switch {
	case err == nil:
		l.state = s
		l.logger.Info("Ledger loaded from store",
			zap.Int64("balance", s.Balance),
			zap.Int("transactions", len(s.Transactions)),
			zap.Int("completed_steps", len(s.CompletedSteps)),
		)
	case errors.Is(err, domain.ErrStateNotFound):
		l.logger.Info("No persisted ledger, starting from default state",
			zap.Int64("balance", l.initial))
	default:
		l.logger.Warn("Failed to load ledger, starting from default state",
			zap.Int64("balance", l.initial), zap.Error(err))
	}
}

// State returns a deep copy of the current state.
func (l *Ledger) State() token.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Clone()
}

// Balance returns the current balance.
func (l *Ledger) Balance() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Balance
}

// CanSpend reports whether the balance covers amount.
func (l *Ledger) CanSpend(amount int64) bool {
	if amount < 0 {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Balance >= amount
}

// Outcome reports whether a mutation applied and the balance right after it,
// or at the moment it was rejected.
type Outcome struct {
	OK      bool
	Balance int64
}

// Spend debits amount. Returns false without any state change when amount is
// not positive or the balance cannot cover it.
func (l *Ledger) Spend(ctx context.Context, amount int64, reason string) bool {
	return l.TrySpend(ctx, amount, reason).OK
}

// TrySpend is Spend that also reports the resulting balance.
func (l *Ledger) TrySpend(ctx context.Context, amount int64, reason string) Outcome {
	if amount <= 0 {
		l.reject("spend", "invalid", zap.Int64("amount", amount))
		return Outcome{Balance: l.Balance()}
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	l.mu.Lock()
	balance := l.state.Balance
	if balance < amount {
		l.mu.Unlock()
		l.reject("spend", "insufficient", zap.Int64("amount", amount), zap.Int64("balance", balance))
		return Outcome{Balance: balance}
	}
	tx, err := token.NewTransaction(token.KindSpend, amount, reason, l.now())
	if err != nil {
		l.mu.Unlock()
		l.logger.Error("Failed to create spend transaction", zap.Error(err))
		return Outcome{Balance: balance}
	}
	l.state.Balance -= amount
	l.state.Transactions = append(l.state.Transactions, tx)
	snap := l.state.Clone()
	l.mu.Unlock()

	l.applied(ctx, snap, tx)
	return Outcome{OK: true, Balance: snap.Balance}
}

// Earn credits amount once per stepID. Returns false without any state change
// when the step was already rewarded, amount is not positive, stepID is empty
// or the credit would overflow the balance.
func (l *Ledger) Earn(ctx context.Context, amount int64, reason, stepID string) bool {
	return l.TryEarn(ctx, amount, reason, stepID).OK
}

// TryEarn is Earn that also reports the resulting balance.
func (l *Ledger) TryEarn(ctx context.Context, amount int64, reason, stepID string) Outcome {
	if amount <= 0 || stepID == "" {
		l.reject("earn", "invalid", zap.Int64("amount", amount), zap.String("step", stepID))
		return Outcome{Balance: l.Balance()}
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	l.mu.Lock()
	balance := l.state.Balance
	if l.state.HasCompleted(stepID) {
		l.mu.Unlock()
		l.reject("earn", "duplicate_step", zap.String("step", stepID))
		return Outcome{Balance: balance}
	}
	if amount > math.MaxInt64-balance {
		l.mu.Unlock()
		l.reject("earn", "overflow", zap.Int64("amount", amount), zap.Int64("balance", balance))
		return Outcome{Balance: balance}
	}
	tx, err := token.NewTransaction(token.KindEarn, amount, reason, l.now())
	if err != nil {
		l.mu.Unlock()
		l.logger.Error("Failed to create earn transaction", zap.Error(err))
		return Outcome{Balance: balance}
	}
	l.state.Balance += amount
	l.state.Transactions = append(l.state.Transactions, tx)
	l.state.CompletedSteps[stepID] = struct{}{}
	snap := l.state.Clone()
	l.mu.Unlock()

	l.applied(ctx, snap, tx)
	return Outcome{OK: true, Balance: snap.Balance}
}

// Reset restores the default state, persists it and notifies listeners.
func (l *Ledger) Reset(ctx context.Context) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	l.mu.Lock()
	l.state = token.DefaultState(l.initial)
	snap := l.state.Clone()
	l.mu.Unlock()

	l.logger.Info("Ledger reset", zap.Int64("balance", snap.Balance))
	metrics.LedgerBalance.Set(float64(snap.Balance))
	l.persist(ctx, snap)
	l.broadcast(snap)
}

// Subscribe registers fn for every subsequent mutation. The returned function
// removes it; calling it again is a no-op. fn may read the ledger but must not
// mutate it: delivery happens while the mutation lock is held.
func (l *Ledger) Subscribe(fn Listener) (unsubscribe func()) {
	l.subMu.Lock()
	l.nextSubID++
	sub := &subscription{id: l.nextSubID, fn: fn}
	l.listeners = append(l.listeners, sub)
	l.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(sub.id) })
	}
}

func (l *Ledger) remove(id uint64) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for i, s := range l.listeners {
		if s.id == id {
			l.listeners = append(l.listeners[:i:i], l.listeners[i+1:]...)
			return
		}
	}
}

// applied runs the post-commit steps of a spend or earn. Caller holds writeMu.
func (l *Ledger) applied(ctx context.Context, snap token.State, tx token.Transaction) {
	kind := string(tx.Kind())
	metrics.LedgerTransactionsTotal.WithLabelValues(kind).Inc()
	metrics.LedgerTokensTotal.WithLabelValues(kind).Add(float64(tx.Amount()))
	metrics.LedgerBalance.Set(float64(snap.Balance))

	l.logger.Debug("Ledger transaction applied",
		zap.String("id", tx.ID()),
		zap.String("kind", kind),
		zap.Int64("amount", tx.Amount()),
		zap.String("reason", tx.Reason()),
		zap.Int64("balance", snap.Balance),
	)

	l.persist(ctx, snap)
	l.broadcast(snap)
	l.toast(tx)
}

func (l *Ledger) persist(ctx context.Context, snap token.State) {
	if l.store == nil {
		return
	}
	if err := l.store.Save(ctx, snap); err != nil {
		metrics.LedgerPersistErrorsTotal.Inc()
		l.logger.Warn("Failed to persist ledger", zap.Int64("balance", snap.Balance), zap.Error(err))
	}
}

func (l *Ledger) broadcast(snap token.State) {
	l.subMu.Lock()
	subs := make([]*subscription, len(l.listeners))
	copy(subs, l.listeners)
	l.subMu.Unlock()

	for _, s := range subs {
		l.deliver(s, snap.Clone())
	}
}

func (l *Ledger) deliver(s *subscription, snap token.State) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Ledger listener panicked", zap.Uint64("listener", s.id), zap.Any("panic", r))
		}
	}()
	s.fn(snap)
}

func (l *Ledger) toast(tx token.Transaction) {
	if l.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Toast notifier panicked", zap.Any("panic", r))
		}
	}()
	l.notifier.Notify(tx.Kind(), tx.Amount(), tx.Reason())
}

func (l *Ledger) reject(op, reason string, fields ...zap.Field) {
	metrics.LedgerRejectionsTotal.WithLabelValues(op, reason).Inc()
	l.logger.Debug("Ledger operation rejected",
		append([]zap.Field{zap.String("op", op), zap.String("reason", reason)}, fields...)...)
}
