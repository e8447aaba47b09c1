// Package toast keeps the short-lived notifications raised by ledger mutations.
package toast

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/runway/internal/domain/token"
	"github.com/kailas-cloud/runway/internal/metrics"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 3 * time.Second

const maxActive = 32

// Toast is one notification. Delta is signed: positive for earn, negative for spend.
type Toast struct {
	ID        string
	Delta     int64
	Reason    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Text renders the amount line, e.g. "+30 tokens" or "-15 tokens".
func (t Toast) Text() string {
	return fmt.Sprintf("%+d tokens", t.Delta)
}

// Feed holds undismissed toasts. It satisfies the ledger's Notifier.
type Feed struct {
	mu     sync.Mutex
	ttl    time.Duration
	items  []Toast
	now    func() time.Time
	logger *zap.Logger
}

// NewFeed creates a feed. A non-positive ttl means DefaultTTL.
func NewFeed(ttl time.Duration, logger *zap.Logger) *Feed {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{ttl: ttl, now: time.Now, logger: logger}
}

// Notify raises a toast for an applied ledger transaction.
func (f *Feed) Notify(kind token.Kind, amount int64, reason string) {
	delta := amount
	if kind == token.KindSpend {
		delta = -amount
	}

	now := f.now().UTC()
	t := Toast{
		ID:        uuid.NewString(),
		Delta:     delta,
		Reason:    reason,
		CreatedAt: now,
		ExpiresAt: now.Add(f.ttl),
	}

	f.mu.Lock()
	f.items = append(f.prune(now), t)
	if len(f.items) > maxActive {
		f.items = f.items[len(f.items)-maxActive:]
	}
	f.mu.Unlock()

	metrics.ToastsTotal.WithLabelValues(string(kind)).Inc()
	f.logger.Info(t.Text(), zap.String("reason", reason), zap.String("toast_id", t.ID))
}

// Active returns undismissed toasts, oldest first.
func (f *Feed) Active() []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = f.prune(f.now().UTC())
	out := make([]Toast, len(f.items))
	copy(out, f.items)
	return out
}

// Dismiss removes a toast before it expires. Reports whether it was active.
func (f *Feed) Dismiss(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.items {
		if t.ID == id {
			f.items = append(f.items[:i:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

// prune drops expired toasts. Caller holds mu.
func (f *Feed) prune(now time.Time) []Toast {
	kept := f.items[:0]
	for _, t := range f.items {
		if now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}
	return kept
}
