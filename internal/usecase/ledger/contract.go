package ledger

import (
	"context"

	"github.com/kailas-cloud/runway/internal/domain/token"
)

// Store persists the full ledger state.
type Store interface {
	Load(ctx context.Context) (token.State, error)
	Save(ctx context.Context, s token.State) error
}

// Notifier receives a fire-and-forget notice for every applied spend or earn.
// Implementations must not call back into the ledger.
type Notifier interface {
	Notify(kind token.Kind, amount int64, reason string)
}

// Listener receives a fresh snapshot after every successful mutation.
// Listeners run synchronously on the mutating goroutine and must not mutate
// the ledger; reading it (State, CanSpend) is fine.
type Listener func(token.State)
