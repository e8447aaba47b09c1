package assist

import (
	"context"

	"github.com/kailas-cloud/runway/internal/domain/token"
)

// Wallet is the slice of the ledger the gateway needs.
type Wallet interface {
	Balance() int64
	HasEnoughTokens(f token.Feature) bool
	SpendTokensForAI(ctx context.Context, f token.Feature) bool
}
