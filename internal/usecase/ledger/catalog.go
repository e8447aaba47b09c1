package ledger

import (
	"context"

	"github.com/kailas-cloud/runway/internal/domain/token"
)

// HasEnoughTokens reports whether the balance covers the cost of feature.
// Unknown features are never affordable.
func (l *Ledger) HasEnoughTokens(f token.Feature) bool {
	cost, ok := token.Cost(f)
	if !ok {
		return false
	}
	return l.CanSpend(cost.Amount)
}

// SpendTokensForAI debits the catalog cost of feature.
func (l *Ledger) SpendTokensForAI(ctx context.Context, f token.Feature) bool {
	return l.TrySpendFeature(ctx, f).OK
}

// TrySpendFeature is SpendTokensForAI that also reports the resulting balance.
func (l *Ledger) TrySpendFeature(ctx context.Context, f token.Feature) Outcome {
	cost, ok := token.Cost(f)
	if !ok {
		l.reject("spend", "unknown_feature")
		return Outcome{Balance: l.Balance()}
	}
	return l.TrySpend(ctx, cost.Amount, cost.Reason)
}

// EarnTokensForStep credits the catalog reward of step, at most once per step.
func (l *Ledger) EarnTokensForStep(ctx context.Context, s token.Step) bool {
	return l.TryEarnStep(ctx, s).OK
}

// TryEarnStep is EarnTokensForStep that also reports the resulting balance.
func (l *Ledger) TryEarnStep(ctx context.Context, s token.Step) Outcome {
	reward, ok := token.Reward(s)
	if !ok {
		l.reject("earn", "unknown_step")
		return Outcome{Balance: l.Balance()}
	}
	return l.TryEarn(ctx, reward.Amount, reward.Reason, string(s))
}
