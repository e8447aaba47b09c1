package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/runway/internal/domain/token"
)

func TestHasEnoughTokens(t *testing.T) {
	l := New(context.Background(), nil, 20, nil)

	assert.True(t, l.HasEnoughTokens(token.FeatureWhatIfAnalysis))
	assert.False(t, l.HasEnoughTokens(token.FeatureImplementationGeneration))
	assert.False(t, l.HasEnoughTokens(token.Feature("TELEPORT")))
}

func TestSpendTokensForAI(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	require.True(t, l.SpendTokensForAI(ctx, token.FeatureResearchAnalysis))
	assert.False(t, l.SpendTokensForAI(ctx, token.Feature("TELEPORT")))

	s := l.State()
	assert.Equal(t, int64(235), s.Balance)
	require.Len(t, s.Transactions, 1)
	assert.Equal(t, "Research analysis", s.Transactions[0].Reason())
}

func TestSpendTokensForAI_Insufficient(t *testing.T) {
	l := New(context.Background(), nil, 10, nil)
	assert.False(t, l.SpendTokensForAI(context.Background(), token.FeatureResearchAnalysis))
	assert.Equal(t, int64(10), l.Balance())
}

func TestEarnTokensForStep(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	assert.True(t, l.EarnTokensForStep(ctx, token.StepHomebaseStartupInfo))
	assert.False(t, l.EarnTokensForStep(ctx, token.StepHomebaseStartupInfo))
	assert.False(t, l.EarnTokensForStep(ctx, token.Step("NOPE")))

	s := l.State()
	assert.Equal(t, int64(280), s.Balance)
	assert.True(t, s.HasCompleted(string(token.StepHomebaseStartupInfo)))
	require.Len(t, s.Transactions, 1)
	assert.Equal(t, "Completed startup info", s.Transactions[0].Reason())
}

func TestEarnTokensForStep_AllSteps(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	var want int64 = 250
	for _, step := range token.Steps() {
		reward, ok := token.Reward(step)
		require.True(t, ok)
		require.True(t, l.EarnTokensForStep(ctx, step), step)
		want += reward.Amount
	}
	assert.Equal(t, want, l.Balance())
	assert.Len(t, l.State().CompletedSteps, len(token.Steps()))
}
