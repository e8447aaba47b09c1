package runway

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/runway/internal/domain/token"
)

// Feature names a token-costing AI action.
type Feature = token.Feature

// Step names a one-time rewardable action.
type Step = token.Step

// Features with a cost.
const (
	FeatureResearchAnalysis         = token.FeatureResearchAnalysis
	FeatureAIChatMessage            = token.FeatureAIChatMessage
	FeatureQuestionEvaluation       = token.FeatureQuestionEvaluation
	FeatureWhatIfAnalysis           = token.FeatureWhatIfAnalysis
	FeatureImplementationGeneration = token.FeatureImplementationGeneration
	FeatureMissionSteps             = token.FeatureMissionSteps
)

// Steps with a reward.
const (
	StepHomebaseStartupInfo      = token.StepHomebaseStartupInfo
	StepResearchOverviewComplete = token.StepResearchOverviewComplete
	StepFirstQuestionEvaluation  = token.StepFirstQuestionEvaluation
	StepMomTestGoodScore         = token.StepMomTestGoodScore
	StepProductActionTable       = token.StepProductActionTable
	StepSalesValueProposition    = token.StepSalesValueProposition
	StepInterviewQuestionsSaved  = token.StepInterviewQuestionsSaved
)

// TransactionKind is "earn" or "spend".
type TransactionKind string

// Transaction kinds.
const (
	KindEarn  TransactionKind = "earn"
	KindSpend TransactionKind = "spend"
)

// Transaction is one ledger entry.
type Transaction struct {
	ID        string
	Kind      TransactionKind
	Amount    int64
	Reason    string
	Timestamp time.Time
}

// State is a snapshot of the ledger. It is a copy; changing it has no effect
// on the client.
type State struct {
	Balance        int64
	Transactions   []Transaction
	CompletedSteps []string // sorted
}

// CatalogEntry is the token amount and display reason of a feature or step.
type CatalogEntry struct {
	Amount int64
	Reason string
}

// Cost returns the cost of a feature.
func Cost(f Feature) (CatalogEntry, error) {
	e, ok := token.Cost(f)
	if !ok {
		return CatalogEntry{}, fmt.Errorf("feature %q: %w", f, ErrUnknownFeature)
	}
	return CatalogEntry{Amount: e.Amount, Reason: e.Reason}, nil
}

// Reward returns the one-time reward of a step.
func Reward(s Step) (CatalogEntry, error) {
	e, ok := token.Reward(s)
	if !ok {
		return CatalogEntry{}, fmt.Errorf("step %q: %w", s, ErrUnknownStep)
	}
	return CatalogEntry{Amount: e.Amount, Reason: e.Reason}, nil
}

func fromInternalState(s token.State) State {
	txs := make([]Transaction, len(s.Transactions))
	for i, tx := range s.Transactions {
		txs[i] = Transaction{
			ID:        tx.ID(),
			Kind:      TransactionKind(tx.Kind()),
			Amount:    tx.Amount(),
			Reason:    tx.Reason(),
			Timestamp: tx.Timestamp(),
		}
	}
	return State{
		Balance:        s.Balance,
		Transactions:   txs,
		CompletedSteps: s.Steps(),
	}
}
