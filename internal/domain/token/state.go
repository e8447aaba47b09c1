package token

import "sort"

// State is a snapshot of the ledger. Values returned by the ledger are copies;
// mutating them has no effect on the ledger.
type State struct {
	Balance        int64
	Transactions   []Transaction
	CompletedSteps map[string]struct{}
}

// DefaultState returns a fresh ledger state with the given starting balance.
func DefaultState(initial int64) State {
	return State{
		Balance:        initial,
		Transactions:   []Transaction{},
		CompletedSteps: make(map[string]struct{}),
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	txs := make([]Transaction, len(s.Transactions))
	copy(txs, s.Transactions)

	steps := make(map[string]struct{}, len(s.CompletedSteps))
	for k := range s.CompletedSteps {
		steps[k] = struct{}{}
	}

	return State{
		Balance:        s.Balance,
		Transactions:   txs,
		CompletedSteps: steps,
	}
}

// HasCompleted reports whether the one-time reward for stepID was already issued.
func (s State) HasCompleted(stepID string) bool {
	_, ok := s.CompletedSteps[stepID]
	return ok
}

// Steps returns the completed step IDs in sorted order.
func (s State) Steps() []string {
	out := make([]string, 0, len(s.CompletedSteps))
	for k := range s.CompletedSteps {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Totals returns the sums of earn and spend amounts across all transactions.
func (s State) Totals() (earned, spent int64) {
	for _, tx := range s.Transactions {
		switch tx.Kind() {
		case KindEarn:
			earned += tx.Amount()
		case KindSpend:
			spent += tx.Amount()
		}
	}
	return earned, spent
}
