// Package token holds the token economy domain: transactions, ledger state
// snapshots and the fixed cost/reward catalog.
package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/runway/internal/domain"
)

// Kind is the direction of a transaction.
type Kind string

// Transaction kinds.
const (
	KindEarn  Kind = "earn"
	KindSpend Kind = "spend"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k == KindEarn || k == KindSpend
}

// Transaction is an immutable ledger entry.
type Transaction struct {
	id        string
	kind      Kind
	amount    int64
	reason    string
	timestamp time.Time
}

// NewTransaction creates a transaction with a fresh time-ordered ID.
func NewTransaction(kind Kind, amount int64, reason string, at time.Time) (Transaction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Transaction{}, fmt.Errorf("generate transaction id: %w", err)
	}
	return Restore(id.String(), kind, amount, reason, at)
}

// Restore rebuilds a transaction from persisted fields.
func Restore(id string, kind Kind, amount int64, reason string, at time.Time) (Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return Transaction{}, fmt.Errorf("transaction id is required: %w", domain.ErrInvalidRequest)
	}
	if !kind.IsValid() {
		return Transaction{}, fmt.Errorf("transaction kind %q: %w", kind, domain.ErrInvalidRequest)
	}
	if amount <= 0 {
		return Transaction{}, fmt.Errorf("transaction amount %d: %w", amount, domain.ErrInvalidAmount)
	}
	return Transaction{
		id:        id,
		kind:      kind,
		amount:    amount,
		reason:    reason,
		timestamp: at.UTC(),
	}, nil
}

// ID returns the opaque transaction identifier.
func (t Transaction) ID() string { return t.id }

// Kind returns earn or spend.
func (t Transaction) Kind() Kind { return t.kind }

// Amount returns the positive token count.
func (t Transaction) Amount() int64 { return t.amount }

// Reason returns the human-readable label.
func (t Transaction) Reason() string { return t.reason }

// Timestamp returns the creation time (UTC).
func (t Transaction) Timestamp() time.Time { return t.timestamp }

// Delta returns the signed effect on the balance.
func (t Transaction) Delta() int64 {
	if t.kind == KindSpend {
		return -t.amount
	}
	return t.amount
}
