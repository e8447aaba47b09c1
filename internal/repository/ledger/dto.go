package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/runway/internal/domain/token"
)

// stateRecord is the persisted ledger layout. Field names are part of the
// storage contract shared with existing clients.
type stateRecord struct {
	Balance        *int64              `json:"balance"`
	Transactions   []transactionRecord `json:"transactions"`
	CompletedSteps []string            `json:"completedSteps"`
}

type transactionRecord struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// encodeState converts a snapshot to its JSON record.
func encodeState(s token.State) ([]byte, error) {
	balance := s.Balance
	rec := stateRecord{
		Balance:        &balance,
		Transactions:   make([]transactionRecord, len(s.Transactions)),
		CompletedSteps: s.Steps(),
	}
	for i, tx := range s.Transactions {
		rec.Transactions[i] = transactionRecord{
			ID:        tx.ID(),
			Type:      string(tx.Kind()),
			Amount:    tx.Amount(),
			Reason:    tx.Reason(),
			Timestamp: tx.Timestamp().Format(time.RFC3339Nano),
		}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger state: %w", err)
	}
	return data, nil
}

// decodeState parses and validates a JSON record.
func decodeState(data []byte) (token.State, error) {
	var rec *stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return token.State{}, fmt.Errorf("unmarshal ledger state: %w", err)
	}
	switch {
	case rec == nil:
		return token.State{}, errors.New("ledger record is null")
	case rec.Balance == nil:
		return token.State{}, errors.New("ledger record has no balance")
	case *rec.Balance < 0:
		return token.State{}, fmt.Errorf("negative balance %d", *rec.Balance)
	}

	s := token.DefaultState(*rec.Balance)
	for i, r := range rec.Transactions {
		ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			return token.State{}, fmt.Errorf("transaction %d timestamp: %w", i, err)
		}
		tx, err := token.Restore(r.ID, token.Kind(r.Type), r.Amount, r.Reason, ts)
		if err != nil {
			return token.State{}, fmt.Errorf("transaction %d: %w", i, err)
		}
		s.Transactions = append(s.Transactions, tx)
	}
	for _, step := range rec.CompletedSteps {
		if step == "" {
			return token.State{}, fmt.Errorf("empty completed step")
		}
		s.CompletedSteps[step] = struct{}{}
	}
	return s, nil
}
