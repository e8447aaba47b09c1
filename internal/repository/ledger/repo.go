package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/runway/internal/db"
	"github.com/kailas-cloud/runway/internal/domain"
	"github.com/kailas-cloud/runway/internal/domain/token"
)

// store is the consumer interface for the ledger record (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo persists the whole ledger state as one JSON record under a fixed key.
type Repo struct {
	store store
	key   string
}

// New creates a ledger repository. prefix is the storage key prefix
// (domain.KeyPrefix when empty).
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, key: prefix + "ledger:state"}
}

// Key returns the storage key of the ledger record.
func (r *Repo) Key() string { return r.key }

// Load reads the persisted state.
// Returns domain.ErrStateNotFound when nothing was saved yet and
// domain.ErrCorruptState when the record cannot be decoded.
func (r *Repo) Load(ctx context.Context) (token.State, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return token.State{}, domain.ErrStateNotFound
		}
		return token.State{}, fmt.Errorf("load ledger state: %w", err)
	}

	s, err := decodeState(data)
	if err != nil {
		return token.State{}, fmt.Errorf("%w: %w", domain.ErrCorruptState, err)
	}
	return s, nil
}

// Save overwrites the persisted state in full.
func (r *Repo) Save(ctx context.Context, s token.State) error {
	data, err := encodeState(s)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("save ledger state: %w", err)
	}
	return nil
}
