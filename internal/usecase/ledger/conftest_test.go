package ledger

import (
	"context"
	"sync"

	"github.com/kailas-cloud/runway/internal/domain"
	"github.com/kailas-cloud/runway/internal/domain/token"
)

type mockStore struct {
	mu      sync.Mutex
	state   *token.State
	loadErr error
	saveErr error
	saves   []token.State
}

func (m *mockStore) Load(_ context.Context) (token.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return token.State{}, m.loadErr
	}
	if m.state == nil {
		return token.State{}, domain.ErrStateNotFound
	}
	return m.state.Clone(), nil
}

func (m *mockStore) Save(_ context.Context, s token.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, s.Clone())
	if m.saveErr != nil {
		return m.saveErr
	}
	c := s.Clone()
	m.state = &c
	return nil
}

func (m *mockStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *mockStore) lastSave() token.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[len(m.saves)-1]
}

type notice struct {
	kind   token.Kind
	amount int64
	reason string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *recordingNotifier) Notify(kind token.Kind, amount int64, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{kind, amount, reason})
}

func (n *recordingNotifier) all() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notice, len(n.notices))
	copy(out, n.notices)
	return out
}

type panickingNotifier struct{}

func (panickingNotifier) Notify(token.Kind, int64, string) { panic("toast renderer exploded") }

func newTestLedger(store Store) *Ledger {
	return New(context.Background(), store, domain.DefaultInitialBalance, nil)
}
