package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/runway/internal/db"
	"github.com/kailas-cloud/runway/internal/domain/token"
	ledgerrepo "github.com/kailas-cloud/runway/internal/repository/ledger"
)

const stateKey = "runway:ledger:state"

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestPing(t *testing.T) {
	tests := []struct {
		name    string
		result  rueidis.RedisResult
		wantErr bool
	}{
		{"pong", mock.Result(mock.RedisString("PONG")), false},
		{"timeout", mock.ErrorResult(context.DeadlineExceeded), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mock.NewClient(gomock.NewController(t))
			c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(tt.result)

			err := NewStoreForTest(c).Ping(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Ping() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWaitForReady_RecoversAfterFailures(t *testing.T) {
	old := readyPollInterval
	readyPollInterval = time.Millisecond
	t.Cleanup(func() { readyPollInterval = old })

	c := mock.NewClient(gomock.NewController(t))
	gomock.InOrder(
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
			Return(mock.ErrorResult(errors.New("LOADING"))).Times(2),
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
			Return(mock.Result(mock.RedisString("PONG"))),
	)

	if err := NewStoreForTest(c).WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	c := mock.NewClient(gomock.NewController(t))
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	err := NewStoreForTest(c).WaitForReady(context.Background(), 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected last ping failure in %q", err)
	}
}

func TestClose(t *testing.T) {
	c := mock.NewClient(gomock.NewController(t))
	c.EXPECT().Close()

	NewStoreForTest(c).Close()
}

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		result   rueidis.RedisResult
		want     string
		wantErr  error
		wantDBOp string
	}{
		{name: "record", result: mock.Result(mock.RedisBlobString(`{"balance":250}`)), want: `{"balance":250}`},
		{name: "missing", result: mock.Result(mock.RedisNil()), wantErr: db.ErrKeyNotFound},
		{name: "network", result: mock.ErrorResult(errors.New("connection reset")), wantDBOp: db.OpGet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mock.NewClient(gomock.NewController(t))
			c.EXPECT().Do(gomock.Any(), mock.Match("GET", stateKey)).Return(tt.result)

			got, err := NewStoreForTest(c).Get(context.Background(), stateKey)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.wantDBOp != "":
				var dbErr *db.Error
				if !errors.As(err, &dbErr) || dbErr.Op != tt.wantDBOp {
					t.Fatalf("expected *db.Error with op %s, got %v", tt.wantDBOp, err)
				}
				if errors.Is(err, db.ErrKeyNotFound) {
					t.Error("network errors must not look like a missing key")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(got) != tt.want {
					t.Errorf("Get() = %s, want %s", got, tt.want)
				}
			}
		})
	}
}

func TestSet_Error(t *testing.T) {
	c := mock.NewClient(gomock.NewController(t))
	c.EXPECT().Do(gomock.Any(), mock.Match("SET", stateKey, "{}")).
		Return(mock.ErrorResult(errors.New("READONLY")))

	err := NewStoreForTest(c).Set(context.Background(), stateKey, []byte("{}"))
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSet {
		t.Errorf("expected *db.Error with op SET, got %v", err)
	}
}

// The ledger record written with SET must come back intact from GET.
func TestLedgerRecord_RoundTrip(t *testing.T) {
	c := mock.NewClient(gomock.NewController(t))

	var stored string
	c.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
		return len(cmd) == 3 && cmd[0] == "SET" && cmd[1] == stateKey
	})).DoAndReturn(func(_ context.Context, cmd rueidis.Completed) rueidis.RedisResult {
		stored = cmd.Commands()[2]
		return mock.Result(mock.RedisString("OK"))
	})
	c.EXPECT().Do(gomock.Any(), mock.Match("GET", stateKey)).
		DoAndReturn(func(context.Context, rueidis.Completed) rueidis.RedisResult {
			return mock.Result(mock.RedisBlobString(stored))
		})

	repo := ledgerrepo.New(NewStoreForTest(c), "runway:")
	ctx := context.Background()

	st := token.DefaultState(250)
	tx, err := token.NewTransaction(token.KindEarn, 30, "Completed startup info", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	st.Balance += 30
	st.Transactions = append(st.Transactions, tx)
	st.CompletedSteps["HOMEBASE_STARTUP_INFO"] = struct{}{}

	if err := repo.Save(ctx, st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Balance != 280 || len(got.Transactions) != 1 || !got.HasCompleted("HOMEBASE_STARTUP_INFO") {
		t.Errorf("unexpected state after round trip: %+v", got)
	}
	if got.Transactions[0].ID() != tx.ID() {
		t.Errorf("transaction id = %s, want %s", got.Transactions[0].ID(), tx.ID())
	}
}
