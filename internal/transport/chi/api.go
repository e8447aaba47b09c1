package chi

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/runway/internal/domain/token"
	assistuc "github.com/kailas-cloud/runway/internal/usecase/assist"
	toastuc "github.com/kailas-cloud/runway/internal/usecase/toast"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeNotFound           ErrorCode = "not_found"
	CodeInsufficientTokens ErrorCode = "insufficient_tokens"
	CodeUnknownFeature     ErrorCode = "unknown_feature"
	CodeUnknownStep        ErrorCode = "unknown_step"
	CodeProviderError      ErrorCode = "provider_error"
	CodeMalformedReply     ErrorCode = "malformed_reply"
	CodeNotImplemented     ErrorCode = "not_implemented"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Transaction is one ledger entry.
type Transaction struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// LedgerState mirrors the persisted record.
type LedgerState struct {
	Balance        int64         `json:"balance"`
	Transactions   []Transaction `json:"transactions"`
	CompletedSteps []string      `json:"completedSteps"`
}

// CanSpendResponse answers GET /ledger/can-spend.
type CanSpendResponse struct {
	Amount   int64 `json:"amount"`
	CanSpend bool  `json:"can_spend"`
	Balance  int64 `json:"balance"`
}

// SpendRequest is the body of POST /ledger/spend.
type SpendRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// EarnRequest is the body of POST /ledger/earn.
type EarnRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
	StepID string `json:"step_id"`
}

// BalanceResponse reports the balance after a spend.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// EarnResponse reports whether an earn issued tokens.
type EarnResponse struct {
	Issued  bool  `json:"issued"`
	Balance int64 `json:"balance"`
}

// CatalogEntry is one priced feature or rewarded step.
type CatalogEntry struct {
	Key    string `json:"key"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// CatalogResponse lists feature costs and step rewards.
type CatalogResponse struct {
	Features []CatalogEntry `json:"features"`
	Steps    []CatalogEntry `json:"steps"`
}

// AffordableResponse answers GET /features/{feature}/affordable.
type AffordableResponse struct {
	Feature    string `json:"feature"`
	Cost       int64  `json:"cost"`
	Affordable bool   `json:"affordable"`
	Balance    int64  `json:"balance"`
}

// FeatureSpendResponse answers POST /features/{feature}/spend.
type FeatureSpendResponse struct {
	Feature string `json:"feature"`
	Cost    int64  `json:"cost"`
	Balance int64  `json:"balance"`
}

// StepEarnResponse answers POST /steps/{step}/earn.
type StepEarnResponse struct {
	Step    string `json:"step"`
	Reward  int64  `json:"reward"`
	Issued  bool   `json:"issued"`
	Balance int64  `json:"balance"`
}

// AssistRequest is the body of POST /assist/{feature}.
type AssistRequest struct {
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	JSON   bool   `json:"json,omitempty"`
}

// AssistUsage reports provider token accounting.
type AssistUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AssistResponse answers POST /assist/{feature}.
type AssistResponse struct {
	Feature string          `json:"feature"`
	Text    string          `json:"text"`
	Data    json.RawMessage `json:"data,omitempty"`
	Model   string          `json:"model,omitempty"`
	Cost    int64           `json:"cost"`
	Balance int64           `json:"balance"`
	Usage   AssistUsage     `json:"usage"`
}

// Toast is an active ledger notification.
type Toast struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Delta     int64     `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToastListResponse answers GET /toasts.
type ToastListResponse struct {
	Items []Toast `json:"items"`
}

// HealthResponse answers GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func stateToAPI(s token.State) LedgerState {
	txs := make([]Transaction, len(s.Transactions))
	for i, tx := range s.Transactions {
		txs[i] = Transaction{
			ID:        tx.ID(),
			Type:      string(tx.Kind()),
			Amount:    tx.Amount(),
			Reason:    tx.Reason(),
			Timestamp: tx.Timestamp(),
		}
	}
	return LedgerState{
		Balance:        s.Balance,
		Transactions:   txs,
		CompletedSteps: s.Steps(),
	}
}

func catalogToAPI() CatalogResponse {
	resp := CatalogResponse{}
	for _, f := range token.Features() {
		e, _ := token.Cost(f)
		resp.Features = append(resp.Features, CatalogEntry{Key: string(f), Amount: e.Amount, Reason: e.Reason})
	}
	for _, s := range token.Steps() {
		e, _ := token.Reward(s)
		resp.Steps = append(resp.Steps, CatalogEntry{Key: string(s), Amount: e.Amount, Reason: e.Reason})
	}
	return resp
}

func replyToAPI(r assistuc.Reply) AssistResponse {
	return AssistResponse{
		Feature: string(r.Feature),
		Text:    r.Text,
		Data:    r.Data,
		Model:   r.Model,
		Cost:    r.Cost,
		Balance: r.Balance,
		Usage: AssistUsage{
			PromptTokens:     r.Usage.PromptTokens,
			CompletionTokens: r.Usage.CompletionTokens,
			TotalTokens:      r.Usage.TotalTokens,
		},
	}
}

func toastsToAPI(ts []toastuc.Toast) ToastListResponse {
	items := make([]Toast, len(ts))
	for i, t := range ts {
		items[i] = Toast{
			ID:        t.ID,
			Text:      t.Text(),
			Delta:     t.Delta,
			Reason:    t.Reason,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		}
	}
	return ToastListResponse{Items: items}
}
