package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/runway/internal/domain"
)

// GetLedger handles GET /api/v1/ledger.
func (s *Server) GetLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateToAPI(s.ledger.State()))
}

// CanSpend handles GET /api/v1/ledger/can-spend?amount=N.
func (s *Server) CanSpend(w http.ResponseWriter, r *http.Request) {
	var amount int64
	if err := runtime.BindQueryParameter("form", true, true, "amount", r.URL.Query(), &amount); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter amount: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CanSpendResponse{
		Amount:   amount,
		CanSpend: s.ledger.CanSpend(amount),
		Balance:  s.ledger.Balance(),
	})
}

// Spend handles POST /api/v1/ledger/spend.
func (s *Server) Spend(w http.ResponseWriter, r *http.Request) {
	var req SpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Amount <= 0 {
		s.handleDomainError(w, fmt.Errorf("spend %d: %w", req.Amount, domain.ErrInvalidAmount))
		return
	}

	out := s.ledger.TrySpend(r.Context(), req.Amount, req.Reason)
	if !out.OK {
		s.handleDomainError(w, fmt.Errorf("spend %d: %w", req.Amount, domain.ErrInsufficientTokens))
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{Balance: out.Balance})
}

// Earn handles POST /api/v1/ledger/earn. A repeated step id is not an error:
// the response reports issued=false.
func (s *Server) Earn(w http.ResponseWriter, r *http.Request) {
	var req EarnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Amount <= 0 {
		s.handleDomainError(w, fmt.Errorf("earn %d: %w", req.Amount, domain.ErrInvalidAmount))
		return
	}
	if strings.TrimSpace(req.StepID) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "step_id is required")
		return
	}

	out := s.ledger.TryEarn(r.Context(), req.Amount, req.Reason, req.StepID)
	writeJSON(w, http.StatusOK, EarnResponse{Issued: out.OK, Balance: out.Balance})
}

// Reset handles POST /api/v1/ledger/reset.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.ledger.Reset(r.Context())
	writeJSON(w, http.StatusOK, stateToAPI(s.ledger.State()))
}
