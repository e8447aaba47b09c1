package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/runway/internal/domain"
	"github.com/kailas-cloud/runway/internal/domain/token"
)

// GetCatalog handles GET /api/v1/catalog.
func (s *Server) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogToAPI())
}

// FeatureAffordable handles GET /api/v1/features/{feature}/affordable.
func (s *Server) FeatureAffordable(w http.ResponseWriter, r *http.Request) {
	f, cost, ok := s.bindFeature(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, AffordableResponse{
		Feature:    string(f),
		Cost:       cost.Amount,
		Affordable: s.ledger.HasEnoughTokens(f),
		Balance:    s.ledger.Balance(),
	})
}

// FeatureSpend handles POST /api/v1/features/{feature}/spend.
func (s *Server) FeatureSpend(w http.ResponseWriter, r *http.Request) {
	f, cost, ok := s.bindFeature(w, r)
	if !ok {
		return
	}

	out := s.ledger.TrySpendFeature(r.Context(), f)
	if !out.OK {
		s.handleDomainError(w, fmt.Errorf("feature %s: %w", f, domain.ErrInsufficientTokens))
		return
	}

	writeJSON(w, http.StatusOK, FeatureSpendResponse{
		Feature: string(f),
		Cost:    cost.Amount,
		Balance: out.Balance,
	})
}

// StepEarn handles POST /api/v1/steps/{step}/earn.
func (s *Server) StepEarn(w http.ResponseWriter, r *http.Request) {
	var raw string
	if err := bindPath(r, "step", &raw); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter step: "+err.Error())
		return
	}
	step, err := token.ParseStep(raw)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	reward, _ := token.Reward(step)

	out := s.ledger.TryEarnStep(r.Context(), step)
	writeJSON(w, http.StatusOK, StepEarnResponse{
		Step:    string(step),
		Reward:  reward.Amount,
		Issued:  out.OK,
		Balance: out.Balance,
	})
}

// bindFeature parses the {feature} path parameter. On failure it writes the
// error response and returns ok=false.
func (s *Server) bindFeature(w http.ResponseWriter, r *http.Request) (token.Feature, token.Entry, bool) {
	var raw string
	if err := bindPath(r, "feature", &raw); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter feature: "+err.Error())
		return "", token.Entry{}, false
	}
	f, err := token.ParseFeature(raw)
	if err != nil {
		s.handleDomainError(w, err)
		return "", token.Entry{}, false
	}
	cost, _ := token.Cost(f)
	return f, cost, true
}

func bindPath(r *http.Request, name string, dest any) error {
	return runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false})
}
