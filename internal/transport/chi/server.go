package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/runway/internal/domain"
	assistuc "github.com/kailas-cloud/runway/internal/usecase/assist"
	healthuc "github.com/kailas-cloud/runway/internal/usecase/health"
	ledgeruc "github.com/kailas-cloud/runway/internal/usecase/ledger"
	toastuc "github.com/kailas-cloud/runway/internal/usecase/toast"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the runway HTTP API.
type Server struct {
	ledger        *ledgeruc.Ledger
	assist        *assistuc.Service
	toasts        *toastuc.Feed
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. toasts can be nil.
func NewServer(
	ledger *ledgeruc.Ledger,
	assist *assistuc.Service,
	toasts *toastuc.Feed,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ledger: ledger,
		assist: assist,
		toasts: toasts,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInsufficientTokens, http.StatusPaymentRequired, CodeInsufficientTokens),
		sentinelHandler(domain.ErrUnknownFeature, http.StatusNotFound, CodeUnknownFeature),
		sentinelHandler(domain.ErrUnknownStep, http.StatusNotFound, CodeUnknownStep),
		sentinelHandler(domain.ErrInvalidAmount, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrProviderError, http.StatusBadGateway, CodeProviderError),
		sentinelHandler(domain.ErrMalformedReply, http.StatusBadGateway, CodeMalformedReply),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, CodeNotImplemented),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/", s.GetLedger)
			r.Get("/can-spend", s.CanSpend)
			r.Post("/spend", s.Spend)
			r.Post("/earn", s.Earn)
			r.Post("/reset", s.Reset)
			r.Get("/events", s.LedgerEvents)
		})

		r.Get("/catalog", s.GetCatalog)
		r.Get("/features/{feature}/affordable", s.FeatureAffordable)
		r.Post("/features/{feature}/spend", s.FeatureSpend)
		r.Post("/steps/{step}/earn", s.StepEarn)
		r.Post("/assist/{feature}", s.Assist)

		r.Get("/toasts", s.ListToasts)
		r.Delete("/toasts/{id}", s.DismissToast)
	})
}

// Handler returns a router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInsufficientTokens,
		domain.ErrUnknownFeature,
		domain.ErrUnknownStep,
		domain.ErrInvalidAmount,
		domain.ErrInvalidRequest,
		domain.ErrProviderError,
		domain.ErrMalformedReply,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
