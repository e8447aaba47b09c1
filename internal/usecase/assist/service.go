// Package assist gates AI completions behind the token ledger: a feature is
// charged only after the provider returned a usable reply.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/runway/internal/domain"
	"github.com/kailas-cloud/runway/internal/domain/token"
	"github.com/kailas-cloud/runway/internal/metrics"
)

// Request is a caller-supplied prompt.
type Request struct {
	System string
	Prompt string
	// JSON asks for the reply to be cleaned up and validated as a JSON document.
	JSON bool
}

// Reply is the outcome of a charged completion.
type Reply struct {
	Feature token.Feature
	Text    string
	// Data holds the cleaned document when JSON was requested.
	Data    json.RawMessage
	Model   string
	Cost    int64
	Balance int64
	Usage   Usage
}

// Usage mirrors provider token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Service runs completions on behalf of features.
type Service struct {
	wallet    Wallet
	completer domain.Completer
	logger    *zap.Logger
}

// New creates a Service. completer can be nil when no provider is configured.
func New(wallet Wallet, completer domain.Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{wallet: wallet, completer: completer, logger: logger}
}

// Run checks the balance, calls the provider and charges the feature cost.
// Nothing is charged when the provider fails or returns an unusable reply.
func (s *Service) Run(ctx context.Context, f token.Feature, req Request) (Reply, error) {
	cost, ok := token.Cost(f)
	if !ok {
		return Reply{}, fmt.Errorf("feature %q: %w", f, domain.ErrUnknownFeature)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return Reply{}, fmt.Errorf("prompt is required: %w", domain.ErrInvalidRequest)
	}
	if s.completer == nil {
		return Reply{}, fmt.Errorf("completion provider: %w", domain.ErrNotImplemented)
	}

	if !s.wallet.HasEnoughTokens(f) {
		s.outcome(f, "insufficient")
		return Reply{}, fmt.Errorf("feature %s costs %d, balance %d: %w",
			f, cost.Amount, s.wallet.Balance(), domain.ErrInsufficientTokens)
	}

	start := time.Now()
	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		System: req.System,
		Prompt: req.Prompt,
		JSON:   req.JSON,
	})
	duration := time.Since(start)
	if err != nil {
		s.outcome(f, "provider_error")
		s.logger.Error("Completion failed",
			zap.String("feature", string(f)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		if !errors.Is(err, domain.ErrProviderError) {
			err = fmt.Errorf("%w: %w", domain.ErrProviderError, err)
		}
		return Reply{}, fmt.Errorf("complete: %w", err)
	}

	reply := Reply{
		Feature: f,
		Text:    res.Text,
		Model:   res.Model,
		Cost:    cost.Amount,
		Usage: Usage{
			PromptTokens:     res.PromptTokens,
			CompletionTokens: res.CompletionTokens,
			TotalTokens:      res.TotalTokens,
		},
	}

	if req.JSON {
		data, err := CleanJSON(res.Text)
		if err != nil {
			s.outcome(f, "malformed")
			s.logger.Warn("Completion reply is not valid JSON",
				zap.String("feature", string(f)),
				zap.Int("reply_len", len(res.Text)),
				zap.Error(err),
			)
			return Reply{}, fmt.Errorf("%w: %w", domain.ErrMalformedReply, err)
		}
		reply.Data = data
	}

	// The balance may have dropped while the provider was working.
	if !s.wallet.SpendTokensForAI(ctx, f) {
		s.outcome(f, "insufficient")
		return Reply{}, fmt.Errorf("feature %s: %w", f, domain.ErrInsufficientTokens)
	}
	reply.Balance = s.wallet.Balance()

	s.outcome(f, "ok")
	s.logger.Debug("Completion charged",
		zap.String("feature", string(f)),
		zap.String("model", res.Model),
		zap.Int64("cost", cost.Amount),
		zap.Int64("balance", reply.Balance),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return reply, nil
}

func (s *Service) outcome(f token.Feature, outcome string) {
	metrics.AssistRequestsTotal.WithLabelValues(string(f), outcome).Inc()
}
