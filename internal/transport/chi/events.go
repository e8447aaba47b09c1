package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/runway/internal/domain/token"
	logpkg "github.com/kailas-cloud/runway/internal/logger"
)

// keepAliveInterval spaces SSE comment frames on idle streams.
var keepAliveInterval = 15 * time.Second

// LedgerEvents handles GET /api/v1/ledger/events. It streams a "state" event
// with the current state on connect and after every mutation. A slow client
// only ever sees the newest state; intermediate ones are coalesced.
func (s *Server) LedgerEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, CodeInternalError, "streaming unsupported")
		return
	}

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	logger := logpkg.FromContext(r.Context(), s.logger)

	latest := make(chan token.State, 1)
	unsubscribe := s.ledger.Subscribe(func(st token.State) {
		for {
			select {
			case latest <- st:
				return
			default:
			}
			select {
			case <-latest:
			default:
			}
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeStateEvent(w, s.ledger.State()); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug("Ledger event stream closed")
			return
		case st := <-latest:
			if err := writeStateEvent(w, st); err != nil {
				logger.Debug("Ledger event stream write failed", zap.Error(err))
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeStateEvent(w http.ResponseWriter, st token.State) error {
	data, err := json.Marshal(stateToAPI(st))
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
