package chi

import (
	"encoding/json"
	"net/http"

	assistuc "github.com/kailas-cloud/runway/internal/usecase/assist"
)

// Assist handles POST /api/v1/assist/{feature}.
func (s *Server) Assist(w http.ResponseWriter, r *http.Request) {
	f, _, ok := s.bindFeature(w, r)
	if !ok {
		return
	}

	var req AssistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	reply, err := s.assist.Run(r.Context(), f, assistuc.Request{
		System: req.System,
		Prompt: req.Prompt,
		JSON:   req.JSON,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, replyToAPI(reply))
}
