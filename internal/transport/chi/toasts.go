package chi

import "net/http"

// ListToasts handles GET /api/v1/toasts.
func (s *Server) ListToasts(w http.ResponseWriter, _ *http.Request) {
	if s.toasts == nil {
		writeJSON(w, http.StatusOK, ToastListResponse{Items: []Toast{}})
		return
	}
	writeJSON(w, http.StatusOK, toastsToAPI(s.toasts.Active()))
}

// DismissToast handles DELETE /api/v1/toasts/{id}.
func (s *Server) DismissToast(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := bindPath(r, "id", &id); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter id: "+err.Error())
		return
	}
	if s.toasts == nil || !s.toasts.Dismiss(id) {
		writeError(w, http.StatusNotFound, CodeNotFound, "toast not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
