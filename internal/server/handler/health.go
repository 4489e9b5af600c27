package handler

import "net/http"

// Health serves GET / (§6.1): {ok, service, version}.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		OK      bool   `json:"ok"`
		Service string `json:"service"`
		Version string `json:"version"`
	}{true, ServiceName, Version})
}
