package handler

import (
	"net/http"

	"github.com/sevigo/btca/internal/apperr"
)

// GetConfig serves GET /config (§6.1): {provider, model,
// resourcesDirectory, collectionsDirectory, resourceCount}.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	snap := h.Config.Snapshot()
	writeJSON(w, http.StatusOK, struct {
		Provider             string `json:"provider"`
		Model                string `json:"model"`
		ResourcesDirectory   string `json:"resourcesDirectory"`
		CollectionsDirectory string `json:"collectionsDirectory"`
		ResourceCount        int    `json:"resourceCount"`
	}{
		Provider:             snap.Provider,
		Model:                snap.Model,
		ResourcesDirectory:   snap.ResourcesDir,
		CollectionsDirectory: snap.CollectionsDir,
		ResourceCount:        snap.ResourceCount(),
	})
}

// updateModelRequest is PUT /config/model's body.
type updateModelRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// UpdateModel serves PUT /config/model (§6.1): validates and persists the
// active provider/model, returning the current config.
func (h *Handler) UpdateModel(w http.ResponseWriter, r *http.Request) {
	var req updateModelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Request("invalid request body: %v", err))
		return
	}

	if err := h.Config.UpdateModel(req.Provider, req.Model); err != nil {
		writeError(w, err)
		return
	}

	h.GetConfig(w, r)
}
