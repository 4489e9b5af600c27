package handler

import (
	"net/http"

	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/config"
)

const maxResourceNameLen = 64

// resourceWire is the §6.1 wire shape for one resource, both in GET
// /resources and in POST /config/resources's response.
type resourceWire struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	URL          string `json:"url"`
	Branch       string `json:"branch"`
	SearchPath   string `json:"searchPath,omitempty"`
	SpecialNotes string `json:"specialNotes,omitempty"`
}

func toWire(r config.ResourceDefinition) resourceWire {
	return resourceWire{
		Name:         r.Name,
		Type:         r.Type,
		URL:          r.URL,
		Branch:       r.Branch,
		SearchPath:   r.SearchPath,
		SpecialNotes: r.SpecialNotes,
	}
}

// GetResources serves GET /resources (§6.1).
func (h *Handler) GetResources(w http.ResponseWriter, r *http.Request) {
	snap := h.Config.Snapshot()
	out := make([]resourceWire, len(snap.Resources))
	for i, res := range snap.Resources {
		out[i] = toWire(res)
	}
	writeJSON(w, http.StatusOK, struct {
		Resources []resourceWire `json:"resources"`
	}{out})
}

// AddResource serves POST /config/resources (§6.1): a tagged-union
// resource body discriminated by "type". Only "git" is implemented; any
// other tag is rejected rather than silently accepted (DESIGN NOTES:
// "unknown tags reject").
func (h *Handler) AddResource(w http.ResponseWriter, r *http.Request) {
	var body resourceWire
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, apperr.Request("invalid request body: %v", err))
		return
	}
	if len(body.Name) > maxResourceNameLen {
		writeError(w, apperr.Request("resource name exceeds %d characters", maxResourceNameLen))
		return
	}
	if body.Type != "git" {
		writeError(w, apperr.Request("unsupported resource type %q: only \"git\" is implemented", body.Type))
		return
	}

	def := config.ResourceDefinition{
		Name:         body.Name,
		Type:         body.Type,
		URL:          body.URL,
		Branch:       body.Branch,
		SearchPath:   body.SearchPath,
		SpecialNotes: body.SpecialNotes,
	}
	if err := h.Config.AddResource(def); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWire(def))
}

// removeResourceRequest is DELETE /config/resources's body.
type removeResourceRequest struct {
	Name string `json:"name"`
}

// RemoveResource serves DELETE /config/resources (§6.1).
func (h *Handler) RemoveResource(w http.ResponseWriter, r *http.Request) {
	var req removeResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Request("invalid request body: %v", err))
		return
	}

	removed, err := h.Config.RemoveResource(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Name    string `json:"name"`
	}{removed, req.Name})
}
