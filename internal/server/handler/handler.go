// Package handler implements the HTTP handlers behind the Request
// Pipeline's public surface (§6.1), translating wire requests into calls
// against the Collection Assembler and Agent Loop and apperr failures into
// the {error, tag, hint?} wire shape (§7).
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sevigo/btca/internal/agent"
	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/collection"
	"github.com/sevigo/btca/internal/config"
	"github.com/sevigo/btca/internal/sse"
)

// Version is reported by the health endpoint; overridden at build time
// via -ldflags if the deployment wants a real version string.
var Version = "0.0.1"

// ServiceName is reported by GET / (§6.1).
const ServiceName = "btca-server"

// Handler bundles every dependency the request pipeline's handlers need.
type Handler struct {
	Config     *config.Store
	Collection *collection.Assembler
	Agent      *agent.Loop
	Logger     *slog.Logger
}

// New returns a Handler serving requests from the given dependencies.
func New(cfg *config.Store, assembler *collection.Assembler, loop *agent.Loop, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Config: cfg, Collection: assembler, Agent: loop, Logger: logger}
}

// writeJSON writes v as a JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates err into the wire error shape of §7/§6.1, picking
// the HTTP status from its apperr.Tag.
func writeError(w http.ResponseWriter, err error) {
	wire := apperr.ToWire(err)
	status := http.StatusInternalServerError
	if e, ok := apperr.As(err); ok {
		status = apperr.HTTPStatus(e.Tag)
	}
	writeJSON(w, status, wire)
}

// decodeJSON reads and decodes r's body into v, rejecting unknown fields
// the same way internal/config rejects them in the config file.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// resourceNamesOr returns requested if non-empty, else every resource
// name currently configured — POST /question's "resources?" defaults to
// the full configured set when omitted.
func resourceNamesOr(requested []string, cfg config.Snapshot) []string {
	if len(requested) > 0 {
		return requested
	}
	names := make([]string, len(cfg.Resources))
	for i, r := range cfg.Resources {
		names[i] = r.Name
	}
	return names
}

// buildMeta constructs the sse.Meta / JSON "model"+"collection" fields
// shared by POST /question and POST /question/stream.
func buildMeta(cfg config.Snapshot, resources []string, col collection.Collection) sse.Meta {
	return sse.Meta{
		Model:      sse.ModelInfo{Provider: cfg.Provider, Model: cfg.Model},
		Resources:  resources,
		Collection: sse.CollectionInfo{Key: col.Key, Path: col.Path},
	}
}

// withRequestLogger attaches requestId to every log line the handler
// emits, mirroring the teacher's logger.With(...) usage at the edge of a
// request.
func (h *Handler) withRequestLogger(ctx context.Context) *slog.Logger {
	if id := requestIDFromContext(ctx); id != "" {
		return h.Logger.With("requestId", id)
	}
	return h.Logger
}
