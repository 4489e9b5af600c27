package handler

import (
	"net/http"

	"github.com/sevigo/btca/internal/agent"
	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/sse"
)

const (
	maxQuestionLen  = 10_000
	maxResourceList = 20
)

// questionRequest is the shared body of POST /question and POST
// /question/stream (§6.1).
type questionRequest struct {
	Question  string   `json:"question"`
	Resources []string `json:"resources,omitempty"`
	Quiet     bool     `json:"quiet,omitempty"`
}

func (q questionRequest) validate() error {
	if q.Question == "" {
		return apperr.Request("question is required")
	}
	if len(q.Question) > maxQuestionLen {
		return apperr.Request("question exceeds %d characters", maxQuestionLen)
	}
	if len(q.Resources) > maxResourceList {
		return apperr.Request("resources exceeds %d items", maxResourceList)
	}
	for _, name := range q.Resources {
		if len(name) > maxResourceNameLen {
			return apperr.Request("resource name %q exceeds %d characters", name, maxResourceNameLen)
		}
	}
	return nil
}

// Question serves POST /question (§4.8): validate, load the collection,
// run the agent to completion, and return {answer, model, resources,
// collection}.
func (h *Handler) Question(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Request("invalid request body: %v", err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	logger := h.withRequestLogger(ctx)

	snap := h.Config.Snapshot()
	names := resourceNamesOr(req.Resources, snap)

	col, err := h.Collection.Load(ctx, names, req.Quiet)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.Agent.Run(ctx, agent.Options{
		ProviderID:        snap.Provider,
		ModelID:           snap.Model,
		CollectionPath:    col.Path,
		AgentInstructions: col.AgentInstructions,
		Question:          req.Question,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if agentErr := terminalError(result.Events); agentErr != nil {
		writeError(w, agentErr)
		return
	}

	provider, model := snap.Provider, snap.Model
	if result.Model != nil {
		provider, model = result.Model.Provider(), result.Model.ModelID()
	}

	logger.InfoContext(ctx, "answered question", "collection", col.Key, "resources", names)

	writeJSON(w, http.StatusOK, struct {
		Answer     string   `json:"answer"`
		Model      modelOut `json:"model"`
		Resources  []string `json:"resources"`
		Collection colOut   `json:"collection"`
	}{
		Answer:     result.Answer,
		Model:      modelOut{Provider: provider, Model: model},
		Resources:  names,
		Collection: colOut{Key: col.Key, Path: col.Path},
	})
}

// QuestionStream serves POST /question/stream (§4.8/§4.7): same preamble
// as Question, then streams the agent loop through the SSE adapter until
// done, error, or client disconnect.
func (h *Handler) QuestionStream(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Request("invalid request body: %v", err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	logger := h.withRequestLogger(ctx)

	snap := h.Config.Snapshot()
	names := resourceNamesOr(req.Resources, snap)

	col, err := h.Collection.Load(ctx, names, req.Quiet)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := h.Agent.Stream(ctx, agent.Options{
		ProviderID:        snap.Provider,
		ModelID:           snap.Model,
		CollectionPath:    col.Path,
		AgentInstructions: col.AgentInstructions,
		Question:          req.Question,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, canFlush := w.(http.Flusher)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	meta := buildMeta(snap, names, col)
	adapter := sse.New(meta, req.Question)
	frames := adapter.Frames(ctx, events)

	for frame := range frames {
		if _, err := w.Write(frame.Format()); err != nil {
			logger.WarnContext(ctx, "stream write failed, client likely disconnected", "error", err)
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
}

type modelOut struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type colOut struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

// terminalError extracts the error from events' trailing EventError, if
// any — Loop.Run never returns a Go error itself (§4.6: "the loop never
// crashes the caller"), so a provider/transport failure only shows up as
// the last buffered event.
func terminalError(events []agent.Event) *apperr.Error {
	if len(events) == 0 {
		return nil
	}
	last := events[len(events)-1]
	if last.Type == agent.EventError {
		return last.Err
	}
	return nil
}
