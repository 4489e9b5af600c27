// Package sse translates an Agent Loop event stream into the
// line-delimited server-sent-events wire format HTTP clients consume
// (C8). It owns callID synthesis, tool lifecycle pairing, and the
// question-echo strip applied to the final answer.
package sse

import (
	"context"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/sevigo/btca/internal/agent"
	"github.com/sevigo/btca/internal/apperr"
)

// ModelInfo identifies the provider+model a run used.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// CollectionInfo identifies the collection a run was answered against.
type CollectionInfo struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

// Meta is the synthesized first event of every stream.
type Meta struct {
	Type       string          `json:"type"`
	Model      ModelInfo       `json:"model"`
	Resources  []string        `json:"resources"`
	Collection CollectionInfo  `json:"collection"`
}

// ToolState is the per-callID record the adapter maintains, also what
// done.tools enumerates (in call order) once a stream finishes.
type ToolState struct {
	CallID string         `json:"callID"`
	Tool   string         `json:"tool"`
	Status string         `json:"status"` // "running" | "completed"
	Input  map[string]any `json:"input,omitempty"`
	Output string         `json:"output,omitempty"`
}

// Frame is one SSE frame: an event name plus its JSON payload.
type Frame struct {
	Event string
	Data  []byte
}

// Format renders f as the two-line SSE frame (plus trailing blank line)
// clients expect: "event: <type>\ndata: <JSON payload>\n\n".
func (f Frame) Format() []byte {
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", f.Event, f.Data))
}

// Adapter turns one agent.Event stream into a Frame stream for one
// request. It is not reused across requests — each holds its own callID
// counter and tool-pairing state.
type Adapter struct {
	meta     Meta
	question string

	counter int
	states  *orderedmap.OrderedMap[string, *ToolState]
	running map[string][]string // toolName -> stack of running callIDs, most recent last
}

// New returns an Adapter that will prepend meta and strip question from
// the final answer text before emitting done.
func New(meta Meta, question string) *Adapter {
	return &Adapter{
		meta:     meta,
		question: question,
		states:   orderedmap.New[string, *ToolState](),
		running:  make(map[string][]string),
	}
}

// Frames consumes events until it closes, ctx is cancelled, or a
// terminal frame (done/error) is produced, emitting Frames in the order
// described by §4.7/§8: meta first, text.delta/tool.updated as they
// occur, done or error exactly once and last. On ctx cancellation it
// stops reading events and closes the output channel without a terminal
// frame — the caller is expected to treat that as a client disconnect,
// not a protocol violation.
func (a *Adapter) Frames(ctx context.Context, events <-chan agent.Event) <-chan Frame {
	out := make(chan Frame, 1)
	out <- a.metaFrame()

	go func() {
		defer close(out)
		var answer string

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}

				switch ev.Type {
				case agent.EventTextDelta:
					answer += ev.Text
					if !a.send(ctx, out, a.textDeltaFrame(ev.Text)) {
						return
					}
				case agent.EventToolCall:
					frame := a.toolCallFrame(ev)
					if !a.send(ctx, out, frame) {
						return
					}
				case agent.EventToolResult:
					frame := a.toolResultFrame(ev)
					if !a.send(ctx, out, frame) {
						return
					}
				case agent.EventFinish:
					a.send(ctx, out, a.doneFrame(answer))
					return
				case agent.EventError:
					a.send(ctx, out, a.errorFrame(ev.Err))
					return
				}
			}
		}
	}()

	return out
}

func (a *Adapter) send(ctx context.Context, out chan<- Frame, f Frame) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func (a *Adapter) metaFrame() Frame {
	a.meta.Type = "meta"
	return jsonFrame("meta", a.meta)
}

func (a *Adapter) textDeltaFrame(delta string) Frame {
	return jsonFrame("text.delta", struct {
		Type  string `json:"type"`
		Delta string `json:"delta"`
	}{"text-delta", delta})
}

func (a *Adapter) toolCallFrame(ev agent.Event) Frame {
	a.counter++
	callID := fmt.Sprintf("tool-%d", a.counter)
	state := &ToolState{CallID: callID, Tool: ev.ToolName, Status: "running", Input: ev.Input}
	a.states.Set(callID, state)
	a.running[ev.ToolName] = append(a.running[ev.ToolName], callID)

	return jsonFrame("tool.updated", toolUpdatedPayload(state))
}

// toolResultFrame pairs this result with the most recently started,
// still-running call of the same tool name (a stack, since tool calls
// of the same name within one turn never interleave their results out
// of start order for a single-threaded provider).
func (a *Adapter) toolResultFrame(ev agent.Event) Frame {
	stack := a.running[ev.ToolName]
	if len(stack) == 0 {
		// No matching running call — synthesize one so the wire still
		// carries a consistent lifecycle rather than dropping the result.
		a.counter++
		callID := fmt.Sprintf("tool-%d", a.counter)
		state := &ToolState{CallID: callID, Tool: ev.ToolName, Status: "completed", Output: ev.Output}
		a.states.Set(callID, state)
		return jsonFrame("tool.updated", toolUpdatedPayload(state))
	}

	callID := stack[len(stack)-1]
	a.running[ev.ToolName] = stack[:len(stack)-1]

	state, _ := a.states.Get(callID)
	state.Status = "completed"
	state.Output = ev.Output
	return jsonFrame("tool.updated", toolUpdatedPayload(state))
}

func toolUpdatedPayload(state *ToolState) any {
	return struct {
		Type   string     `json:"type"`
		CallID string     `json:"callID"`
		Tool   string     `json:"tool"`
		State  *ToolState `json:"state"`
	}{"tool.updated", state.CallID, state.Tool, state}
}

func (a *Adapter) doneFrame(answer string) Frame {
	text := agent.StripQuestionEcho(answer, a.question)

	var finalTools []*ToolState
	for pair := a.states.Oldest(); pair != nil; pair = pair.Next() {
		finalTools = append(finalTools, pair.Value)
	}

	return jsonFrame("done", struct {
		Type      string       `json:"type"`
		Text      string       `json:"text"`
		Reasoning string       `json:"reasoning"`
		Tools     []*ToolState `json:"tools"`
	}{"done", text, "", finalTools})
}

func (a *Adapter) errorFrame(err *apperr.Error) Frame {
	if err == nil {
		err = apperr.Agent("unknown error")
	}
	return jsonFrame("error", struct {
		Type    string      `json:"type"`
		Tag     apperr.Tag  `json:"tag"`
		Message string      `json:"message"`
	}{"error", err.Tag, err.Message})
}

func jsonFrame(event string, payload any) Frame {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"type":%q,"error":"marshal failure"}`, event))
	}
	return Frame{Event: event, Data: data}
}
