package agent

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"text/template"

	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/tools"
)

//go:embed prompts/system.prompt
var systemPromptSource string

var systemPromptTemplate = template.Must(template.New("system").Parse(systemPromptSource))

const defaultMaxSteps = 40

// EventType mirrors PartType on the wire side of the Agent Loop (§3).
type EventType string

const (
	EventTextDelta  EventType = "text-delta"
	EventToolCall   EventType = "tool-call"
	EventToolResult EventType = "tool-result"
	EventFinish     EventType = "finish"
	EventError      EventType = "error"
)

// Event is one element of the loop's output stream, translated 1:1 from a
// provider Part.
type Event struct {
	Type EventType

	Text string

	ToolName string
	Input    map[string]any
	Output   string

	FinishReason string
	Usage        *Usage

	Err *apperr.Error
}

// Options configures one agent run (§4.6).
type Options struct {
	ProviderID        string
	ModelID           string
	CollectionPath    string
	AgentInstructions string
	Question          string
	MaxSteps          int // default 40
}

// RunResult is what Run returns: the full event log plus the concatenated
// final answer text.
type RunResult struct {
	Answer string
	Model  LanguageModel
	Events []Event
}

// Loop is the Agent Loop (C7): it builds the system prompt and initial
// user message, exposes the four sandboxed tools to the provider, and
// translates the provider's stream into the Event variant of §3.
type Loop struct {
	capability Capability
	tools      *tools.Suite
	logger     *slog.Logger
}

// New returns a Loop driving capability, with its four tools backed by
// suite.
func New(capability Capability, suite *tools.Suite, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{capability: capability, tools: suite, logger: logger}
}

// Run buffers the full event stream and returns the concatenated, trimmed
// answer text alongside it.
func (l *Loop) Run(ctx context.Context, opts Options) (RunResult, error) {
	model, ch := l.start(ctx, opts)

	var (
		events []Event
		sb     strings.Builder
	)
	for ev := range ch {
		events = append(events, ev)
		if ev.Type == EventTextDelta {
			sb.WriteString(ev.Text)
		}
	}

	answer := stripQuestionEcho(strings.TrimSpace(sb.String()), opts.Question)
	return RunResult{Answer: answer, Model: model, Events: events}, nil
}

// Stream builds the prompt and tool set, starts the provider stream, and
// returns a channel of Events emitted as they arrive. The channel is
// always closed, with its last element EventFinish or EventError, unless
// ctx is cancelled first (in which case it closes early with no terminal
// event of its own — the caller's ctx.Err() is authoritative).
func (l *Loop) Stream(ctx context.Context, opts Options) (<-chan Event, error) {
	_, ch := l.start(ctx, opts)
	return ch, nil
}

// start resolves the model and kicks off the provider stream, returning
// whatever model it managed to resolve (nil on early failure) alongside
// the translated Event channel. Every failure path before the provider
// stream begins is reported as a single buffered EventError rather than a
// returned error, matching §4.6's "the loop never crashes the caller".
func (l *Loop) start(ctx context.Context, opts Options) (LanguageModel, <-chan Event) {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}

	fail := func(err error) (LanguageModel, <-chan Event) {
		out := make(chan Event, 1)
		out <- errEvent(err)
		close(out)
		return nil, out
	}

	model, err := l.capability.GetModel(ctx, opts.ProviderID, opts.ModelID)
	if err != nil {
		return fail(err)
	}

	system, err := renderSystemPrompt(opts.AgentInstructions)
	if err != nil {
		return fail(apperr.Agent("render system prompt: %v", err))
	}

	listing, err := l.tools.List(ctx, opts.CollectionPath, tools.ListParams{Path: "."})
	if err != nil {
		return fail(apperr.Agent("list collection contents: %v", err))
	}

	initialMessage := fmt.Sprintf("Collection contents:\n%s\n\nQuestion: %s", listing.Output, opts.Question)

	req := StreamRequest{
		Model:  model,
		System: system,
		Messages: []Message{
			{Role: "user", Content: initialMessage},
		},
		Tools:    l.toolDefs(opts.CollectionPath),
		StopWhen: StopCondition{MaxSteps: opts.MaxSteps},
	}

	parts, err := l.capability.StreamText(ctx, req)
	if err != nil {
		_, ch := fail(apperr.Agent("start stream: %v", err))
		return model, ch
	}

	out := make(chan Event)
	go l.pump(ctx, parts, out)
	return model, out
}

func (l *Loop) pump(ctx context.Context, parts <-chan Part, out chan<- Event) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case part, ok := <-parts:
			if !ok {
				select {
				case out <- errEvent(apperr.Agent("provider stream ended without a finish event")):
				case <-ctx.Done():
				}
				return
			}
			ev := translate(part)
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
			if part.Type == PartFinish || part.Type == PartError {
				return
			}
		}
	}
}

func translate(p Part) Event {
	switch p.Type {
	case PartTextDelta:
		return Event{Type: EventTextDelta, Text: p.Text}
	case PartToolCall:
		return Event{Type: EventToolCall, ToolName: p.ToolName, Input: p.Input}
	case PartToolResult:
		return Event{Type: EventToolResult, ToolName: p.ToolName, Output: p.Output}
	case PartFinish:
		return Event{Type: EventFinish, FinishReason: p.FinishReason, Usage: p.Usage}
	case PartError:
		if e, ok := apperr.As(p.Err); ok {
			return Event{Type: EventError, Err: e}
		}
		return Event{Type: EventError, Err: apperr.Agent("%v", p.Err)}
	default:
		return Event{Type: EventError, Err: apperr.Agent("unrecognized provider part type %q", p.Type)}
	}
}

func errEvent(err error) Event {
	if e, ok := apperr.As(err); ok {
		return Event{Type: EventError, Err: e}
	}
	return Event{Type: EventError, Err: apperr.Agent("%v", err)}
}

func renderSystemPrompt(agentInstructions string) (string, error) {
	var buf bytes.Buffer
	if err := systemPromptTemplate.Execute(&buf, struct{ AgentInstructions string }{agentInstructions}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// StripQuestionEcho is the exported form of stripQuestionEcho, reused by
// internal/sse so the SSE adapter's done.text strips the same leading
// question echo that Run's answer does.
func StripQuestionEcho(text, question string) string { return stripQuestionEcho(text, question) }

// stripQuestionEcho removes a leading echo of the original question from
// text, matching whitespace-insensitively (any run of whitespace in the
// question matches any run of whitespace in text), per §4.7's done-event
// pass — also applied here so Run's answer matches Stream's done.text.
func stripQuestionEcho(text, question string) string {
	trimmedQ := strings.TrimSpace(question)
	fields := strings.Fields(trimmedQ)
	if len(fields) == 0 {
		return text
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = regexp.QuoteMeta(f)
	}
	re := regexp.MustCompile(`^\s*` + strings.Join(parts, `\s+`))

	loc := re.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return strings.TrimSpace(text[loc[1]:])
}
