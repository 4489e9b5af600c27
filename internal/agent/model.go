// Package agent implements the tool-calling Agent Loop (C7) driven against
// an abstract LanguageModel capability (C6). The capability itself is an
// external collaborator — btca only defines the interface it must satisfy
// and a small registry for wiring concrete providers in at startup.
package agent

import "context"

// Usage reports token accounting for one streamText call, when the
// provider supplies it.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Message is one turn of the conversation sent to the provider.
type Message struct {
	Role       string // "system", "user", "assistant", "tool"
	Content    string
	ToolCallID string // set on Role == "tool"
	ToolName   string // set on Role == "tool"
}

// ToolDef is one tool exposed to the provider's tool-calling protocol.
// Execute receives the provider-decoded input and returns the string
// destined back to the model as a tool result.
type ToolDef struct {
	Name        string
	Description string
	InputSchema map[string]any
	Execute     func(ctx context.Context, input map[string]any) (string, error)
}

// PartType discriminates the tagged variant streamText emits.
type PartType string

const (
	PartTextDelta  PartType = "text-delta"
	PartToolCall   PartType = "tool-call"
	PartToolResult PartType = "tool-result"
	PartFinish     PartType = "finish"
	PartError      PartType = "error"
)

// Part is one element of the provider's streamText output.
type Part struct {
	Type PartType

	Text string // PartTextDelta

	ToolCallID string         // PartToolCall, PartToolResult
	ToolName   string         // PartToolCall, PartToolResult
	Input      map[string]any // PartToolCall
	Output     string         // PartToolResult

	FinishReason string // PartFinish
	Usage        *Usage // PartFinish

	Err error // PartError
}

// LanguageModel identifies a resolved provider+model pair. btca never
// inspects it beyond passing it back into StreamText; everything about how
// it actually talks to the provider is opaque.
type LanguageModel interface {
	Provider() string
	ModelID() string
}

// StopCondition lets the caller advise the provider when to stop issuing
// further tool-calling steps. It is advisory (§4.6): the provider decides
// whether and how to honor it.
type StopCondition struct {
	MaxSteps int
}

// StreamRequest is the input to Capability.StreamText.
type StreamRequest struct {
	Model    LanguageModel
	System   string
	Messages []Message
	Tools    []ToolDef
	StopWhen StopCondition
}

// Capability is the abstract language-model provider (§6.4). btca depends
// only on this interface; concrete providers are registered externally
// (see Registry) and are outside this module's scope.
type Capability interface {
	// GetModel resolves a provider+model identifier pair. It returns
	// apperr's InvalidProvider/InvalidModel/ProviderNotConnected errors
	// for an unknown or unauthenticated provider.
	GetModel(ctx context.Context, providerID, modelID string) (LanguageModel, error)

	// StreamText runs one tool-calling generation and returns a channel of
	// Parts in provider emission order, closed when the stream ends. A
	// transport/provider failure surfaces as a single PartError element,
	// never a returned error from this call itself, once the stream has
	// started; StreamText may still return an error synchronously for a
	// request that never got off the ground (e.g. GetModel not having
	// been called first).
	StreamText(ctx context.Context, req StreamRequest) (<-chan Part, error)
}
