package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/credstore"
)

// Factory mints a LanguageModel plus a ready-to-use Capability for one
// provider, given a credential already confirmed present by credstore.
// Concrete providers (an OpenAI-compatible endpoint, Anthropic, a local
// model server, ...) register a Factory at startup; this module ships
// none itself — the provider is external per §6.4.
type Factory func(ctx context.Context, modelID, apiKey string) (LanguageModel, Capability, error)

// Registry is a Capability that dispatches GetModel/StreamText to whichever
// Factory was registered for the requested provider ID, after confirming
// credstore has a credential for it. It is the concrete thing btca wires
// into the Agent Loop; nothing else in this package depends on it.
type Registry struct {
	creds credstore.Store

	mu        sync.RWMutex
	factories map[string]Factory
	bound     map[LanguageModel]Capability
}

// NewRegistry returns an empty Registry backed by creds.
func NewRegistry(creds credstore.Store) *Registry {
	return &Registry{
		creds:     creds,
		factories: make(map[string]Factory),
		bound:     make(map[LanguageModel]Capability),
	}
}

// Register binds a Factory to a provider ID. Calling Register twice for
// the same ID replaces the prior factory.
func (r *Registry) Register(providerID string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[providerID] = f
}

// Providers lists the provider IDs currently registered, sorted, for
// building the "alternatives" hint on an InvalidProvider error.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for id := range r.factories {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// GetModel resolves providerID/modelID to a LanguageModel, failing with
// apperr.InvalidProvider if no factory is registered for providerID and
// apperr.ProviderNotConnected if one is registered but credstore reports
// no credential for it.
func (r *Registry) GetModel(ctx context.Context, providerID, modelID string) (LanguageModel, error) {
	r.mu.RLock()
	factory, ok := r.factories[providerID]
	r.mu.RUnlock()
	if !ok {
		return nil, apperr.InvalidProvider(
			fmt.Sprintf("known providers: %v", r.Providers()),
			"unknown provider %q", providerID,
		)
	}

	if !r.creds.IsAuthenticated(ctx, providerID) {
		return nil, apperr.ProviderNotConnected(
			"configure a credential for this provider before selecting it",
			"provider %q has no credential configured", providerID,
		)
	}

	apiKey, err := r.creds.Token(ctx, providerID)
	if err != nil {
		return nil, apperr.ProviderNotConnected("configure a credential for this provider", "fetch credential for %q: %v", providerID, err)
	}

	model, capability, err := factory(ctx, modelID, apiKey)
	if err != nil {
		return nil, apperr.InvalidModel(
			"verify the model name is supported by this provider",
			"provider %q rejected model %q: %v", providerID, modelID, err,
		)
	}

	r.mu.Lock()
	r.bound[model] = capability
	r.mu.Unlock()
	return model, nil
}

// StreamText dispatches to the Capability bound when req.Model was
// resolved by GetModel.
func (r *Registry) StreamText(ctx context.Context, req StreamRequest) (<-chan Part, error) {
	r.mu.RLock()
	capability, ok := r.bound[req.Model]
	r.mu.RUnlock()
	if !ok {
		return nil, apperr.Agent("streamText called with a model that was not resolved via GetModel")
	}
	return capability.StreamText(ctx, req)
}
