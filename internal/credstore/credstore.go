// Package credstore implements the black-box credential query the core
// treats the language-model provider's authentication as: "is provider P
// authenticated?" and "what is its opaque API key?". Callers never see how
// a backend actually mints that key.
package credstore

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// Store answers credential queries for a named provider.
type Store interface {
	IsAuthenticated(ctx context.Context, provider string) bool
	Token(ctx context.Context, provider string) (string, error)
}

// Static is a Store backed by a fixed map of provider name to API key,
// typically populated from environment variables or config at startup.
type Static struct {
	keys map[string]string
}

// NewStatic returns a Store that serves keys from a fixed map.
func NewStatic(keys map[string]string) *Static {
	clone := make(map[string]string, len(keys))
	for k, v := range keys {
		clone[k] = v
	}
	return &Static{keys: clone}
}

func (s *Static) IsAuthenticated(_ context.Context, provider string) bool {
	_, ok := s.keys[provider]
	return ok
}

func (s *Static) Token(_ context.Context, provider string) (string, error) {
	key, ok := s.keys[provider]
	if !ok {
		return "", fmt.Errorf("no credential configured for provider %q", provider)
	}
	return key, nil
}

// TokenSourceBacked is a Store for providers whose opaque key is actually a
// short-lived token that must be refreshed (e.g. the GitHub App
// installation token minted by NewGitHubAppTokenSource). Each provider is backed by
// an oauth2.TokenSource, which already knows how to refresh itself; this
// type just caches the source per provider behind a mutex.
type TokenSourceBacked struct {
	mu      sync.Mutex
	sources map[string]oauth2.TokenSource
}

// NewTokenSourceBacked returns a Store whose providers mint tokens through
// the given oauth2.TokenSources, refreshed on demand by each source.
func NewTokenSourceBacked(sources map[string]oauth2.TokenSource) *TokenSourceBacked {
	clone := make(map[string]oauth2.TokenSource, len(sources))
	for k, v := range sources {
		clone[k] = v
	}
	return &TokenSourceBacked{sources: clone}
}

func (t *TokenSourceBacked) IsAuthenticated(_ context.Context, provider string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sources[provider]
	return ok
}

func (t *TokenSourceBacked) Token(_ context.Context, provider string) (string, error) {
	t.mu.Lock()
	src, ok := t.sources[provider]
	t.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("no credential configured for provider %q", provider)
	}
	tok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("refresh token for provider %q: %w", provider, err)
	}
	return tok.AccessToken, nil
}
