package credstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestStaticStore(t *testing.T) {
	s := NewStatic(map[string]string{"anthropic": "sk-test"})

	assert.True(t, s.IsAuthenticated(context.Background(), "anthropic"))
	assert.False(t, s.IsAuthenticated(context.Background(), "openai"))

	tok, err := s.Token(context.Background(), "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", tok)

	_, err = s.Token(context.Background(), "openai")
	assert.Error(t, err)
}

type fakeTokenSource struct {
	token string
	err   error
}

func (f *fakeTokenSource) Token() (*oauth2.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: f.token, Expiry: time.Now().Add(time.Hour)}, nil
}

func TestTokenSourceBacked(t *testing.T) {
	s := NewTokenSourceBacked(map[string]oauth2.TokenSource{
		"github": &fakeTokenSource{token: "installation-token"},
	})

	assert.True(t, s.IsAuthenticated(context.Background(), "github"))
	tok, err := s.Token(context.Background(), "github")
	require.NoError(t, err)
	assert.Equal(t, "installation-token", tok)

	_, err = s.Token(context.Background(), "unknown")
	assert.Error(t, err)
}
