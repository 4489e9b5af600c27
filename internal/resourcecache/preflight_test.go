package resourcecache

import (
	"net/http"
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/btca/internal/apperr"
)

func TestParseGitHubURL(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantRepo  string
		wantOK    bool
	}{
		{"https://github.com/sevigo/btca", "sevigo", "btca", true},
		{"https://github.com/sevigo/btca.git", "sevigo", "btca", true},
		{"https://gitlab.com/sevigo/btca", "", "", false},
		{"not a url \x7f", "", "", false},
	}
	for _, tt := range tests {
		owner, repo, ok := parseGitHubURL(tt.url)
		assert.Equal(t, tt.wantOK, ok, tt.url)
		assert.Equal(t, tt.wantOwner, owner)
		assert.Equal(t, tt.wantRepo, repo)
	}
}

func TestClassifyGitHubError(t *testing.T) {
	resp := func(status int) *github.Response {
		return &github.Response{Response: &http.Response{StatusCode: status}}
	}

	tests := []struct {
		name string
		resp *github.Response
		want string
	}{
		{"not found", resp(http.StatusNotFound), apperr.ResourceRepoNotFound},
		{"unauthorized", resp(http.StatusUnauthorized), apperr.ResourceAuthRequired},
		{"forbidden", resp(http.StatusForbidden), apperr.ResourceAuthRequired},
		{"rate limited", resp(http.StatusTooManyRequests), apperr.ResourceRateLimited},
		{"unknown", resp(http.StatusInternalServerError), apperr.ResourceUnknown},
		{"nil response", nil, apperr.ResourceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyGitHubError("docs", tt.resp, assert.AnError)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, e.Sub)
		})
	}
}
