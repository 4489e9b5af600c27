package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/btca/internal/apperr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{"branch not found", "fatal: Remote branch missing-branch not found in upstream origin", apperr.ResourceBranchNotFound},
		{"repo not found", "ERROR: Repository not found.", apperr.ResourceRepoNotFound},
		{"auth required", "remote: Authentication failed for 'https://github.com/x/y.git/'", apperr.ResourceAuthRequired},
		{"network error", "fatal: unable to access: Could not resolve host: github.com", apperr.ResourceNetworkError},
		{"rate limited", "fatal: 429 Too Many Requests", apperr.ResourceRateLimited},
		{"unknown", "fatal: something weird happened", apperr.ResourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.stderr)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.TagResource, e.Tag)
			assert.Equal(t, tt.want, e.Sub)
		})
	}
}
