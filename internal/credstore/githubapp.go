package credstore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"
)

// githubAppTokenSource mints short-lived GitHub App installation tokens on
// demand, the same mechanism the teacher's webhook handler authenticates
// with, repurposed here as one concrete oauth2.TokenSource behind the
// credential store's black box.
type githubAppTokenSource struct {
	ctx            context.Context
	appID          int64
	installationID int64
	privateKeyPEM  []byte
}

// NewGitHubAppTokenSource returns an oauth2.TokenSource that mints a fresh
// installation token by calling the GitHub Apps API each time the current
// token has expired.
func NewGitHubAppTokenSource(ctx context.Context, appID, installationID int64, privateKeyPEM []byte) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &githubAppTokenSource{
		ctx:            ctx,
		appID:          appID,
		installationID: installationID,
		privateKeyPEM:  privateKeyPEM,
	})
}

func (s *githubAppTokenSource) Token() (*oauth2.Token, error) {
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, s.appID, s.privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("create GitHub App transport: %w", err)
	}
	appClient := github.NewClient(&http.Client{Transport: appTransport})

	tok, _, err := appClient.Apps.CreateInstallationToken(s.ctx, s.installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("create installation token: %w", err)
	}
	if tok.GetToken() == "" {
		return nil, fmt.Errorf("received an empty installation token")
	}

	return &oauth2.Token{
		AccessToken: tok.GetToken(),
		Expiry:      tok.GetExpiresAt().Time,
	}, nil
}
