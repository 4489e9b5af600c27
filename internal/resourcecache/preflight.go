package resourcecache

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/btca/internal/apperr"
)

// preflightCheck asks the GitHub API whether a resource's repo and branch
// exist before git ever shells out, so a typo'd name or branch fails fast
// with a precise classification instead of a generic git stderr parse.
// It only applies to github.com URLs and is a no-op (including when gh is
// nil) for anything else — git's own error classification is the fallback
// for every other host.
func (c *Cache) preflightCheck(ctx context.Context, def Definition) error {
	if c.gh == nil {
		return nil
	}
	owner, repo, ok := parseGitHubURL(def.URL)
	if !ok {
		return nil
	}

	cacheKey := owner + "/" + repo + "@" + def.Branch
	if _, hit := c.preflight.Get(cacheKey); hit {
		return nil
	}

	if _, resp, err := c.gh.Repositories.Get(ctx, owner, repo); err != nil {
		return classifyGitHubError(def.Name, resp, err)
	}
	if _, resp, err := c.gh.Repositories.GetBranch(ctx, owner, repo, def.Branch, 0); err != nil {
		if resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound {
			return apperr.Resource(apperr.ResourceBranchNotFound, err, "branch %q not found for resource %q", def.Branch, def.Name)
		}
		return classifyGitHubError(def.Name, resp, err)
	}

	c.preflight.SetDefault(cacheKey, struct{}{})
	return nil
}

func classifyGitHubError(name string, resp *github.Response, cause error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	switch status {
	case http.StatusNotFound:
		return apperr.Resource(apperr.ResourceRepoNotFound, cause, "resource %q not found on GitHub", name)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.Resource(apperr.ResourceAuthRequired, cause, "resource %q requires authentication", name)
	case http.StatusTooManyRequests:
		return apperr.Resource(apperr.ResourceRateLimited, cause, "GitHub API rate limit hit while validating %q", name)
	default:
		return apperr.Resource(apperr.ResourceUnknown, cause, "pre-flight check failed for resource %q", name)
	}
}

// parseGitHubURL extracts owner/repo from an HTTPS github.com clone URL,
// e.g. https://github.com/owner/repo(.git). Any other host is reported as
// not-applicable rather than an error, since it is simply outside the
// GitHub pre-flight's scope.
func parseGitHubURL(raw string) (owner, repo string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host != "github.com" {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), true
}
