package gitutil

import (
	"errors"
	"regexp"

	"github.com/sevigo/btca/internal/apperr"
)

// classificationRules maps a regex over git's stderr to the resource
// sub-kind it indicates. Checked in order; the first match wins.
var classificationRules = []struct {
	pattern *regexp.Regexp
	sub     string
}{
	{regexp.MustCompile(`(?i)couldn't find remote ref|remote branch .* not found|Remote branch .* not found`), apperr.ResourceBranchNotFound},
	{regexp.MustCompile(`(?i)repository not found|does not exist|not found in upstream`), apperr.ResourceRepoNotFound},
	{regexp.MustCompile(`(?i)authentication failed|could not read username|permission denied|403`), apperr.ResourceAuthRequired},
	{regexp.MustCompile(`(?i)could not resolve host|connection timed out|network is unreachable|temporary failure in name resolution`), apperr.ResourceNetworkError},
	{regexp.MustCompile(`(?i)rate limit|429 too many requests`), apperr.ResourceRateLimited},
}

// classify turns a git subprocess's captured stderr (or a go-git error's
// message) into an apperr.Error carrying a deterministic sub-kind and hint.
func classify(stderr string) error {
	for _, rule := range classificationRules {
		if rule.pattern.MatchString(stderr) {
			return apperr.Resource(rule.sub, errors.New(stderr), "git operation failed")
		}
	}
	return apperr.Resource(apperr.ResourceUnknown, errors.New(stderr), "git operation failed")
}
