// Package search wraps an external high-throughput file/content matcher
// (a ripgrep-equivalent binary), falling back to a pure-Go walker when no
// such binary can be located or installed. It has no knowledge of the
// sandbox; callers (internal/tools) are responsible for path containment.
package search

import (
	"context"
)

// Match is one hit returned by Search.
type Match struct {
	AbsPath    string
	LineNumber int
	LineText   string
}

// Driver is the external search capability used by the glob and grep tools.
type Driver interface {
	// Files returns repo-relative paths under cwd matching globs (or all
	// files if globs is empty). It follows symlinks and never applies a
	// line-count limit itself; callers enforce their own bounds.
	Files(ctx context.Context, cwd string, globs []string, includeHidden bool) ([]string, error)

	// Search returns at most maxResults+1 matches of pattern (a regex)
	// under cwd, optionally narrowed by an include glob. Returning one
	// more than maxResults lets the caller detect truncation without a
	// second pass.
	Search(ctx context.Context, cwd, pattern string, include string, includeHidden bool, maxResults int) ([]Match, error)
}

// New returns the best available Driver: a bundled/PATH ripgrep binary if
// one can be located or installed, otherwise the pure-Go fallback.
func New(logger Logger) Driver {
	if bin, err := LocateOrInstall(context.Background(), logger); err == nil {
		return &binaryDriver{bin: bin}
	}
	return &fallbackDriver{}
}

// NewFallback returns the pure-Go driver directly, bypassing binary
// detection. Useful for tests that want deterministic behavior regardless
// of what is installed on the host running them.
func NewFallback() Driver {
	return &fallbackDriver{}
}

// Logger is the minimal logging capability search needs, satisfied by
// *slog.Logger without requiring search to import log/slog's full API.
type Logger interface {
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}
