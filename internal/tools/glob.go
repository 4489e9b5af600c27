package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sevigo/btca/internal/sandbox"
)

const globMaxResults = 100

// GlobParams are the parameters to Suite.Glob.
type GlobParams struct {
	Pattern string
	Path    string // optional subdirectory within the sandbox
}

// Glob pattern-matches files under basePath (or a subdirectory of it),
// sorting by modification time descending.
func (s *Suite) Glob(ctx context.Context, basePath string, p GlobParams) (Result, error) {
	sb := sandbox.New(basePath)
	dir := basePath
	if p.Path != "" {
		resolved, err := sb.ResolveWithSymlinks(p.Path)
		if err != nil {
			return Result{}, err
		}
		dir = resolved
	}

	rels, err := s.driver.Files(ctx, dir, []string{p.Pattern}, false)
	if err != nil {
		return Result{Output: fmt.Sprintf("glob failed: %v", err)}, nil
	}
	if len(rels) == 0 {
		return Result{Output: "No files found"}, nil
	}

	type entry struct {
		rel   string
		mtime int64
	}
	entries := make([]entry, 0, len(rels))
	for _, rel := range rels {
		abs := filepath.Join(dir, rel)
		entries = append(entries, entry{rel: abs, mtime: mtimeOf(abs).Unix()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].mtime > entries[j].mtime })

	truncated := len(entries) > globMaxResults
	if truncated {
		entries = entries[:globMaxResults]
	}

	var sb2 strings.Builder
	for _, e := range entries {
		rel, err := filepath.Rel(basePath, e.rel)
		if err != nil {
			rel = e.rel
		}
		sb2.WriteString(rel)
		sb2.WriteByte('\n')
	}

	out := strings.TrimRight(sb2.String(), "\n")
	if truncated {
		out += "\n\n[Truncated: Results limited to 100 matches. Refine your pattern to narrow the search.]"
	}
	return Result{Output: out}, nil
}
