package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sevigo/btca/internal/sandbox"
	"github.com/sevigo/btca/internal/search"
)

const (
	grepMaxResults   = 100
	grepMaxLineChars = 200
)

// GrepParams are the parameters to Suite.Grep.
type GrepParams struct {
	Pattern string
	Path    string // optional subdirectory within the sandbox
	Include string // optional glob narrowing which files are searched
}

// Grep regex-searches basePath (or a subdirectory of it), grouping hits by
// file and sorting files by modification time descending.
func (s *Suite) Grep(ctx context.Context, basePath string, p GrepParams) (Result, error) {
	sb := sandbox.New(basePath)
	dir := basePath
	if p.Path != "" {
		resolved, err := sb.ResolveWithSymlinks(p.Path)
		if err != nil {
			return Result{}, err
		}
		dir = resolved
	}

	matches, err := s.driver.Search(ctx, dir, p.Pattern, p.Include, false, grepMaxResults)
	if err != nil {
		return Result{Output: fmt.Sprintf("grep failed: %v", err)}, nil
	}
	if len(matches) == 0 {
		return Result{Output: "No matches found"}, nil
	}

	truncated := len(matches) > grepMaxResults
	if truncated {
		matches = matches[:grepMaxResults]
	}

	byFile := make(map[string][]search.Match)
	var files []string
	for _, m := range matches {
		if _, ok := byFile[m.AbsPath]; !ok {
			files = append(files, m.AbsPath)
		}
		byFile[m.AbsPath] = append(byFile[m.AbsPath], m)
	}

	sort.Slice(files, func(i, j int) bool {
		return mtimeOf(files[i]).After(mtimeOf(files[j]))
	})

	var sb2 strings.Builder
	for _, f := range files {
		rel, err := filepath.Rel(basePath, f)
		if err != nil {
			rel = f
		}
		fmt.Fprintf(&sb2, "%s:\n", rel)
		for _, m := range byFile[f] {
			text := m.LineText
			if len(text) > grepMaxLineChars {
				text = text[:grepMaxLineChars] + "..."
			}
			fmt.Fprintf(&sb2, "  %d: %s\n", m.LineNumber, text)
		}
	}

	out := strings.TrimRight(sb2.String(), "\n")
	if truncated {
		out += "\n\n[Truncated: Results limited to 100 matches. Refine your pattern or path to narrow the search.]"
	}
	return Result{Output: out}, nil
}

func mtimeOf(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
