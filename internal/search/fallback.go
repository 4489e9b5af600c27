package search

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sourcegraph/conc/pool"
)

// fallbackDriver walks cwd in pure Go, used when no rg-equivalent binary
// can be located or installed. It skips .git and node_modules and follows symlinks the same
// way the bundled binary does.
type fallbackDriver struct{}

func (d *fallbackDriver) Files(ctx context.Context, cwd string, globs []string, includeHidden bool) ([]string, error) {
	var paths []string
	err := walk(ctx, cwd, includeHidden, func(rel string, info os.FileInfo) error {
		if info.IsDir() {
			return nil
		}
		if len(globs) == 0 {
			paths = append(paths, rel)
			return nil
		}
		for _, g := range globs {
			if matched, _ := doublestar.Match(g, rel); matched {
				paths = append(paths, rel)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (d *fallbackDriver) Search(ctx context.Context, cwd, pattern, include string, includeHidden bool, maxResults int) ([]Match, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	var files []string
	err = walk(ctx, cwd, includeHidden, func(rel string, info os.FileInfo) error {
		if info.IsDir() {
			return nil
		}
		if include != "" {
			if matched, _ := doublestar.Match(include, rel); !matched {
				return nil
			}
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		matches []Match
	)
	p := pool.New().WithContext(ctx).WithMaxGoroutines(8)
	for _, rel := range files {
		rel := rel
		p.Go(func(ctx context.Context) error {
			found, err := grepFile(filepath.Join(cwd, rel), re)
			if err != nil {
				return nil // unreadable file (permissions, binary): skip, not fatal
			}
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			for _, m := range found {
				matches = append(matches, Match{AbsPath: filepath.Join(cwd, rel), LineNumber: m.line, LineText: m.text})
			}
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].AbsPath != matches[j].AbsPath {
			return matches[i].AbsPath < matches[j].AbsPath
		}
		return matches[i].LineNumber < matches[j].LineNumber
	})
	if len(matches) > maxResults+1 {
		matches = matches[:maxResults+1]
	}
	return matches, nil
}

type lineMatch struct {
	line int
	text string
}

func grepFile(path string, re *regexp.Regexp) ([]lineMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var found []lineMatch
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if re.MatchString(line) {
			found = append(found, lineMatch{line: lineNo, text: line})
		}
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return found, nil
}

// walk visits every entry under root, skipping .git, node_modules and, unless
// includeHidden, dotfiles. fn receives the path relative to root.
//
// A collection (§3) is always a directory of symlinks into the resource
// cache, so this cannot use filepath.Walk: it lstats entries and never
// descends into a symlinked directory. walk instead stats every entry
// (following symlinks) and recurses into symlinked directories itself,
// guarding against symlink cycles by tracking each directory's resolved
// real path — matching the bundled binary driver's `--follow` (binary.go).
func walk(ctx context.Context, root string, includeHidden bool, fn func(rel string, info os.FileInfo) error) error {
	visited := map[string]struct{}{}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		visited[real] = struct{}{}
	}
	return walkDir(ctx, root, root, includeHidden, visited, fn)
}

func walkDir(ctx context.Context, root, dir string, includeHidden bool, visited map[string]struct{}, fn func(rel string, info os.FileInfo) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil // skip unreadable directories rather than aborting the whole walk
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := entry.Name()
		if name == ".git" || name == "node_modules" {
			continue
		}
		if !includeHidden && strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		info, err := os.Stat(path) // follows symlinks, unlike entry.Info()/os.Lstat
		if err != nil {
			continue // broken symlink or unreadable entry: skip, not fatal
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			continue
		}

		if info.IsDir() {
			real, err := filepath.EvalSymlinks(path)
			if err != nil {
				real = path
			}
			if _, seen := visited[real]; seen {
				continue // symlink cycle
			}
			visited[real] = struct{}{}
			if err := walkDir(ctx, root, path, includeHidden, visited, fn); err != nil {
				return err
			}
			continue
		}

		if err := fn(rel, info); err != nil {
			return err
		}
	}
	return nil
}
