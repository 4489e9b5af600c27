package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sevigo/btca/internal/sandbox"
)

// ListParams are the parameters to Suite.List.
type ListParams struct {
	Path string
}

type listEntry struct {
	name string
	kind string // "directory", "file", or "other" (broken symlink or special file)
	size int64
}

// List reads the directory at basePath/Path, classifying entries and
// following symlinks once to reclassify them as file or directory when
// their target resolves.
func (s *Suite) List(ctx context.Context, basePath string, p ListParams) (Result, error) {
	sb := sandbox.New(basePath)
	resolved, err := sb.Resolve(p.Path)
	if err != nil {
		return Result{}, err
	}

	dirents, err := os.ReadDir(resolved)
	if err != nil {
		return Result{Output: fmt.Sprintf("cannot list %s: %v", p.Path, err)}, nil
	}

	var dirs, files []listEntry
	var other []listEntry
	for _, d := range dirents {
		entryPath := filepath.Join(resolved, d.Name())
		e := classify(entryPath, d)
		switch e.kind {
		case "directory":
			dirs = append(dirs, e)
		case "file":
			files = append(files, e)
		default:
			other = append(other, e)
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].name < dirs[j].name })
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	sort.Slice(other, func(i, j int) bool { return other[i].name < other[j].name })

	var sb2 strings.Builder
	for _, d := range dirs {
		fmt.Fprintf(&sb2, "[DIR]  %s/\n", d.name)
	}
	for _, f := range files {
		fmt.Fprintf(&sb2, "[FILE] %s (%s)\n", f.name, humanSize(f.size))
	}
	for _, o := range other {
		fmt.Fprintf(&sb2, "[LNK]  %s\n", o.name)
	}

	total := len(dirs) + len(files) + len(other)
	fmt.Fprintf(&sb2, "\nTotal: %d items (%d directories, %d files)", total, len(dirs), len(files))
	return Result{Output: sb2.String()}, nil
}

func classify(path string, d os.DirEntry) listEntry {
	name := d.Name()
	if d.Type()&os.ModeSymlink != 0 {
		info, err := os.Stat(path) // follows the symlink once
		if err != nil {
			return listEntry{name: name, kind: "other"}
		}
		if info.IsDir() {
			return listEntry{name: name, kind: "directory"}
		}
		return listEntry{name: name, kind: "file", size: info.Size()}
	}

	info, err := d.Info()
	if err != nil {
		return listEntry{name: name, kind: "other"}
	}
	if info.IsDir() {
		return listEntry{name: name, kind: "directory"}
	}
	if info.Mode().IsRegular() {
		return listEntry{name: name, kind: "file", size: info.Size()}
	}
	return listEntry{name: name, kind: "other"}
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
