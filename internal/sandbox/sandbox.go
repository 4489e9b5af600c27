// Package sandbox resolves requested paths against a base directory,
// refusing anything that normalizes outside of it. It is the one
// security boundary every tool operation in internal/tools goes through.
package sandbox

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/sevigo/btca/internal/apperr"
)

// Sandbox resolves paths rooted at Base using Fs for symlink resolution.
type Sandbox struct {
	Base string
	Fs   afero.Fs
}

// New returns a Sandbox rooted at base, using the OS filesystem.
func New(base string) *Sandbox {
	return &Sandbox{Base: filepath.Clean(base), Fs: afero.NewOsFs()}
}

// NewWithFs returns a Sandbox rooted at base using a caller-supplied Fs,
// letting tests swap in afero.NewMemMapFs().
func NewWithFs(base string, fs afero.Fs) *Sandbox {
	return &Sandbox{Base: filepath.Clean(base), Fs: fs}
}

// Resolve treats requested either as absolute or as relative to s.Base,
// normalizes it, and fails with apperr.PathEscape if the normalized path
// is not s.Base or a descendant of it.
func (s *Sandbox) Resolve(requested string) (string, error) {
	var candidate string
	if filepath.IsAbs(requested) {
		candidate = filepath.Clean(requested)
	} else {
		candidate = filepath.Clean(filepath.Join(s.Base, requested))
	}

	if !within(s.Base, candidate) {
		return "", apperr.PathEscape(requested)
	}
	return candidate, nil
}

// ResolveWithSymlinks resolves requested as Resolve does, then follows
// symlinks to their real target. The containment check applies only to
// the requested path; the symlink target may legitimately lie outside
// s.Base (collections are directories of symlinks into the resource cache).
func (s *Sandbox) ResolveWithSymlinks(requested string) (string, error) {
	candidate, err := s.Resolve(requested)
	if err != nil {
		return "", err
	}

	real, err := resolveSymlinks(s.Fs, candidate)
	if err != nil {
		// Missing files are not a sandbox violation; let the caller's
		// stat/open surface the "not found" condition.
		return candidate, nil //nolint:nilerr
	}
	return real, nil
}

// within reports whether candidate is base or a descendant of base, using
// filepath.Rel so that e.g. "/tmp/collection-2" is never mistaken for a
// descendant of "/tmp/collection".
func within(base, candidate string) bool {
	rel, err := filepath.Rel(base, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveSymlinks follows path's final element through a chain of symlinks
// one hop at a time, so that afero's in-memory filesystem (used by tests) and
// the real OS filesystem behave the same way. Filesystems that don't implement
// afero.Lstater/afero.LinkReader (e.g. a plain MemMapFs) have no symlinks, so
// path is returned unchanged.
func resolveSymlinks(fs afero.Fs, path string) (string, error) {
	lstater, canLstat := fs.(afero.Lstater)
	linker, canReadlink := fs.(afero.LinkReader)
	if !canLstat || !canReadlink {
		return path, nil
	}

	seen := make(map[string]bool)
	current := path
	for i := 0; i < 40; i++ {
		info, _, err := lstater.LstatIfPossible(current)
		if err != nil {
			return "", err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return current, nil
		}

		target, err := linker.ReadlinkIfPossible(current)
		if err != nil {
			return current, nil
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		target = filepath.Clean(target)
		if seen[target] {
			return target, nil
		}
		seen[target] = true
		current = target
	}
	return current, nil
}
