// Package collection assembles a requested set of resources into a single
// sandboxed directory of symlinks, plus the agent instruction text
// describing what lives at each entry.
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/resourcecache"
)

// overrideFile is an optional per-resource YAML file, checked in at the
// root of the resource's own working tree, that extends the notes the
// agent instructions carry for that resource without requiring a config
// edit for every wording tweak.
const overrideFile = ".btca.yml"

// override is the shape of overrideFile.
type override struct {
	ExtraNotes string `yaml:"extra_notes"`
}

// loadOverride reads overrideFile from resourceRoot, returning the zero
// value if it is absent or unreadable — an override is always optional,
// never load-bearing.
func loadOverride(resourceRoot string) override {
	data, err := os.ReadFile(filepath.Join(resourceRoot, overrideFile))
	if err != nil {
		return override{}
	}
	var o override
	if err := yaml.Unmarshal(data, &o); err != nil {
		return override{}
	}
	return o
}

// systemNote is the constant line prefixed to every resource block,
// reminding the model what kind of material it is looking at.
const systemNote = "Read-only reference documentation; cite file paths when answering from it."

// ResourceLoader materializes a named resource, implemented by
// internal/resourcecache.Cache.
type ResourceLoader interface {
	Load(ctx context.Context, name string, quiet bool) (resourcecache.Resource, error)
}

// Collection is what Load returns: the symlink directory and the combined
// instruction text to prepend to the agent's system prompt.
type Collection struct {
	Key               string
	Path              string
	AgentInstructions string
}

// Assembler is the Collection Assembler (C5).
type Assembler struct {
	collectionsDir string
	resources      ResourceLoader
	logger         *slog.Logger
}

// New returns an Assembler rooted at collectionsDir.
func New(collectionsDir string, resources ResourceLoader, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{collectionsDir: collectionsDir, resources: resources, logger: logger}
}

// Load deduplicates and sorts resourceNames, materializes each one through
// the resource cache in order (aborting on the first failure), and
// (re)builds the symlink forest and instruction text for the resulting
// collection.
func (a *Assembler) Load(ctx context.Context, resourceNames []string, quiet bool) (Collection, error) {
	sorted := dedupeSorted(resourceNames)
	if len(sorted) == 0 {
		return Collection{}, apperr.Collection("", "resource list is empty")
	}

	key := strings.Join(sorted, "+")
	collectionPath := filepath.Join(a.collectionsDir, key)
	if err := os.MkdirAll(collectionPath, 0o755); err != nil {
		return Collection{}, fmt.Errorf("create collection directory: %w", err)
	}

	var blocks []string
	for _, name := range sorted {
		res, err := a.resources.Load(ctx, name, quiet)
		if err != nil {
			return Collection{}, err
		}

		link := filepath.Join(collectionPath, name)
		if err := os.RemoveAll(link); err != nil {
			return Collection{}, fmt.Errorf("clear existing collection entry %q: %w", name, err)
		}
		if err := os.Symlink(res.AbsolutePath(), link); err != nil {
			return Collection{}, fmt.Errorf("symlink collection entry %q: %w", name, err)
		}

		blocks = append(blocks, resourceBlock(res))
	}

	if !quiet {
		a.logger.InfoContext(ctx, "assembled collection", "key", key, "path", collectionPath, "resources", sorted)
	}

	return Collection{
		Key:               key,
		Path:              collectionPath,
		AgentInstructions: strings.Join(blocks, "\n\n"),
	}, nil
}

func resourceBlock(res resourcecache.Resource) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Resource: %s\n%s\nPath: ./%s", res.Name, systemNote, res.Name)
	if res.RepoSubPath != "" {
		fmt.Fprintf(&sb, "\n[Focus: ./%s/%s]", res.Name, res.RepoSubPath)
	}

	notes := res.SpecialInstructions
	if o := loadOverride(res.AbsolutePath()); o.ExtraNotes != "" {
		if notes != "" {
			notes += " " + o.ExtraNotes
		} else {
			notes = o.ExtraNotes
		}
	}
	if notes != "" {
		fmt.Fprintf(&sb, "\n[Notes: %s]", notes)
	}
	return sb.String()
}

func dedupeSorted(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
