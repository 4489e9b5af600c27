// Package resourcecache maintains a content-addressed, on-disk cache of git
// repositories: one working tree per configured resource name, cloned or
// updated on demand and verified against its configured searchPath before
// being handed back to the collection assembler.
package resourcecache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-github/v73/github"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/gitutil"
)

// stateFile is the sidecar recording the sparse-checkout scope last applied
// to a cache entry, so a later searchPath change can be detected instead of
// relying on `sparse-checkout set` idempotence across differing cones.
const stateFile = ".btca-state.json"

const preflightTTL = 5 * time.Minute

// Definition is a resource's config-supplied identity and git location.
// Invariant checking on these fields (charset, length) happens at config
// load time; by the time a Definition reaches the cache it is trusted.
type Definition struct {
	Name         string
	Type         string // currently only "git" is implemented
	URL          string
	Branch       string
	SearchPath   string
	SpecialNotes string
}

// Resource is what a successful Load returns: a materialized, verified
// working tree plus the instruction fragment the collection assembler
// folds into the agent's system prompt.
type Resource struct {
	Name                string
	RepoSubPath         string // SearchPath, empty if the whole tree is in scope
	SpecialInstructions string
	path                string
}

// AbsolutePath is the resource's cached working tree root on disk.
func (r Resource) AbsolutePath() string { return r.path }

// NewResourceForTest builds a Resource with the given working tree root,
// for use by other packages' tests (collection, agent) that need a
// materialized Resource without driving an actual clone.
func NewResourceForTest(name, path, repoSubPath, specialInstructions string) Resource {
	return Resource{Name: name, path: path, RepoSubPath: repoSubPath, SpecialInstructions: specialInstructions}
}

// DefinitionLookup resolves a resource name to its config definition,
// implemented by internal/config.
type DefinitionLookup interface {
	Resource(name string) (Definition, bool)
}

type cacheState struct {
	SearchPath string `json:"searchPath"`
}

// Cache is the Resource Cache (C4): it clones or updates a resource's git
// working tree under resourcesDir, deduplicating concurrent loads of the
// same name.
type Cache struct {
	resourcesDir string
	defs         DefinitionLookup
	git          *gitutil.Client
	gh           *github.Client
	logger       *slog.Logger

	group     singleflight.Group
	preflight *cache.Cache
}

// New returns a Cache rooted at resourcesDir. gh may be nil, in which case
// pre-flight existence checks are skipped and failures surface only once
// git itself rejects the clone.
func New(resourcesDir string, defs DefinitionLookup, gitClient *gitutil.Client, gh *github.Client, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		resourcesDir: resourcesDir,
		defs:         defs,
		git:          gitClient,
		gh:           gh,
		logger:       logger,
		preflight:    cache.New(preflightTTL, preflightTTL*2),
	}
}

// Load materializes the named resource, cloning it on first use and
// fast-forwarding it on every subsequent call. quiet suppresses the
// info-level clone/update log lines (used for repeated health-check style
// loads).
func (c *Cache) Load(ctx context.Context, name string, quiet bool) (Resource, error) {
	v, err, _ := c.group.Do(name, func() (any, error) {
		return c.load(ctx, name, quiet)
	})
	if err != nil {
		return Resource{}, err
	}
	return v.(Resource), nil
}

func (c *Cache) load(ctx context.Context, name string, quiet bool) (Resource, error) {
	def, ok := c.defs.Resource(name)
	if !ok {
		return Resource{}, apperr.Resource(apperr.ResourceDefNotFound, fmt.Errorf("no such resource: %s", name), "unknown resource %q", name)
	}

	if err := c.preflightCheck(ctx, def); err != nil {
		return Resource{}, err
	}

	localPath := filepath.Join(c.resourcesDir, def.Name)
	opts := gitutil.CloneOptions{URL: def.URL, Branch: def.Branch, SearchPath: def.SearchPath}

	info, statErr := os.Stat(localPath)
	switch {
	case statErr == nil && info.IsDir():
		if err := c.reconcileSearchPath(ctx, localPath, def, opts, quiet); err != nil {
			return Resource{}, err
		}
	default:
		if err := os.MkdirAll(c.resourcesDir, 0o755); err != nil {
			return Resource{}, fmt.Errorf("create resources directory: %w", err)
		}
		if !quiet {
			c.logger.InfoContext(ctx, "cloning resource", "name", name)
		}
		if err := c.git.Clone(ctx, localPath, opts); err != nil {
			_ = os.RemoveAll(localPath)
			return Resource{}, err
		}
		if err := writeState(localPath, def.SearchPath); err != nil {
			return Resource{}, err
		}
	}

	if def.SearchPath != "" {
		scoped := filepath.Join(localPath, filepath.FromSlash(def.SearchPath))
		if fi, err := os.Stat(scoped); err != nil || !fi.IsDir() {
			return Resource{}, apperr.Resource(apperr.ResourceSearchPathMissing, fmt.Errorf("missing path: %s", scoped),
				"searchPath %q does not exist in resource %q", def.SearchPath, name)
		}
	}

	return Resource{
		Name:                name,
		RepoSubPath:         def.SearchPath,
		SpecialInstructions: def.SpecialNotes,
		path:                localPath,
	}, nil
}

// reconcileSearchPath updates an existing clone, clearing and re-cloning it
// from scratch when the configured searchPath has changed since it was
// last applied rather than trusting `sparse-checkout set` to reshape an
// already-checked-out cone cleanly.
func (c *Cache) reconcileSearchPath(ctx context.Context, localPath string, def Definition, opts gitutil.CloneOptions, quiet bool) error {
	prior, err := readState(localPath)
	if err != nil {
		return err
	}
	if prior.SearchPath != def.SearchPath {
		if !quiet {
			c.logger.InfoContext(ctx, "searchPath changed, re-cloning", "name", def.Name, "old", prior.SearchPath, "new", def.SearchPath)
		}
		if err := os.RemoveAll(localPath); err != nil {
			return fmt.Errorf("clear stale resource: %w", err)
		}
		if err := c.git.Clone(ctx, localPath, opts); err != nil {
			_ = os.RemoveAll(localPath)
			return err
		}
		return writeState(localPath, def.SearchPath)
	}

	if !quiet {
		c.logger.InfoContext(ctx, "updating resource", "name", def.Name)
	}
	if err := c.git.Update(ctx, localPath, opts); err != nil {
		return err
	}
	return writeState(localPath, def.SearchPath)
}

func readState(localPath string) (cacheState, error) {
	data, err := os.ReadFile(filepath.Join(localPath, stateFile))
	if os.IsNotExist(err) {
		return cacheState{}, nil
	}
	if err != nil {
		return cacheState{}, fmt.Errorf("read cache state: %w", err)
	}
	var s cacheState
	if err := json.Unmarshal(data, &s); err != nil {
		return cacheState{}, nil // treat a corrupt sidecar as "no prior state"
	}
	return s, nil
}

func writeState(localPath, searchPath string) error {
	data, err := json.Marshal(cacheState{SearchPath: searchPath})
	if err != nil {
		return fmt.Errorf("marshal cache state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(localPath, stateFile), data, 0o644); err != nil {
		return fmt.Errorf("write cache state: %w", err)
	}
	return nil
}
