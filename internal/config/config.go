// Package config implements the configuration contract (C10): the
// ResourceDefinition schema and its load-time invariants (§3), the JSONC
// config file (§6.2), and the in-process Store guarding mutation with a
// single writer lock while serving lock-free reads of a snapshot (§5).
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/resourcecache"
)

// fileName is the on-disk config file name at either search location.
const fileName = "btca.config.jsonc"

// document is the literal on-disk shape of the config file (§6.2).
type document struct {
	Schema    string               `json:"$schema,omitempty" mapstructure:"$schema"`
	Resources []ResourceDefinition `json:"resources" mapstructure:"resources"`
	Model     string               `json:"model" mapstructure:"model"`
	Provider  string               `json:"provider" mapstructure:"provider"`
}

// Snapshot is a read-only copy of the Store's state, safe to hold onto
// after the call that produced it (§5: "read without locking ... when the
// implementer can offer a snapshot read").
type Snapshot struct {
	Provider       string
	Model          string
	ResourcesDir   string
	CollectionsDir string
	Resources      []ResourceDefinition
}

// ResourceCount is the convenience field GET /config's response surfaces.
func (s Snapshot) ResourceCount() int { return len(s.Resources) }

// Store is the in-process, mutable configuration (§5): a document plus
// the data directories it does not itself persist. Every mutating method
// takes the exclusive lock and rewrites the backing file before
// returning; reads take Snapshot(), which never blocks a writer for long.
type Store struct {
	mu   sync.RWMutex
	doc  document
	fs   afero.Fs
	path string

	resourcesDir   string
	collectionsDir string
}

// Load resolves the config file (project-local ./btca.config.jsonc first,
// else the global ~/.config/btca/btca.config.jsonc, auto-created with
// defaults if absent), validates it in full, and returns a ready Store.
func Load(fs afero.Fs) (*Store, error) {
	path, created, err := resolveConfigPath(fs)
	if err != nil {
		return nil, apperr.ConfigWrap(err, "resolve config file location")
	}
	if created {
		if err := writeDocument(fs, path, document{Resources: []ResourceDefinition{}}); err != nil {
			return nil, apperr.ConfigWrap(err, "create default config file at %s", path)
		}
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, apperr.ConfigWrap(err, "read config file %s", path)
	}

	doc, err := parseDocument(raw)
	if err != nil {
		return nil, apperr.ConfigWrap(err, "parse config file %s", path)
	}

	if err := validateDocument(doc); err != nil {
		return nil, apperr.ConfigWrap(err, "invalid config file %s", path)
	}

	resourcesDir, collectionsDir, err := defaultDataDirs()
	if err != nil {
		return nil, apperr.ConfigWrap(err, "resolve data directories")
	}

	return &Store{
		doc:            doc,
		fs:             fs,
		path:           path,
		resourcesDir:   resourcesDir,
		collectionsDir: collectionsDir,
	}, nil
}

// parseDocument strips comments, rejects unknown fields, and unmarshals
// raw into a document via viper (§"Configuration"'s json-typed pipeline),
// also layering BTCA_-prefixed environment overrides for provider/model.
func parseDocument(raw []byte) (document, error) {
	stripped := stripJSONComments(raw)
	if err := rejectUnknownFields(stripped); err != nil {
		return document{}, err
	}

	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(stripped)); err != nil {
		return document{}, err
	}
	v.SetEnvPrefix("btca")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var doc document
	if err := v.Unmarshal(&doc); err != nil {
		return document{}, err
	}
	return doc, nil
}

// validateDocument runs every resource definition's invariants and
// aggregates every violation found, per §3's "failure rejects the whole
// config".
func validateDocument(doc document) error {
	var errs *multierror.Error

	seen := make(map[string]bool, len(doc.Resources))
	for _, r := range doc.Resources {
		if err := r.validate(); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if seen[r.Name] {
			errs = multierror.Append(errs, fmt.Errorf("duplicate resource name %q", r.Name))
		}
		seen[r.Name] = true
	}

	return errs.ErrorOrNil()
}

// resolveConfigPath finds the project-local config file if present,
// otherwise the global one, reporting whether it had to create the
// latter with defaults.
func resolveConfigPath(fs afero.Fs) (path string, created bool, err error) {
	if exists, err := afero.Exists(fs, fileName); err == nil && exists {
		return fileName, false, nil
	}

	dir, err := userConfigDir()
	if err != nil {
		return "", false, err
	}
	globalPath := filepath.Join(dir, fileName)

	exists, err := afero.Exists(fs, globalPath)
	if err != nil {
		return "", false, err
	}
	if exists {
		return globalPath, false, nil
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", false, err
	}
	return globalPath, true, nil
}

func writeDocument(fs afero.Fs, path string, doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		return err
	}
	return fs.Rename(tmp, path)
}

// Snapshot returns a copy of the current configuration, safe to read
// without holding any lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := make([]ResourceDefinition, len(s.doc.Resources))
	copy(resources, s.doc.Resources)

	return Snapshot{
		Provider:       s.doc.Provider,
		Model:          s.doc.Model,
		ResourcesDir:   s.resourcesDir,
		CollectionsDir: s.collectionsDir,
		Resources:      resources,
	}
}

// Resource implements internal/resourcecache.DefinitionLookup.
func (s *Store) Resource(name string) (resourcecache.Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.doc.Resources {
		if r.Name == name {
			return r.toDefinition(), true
		}
	}
	return resourcecache.Definition{}, false
}

// AddResource validates def, rejects a duplicate name, appends it, and
// persists the updated document before returning.
func (s *Store) AddResource(def ResourceDefinition) error {
	if err := def.validate(); err != nil {
		return apperr.Request("invalid resource: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.doc.Resources {
		if r.Name == def.Name {
			return apperr.Request("resource %q already exists", def.Name)
		}
	}

	doc := s.doc
	doc.Resources = append(append([]ResourceDefinition{}, doc.Resources...), def)
	if err := s.persist(doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// RemoveResource deletes the named resource, reporting whether it was
// present.
func (s *Store) RemoveResource(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.doc.Resources {
		if r.Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	doc := s.doc
	doc.Resources = append(append([]ResourceDefinition{}, doc.Resources[:idx]...), doc.Resources[idx+1:]...)
	if err := s.persist(doc); err != nil {
		return false, err
	}
	s.doc = doc
	return true, nil
}

// UpdateModel validates and sets the active provider/model, persisting
// the change.
func (s *Store) UpdateModel(provider, model string) error {
	if err := validateModelName("provider", provider); err != nil {
		return apperr.Request("invalid model update: %v", err)
	}
	if err := validateModelName("model", model); err != nil {
		return apperr.Request("invalid model update: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc
	doc.Provider = provider
	doc.Model = model
	if err := s.persist(doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// persist writes doc to s.path. Callers must hold s.mu.
func (s *Store) persist(doc document) error {
	if err := writeDocument(s.fs, s.path, doc); err != nil {
		return apperr.ConfigWrap(err, "persist config file %s", s.path)
	}
	return nil
}
