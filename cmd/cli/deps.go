package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/go-github/v73/github"
	"github.com/spf13/afero"

	"github.com/sevigo/btca/internal/agent"
	"github.com/sevigo/btca/internal/collection"
	"github.com/sevigo/btca/internal/config"
	"github.com/sevigo/btca/internal/credstore"
	"github.com/sevigo/btca/internal/gitutil"
	"github.com/sevigo/btca/internal/logger"
	"github.com/sevigo/btca/internal/resourcecache"
	"github.com/sevigo/btca/internal/search"
	"github.com/sevigo/btca/internal/tools"
)

// cliDeps bundles everything a btca-cli command needs, built directly
// against the same local config file and resource cache the server
// uses, rather than through an HTTP client — the `ask` command drives
// the Agent Loop in-process (§ "one-shot ask command... no HTTP hop").
type cliDeps struct {
	Config     *config.Store
	Collection *collection.Assembler
	Agent      *agent.Loop
	Logger     *slog.Logger
}

func newCLIDeps() (*cliDeps, error) {
	log := logger.NewLogger(logger.Config{Level: "warn", Format: "text", Output: "stderr"}, os.Stderr)

	cfgStore, err := config.Load(afero.NewOsFs())
	if err != nil {
		return nil, err
	}

	snap := cfgStore.Snapshot()
	gitClient := gitutil.NewClient(log)
	ghClient := github.NewClient(nil)
	cache := resourcecache.New(snap.ResourcesDir, cfgStore, gitClient, ghClient, log)
	assembler := collection.New(snap.CollectionsDir, cache, log)

	creds := credstore.NewStatic(credentialsFromEnv())
	registry := agent.NewRegistry(creds)
	driver := search.New(log)
	suite := tools.New(driver)
	loop := agent.New(registry, suite, log)

	return &cliDeps{Config: cfgStore, Collection: assembler, Agent: loop, Logger: log}, nil
}

// credentialsFromEnv collects provider credentials from BTCA_CRED_*
// environment variables, matching internal/app's server-side convention.
func credentialsFromEnv() map[string]string {
	const prefix = "BTCA_CRED_"
	keys := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		provider := strings.ToLower(strings.TrimPrefix(name, prefix))
		if provider == "" || value == "" {
			continue
		}
		keys[provider] = value
	}
	return keys
}
