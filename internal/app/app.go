// Package app wires together btca's components: configuration, the
// resource cache, the collection assembler, the agent loop, and the HTTP
// request pipeline.
package app

import (
	"context"
	"fmt"
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
	"github.com/sevigo/btca/internal/resourcecache"
	"github.com/sevigo/btca/internal/search"
	"github.com/sevigo/btca/internal/server"
	"github.com/sevigo/btca/internal/server/handler"
	"github.com/sevigo/btca/internal/tools"
)

// credEnvPrefix is the environment-variable convention backing the
// Static credential store: BTCA_CRED_OPENAI=sk-... authenticates the
// "openai" provider.
const credEnvPrefix = "BTCA_CRED_"

// App holds the main application components.
type App struct {
	Config     *config.Store
	Cache      *resourcecache.Cache
	Collection *collection.Assembler
	Registry   *agent.Registry
	Agent      *agent.Loop

	logger *slog.Logger
	server *server.Server
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, addr string, logger *slog.Logger) (*App, error) {
	cfgStore, err := config.Load(afero.NewOsFs())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	snap := cfgStore.Snapshot()
	logger.Info("btca configuration loaded",
		"provider", snap.Provider,
		"model", snap.Model,
		"resources", snap.ResourceCount(),
	)

	gitClient := gitutil.NewClient(logger.With("component", "gitutil"))
	ghClient := github.NewClient(nil) // anonymous: pre-flight only, never used for clone auth (§3)

	cache := resourcecache.New(snap.ResourcesDir, cfgStore, gitClient, ghClient, logger.With("component", "resourcecache"))
	assembler := collection.New(snap.CollectionsDir, cache, logger.With("component", "collection"))

	creds := credstore.NewStatic(credentialsFromEnv())
	registry := agent.NewRegistry(creds)

	driver := search.New(logger.With("component", "search"))
	suite := tools.New(driver)
	loop := agent.New(registry, suite, logger.With("component", "agent"))

	h := handler.New(cfgStore, assembler, loop, logger)
	router := server.NewRouter(h, logger)
	httpServer := server.NewServer(ctx, addr, router, logger)

	return &App{
		Config:     cfgStore,
		Cache:      cache,
		Collection: assembler,
		Registry:   registry,
		Agent:      loop,
		logger:     logger,
		server:     httpServer,
	}, nil
}

// credentialsFromEnv collects provider credentials from BTCA_CRED_*
// environment variables: BTCA_CRED_OPENAI becomes provider "openai".
func credentialsFromEnv() map[string]string {
	keys := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, credEnvPrefix) {
			continue
		}
		provider := strings.ToLower(strings.TrimPrefix(name, credEnvPrefix))
		if provider == "" || value == "" {
			continue
		}
		keys[provider] = value
	}
	return keys
}

// Start runs the HTTP server, blocking until it stops.
func (a *App) Start() error {
	a.logger.Info("starting btca")
	if err := a.server.Start(); err != nil {
		a.logger.Error("HTTP server failed", "error", err)
		return err
	}
	return nil
}

// Stop shuts the application down cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down btca")
	if err := a.server.Stop(); err != nil {
		a.logger.Error("error during HTTP server shutdown", "error", err)
		return err
	}
	return nil
}
