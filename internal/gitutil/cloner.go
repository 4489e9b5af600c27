// Package gitutil provides the git primitives the resource cache clones
// and updates resources with.
package gitutil

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// subprocessTimeout bounds every git subprocess invocation.
const subprocessTimeout = 60 * time.Second

// Client handles interacting with Git repositories.
type Client struct {
	Logger *slog.Logger
}

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Logger: logger}
}

// CloneOptions describes a resource's git location. URLs carry no
// embedded credentials; resources are always fetched anonymously over
// HTTPS (an AuthRequired classification surfaces if a remote rejects
// that).
type CloneOptions struct {
	URL        string
	Branch     string
	SearchPath string // non-empty triggers a sparse checkout of just this subpath
}

// Clone clones URL at path. With SearchPath set it performs a blobless,
// sparse clone scoped to that subpath; otherwise a shallow (depth 1) clone
// of the whole tree.
func (c *Client) Clone(ctx context.Context, path string, opts CloneOptions) error {
	if opts.SearchPath != "" {
		return c.sparseClone(ctx, path, opts)
	}
	return c.shallowClone(ctx, path, opts)
}

func (c *Client) shallowClone(ctx context.Context, path string, opts CloneOptions) error {
	c.Logger.InfoContext(ctx, "cloning repository", "url", opts.URL, "path", path)
	_, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:           opts.URL,
		ReferenceName: plumbing.NewBranchReferenceName(opts.Branch),
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		return classify(err.Error())
	}
	return nil
}

// sparseClone follows §4.4's clone algorithm: go-git has no sparse-checkout
// support, so this shells out to the git CLI directly, the same way the
// bundled search binary is invoked as a subprocess. The sparse pattern is
// set in non-cone mode and anchored at the repository root, so files at the
// root are not checked out alongside SearchPath.
func (c *Client) sparseClone(ctx context.Context, path string, opts CloneOptions) error {
	c.Logger.InfoContext(ctx, "sparse-cloning repository", "url", opts.URL, "path", path, "searchPath", opts.SearchPath)
	if err := c.run(ctx, "", "clone", "--filter=blob:none", "--no-checkout", "--sparse", "-b", opts.Branch, opts.URL, path); err != nil {
		return err
	}
	if err := c.run(ctx, path, "sparse-checkout", "set", "--no-cone", sparsePattern(opts.SearchPath)); err != nil {
		return err
	}
	return c.run(ctx, path, "checkout")
}

// Update brings an existing clone at path up to date with origin/Branch,
// re-asserting the sparse-checkout scope if SearchPath is set.
func (c *Client) Update(ctx context.Context, path string, opts CloneOptions) error {
	c.Logger.InfoContext(ctx, "updating repository", "path", path)
	if err := c.run(ctx, path, "fetch", "--depth", "1", opts.URL, opts.Branch); err != nil {
		return err
	}
	if err := c.run(ctx, path, "reset", "--hard", "FETCH_HEAD"); err != nil {
		return err
	}
	if opts.SearchPath != "" {
		if err := c.run(ctx, path, "sparse-checkout", "set", "--no-cone", sparsePattern(opts.SearchPath)); err != nil {
			return err
		}
	}
	return nil
}

// sparsePattern anchors searchPath at the repository root as a directory
// pattern, e.g. "docs" becomes "/docs/".
func sparsePattern(searchPath string) string {
	return "/" + strings.Trim(searchPath, "/") + "/"
}

func (c *Client) run(ctx context.Context, dir string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, subprocessTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return classify(stderr.String())
	}
	return nil
}

