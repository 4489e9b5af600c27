// Package tools implements the four sandboxed, language-model-facing
// operations (read, grep, glob, list) every agent run is built from. Every
// tool accepts a basePath and returns a human-readable string destined for
// the model; the only error that aborts a call is a sandbox violation.
package tools

import (
	"github.com/sevigo/btca/internal/search"
)

// Attachment is a binary file surfaced to the model alongside its Output
// placeholder text (images, PDFs).
type Attachment struct {
	MIMEType string
	Data     string // base64
}

// Result is what every tool call returns on success.
type Result struct {
	Output     string
	Attachment *Attachment
}

// Suite bundles the four tools behind the search driver they share.
type Suite struct {
	driver search.Driver
}

// New returns a Suite backed by driver.
func New(driver search.Driver) *Suite {
	return &Suite{driver: driver}
}
