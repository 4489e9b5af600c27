// Package apperr defines the closed set of error kinds used across btca and
// their wire representation, replacing the tagged-class error pattern the
// source used with a small, explicit enumeration.
package apperr

import (
	"errors"
	"fmt"
)

// Tag identifies the class of an error for clients and logs.
type Tag string

const (
	TagRequest              Tag = "RequestError"
	TagConfig               Tag = "ConfigError"
	TagResource             Tag = "ResourceError"
	TagCollection           Tag = "CollectionError"
	TagPathEscape           Tag = "PathEscape"
	TagAgent                Tag = "AgentError"
	TagInvalidProvider      Tag = "InvalidProvider"
	TagInvalidModel         Tag = "InvalidModel"
	TagProviderNotConnected Tag = "ProviderNotConnected"
)

// Resource sub-kinds, reported in a TagResource error's Sub field.
const (
	ResourceBranchNotFound = "branch-not-found"
	ResourceRepoNotFound   = "repo-not-found"
	ResourceAuthRequired   = "auth-required"
	ResourceNetworkError   = "network-error"
	ResourceRateLimited    = "rate-limited"
	ResourceUnknown        = "unknown"

	// ResourceDefNotFound: the requested resource name has no entry in
	// config. Not a git-classification outcome — caught before any clone
	// is attempted.
	ResourceDefNotFound = "definition-not-found"
	// ResourceSearchPathMissing: the resource cloned cleanly but its
	// configured searchPath does not exist inside the working tree.
	ResourceSearchPathMissing = "search-path-missing"
)

// Error is the concrete type behind every tag in this package.
type Error struct {
	Tag     Tag
	Message string
	Hint    string
	Sub     string // e.g. one of the Resource* sub-kind constants
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Tag, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Tag, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match on tag equality against a bare *Error{Tag: ...}.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Tag == e.Tag
	}
	return false
}

func new(tag Tag, hint string, format string, args ...any) *Error {
	return &Error{Tag: tag, Message: fmt.Sprintf(format, args...), Hint: hint}
}

func wrap(tag Tag, hint string, cause error, format string, args ...any) *Error {
	return &Error{Tag: tag, Message: fmt.Sprintf(format, args...), Hint: hint, cause: cause}
}

func Request(format string, args ...any) *Error {
	return new(TagRequest, "", format, args...)
}

func Config(format string, args ...any) *Error {
	return new(TagConfig, "", format, args...)
}

func ConfigWrap(cause error, format string, args ...any) *Error {
	return wrap(TagConfig, "", cause, format, args...)
}

func Collection(hint, format string, args ...any) *Error {
	return new(TagCollection, hint, format, args...)
}

func PathEscape(requested string) *Error {
	return new(TagPathEscape, "paths must stay within the collection sandbox", "path escapes sandbox: %s", requested)
}

func Agent(format string, args ...any) *Error {
	return new(TagAgent, "", format, args...)
}

func InvalidProvider(hint, format string, args ...any) *Error {
	return new(TagInvalidProvider, hint, format, args...)
}

func InvalidModel(hint, format string, args ...any) *Error {
	return new(TagInvalidModel, hint, format, args...)
}

func ProviderNotConnected(hint, format string, args ...any) *Error {
	return new(TagProviderNotConnected, hint, format, args...)
}

// resourceHints maps a resource sub-kind to its deterministic user hint.
var resourceHints = map[string]string{
	ResourceBranchNotFound:    "verify the branch exists on the remote",
	ResourceRepoNotFound:      "verify the repository URL and that it is reachable",
	ResourceAuthRequired:      "this looks like a private repo; check credentials",
	ResourceNetworkError:      "check connectivity to the remote host",
	ResourceRateLimited:       "the remote host is rate-limiting requests; retry later",
	ResourceUnknown:           "see logs for the underlying git error",
	ResourceDefNotFound:       "no resource with this name is configured",
	ResourceSearchPathMissing: "the configured searchPath does not exist in this resource",
}

// Resource builds a TagResource error for the given sub-kind, attaching its
// deterministic hint and the original stderr-derived cause.
func Resource(sub string, cause error, format string, args ...any) *Error {
	e := wrap(TagResource, resourceHints[sub], cause, format, args...)
	e.Sub = sub
	return e
}

// As extracts an *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HTTPStatus returns the HTTP status code a handler should use for err's tag.
func HTTPStatus(tag Tag) int {
	switch tag {
	case TagRequest, TagCollection, TagPathEscape, TagInvalidProvider, TagInvalidModel, TagProviderNotConnected:
		return 400
	case TagConfig, TagResource, TagAgent:
		return 500
	default:
		return 500
	}
}

// Wire is the JSON shape sent to HTTP clients for any error.
type Wire struct {
	Error   string `json:"error"`
	Tag     Tag    `json:"tag"`
	Hint    string `json:"hint,omitempty"`
	Message string `json:"message,omitempty"`
}

// ToWire converts any error into its wire representation, defaulting
// unrecognized errors to an opaque AgentError so stack traces never leak.
func ToWire(err error) Wire {
	if e, ok := As(err); ok {
		return Wire{Error: e.Message, Tag: e.Tag, Hint: e.Hint}
	}
	return Wire{Error: "internal error", Tag: TagAgent}
}
