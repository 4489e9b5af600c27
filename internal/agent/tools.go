package agent

import (
	"context"
	"fmt"

	"github.com/sevigo/btca/internal/tools"
)

// toolDefs builds the four ToolDefs the provider's tool-calling protocol is
// given, each wired to the sandboxed Tool Suite with basePath fixed to the
// collection directory for the duration of this run.
func (l *Loop) toolDefs(basePath string) []ToolDef {
	return []ToolDef{
		{
			Name:        "read",
			Description: "Read a file's contents, optionally starting at a given 0-based line offset.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":   map[string]any{"type": "string", "description": "path to the file, relative to the collection root"},
					"offset": map[string]any{"type": "integer", "description": "0-based line to start reading from"},
					"limit":  map[string]any{"type": "integer", "description": "maximum number of lines to return"},
				},
				"required": []string{"path"},
			},
			Execute: func(ctx context.Context, input map[string]any) (string, error) {
				res, err := l.tools.Read(ctx, basePath, tools.ReadParams{
					Path:   stringArg(input, "path"),
					Offset: intArg(input, "offset"),
					Limit:  intArg(input, "limit"),
				})
				if err != nil {
					return "", err
				}
				return res.Output, nil
			},
		},
		{
			Name:        "grep",
			Description: "Search file contents for a regex pattern, optionally scoped to a subdirectory or file glob.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pattern": map[string]any{"type": "string", "description": "regular expression to search for"},
					"path":    map[string]any{"type": "string", "description": "subdirectory within the collection to search"},
					"include": map[string]any{"type": "string", "description": "glob narrowing which files are searched"},
				},
				"required": []string{"pattern"},
			},
			Execute: func(ctx context.Context, input map[string]any) (string, error) {
				res, err := l.tools.Grep(ctx, basePath, tools.GrepParams{
					Pattern: stringArg(input, "pattern"),
					Path:    stringArg(input, "path"),
					Include: stringArg(input, "include"),
				})
				if err != nil {
					return "", err
				}
				return res.Output, nil
			},
		},
		{
			Name:        "glob",
			Description: "Find files matching a glob pattern, optionally scoped to a subdirectory.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pattern": map[string]any{"type": "string", "description": "glob pattern, e.g. **/*.go"},
					"path":    map[string]any{"type": "string", "description": "subdirectory within the collection to search"},
				},
				"required": []string{"pattern"},
			},
			Execute: func(ctx context.Context, input map[string]any) (string, error) {
				res, err := l.tools.Glob(ctx, basePath, tools.GlobParams{
					Pattern: stringArg(input, "pattern"),
					Path:    stringArg(input, "path"),
				})
				if err != nil {
					return "", err
				}
				return res.Output, nil
			},
		},
		{
			Name:        "list",
			Description: "List the contents of a directory within the collection.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{"type": "string", "description": "directory to list, relative to the collection root"},
				},
				"required": []string{"path"},
			},
			Execute: func(ctx context.Context, input map[string]any) (string, error) {
				res, err := l.tools.List(ctx, basePath, tools.ListParams{
					Path: stringArg(input, "path"),
				})
				if err != nil {
					return "", err
				}
				return res.Output, nil
			},
		},
	}
}

func stringArg(input map[string]any, key string) string {
	if v, ok := input[key].(string); ok {
		return v
	}
	return ""
}

func intArg(input map[string]any, key string) int {
	switch v := input[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return 0
}
