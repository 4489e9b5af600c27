package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sevigo/btca/internal/sandbox"
)

const (
	defaultReadLimit = 2000
	maxLineChars     = 2000
	maxReadBytes     = 50 * 1024
	sniffBytes       = 8 * 1024
)

var imageMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
	".svg":  "image/svg+xml",
}

// ReadParams are the parameters to Suite.Read.
type ReadParams struct {
	Path   string
	Offset int // 0-based line, default 0
	Limit  int // default 2000 lines when <= 0
}

// Read reads a file rooted at basePath, returning line-numbered text, an
// image/PDF placeholder with a base64 attachment, or a not-found message
// with prefix-similar suggestions. It never errors except on sandbox
// escape.
func (s *Suite) Read(ctx context.Context, basePath string, p ReadParams) (Result, error) {
	sb := sandbox.New(basePath)
	resolved, err := sb.ResolveWithSymlinks(p.Path)
	if err != nil {
		return Result{}, err
	}

	info, statErr := os.Stat(resolved)
	if statErr != nil {
		return Result{Output: notFoundMessage(sb, p.Path, resolved)}, nil
	}
	if info.IsDir() {
		return Result{Output: fmt.Sprintf("%s is a directory, not a file", p.Path)}, nil
	}

	ext := strings.ToLower(filepath.Ext(resolved))
	if ext == ".pdf" {
		return attachmentResult(resolved, "application/pdf", "PDF")
	}
	if mime, ok := imageMIME[ext]; ok {
		return attachmentResult(resolved, mime, "Image")
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return Result{Output: notFoundMessage(sb, p.Path, resolved)}, nil
	}

	if isBinary(data) {
		return Result{Output: fmt.Sprintf("[Binary file: %s]", filepath.Base(resolved))}, nil
	}

	return Result{Output: formatLines(data, p.Offset, p.Limit)}, nil
}

func attachmentResult(path, mimeType, kind string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Output: fmt.Sprintf("[%s file: %s] (could not read: %v)", kind, filepath.Base(path), err)}, nil
	}
	return Result{
		Output: fmt.Sprintf("[%s file: %s]", kind, filepath.Base(path)),
		Attachment: &Attachment{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		},
	}, nil
}

func isBinary(data []byte) bool {
	limit := len(data)
	if limit > sniffBytes {
		limit = sniffBytes
	}
	return bytes.IndexByte(data[:limit], 0x00) != -1
}

// formatLines renders data as "<5-col line#>\t<text>" lines starting at
// offset, stopping at limit lines or the 50 KiB byte budget, whichever
// trips first, and appends a truncation notice when either does.
func formatLines(data []byte, offset, limit int) string {
	if limit <= 0 {
		limit = defaultReadLimit
	}

	all := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return ""
	}
	window := all[offset:]

	var sb strings.Builder
	consumed := 0
	byteBudgetTripped := false
	for i, line := range window {
		if i >= limit {
			break
		}
		if len(line) > maxLineChars {
			line = line[:maxLineChars] + "..."
		}
		rendered := fmt.Sprintf("%5d\t%s", offset+i+1, line)
		if sb.Len() > 0 && sb.Len()+1+len(rendered) > maxReadBytes {
			byteBudgetTripped = true
			break
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(rendered)
		consumed++
	}

	remaining := len(window) - consumed
	if remaining > 0 && (consumed >= limit || byteBudgetTripped) {
		fmt.Fprintf(&sb, "\n\n[Truncated: %d more lines. Use offset=%d to continue reading.]", remaining, offset+consumed)
	}
	return sb.String()
}

func notFoundMessage(sb *sandbox.Sandbox, requested, resolved string) string {
	msg := fmt.Sprintf("File not found: %s", requested)

	dir := filepath.Dir(resolved)
	base := filepath.Base(resolved)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		base = stem
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return msg
	}

	var candidates []string
	for _, e := range entries {
		if strings.HasPrefix(strings.ToLower(e.Name()), strings.ToLower(base)) {
			candidates = append(candidates, e.Name())
		}
	}
	if len(candidates) == 0 {
		return msg
	}
	sort.Strings(candidates)
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}

	var b strings.Builder
	b.WriteString(msg)
	b.WriteString("\n\nDid you mean one of these?\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	return strings.TrimRight(b.String(), "\n")
}
