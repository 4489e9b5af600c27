package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// allowedTopLevelFields is the complete set §6.2 permits in the config
// file; anything else rejects the whole file rather than being ignored.
var allowedTopLevelFields = map[string]bool{
	"$schema":   true,
	"resources": true,
	"model":     true,
	"provider":  true,
}

// stripJSONComments removes `//` line comments and `/* */` block comments
// from data, leaving string literals untouched — no JSONC-aware parser
// exists anywhere in the pack (§"Configuration"), so this small pre-pass
// feeds plain JSON to viper's json type.
func stripJSONComments(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	escaped := false

	for i := 0; i < len(data); i++ {
		c := data[i]

		if inString {
			out = append(out, c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out = append(out, c)
		case c == '/' && i+1 < len(data) && data[i+1] == '/':
			for i < len(data) && data[i] != '\n' {
				i++
			}
			if i < len(data) {
				out = append(out, '\n')
			}
		case c == '/' && i+1 < len(data) && data[i+1] == '*':
			i += 2
			for i+1 < len(data) && !(data[i] == '*' && data[i+1] == '/') {
				i++
			}
			i++ // land on the closing '/'
		default:
			out = append(out, c)
		}
	}
	return out
}

// rejectUnknownFields fails if data's top-level JSON object carries any
// key outside allowedTopLevelFields ("Unknown fields reject", §6.2).
func rejectUnknownFields(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config as JSON object: %w", err)
	}

	var unknown []string
	for key := range raw {
		if !allowedTopLevelFields[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown config field(s): %s", strings.Join(unknown, ", "))
}
