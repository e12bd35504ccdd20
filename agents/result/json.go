/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const fence = "```"

// ExtractJSON returns the JSON payload of a model answer. The body of the
// first fenced block tagged json (or untagged) wins; an empty block yields
// "". Without a fence, the first balanced object or array in the text is
// returned, and failing that the trimmed text itself.
func ExtractJSON(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if body, ok := fenced(text); ok {
		return strings.TrimSpace(body)
	}
	trimmed := strings.TrimSpace(text)
	if v, ok := balanced(trimmed); ok {
		return v
	}
	return trimmed
}

// fenced finds the first code fence whose info string is empty or "json".
// Fences in other languages are skipped whole. A fence without a closing
// marker runs to the end of the text.
func fenced(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		tag, ok := strings.CutPrefix(strings.TrimSpace(lines[i]), fence)
		if !ok {
			continue
		}
		end := i + 1
		for end < len(lines) && strings.TrimSpace(lines[end]) != fence {
			end++
		}
		if tag = strings.TrimSpace(tag); tag == "" || strings.EqualFold(tag, "json") {
			return strings.Join(lines[i+1:end], "\n"), true
		}
		i = end
	}
	return "", false
}

// balanced scans for the first '{' or '[' and returns the shortest prefix
// from there that closes every bracket, skipping over string literals.
func balanced(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	var (
		depth   int
		inStr   bool
		escaped bool
	)
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inStr && c == '\\':
			escaped = true
		case c == '"':
			inStr = !inStr
		case inStr:
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}

// Extract decodes the JSON payload of text into T.
func Extract[T any](text string) (T, error) {
	var out T
	payload := ExtractJSON(text)
	if payload == "" {
		return out, fmt.Errorf("no JSON payload found")
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, fmt.Errorf("decoding JSON payload: %w", err)
	}
	return out, nil
}

// Field returns the value at a dotted path (for example "review.status")
// inside the JSON object of text. Array elements are addressed by index.
func Field(text, path string) (any, bool) {
	var cur any
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &cur); err != nil {
		return nil, false
	}
	if path == "" {
		return cur, true
	}
	for _, key := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
