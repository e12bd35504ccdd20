/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import "strings"

// Format is a vendor tool-format template. String values of the form
// "{key}" are placeholders that Populate substitutes; the keys used by
// Render are name, description, parameters, required and strict. Strict is
// true only when every parameter is required.
type Format map[string]any

// DefaultFormat is the OpenAI function-calling shape.
var DefaultFormat = Format{
	"type": "function",
	"function": map[string]any{
		"name":        "{name}",
		"description": "{description}",
		"parameters": map[string]any{
			"type":                 "object",
			"properties":           "{parameters}",
			"required":             "{required}",
			"additionalProperties": false,
		},
		"strict": "{strict}",
	},
}

// Render fills the format template with the definition.
func (d Definition) Render(f Format) map[string]any {
	if f == nil {
		f = DefaultFormat
	}
	props, required := d.Properties()
	out, _ := Populate(map[string]any(f), map[string]any{
		"name":        d.Name,
		"description": d.Description,
		"parameters":  props,
		"required":    required,
		"strict":      len(required) == len(props),
	}).(map[string]any)
	return out
}

// Populate walks template recursively and replaces every string value
// "{key}" with data[key]. Placeholders without a matching key are left as is.
// The template is not modified.
func Populate(template any, data map[string]any) any {
	switch t := template.(type) {
	case Format:
		return Populate(map[string]any(t), data)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			if s, ok := v.(string); ok && isPlaceholder(s) {
				if val, found := data[s[1:len(s)-1]]; found {
					out[k] = val
					continue
				}
				out[k] = s
				continue
			}
			out[k] = Populate(v, data)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = Populate(v, data)
		}
		return out
	default:
		return template
	}
}

func isPlaceholder(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

// ReplaceResult substitutes every "{result}" in instruction.
func ReplaceResult(instruction, result string) string {
	return strings.ReplaceAll(instruction, "{result}", result)
}
