/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Call is a provider-independent representation of a tool call requested by
// a model. Arguments holds either a JSON-encoded string (OpenAI, Anthropic
// streaming) or an already decoded map (Anthropic, Gemini).
type Call struct {
	ID        string
	Name      string
	Arguments any
}

// Args decodes the call arguments into a map.
// An empty string or nil yields an empty map.
func (c Call) Args() (map[string]any, error) {
	switch v := c.Arguments.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return map[string]any{}, nil
		}
		var args map[string]any
		if err := json.Unmarshal([]byte(v), &args); err != nil {
			return nil, fmt.Errorf("decoding arguments for %s: %w", c.Name, err)
		}
		if args == nil {
			args = map[string]any{}
		}
		return args, nil
	case json.RawMessage:
		return Call{ID: c.ID, Name: c.Name, Arguments: string(v)}.Args()
	case []byte:
		return Call{ID: c.ID, Name: c.Name, Arguments: string(v)}.Args()
	default:
		// Round-trip anything else (structs, typed maps) through JSON.
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding arguments for %s: %w", c.Name, err)
		}
		return Call{ID: c.ID, Name: c.Name, Arguments: string(b)}.Args()
	}
}

// ArgumentString renders the arguments as a JSON string, which is what the
// OpenAI wire format expects when a call is replayed into history.
func (c Call) ArgumentString() string {
	switch v := c.Arguments.(type) {
	case nil:
		return "{}"
	case string:
		return v
	case json.RawMessage:
		return string(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "{}"
		}
		return string(b)
	}
}

// Response is the textual result of dispatching a Call.
type Response struct {
	ID     string
	Name   string
	Result string
}

// Definition describes a tool's schema (name, description, parameters).
// When Schema is set it is used verbatim as the parameter schema and
// Parameters is ignored.
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
	Schema      map[string]any
}

// Parameter describes a single tool parameter.
type Parameter struct {
	Name        string
	Type        string // "string", "integer", "boolean", "number", "array", "object"
	Description string
	Required    bool
	Default     any
}

// Validate checks that the definition can be rendered for a vendor.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	seen := make(map[string]struct{}, len(d.Parameters))
	for _, p := range d.Parameters {
		if p.Name == "" {
			return fmt.Errorf("tool %s: parameter name must not be empty", d.Name)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("tool %s: duplicate parameter %q", d.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Properties returns the JSON-schema properties and required list for the
// definition.
func (d Definition) Properties() (map[string]any, []string) {
	if d.Schema != nil {
		props, _ := d.Schema["properties"].(map[string]any)
		if props == nil {
			props = map[string]any{}
		}
		return props, requiredOf(d.Schema["required"])
	}

	props := make(map[string]any, len(d.Parameters))
	required := []string{}
	for _, p := range d.Parameters {
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		prop := map[string]any{"type": typ}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return props, required
}

func requiredOf(v any) []string {
	switch r := v.(type) {
	case []string:
		return r
	case []any:
		out := make([]string, 0, len(r))
		for _, s := range r {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return []string{}
}
