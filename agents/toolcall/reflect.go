/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"encoding/json"
	"fmt"

	"chainguard.dev/agentflow/agents/schema"
)

// DefinitionFor builds a Definition whose parameter schema is reflected from
// the argument struct T. Field descriptions and required markers come from
// `jsonschema` struct tags.
func DefinitionFor[T any](name, description string) (Definition, error) {
	m, err := schema.MapType[T]()
	if err != nil {
		return Definition{}, fmt.Errorf("tool %s: %w", name, err)
	}
	def := Definition{Name: name, Description: description, Schema: m}
	return def, def.Validate()
}

// Decode converts decoded call arguments into T.
func Decode[T any](args map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}
