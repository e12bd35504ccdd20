/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Generator wraps jsonschema.Reflector with the defaults tool parameter
// schemas need: inline definitions and required markers from struct tags.
type Generator struct {
	reflector jsonschema.Reflector
}

// NewGenerator constructs a generator for tool argument structs.
func NewGenerator() *Generator {
	return &Generator{
		reflector: jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  true,
			DoNotReference:             true,
		},
	}
}

// Reflect returns the JSON schema for the provided value.
func (g *Generator) Reflect(v any) *jsonschema.Schema {
	return g.reflector.Reflect(v)
}

// Map returns the JSON schema for v as a generic map, without the
// $schema and $id annotations vendors reject in tool declarations.
func (g *Generator) Map(v any) (map[string]any, error) {
	raw, err := json.Marshal(g.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	delete(m, "$schema")
	delete(m, "$id")
	return m, nil
}

// Reflect derives the JSON schema for the provided value using a default generator.
func Reflect(v any) *jsonschema.Schema {
	return NewGenerator().Reflect(v)
}

// MapType allocates a zero value of T and reflects it to a schema map.
func MapType[T any]() (map[string]any, error) {
	var zero T
	return NewGenerator().Map(&zero)
}
