/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googlemodel

import (
	"fmt"
	"strings"

	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
	"google.golang.org/genai"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// toContents converts canonical history into Gemini contents. System
// messages are joined into the returned instruction.
func toContents(msgs []model.Message) ([]*genai.Content, string) {
	var (
		out    []*genai.Content
		system []string
		// Gemini matches responses by function name, which OpenAI-shaped
		// tool messages do not carry.
		names = map[string]string{}
	)
	for _, msg := range msgs {
		switch msg.Role {
		case model.RoleSystem:
			system = append(system, msg.Content)

		case model.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			calls := msg.ToolCalls
			for _, b := range msg.Blocks {
				switch b.Type {
				case model.BlockText:
					if b.Text != "" {
						parts = append(parts, &genai.Part{Text: b.Text})
					}
				case model.BlockFunctionCall, model.BlockToolUse:
					calls = append(calls, toolcall.Call{ID: b.ID, Name: b.Name, Arguments: b.Input})
				}
			}
			for _, c := range calls {
				args, err := c.Args()
				if err != nil {
					args = map[string]any{}
				}
				names[c.ID] = c.Name
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: c.ID, Name: c.Name, Args: args}})
			}
			if len(parts) > 0 {
				out = append(out, &genai.Content{Role: roleModel, Parts: parts})
			}

		case model.RoleUser, model.RoleTool:
			var parts []*genai.Part
			if msg.ToolCallID != "" {
				parts = append(parts, functionResponse(msg.ToolCallID, names[msg.ToolCallID], msg.Content))
			} else if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, b := range msg.Blocks {
				switch b.Type {
				case model.BlockText:
					if b.Text != "" {
						parts = append(parts, &genai.Part{Text: b.Text})
					}
				case model.BlockFunctionResponse, model.BlockToolResult:
					name := b.Name
					if name == "" {
						name = names[b.ID]
					}
					parts = append(parts, functionResponse(b.ID, name, b.Result))
				}
			}
			if len(parts) == 0 {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			// Consecutive results share one user turn.
			if msg.Role == model.RoleTool && len(out) > 0 && out[len(out)-1].Role == roleUser && isResponses(out[len(out)-1]) {
				out[len(out)-1].Parts = append(out[len(out)-1].Parts, parts...)
				continue
			}
			out = append(out, &genai.Content{Role: roleUser, Parts: parts})
		}
	}
	return out, strings.Join(system, "\n")
}

func functionResponse(id, name, result string) *genai.Part {
	return &genai.Part{FunctionResponse: &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"result": result},
	}}
}

func isResponses(c *genai.Content) bool {
	for _, p := range c.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return true
}

func toDeclarations(defs []toolcall.Definition) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, d := range defs {
		props, required := d.Properties()
		decl := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if len(props) > 0 {
			decl.Parameters = toSchema(map[string]any{
				"type":       "object",
				"properties": props,
				"required":   required,
			})
		}
		out = append(out, decl)
	}
	return out
}

// toSchema converts a JSON schema held as a map into a genai.Schema.
func toSchema(s map[string]any) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{}
	if t, ok := s["type"].(string); ok {
		out.Type = schemaType(t)
	}
	if d, ok := s["description"].(string); ok {
		out.Description = d
	}
	if f, ok := s["format"].(string); ok {
		out.Format = f
	}
	if v, ok := s["default"]; ok {
		out.Default = v
	}
	switch enum := s["enum"].(type) {
	case []any:
		for _, v := range enum {
			out.Enum = append(out.Enum, fmt.Sprint(v))
		}
	case []string:
		out.Enum = append(out.Enum, enum...)
	}
	switch req := s["required"].(type) {
	case []string:
		out.Required = append(out.Required, req...)
	case []any:
		for _, v := range req {
			if name, ok := v.(string); ok {
				out.Required = append(out.Required, name)
			}
		}
	}
	if props, ok := s["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				out.Properties[name] = toSchema(pm)
			}
		}
	}
	if items, ok := s["items"].(map[string]any); ok {
		out.Items = toSchema(items)
	}
	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	case "null":
		return genai.TypeNULL
	default:
		return ""
	}
}
