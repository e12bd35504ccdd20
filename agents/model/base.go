/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package model

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"chainguard.dev/agentflow/agents/toolcall"
)

// Base holds the state every adapter shares: model name, conversation
// history, call parameters and the tool declarations. Vendor adapters embed
// it and override the parts whose wire shape differs.
//
// Base is not safe for concurrent use; an adapter belongs to one agent.
type Base struct {
	name       string
	format     toolcall.Format
	messages   []Message
	kwargs     map[string]any
	tools      []toolcall.Definition
	toolChoice *toolcall.Definition
}

// NewBase returns a Base for the named model that renders tools with format.
func NewBase(name string, format toolcall.Format) (Base, error) {
	if strings.TrimSpace(name) == "" {
		return Base{}, errors.New("model name must not be empty")
	}
	if format == nil {
		format = toolcall.DefaultFormat
	}
	return Base{name: name, format: format, kwargs: map[string]any{}}, nil
}

// Name returns the model identifier.
func (b *Base) Name() string { return b.name }

// Messages returns a copy of the history, or nil if none was ever set.
func (b *Base) Messages() []Message {
	if b.messages == nil {
		return nil
	}
	return slices.Clone(b.messages)
}

// SetMessages replaces the history. Every message is validated first; on
// error the history is left unchanged.
func (b *Base) SetMessages(msgs []Message) error {
	for _, m := range msgs {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	b.messages = append(make([]Message, 0, len(msgs)), msgs...)
	return nil
}

// ClearMessages drops the history entirely.
func (b *Base) ClearMessages() { b.messages = nil }

// Kwargs returns a copy of the call parameters.
func (b *Base) Kwargs() map[string]any { return maps.Clone(b.kwargs) }

// SetKwargs merges kwargs into the call parameters. A nil value deletes
// the key.
func (b *Base) SetKwargs(kwargs map[string]any) {
	for k, v := range kwargs {
		if v == nil {
			delete(b.kwargs, k)
			continue
		}
		b.kwargs[k] = v
	}
}

// SetSystemMessage installs instruction as the system message. An existing
// system message is replaced in place, otherwise one is inserted at the
// front; the rest of the history is preserved.
func (b *Base) SetSystemMessage(instruction string) {
	sys := Message{Role: RoleSystem, Content: instruction}
	for i, m := range b.messages {
		if m.Role == RoleSystem {
			b.messages[i] = sys
			return
		}
	}
	b.messages = append([]Message{sys}, b.messages...)
}

// SetUserMessage appends the input to the history. Zero input is a no-op.
func (b *Base) SetUserMessage(in Input) error {
	if in.IsZero() {
		return nil
	}
	msgs := in.Messages()
	for _, m := range msgs {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	b.messages = append(b.messagesOrEmpty(), msgs...)
	return nil
}

// AppendMessages adds messages to the end of the history without
// validation; adapters use it for turns they built themselves.
func (b *Base) AppendMessages(msgs ...Message) {
	b.messages = append(b.messagesOrEmpty(), msgs...)
}

func (b *Base) messagesOrEmpty() []Message {
	if b.messages == nil {
		return []Message{}
	}
	return b.messages
}

// SetTools records the tool definitions and stores their rendered
// declarations under the "tools" kwarg. Adapters build the wire tools from
// Tools with the same shape and strict rule. An empty list removes both.
func (b *Base) SetTools(defs []toolcall.Definition) {
	if len(defs) == 0 {
		b.tools = nil
		delete(b.kwargs, "tools")
		return
	}
	b.tools = slices.Clone(defs)
	rendered := make([]map[string]any, 0, len(defs))
	for _, d := range defs {
		rendered = append(rendered, d.Render(b.format))
	}
	b.kwargs["tools"] = rendered
}

// Tools returns the definitions last passed to SetTools.
func (b *Base) Tools() []toolcall.Definition { return slices.Clone(b.tools) }

// SetToolChoice forces the model to call the given tool.
func (b *Base) SetToolChoice(def toolcall.Definition) {
	b.toolChoice = &def
	b.kwargs["tool_choice"] = def.Render(b.format)
}

// ToolChoice returns the forced tool, if any.
func (b *Base) ToolChoice() (toolcall.Definition, bool) {
	if b.toolChoice == nil {
		return toolcall.Definition{}, false
	}
	return *b.toolChoice, true
}

// ToolFormat returns the tool-format template of the adapter.
func (b *Base) ToolFormat() toolcall.Format { return b.format }

// KeysInToolOutput canonicalises a call: the name is trimmed and missing
// arguments become an empty object.
func (b *Base) KeysInToolOutput(call toolcall.Call) toolcall.Call {
	call.Name = strings.TrimSpace(call.Name)
	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}
	return call
}
