/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
)

var (
	// ErrInvalidAgent is returned when an agent is constructed with an
	// empty name or without a model.
	ErrInvalidAgent = errors.New("invalid agent")

	// ErrMessagesNotSet is returned when the history is read or a response
	// requested before any message was set.
	ErrMessagesNotSet = errors.New("messages not set in the model")
)

// Agent is a named binding of a model, an instruction and tools. It is not
// safe for concurrent use.
type Agent struct {
	name        string
	instruction string
	model       model.Adapter
	tools       []Tool
	toolChoice  *Function
}

// Option configures an Agent.
type Option func(*Agent) error

// WithInstruction sets the system instruction.
func WithInstruction(instruction string) Option {
	return func(a *Agent) error {
		a.instruction = instruction
		return nil
	}
}

// WithTools sets the initial tools.
func WithTools(tools ...Tool) Option {
	return func(a *Agent) error {
		for _, t := range tools {
			if t.Kind() == 0 {
				return fmt.Errorf("%w: zero tool", ErrInvalidAgent)
			}
		}
		a.tools = slices.Clone(tools)
		return nil
	}
}

// WithToolChoice forces the model to call fn.
func WithToolChoice(fn *Function) Option {
	return func(a *Agent) error {
		if fn == nil {
			return fmt.Errorf("%w: nil tool choice", ErrInvalidAgent)
		}
		a.toolChoice = fn
		return nil
	}
}

// New returns an Agent named name that talks to m.
func New(name string, m model.Adapter, opts ...Option) (*Agent, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: agent name cannot be empty", ErrInvalidAgent)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: a model adapter is required", ErrInvalidAgent)
	}
	a := &Agent{name: name, model: m}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.syncTools()
	if a.toolChoice != nil {
		m.SetToolChoice(a.toolChoice.Definition)
	}
	return a, nil
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Instruction returns the system instruction.
func (a *Agent) Instruction() string { return a.instruction }

// SetInstruction updates the instruction. If the history already holds a
// system message it is replaced in place.
func (a *Agent) SetInstruction(instruction string) {
	a.instruction = instruction
	for _, m := range a.model.Messages() {
		if m.Role == model.RoleSystem {
			a.model.SetSystemMessage(instruction)
			return
		}
	}
}

// Model returns the adapter.
func (a *Agent) Model() model.Adapter { return a.model }

// SetModel swaps the adapter and propagates the current tools to it.
func (a *Agent) SetModel(m model.Adapter) error {
	if m == nil {
		return fmt.Errorf("%w: a model adapter is required", ErrInvalidAgent)
	}
	a.model = m
	a.syncTools()
	if a.toolChoice != nil {
		m.SetToolChoice(a.toolChoice.Definition)
	}
	return nil
}

// Tools returns a copy of the tool list.
func (a *Agent) Tools() []Tool { return slices.Clone(a.tools) }

// SetTools replaces the tool list.
func (a *Agent) SetTools(tools ...Tool) {
	a.tools = slices.Clone(tools)
	a.syncTools()
}

// AddTool appends t unless the same tool is already present.
func (a *Agent) AddTool(t Tool) {
	if slices.Contains(a.tools, t) {
		return
	}
	a.tools = append(a.tools, t)
	a.syncTools()
}

// RemoveTool removes the first tool named name and reports whether one was
// removed.
func (a *Agent) RemoveTool(name string) bool {
	i := slices.IndexFunc(a.tools, func(t Tool) bool { return t.Name() == name })
	if i < 0 {
		return false
	}
	a.tools = slices.Delete(a.tools, i, i+1)
	a.syncTools()
	return true
}

// FindTool returns the first tool named name.
func (a *Agent) FindTool(name string) (Tool, bool) {
	for _, t := range a.tools {
		if t.Name() == name {
			return t, true
		}
	}
	return Tool{}, false
}

// SetToolChoice forces the model to call fn on the next request.
func (a *Agent) SetToolChoice(fn *Function) {
	a.toolChoice = fn
	if fn != nil {
		a.model.SetToolChoice(fn.Definition)
	}
}

// Definitions returns the declarations of every tool, in order.
func (a *Agent) Definitions() []toolcall.Definition {
	defs := make([]toolcall.Definition, 0, len(a.tools))
	for _, t := range a.tools {
		defs = append(defs, t.Definition())
	}
	return defs
}

func (a *Agent) syncTools() { a.model.SetTools(a.Definitions()) }

// Messages returns the model's history.
func (a *Agent) Messages() ([]model.Message, error) {
	msgs := a.model.Messages()
	if msgs == nil {
		return nil, ErrMessagesNotSet
	}
	return msgs, nil
}

// SetMessages replaces the model's history.
func (a *Agent) SetMessages(msgs []model.Message) error { return a.model.SetMessages(msgs) }

// AddMessage appends a plain message to an existing history.
func (a *Agent) AddMessage(role model.Role, content string) error {
	msgs, err := a.Messages()
	if err != nil {
		return err
	}
	return a.model.SetMessages(append(msgs, model.Message{Role: role, Content: content}))
}

// ClearMessages empties the history and re-adds the system message when an
// instruction is set.
func (a *Agent) ClearMessages() {
	_ = a.model.SetMessages([]model.Message{})
	if a.instruction != "" {
		a.model.SetSystemMessage(a.instruction)
	}
}

// SetSystemMessage installs instruction as the model's system message.
func (a *Agent) SetSystemMessage(instruction string) { a.model.SetSystemMessage(instruction) }

// SetUserMessage appends the input to the model's history.
func (a *Agent) SetUserMessage(in model.Input) error { return a.model.SetUserMessage(in) }

// Response requests a single non-streaming response.
func (a *Agent) Response(ctx context.Context) (model.Response, error) {
	if a.model.Messages() == nil {
		return model.Response{}, ErrMessagesNotSet
	}
	return a.model.GenerateResponse(ctx)
}

// StreamResponse requests a streaming response. The sequence is single-use.
func (a *Agent) StreamResponse(ctx context.Context) iter.Seq2[model.Chunk, error] {
	if a.model.Messages() == nil {
		return func(yield func(model.Chunk, error) bool) {
			yield(model.Chunk{}, ErrMessagesNotSet)
		}
	}
	return a.model.GenerateStreamResponse(ctx)
}

// Stream sends query and streams the answer, calling onContent for every
// content delta and onToolCall once for each distinct tool call chunk.
// Either callback may be nil. The assembled response is returned.
func (a *Agent) Stream(ctx context.Context, query string, onContent func(string), onToolCall func(toolcall.Call)) (model.Response, error) {
	a.model.SetSystemMessage(a.instruction)
	if err := a.model.SetUserMessage(model.Text(query)); err != nil {
		return model.Response{}, err
	}

	var (
		content strings.Builder
		calls   []toolcall.Call
	)
	for chunk, err := range a.StreamResponse(ctx) {
		if err != nil {
			return model.Response{Content: content.String(), ToolCalls: calls}, err
		}
		if chunk.Content != "" {
			content.WriteString(chunk.Content)
			if onContent != nil {
				onContent(chunk.Content)
			}
		}
		for _, c := range chunk.ToolCalls {
			if containsCall(calls, c) {
				continue
			}
			calls = append(calls, c)
			if onToolCall != nil {
				onToolCall(c)
			}
		}
	}
	return model.Response{Content: content.String(), ToolCalls: calls}, nil
}

func containsCall(calls []toolcall.Call, c toolcall.Call) bool {
	for _, existing := range calls {
		if existing.ID == c.ID && existing.Name == c.Name && existing.ArgumentString() == c.ArgumentString() {
			return true
		}
	}
	return false
}

func (a *Agent) String() string {
	return fmt.Sprintf("Agent(name=%q, model=%q, tools=%d)", a.name, a.model.Name(), len(a.tools))
}
