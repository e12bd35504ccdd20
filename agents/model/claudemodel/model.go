/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudemodel

import (
	"context"
	"fmt"
	"iter"

	"chainguard.dev/agentflow/agents/metrics"
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/retry"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chainguard-dev/clog"
)

// DefaultMaxTokens is the response budget used when none is configured.
const DefaultMaxTokens = 1024

// Format is the Anthropic tool declaration shape.
var Format = toolcall.Format{
	"name":        "{name}",
	"description": "{description}",
	"input_schema": map[string]any{
		"type":       "object",
		"properties": "{parameters}",
		"required":   "{required}",
	},
}

// Model is a model.Adapter backed by the Anthropic Messages API.
type Model struct {
	model.Base

	client      anthropic.Client
	clientOpts  []option.RequestOption
	system      string
	maxTokens   int64
	retryConfig retry.Config
	metrics     *metrics.Agents
}

var _ model.Adapter = (*Model)(nil)

// New returns an adapter for the named Claude model.
func New(name string, opts ...Option) (*Model, error) {
	base, err := model.NewBase(name, Format)
	if err != nil {
		return nil, err
	}
	m := &Model{Base: base, maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	m.client = anthropic.NewClient(m.clientOpts...)
	return m, nil
}

// Kind implements model.Adapter.
func (m *Model) Kind() model.Kind { return model.Anthropic }

// SetSystemMessage stores the instruction. Anthropic takes the system prompt
// as a request field, so it never enters the history.
func (m *Model) SetSystemMessage(instruction string) { m.system = instruction }

// SystemMessage returns the stored instruction.
func (m *Model) SystemMessage() string { return m.system }

// GenerateResponse implements model.Adapter.
func (m *Model) GenerateResponse(ctx context.Context) (model.Response, error) {
	params := m.params(ctx)

	clog.FromContext(ctx).With("model", m.Name()).
		With("messages", len(params.Messages)).
		With("tools", len(params.Tools)).
		Debug("Sending messages request")

	msg, err := retry.Do(ctx, m.retryConfig, "anthropic.messages", isRetryable, func() (*anthropic.Message, error) {
		return m.client.Messages.New(ctx, params)
	})
	if err != nil {
		return model.Response{}, fmt.Errorf("generating response: %w", err)
	}

	out := model.Response{
		Raw: msg,
		Usage: model.Usage{
			PromptTokens:     msg.Usage.InputTokens,
			CompletionTokens: msg.Usage.OutputTokens,
		},
	}
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			out.Content += block.Text
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, toolcall.Call{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: []byte(block.Input),
			})
		}
	}
	// Normalise arguments to a map so histories carry structured input.
	for i, c := range out.ToolCalls {
		if args, err := c.Args(); err == nil {
			out.ToolCalls[i].Arguments = args
		}
	}
	m.metrics.RecordTokens(ctx, m.Name(), out.Usage.PromptTokens, out.Usage.CompletionTokens)
	return out, nil
}

// GenerateStreamResponse implements model.Adapter. Tool input is not
// accumulated: a tool_use block yields a header chunk with nil arguments
// followed by one chunk per raw partial_json fragment.
func (m *Model) GenerateStreamResponse(ctx context.Context) iter.Seq2[model.Chunk, error] {
	return func(yield func(model.Chunk, error) bool) {
		stream := m.client.Messages.NewStreaming(ctx, m.params(ctx))
		defer stream.Close()

		var current *toolcall.Call
		for stream.Next() {
			event := stream.Current()
			var chunk model.Chunk
			switch event.Type {
			case "content_block_start":
				if event.ContentBlock.Type == "tool_use" {
					current = &toolcall.Call{ID: event.ContentBlock.ID, Name: event.ContentBlock.Name}
					chunk.ToolCalls = []toolcall.Call{*current}
				}
			case "content_block_delta":
				switch event.Delta.Type {
				case "text_delta":
					chunk.Content = event.Delta.Text
				case "input_json_delta":
					if current != nil {
						chunk.ToolCalls = []toolcall.Call{{
							ID:        current.ID,
							Name:      current.Name,
							Arguments: event.Delta.PartialJSON,
						}}
					}
				}
			case "content_block_stop":
				current = nil
			}
			if chunk.Content == "" && len(chunk.ToolCalls) == 0 {
				continue
			}
			if !yield(chunk, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield(model.Chunk{}, fmt.Errorf("streaming response: %w", err))
		}
	}
}

// AssistantMessage implements model.Adapter: one assistant message whose
// blocks hold the text and a tool_use block per call.
func (m *Model) AssistantMessage(resp model.Response) []model.Message {
	msg := model.Message{Role: model.RoleAssistant}
	if resp.Content != "" {
		msg.Blocks = append(msg.Blocks, model.Block{Type: model.BlockText, Text: resp.Content})
	}
	for _, c := range resp.ToolCalls {
		c = m.KeysInToolOutput(c)
		msg.Blocks = append(msg.Blocks, model.Block{
			Type:  model.BlockToolUse,
			ID:    c.ID,
			Name:  c.Name,
			Input: c.Arguments,
		})
	}
	return []model.Message{msg}
}

// ToolMessage implements model.Adapter: every result is nested under a
// single user message.
func (m *Model) ToolMessage(results []toolcall.Response) []model.Message {
	msg := model.Message{Role: model.RoleUser}
	for _, r := range results {
		msg.Blocks = append(msg.Blocks, model.Block{
			Type:   model.BlockToolResult,
			ID:     r.ID,
			Name:   r.Name,
			Result: r.Result,
		})
	}
	return []model.Message{msg}
}

func (m *Model) params(ctx context.Context) anthropic.MessageNewParams {
	msgs, system := toMessages(m.Messages())
	if m.system != "" {
		system = append([]string{m.system}, system...)
	}

	maxTokens := m.maxTokens
	if v, ok := m.IntKwarg("max_tokens"); ok {
		maxTokens = v
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.Name()),
		MaxTokens: maxTokens,
		Messages:  msgs,
		Tools:     toTools(m.Tools()),
	}
	for _, s := range system {
		params.System = append(params.System, anthropic.TextBlockParam{Text: s})
	}
	if v, ok := m.FloatKwarg("temperature"); ok {
		params.Temperature = anthropic.Float(v)
	}
	if v, ok := m.FloatKwarg("top_p"); ok {
		params.TopP = anthropic.Float(v)
	}
	if def, ok := m.ToolChoice(); ok {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: def.Name},
		}
	}

	for k := range m.Kwargs() {
		switch k {
		case "temperature", "max_tokens", "top_p", "tools":
		default:
			clog.FromContext(ctx).With("model", m.Name()).With("kwarg", k).Debug("Ignoring unsupported kwarg")
		}
	}
	return params
}
