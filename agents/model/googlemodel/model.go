/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googlemodel

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"chainguard.dev/agentflow/agents/metrics"
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/retry"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// Format is the Gemini function declaration shape.
var Format = toolcall.Format{
	"name":        "{name}",
	"description": "{description}",
	"parameters": map[string]any{
		"type":       "object",
		"properties": "{parameters}",
		"required":   "{required}",
	},
}

// Model is a model.Adapter backed by the Google GenAI SDK.
type Model struct {
	model.Base

	client       *genai.Client
	clientConfig genai.ClientConfig
	retryConfig  retry.Config
	metrics      *metrics.Agents
}

var _ model.Adapter = (*Model)(nil)

// New returns an adapter for the named Gemini model. Without WithAPIKey or
// WithVertex the SDK falls back to its environment variables.
func New(ctx context.Context, name string, opts ...Option) (*Model, error) {
	base, err := model.NewBase(name, Format)
	if err != nil {
		return nil, err
	}
	m := &Model{Base: base}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	m.client, err = genai.NewClient(ctx, &m.clientConfig)
	if err != nil {
		return nil, fmt.Errorf("creating Google AI client: %w", err)
	}
	return m, nil
}

// Kind implements model.Adapter.
func (m *Model) Kind() model.Kind { return model.Genai }

// GenerateResponse implements model.Adapter.
func (m *Model) GenerateResponse(ctx context.Context) (model.Response, error) {
	contents, cfg := m.request(ctx)

	clog.FromContext(ctx).With("model", m.Name()).
		With("contents", len(contents)).
		Debug("Sending generate content request")

	resp, err := retry.Do(ctx, m.retryConfig, "genai.generate", isRetryable, func() (*genai.GenerateContentResponse, error) {
		return m.client.Models.GenerateContent(ctx, m.Name(), contents, cfg)
	})
	if err != nil {
		return model.Response{}, fmt.Errorf("generating response: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return model.Response{}, errors.New("generating response: no candidates returned")
	}

	text, calls := fromParts(resp.Candidates[0].Content.Parts)
	out := model.Response{Content: text, ToolCalls: calls, Raw: resp}
	// Text alongside function calls is dropped; the turn is a tool request.
	if len(calls) > 0 {
		out.Content = ""
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = model.Usage{
			PromptTokens:     int64(u.PromptTokenCount),
			CompletionTokens: int64(u.CandidatesTokenCount),
		}
	}
	m.metrics.RecordTokens(ctx, m.Name(), out.Usage.PromptTokens, out.Usage.CompletionTokens)
	return out, nil
}

// GenerateStreamResponse implements model.Adapter. Function calls arrive
// whole, so each chunk carries complete calls.
func (m *Model) GenerateStreamResponse(ctx context.Context) iter.Seq2[model.Chunk, error] {
	return func(yield func(model.Chunk, error) bool) {
		contents, cfg := m.request(ctx)
		for resp, err := range m.client.Models.GenerateContentStream(ctx, m.Name(), contents, cfg) {
			if err != nil {
				yield(model.Chunk{}, fmt.Errorf("streaming response: %w", err))
				return
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			text, calls := fromParts(resp.Candidates[0].Content.Parts)
			if text == "" && len(calls) == 0 {
				continue
			}
			if !yield(model.Chunk{Content: text, ToolCalls: calls}, nil) {
				return
			}
		}
	}
}

// AssistantMessage implements model.Adapter: one assistant message with a
// function_call block per call, or the plain text when there are none.
func (m *Model) AssistantMessage(resp model.Response) []model.Message {
	msg := model.Message{Role: model.RoleAssistant}
	for _, c := range resp.ToolCalls {
		c = m.KeysInToolOutput(c)
		msg.Blocks = append(msg.Blocks, model.Block{
			Type:  model.BlockFunctionCall,
			ID:    c.ID,
			Name:  c.Name,
			Input: c.Arguments,
		})
	}
	if len(msg.Blocks) == 0 {
		msg.Content = resp.Content
	}
	return []model.Message{msg}
}

// ToolMessage implements model.Adapter: one tool message holding a
// function_response block per result.
func (m *Model) ToolMessage(results []toolcall.Response) []model.Message {
	msg := model.Message{Role: model.RoleTool}
	for _, r := range results {
		msg.Blocks = append(msg.Blocks, model.Block{
			Type:   model.BlockFunctionResponse,
			ID:     r.ID,
			Name:   r.Name,
			Result: r.Result,
		})
	}
	return []model.Message{msg}
}

func (m *Model) request(ctx context.Context) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents, system := toContents(m.Messages())

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if v, ok := m.FloatKwarg("temperature"); ok {
		cfg.Temperature = ptr(float32(v))
	}
	if v, ok := m.FloatKwarg("top_p"); ok {
		cfg.TopP = ptr(float32(v))
	}
	if v, ok := m.IntKwarg("max_tokens"); ok {
		cfg.MaxOutputTokens = int32(v)
	}
	if decls := toDeclarations(m.Tools()); len(decls) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	if def, ok := m.ToolChoice(); ok {
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{def.Name},
			},
		}
	}

	for k := range m.Kwargs() {
		switch k {
		case "temperature", "max_tokens", "top_p", "tools":
		default:
			clog.FromContext(ctx).With("model", m.Name()).With("kwarg", k).Debug("Ignoring unsupported kwarg")
		}
	}
	return contents, cfg
}

// fromParts splits candidate parts into text and function calls. Calls
// without an ID are given one.
func fromParts(parts []*genai.Part) (string, []toolcall.Call) {
	var (
		text  string
		calls []toolcall.Call
	)
	for _, p := range parts {
		if p == nil {
			continue
		}
		if p.FunctionCall != nil {
			id := p.FunctionCall.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			args := p.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			calls = append(calls, toolcall.Call{ID: id, Name: p.FunctionCall.Name, Arguments: args})
			continue
		}
		if !p.Thought {
			text += p.Text
		}
	}
	return text, calls
}

// ptr is a helper function to create a pointer to a value
func ptr[T any](v T) *T {
	return &v
}
