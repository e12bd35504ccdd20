/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaimodel

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
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Base URLs of OpenAI-compatible vendors.
const (
	GrokBaseURL     = "https://api.x.ai/v1"
	DeepSeekBaseURL = "https://api.deepseek.com"
	LlamaBaseURL    = "https://api.llama-api.com"
)

// Model is a model.Adapter backed by the Chat Completions API.
type Model struct {
	model.Base

	client      openai.Client
	clientOpts  []option.RequestOption
	baseURL     string
	retryConfig retry.Config
	metrics     *metrics.Agents
}

var _ model.Adapter = (*Model)(nil)

// New returns an adapter for the named OpenAI model.
func New(name string, opts ...Option) (*Model, error) {
	base, err := model.NewBase(name, toolcall.DefaultFormat)
	if err != nil {
		return nil, err
	}
	m := &Model{Base: base}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	m.client = openai.NewClient(m.clientOpts...)
	return m, nil
}

// NewGrok returns an adapter for xAI's Grok models.
func NewGrok(name string, opts ...Option) (*Model, error) {
	return New(name, append([]Option{WithBaseURL(GrokBaseURL)}, opts...)...)
}

// NewDeepSeek returns an adapter for DeepSeek models.
func NewDeepSeek(name string, opts ...Option) (*Model, error) {
	return New(name, append([]Option{WithBaseURL(DeepSeekBaseURL)}, opts...)...)
}

// NewLlama returns an adapter for models served by Llama API.
func NewLlama(name string, opts ...Option) (*Model, error) {
	return New(name, append([]Option{WithBaseURL(LlamaBaseURL)}, opts...)...)
}

// Kind implements model.Adapter.
func (m *Model) Kind() model.Kind { return model.OpenAILike }

// BaseURL returns the endpoint override, empty for api.openai.com.
func (m *Model) BaseURL() string { return m.baseURL }

// GenerateResponse implements model.Adapter.
func (m *Model) GenerateResponse(ctx context.Context) (model.Response, error) {
	params := m.params(ctx)

	clog.FromContext(ctx).With("model", m.Name()).
		With("messages", len(params.Messages)).
		With("tools", len(params.Tools)).
		Debug("Sending chat completion request")

	resp, err := retry.Do(ctx, m.retryConfig, "openai.chat", isRetryable, func() (*openai.ChatCompletion, error) {
		return m.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return model.Response{}, fmt.Errorf("generating response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.Response{}, errors.New("generating response: no choices returned")
	}

	msg := resp.Choices[0].Message
	out := model.Response{
		Content: msg.Content,
		Raw:     resp,
		Usage: model.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, toolcall.Call{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	m.metrics.RecordTokens(ctx, m.Name(), out.Usage.PromptTokens, out.Usage.CompletionTokens)
	return out, nil
}

// GenerateStreamResponse implements model.Adapter. Every chunk that carries
// tool-call deltas also carries the calls aggregated so far.
func (m *Model) GenerateStreamResponse(ctx context.Context) iter.Seq2[model.Chunk, error] {
	return func(yield func(model.Chunk, error) bool) {
		params := m.params(ctx)
		stream := m.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		var acc accumulator
		for stream.Next() {
			for _, ch := range stream.Current().Choices {
				for _, tc := range ch.Delta.ToolCalls {
					acc.add(tc.Index, tc.ID, tc.Function.Name, tc.Function.Arguments)
				}
				if ch.Delta.Content == "" && len(ch.Delta.ToolCalls) == 0 {
					continue
				}
				chunk := model.Chunk{Content: ch.Delta.Content}
				if len(ch.Delta.ToolCalls) > 0 {
					chunk.ToolCalls = acc.calls()
				}
				if !yield(chunk, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield(model.Chunk{}, fmt.Errorf("streaming response: %w", err))
		}
	}
}

// AssistantMessage implements model.Adapter.
func (m *Model) AssistantMessage(resp model.Response) []model.Message {
	return []model.Message{{
		Role:      model.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	}}
}

// ToolMessage implements model.Adapter: one tool message per result.
func (m *Model) ToolMessage(results []toolcall.Response) []model.Message {
	out := make([]model.Message, 0, len(results))
	for _, r := range results {
		out = append(out, model.Message{Role: model.RoleTool, Content: r.Result, ToolCallID: r.ID})
	}
	return out
}

func (m *Model) params(ctx context.Context) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    m.Name(),
		Messages: toMessages(m.Messages()),
		Tools:    toTools(m.Tools()),
	}
	if v, ok := m.FloatKwarg("temperature"); ok {
		params.Temperature = openai.Float(v)
	}
	if v, ok := m.IntKwarg("max_tokens"); ok {
		params.MaxTokens = openai.Int(v)
	}
	if v, ok := m.FloatKwarg("top_p"); ok {
		params.TopP = openai.Float(v)
	}
	if def, ok := m.ToolChoice(); ok {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: def.Name},
			},
		}
	} else if s, ok := m.StringKwarg("tool_choice"); ok {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(s)}
	}

	for k := range m.Kwargs() {
		switch k {
		case "temperature", "max_tokens", "top_p", "tool_choice", "tools":
		default:
			clog.FromContext(ctx).With("model", m.Name()).With("kwarg", k).Debug("Ignoring unsupported kwarg")
		}
	}
	return params
}
