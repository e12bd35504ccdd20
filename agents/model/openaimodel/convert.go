/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaimodel

import (
	"slices"

	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/openai/openai-go"
)

// toMessages converts canonical history into Chat Completions messages.
// Block-shaped turns written by other vendors are translated, so a history
// can move between adapters.
func toMessages(msgs []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case model.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))

		case model.RoleUser:
			results := blocksOf(msg, model.BlockToolResult, model.BlockFunctionResponse)
			for _, b := range results {
				out = append(out, openai.ToolMessage(b.Result, b.ID))
			}
			if text := textOf(msg); text != "" || len(results) == 0 {
				out = append(out, openai.UserMessage(text))
			}

		case model.RoleAssistant:
			calls := msg.ToolCalls
			for _, b := range blocksOf(msg, model.BlockToolUse, model.BlockFunctionCall) {
				calls = append(calls, toolcall.Call{ID: b.ID, Name: b.Name, Arguments: b.Input})
			}
			text := textOf(msg)
			if len(calls) == 0 {
				out = append(out, openai.AssistantMessage(text))
				continue
			}
			asst := &openai.ChatCompletionAssistantMessageParam{ToolCalls: toToolCalls(calls)}
			if text != "" {
				asst.Content.OfString = openai.String(text)
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: asst})

		case model.RoleTool:
			if msg.ToolCallID != "" {
				out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
			}
			for _, b := range blocksOf(msg, model.BlockToolResult, model.BlockFunctionResponse) {
				out = append(out, openai.ToolMessage(b.Result, b.ID))
			}
		}
	}
	return out
}

func toToolCalls(calls []toolcall.Call) []openai.ChatCompletionMessageToolCallParam {
	out := make([]openai.ChatCompletionMessageToolCallParam, 0, len(calls))
	for _, c := range calls {
		out = append(out, openai.ChatCompletionMessageToolCallParam{
			ID:   c.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      c.Name,
				Arguments: c.ArgumentString(),
			},
		})
	}
	return out
}

// toTools declares definitions as strict functions. Strict mode requires
// every property to be required, so it is only requested when that holds.
func toTools(defs []toolcall.Definition) []openai.ChatCompletionToolParam {
	if len(defs) == 0 {
		return nil
	}
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		props, required := d.Properties()
		fn := openai.FunctionDefinitionParam{
			Name: d.Name,
			Parameters: openai.FunctionParameters{
				"type":                 "object",
				"properties":           props,
				"required":             required,
				"additionalProperties": false,
			},
		}
		if d.Description != "" {
			fn.Description = openai.String(d.Description)
		}
		if len(required) == len(props) {
			fn.Strict = openai.Bool(true)
		}
		out = append(out, openai.ChatCompletionToolParam{Type: "function", Function: fn})
	}
	return out
}

func blocksOf(msg model.Message, types ...model.BlockType) []model.Block {
	var out []model.Block
	for _, b := range msg.Blocks {
		if slices.Contains(types, b.Type) {
			out = append(out, b)
		}
	}
	return out
}

func textOf(msg model.Message) string {
	text := msg.Content
	for _, b := range msg.Blocks {
		if b.Type == model.BlockText {
			text += b.Text
		}
	}
	return text
}

// accumulator joins streamed tool-call deltas, keyed by their index.
type accumulator struct {
	order []int64
	byIdx map[int64]*toolcall.Call
}

func (a *accumulator) add(index int64, id, name, args string) {
	if a.byIdx == nil {
		a.byIdx = map[int64]*toolcall.Call{}
	}
	c, ok := a.byIdx[index]
	if !ok {
		c = &toolcall.Call{Arguments: ""}
		a.byIdx[index] = c
		a.order = append(a.order, index)
	}
	if id != "" {
		c.ID = id
	}
	if name != "" {
		c.Name = name
	}
	c.Arguments = c.Arguments.(string) + args
}

func (a *accumulator) calls() []toolcall.Call {
	out := make([]toolcall.Call, 0, len(a.order))
	for _, idx := range a.order {
		out = append(out, *a.byIdx[idx])
	}
	return out
}
