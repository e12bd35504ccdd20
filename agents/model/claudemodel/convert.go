/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudemodel

import (
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/anthropics/anthropic-sdk-go"
)

// toMessages converts canonical history into Anthropic messages. System
// messages found in the history are returned separately. Tool results are
// folded into the user turn that follows the assistant's tool_use blocks,
// whichever vendor shape they were recorded in.
func toMessages(msgs []model.Message) ([]anthropic.MessageParam, []string) {
	var (
		out     []anthropic.MessageParam
		system  []string
		pending []anthropic.ContentBlockParamUnion
	)
	flush := func() {
		if len(pending) > 0 {
			out = append(out, anthropic.NewUserMessage(pending...))
			pending = nil
		}
	}

	for _, msg := range msgs {
		switch msg.Role {
		case model.RoleSystem:
			system = append(system, msg.Content)

		case model.RoleTool:
			if msg.ToolCallID != "" {
				pending = append(pending, toolResult(msg.ToolCallID, msg.Content))
			}
			for _, b := range msg.Blocks {
				if b.Type == model.BlockToolResult || b.Type == model.BlockFunctionResponse {
					pending = append(pending, toolResult(b.ID, b.Result))
				}
			}

		case model.RoleUser:
			blocks := pending
			pending = nil
			for _, b := range msg.Blocks {
				switch b.Type {
				case model.BlockToolResult, model.BlockFunctionResponse:
					blocks = append(blocks, toolResult(b.ID, b.Result))
				case model.BlockText:
					if b.Text != "" {
						blocks = append(blocks, anthropic.NewTextBlock(b.Text))
					}
				}
			}
			if msg.Content != "" || len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			out = append(out, anthropic.NewUserMessage(blocks...))

		case model.RoleAssistant:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, b := range msg.Blocks {
				switch b.Type {
				case model.BlockText:
					if b.Text != "" {
						blocks = append(blocks, anthropic.NewTextBlock(b.Text))
					}
				case model.BlockToolUse, model.BlockFunctionCall:
					blocks = append(blocks, toolUse(toolcall.Call{ID: b.ID, Name: b.Name, Arguments: b.Input}))
				}
			}
			for _, c := range msg.ToolCalls {
				blocks = append(blocks, toolUse(c))
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		}
	}
	flush()
	return out, system
}

func toolResult(id, result string) anthropic.ContentBlockParamUnion {
	return anthropic.ContentBlockParamUnion{
		OfToolResult: &anthropic.ToolResultBlockParam{
			ToolUseID: id,
			Content: []anthropic.ToolResultBlockParamContentUnion{{
				OfText: &anthropic.TextBlockParam{Text: result},
			}},
		},
	}
}

func toolUse(c toolcall.Call) anthropic.ContentBlockParamUnion {
	args, err := c.Args()
	if err != nil {
		args = map[string]any{}
	}
	return anthropic.ContentBlockParamUnion{
		OfToolUse: &anthropic.ToolUseBlockParam{
			ID:    c.ID,
			Name:  c.Name,
			Input: args,
		},
	}
}

func toTools(defs []toolcall.Definition) []anthropic.ToolUnionParam {
	if len(defs) == 0 {
		return nil
	}
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		props, required := d.Properties()
		tool := &anthropic.ToolParam{
			Name: d.Name,
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: props,
				Required:   required,
			},
		}
		if d.Description != "" {
			tool.Description = anthropic.String(d.Description)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: tool})
	}
	return out
}
