/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudemodel

import (
	"encoding/json"
	"testing"

	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMessagesFoldsToolResults(t *testing.T) {
	history := []model.Message{
		{Role: model.RoleSystem, Content: "be brief"},
		{Role: model.RoleUser, Content: "weather?"},
		{Role: model.RoleAssistant, ToolCalls: []toolcall.Call{
			{ID: "c1", Name: "weather", Arguments: `{"city":"Oslo"}`},
			{ID: "c2", Name: "weather", Arguments: `{"city":"Rome"}`},
		}},
		// OpenAI shape: one tool message per result.
		{Role: model.RoleTool, Content: "cold", ToolCallID: "c1"},
		{Role: model.RoleTool, Content: "warm", ToolCallID: "c2"},
		{Role: model.RoleAssistant, Content: "Oslo is cold, Rome is warm."},
	}

	msgs, system := toMessages(history)
	assert.Equal(t, []string{"be brief"}, system)
	require.Len(t, msgs, 4)

	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
	require.Len(t, msgs[1].Content, 2)
	require.NotNil(t, msgs[1].Content[0].OfToolUse)
	assert.Equal(t, map[string]any{"city": "Oslo"}, msgs[1].Content[0].OfToolUse.Input)

	assert.Equal(t, "user", string(msgs[2].Role))
	require.Len(t, msgs[2].Content, 2)
	require.NotNil(t, msgs[2].Content[1].OfToolResult)
	assert.Equal(t, "c2", msgs[2].Content[1].OfToolResult.ToolUseID)

	assert.Equal(t, "assistant", string(msgs[3].Role))
}

func TestToTools(t *testing.T) {
	assert.Nil(t, toTools(nil))

	tools := toTools([]toolcall.Definition{{
		Name:       "search",
		Parameters: []toolcall.Parameter{{Name: "q", Required: true}, {Name: "limit", Type: "integer"}},
	}})
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "search", tools[0].OfTool.Name)
	assert.Equal(t, []string{"q"}, tools[0].OfTool.InputSchema.Required)
}

func TestToToolsMatchesRenderedKwarg(t *testing.T) {
	base, err := model.NewBase("claude-test", Format)
	require.NoError(t, err)
	base.SetTools([]toolcall.Definition{{
		Name:        "search",
		Description: "Search the index",
		Parameters:  []toolcall.Parameter{{Name: "q", Required: true}, {Name: "limit", Type: "integer"}},
	}})

	toJSON := func(v any) []map[string]any {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		var out []map[string]any
		require.NoError(t, json.Unmarshal(raw, &out))
		return out
	}
	rendered := toJSON(base.Kwargs()["tools"])
	sent := toJSON(toTools(base.Tools()))
	require.Len(t, sent, len(rendered))

	for i := range sent {
		assert.Equal(t, rendered[i]["name"], sent[i]["name"])
		assert.Equal(t, rendered[i]["description"], sent[i]["description"])
		want := rendered[i]["input_schema"].(map[string]any)
		got := sent[i]["input_schema"].(map[string]any)
		assert.Equal(t, want["properties"], got["properties"])
		assert.Equal(t, want["required"], got["required"])
	}
}
