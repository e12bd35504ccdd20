/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaimodel

import (
	"encoding/json"
	"testing"

	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/google/go-cmp/cmp"
)

// wire marshals converted messages back into generic JSON for inspection.
func wire(t *testing.T, msgs []model.Message) []map[string]any {
	t.Helper()
	raw, err := json.Marshal(toMessages(msgs))
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	return out
}

func TestToMessagesOpenAIShape(t *testing.T) {
	got := wire(t, []model.Message{
		{Role: model.RoleSystem, Content: "be terse"},
		{Role: model.RoleUser, Content: "add 1 and 2"},
		{Role: model.RoleAssistant, ToolCalls: []toolcall.Call{{ID: "call_1", Name: "add", Arguments: `{"a":1,"b":2}`}}},
		{Role: model.RoleTool, Content: "3", ToolCallID: "call_1"},
		{Role: model.RoleAssistant, Content: "3"},
	})

	roles := make([]any, 0, len(got))
	for _, m := range got {
		roles = append(roles, m["role"])
	}
	if diff := cmp.Diff([]any{"system", "user", "assistant", "tool", "assistant"}, roles); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}

	calls, ok := got[2]["tool_calls"].([]any)
	if !ok || len(calls) != 1 {
		t.Fatalf("tool_calls = %#v", got[2]["tool_calls"])
	}
	call := calls[0].(map[string]any)
	fn := call["function"].(map[string]any)
	if call["id"] != "call_1" || call["type"] != "function" || fn["name"] != "add" || fn["arguments"] != `{"a":1,"b":2}` {
		t.Errorf("tool call = %#v", call)
	}
	if got[3]["tool_call_id"] != "call_1" || got[3]["content"] != "3" {
		t.Errorf("tool message = %#v", got[3])
	}
}

func TestToMessagesFromBlocks(t *testing.T) {
	// A history written by the Anthropic adapter.
	got := wire(t, []model.Message{
		{Role: model.RoleUser, Content: "weather?"},
		{Role: model.RoleAssistant, Blocks: []model.Block{
			{Type: model.BlockText, Text: "Checking."},
			{Type: model.BlockToolUse, ID: "tu_1", Name: "weather", Input: map[string]any{"city": "Oslo"}},
		}},
		{Role: model.RoleUser, Blocks: []model.Block{
			{Type: model.BlockToolResult, ID: "tu_1", Result: "cold"},
		}},
	})

	if len(got) != 3 {
		t.Fatalf("len = %d, wanted 3: %#v", len(got), got)
	}
	if got[1]["content"] != "Checking." {
		t.Errorf("assistant content = %#v", got[1]["content"])
	}
	call := got[1]["tool_calls"].([]any)[0].(map[string]any)
	if args := call["function"].(map[string]any)["arguments"]; args != `{"city":"Oslo"}` {
		t.Errorf("arguments = %#v", args)
	}
	if got[2]["role"] != "tool" || got[2]["tool_call_id"] != "tu_1" || got[2]["content"] != "cold" {
		t.Errorf("tool result = %#v", got[2])
	}
}

func TestToToolsStrictOnlyWhenAllRequired(t *testing.T) {
	tools := toTools([]toolcall.Definition{{
		Name:        "add",
		Description: "Add numbers",
		Parameters: []toolcall.Parameter{
			{Name: "a", Type: "integer", Required: true},
			{Name: "b", Type: "integer", Required: true},
		},
	}, {
		Name:       "search",
		Parameters: []toolcall.Parameter{{Name: "q", Required: true}, {Name: "limit", Type: "integer"}},
	}})

	raw, err := json.Marshal(tools)
	if err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}

	add := got[0]["function"].(map[string]any)
	if add["strict"] != true {
		t.Errorf("add should be strict: %#v", add)
	}
	params := add["parameters"].(map[string]any)
	if params["additionalProperties"] != false || params["type"] != "object" {
		t.Errorf("parameters = %#v", params)
	}

	search := got[1]["function"].(map[string]any)
	if _, ok := search["strict"]; ok {
		t.Errorf("search has optional parameters and must not be strict: %#v", search)
	}
	if toTools(nil) != nil {
		t.Error("toTools(nil) should be nil")
	}
}

func TestToToolsMatchesRenderedKwarg(t *testing.T) {
	defs := []toolcall.Definition{{
		Name:        "add",
		Description: "Add numbers",
		Parameters: []toolcall.Parameter{
			{Name: "a", Type: "integer", Required: true},
			{Name: "b", Type: "integer", Required: true},
		},
	}, {
		Name:        "search",
		Description: "Search the index",
		Parameters:  []toolcall.Parameter{{Name: "q", Required: true}, {Name: "limit", Type: "integer"}},
	}}

	base, err := model.NewBase("gpt-test", toolcall.DefaultFormat)
	if err != nil {
		t.Fatal(err)
	}
	base.SetTools(defs)

	toJSON := func(v any) []map[string]any {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		var out []map[string]any
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatal(err)
		}
		return out
	}
	rendered := toJSON(base.Kwargs()["tools"])
	sent := toJSON(toTools(base.Tools()))
	if len(rendered) != len(sent) {
		t.Fatalf("rendered %d tools, sent %d", len(rendered), len(sent))
	}

	for i := range sent {
		want := rendered[i]["function"].(map[string]any)
		got := sent[i]["function"].(map[string]any)
		// The SDK omits a false strict flag.
		gotStrict, _ := got["strict"].(bool)
		if want["strict"] != gotStrict {
			t.Errorf("%s: rendered strict = %v, sent strict = %v", want["name"], want["strict"], gotStrict)
		}
		for _, key := range []string{"name", "description", "parameters"} {
			if diff := cmp.Diff(want[key], got[key]); diff != "" {
				t.Errorf("%s: %s mismatch (-rendered +sent):\n%s", want["name"], key, diff)
			}
		}
	}
}

func TestAccumulator(t *testing.T) {
	var acc accumulator
	acc.add(0, "call_1", "lookup", `{"q":`)
	acc.add(1, "call_2", "add", `{"a":1}`)
	acc.add(0, "", "", `"go"}`)

	want := []toolcall.Call{
		{ID: "call_1", Name: "lookup", Arguments: `{"q":"go"}`},
		{ID: "call_2", Name: "add", Arguments: `{"a":1}`},
	}
	if diff := cmp.Diff(want, acc.calls()); diff != "" {
		t.Errorf("calls() mismatch (-want +got):\n%s", diff)
	}
}
