/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudemodel_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/model/claudemodel"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toolUseMessage = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-5",
  "stop_reason": "tool_use",
  "content": [
    {"type": "text", "text": "Let me add those."},
    {"type": "tool_use", "id": "toolu_1", "name": "add", "input": {"a": 1, "b": 2}}
  ],
  "usage": {"input_tokens": 20, "output_tokens": 9}
}`

func newModel(t *testing.T, handler http.HandlerFunc, opts ...claudemodel.Option) *claudemodel.Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]claudemodel.Option{
		claudemodel.WithAPIKey("test-key"),
		claudemodel.WithBaseURL(srv.URL + "/"),
		claudemodel.WithRequestOptions(option.WithMaxRetries(0)),
	}, opts...)
	m, err := claudemodel.New("claude-sonnet-4-5", opts...)
	require.NoError(t, err)
	return m
}

func TestNewValidation(t *testing.T) {
	_, err := claudemodel.New("")
	assert.Error(t, err)

	_, err = claudemodel.New("claude-sonnet-4-5", claudemodel.WithMaxTokens(0))
	assert.Error(t, err)

	_, err = claudemodel.New("claude-sonnet-4-5", claudemodel.WithTemperature(1.5))
	assert.Error(t, err)

	_, err = claudemodel.New("claude-sonnet-4-5", claudemodel.WithVertex(context.Background(), "", "proj"))
	assert.Error(t, err)
}

func TestSystemMessageStaysOutOfHistory(t *testing.T) {
	m, err := claudemodel.New("claude-sonnet-4-5", claudemodel.WithAPIKey("k"))
	require.NoError(t, err)

	m.SetSystemMessage("first")
	m.SetSystemMessage("second")
	require.NoError(t, m.SetUserMessage(model.Text("hi")))

	assert.Equal(t, "second", m.SystemMessage())
	assert.Equal(t, []model.Message{{Role: model.RoleUser, Content: "hi"}}, m.Messages())
	assert.Equal(t, model.Anthropic, m.Kind())
}

func TestGenerateResponse(t *testing.T) {
	var body map[string]any
	m := newModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, toolUseMessage)
	})

	m.SetSystemMessage("You add numbers.")
	require.NoError(t, m.SetUserMessage(model.Text("1+2?")))
	m.SetTools([]toolcall.Definition{{
		Name:        "add",
		Description: "Add two integers",
		Parameters:  []toolcall.Parameter{{Name: "a", Type: "integer", Required: true}, {Name: "b", Type: "integer", Required: true}},
	}})

	resp, err := m.GenerateResponse(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Let me add those.", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "add", resp.ToolCalls[0].Name)
	assert.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, resp.ToolCalls[0].Arguments)
	assert.Equal(t, model.Usage{PromptTokens: 20, CompletionTokens: 9}, resp.Usage)

	assert.EqualValues(t, claudemodel.DefaultMaxTokens, body["max_tokens"])
	system, ok := body["system"].([]any)
	require.True(t, ok, "system should be a list of text blocks")
	assert.Equal(t, "You add numbers.", system[0].(map[string]any)["text"])
	tools := body["tools"].([]any)
	assert.Equal(t, "add", tools[0].(map[string]any)["name"])

	// The round trip back into history uses tool_use and tool_result blocks.
	asst := m.AssistantMessage(resp)
	require.Len(t, asst, 1)
	assert.Equal(t, model.RoleAssistant, asst[0].Role)
	require.Len(t, asst[0].Blocks, 2)
	assert.Equal(t, model.BlockToolUse, asst[0].Blocks[1].Type)

	tool := m.ToolMessage([]toolcall.Response{{ID: "toolu_1", Name: "add", Result: "3"}, {ID: "toolu_2", Name: "add", Result: "4"}})
	require.Len(t, tool, 1)
	assert.Equal(t, model.RoleUser, tool[0].Role)
	assert.Len(t, tool[0].Blocks, 2)
}

func TestGenerateResponseAPIError(t *testing.T) {
	m := newModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	})
	require.NoError(t, m.SetUserMessage(model.Text("hi")))

	_, err := m.GenerateResponse(context.Background())
	assert.ErrorContains(t, err, "generating response")
}

func TestGenerateStreamResponse(t *testing.T) {
	events := []string{
		`{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5","content":[],"usage":{"input_tokens":5,"output_tokens":0}}}`,
		`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`,
		`{"type":"content_block_stop","index":0}`,
		`{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_9","name":"lookup","input":{}}}`,
		`{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"q\":"}}`,
		`{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"\"go\"}"}}`,
		`{"type":"content_block_stop","index":1}`,
		`{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":12}}`,
		`{"type":"message_stop"}`,
	}
	m := newModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, e := range events {
			var typ struct{ Type string }
			_ = json.Unmarshal([]byte(e), &typ)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", typ.Type, e)
		}
	})
	require.NoError(t, m.SetUserMessage(model.Text("hi")))

	var (
		content   string
		fragments []string
		headers   int
	)
	for chunk, err := range m.GenerateStreamResponse(context.Background()) {
		require.NoError(t, err)
		content += chunk.Content
		for _, c := range chunk.ToolCalls {
			assert.Equal(t, "toolu_9", c.ID)
			assert.Equal(t, "lookup", c.Name)
			if c.Arguments == nil {
				headers++
				continue
			}
			fragments = append(fragments, c.Arguments.(string))
		}
	}

	assert.Equal(t, "Hello", content)
	assert.Equal(t, 1, headers)
	assert.Equal(t, []string{`{"q":`, `"go"}`}, fragments)
}
