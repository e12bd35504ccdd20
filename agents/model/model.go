/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package model

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"chainguard.dev/agentflow/agents/toolcall"
)

// ErrInvalidMessage is returned when a message in a history cannot be
// represented by any vendor.
var ErrInvalidMessage = errors.New("invalid message")

// Role is the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// BlockType tags the content blocks used by vendors that carry structured
// content (Anthropic tool_use/tool_result, Gemini function parts).
type BlockType string

const (
	BlockText             BlockType = "text"
	BlockToolUse          BlockType = "tool_use"
	BlockToolResult       BlockType = "tool_result"
	BlockFunctionCall     BlockType = "function_call"
	BlockFunctionResponse BlockType = "function_response"
)

// Block is one structured content element of a Message.
type Block struct {
	Type BlockType
	Text string
	// ID is the tool call ID for tool_use, tool_result and function blocks.
	ID   string
	Name string
	// Input holds the call arguments for tool_use and function_call blocks.
	Input any
	// Result holds the tool output for tool_result and function_response blocks.
	Result string
}

// Message is one entry of a conversation history. Plain text messages only
// set Content; assistant turns that requested tools carry ToolCalls (OpenAI
// shape) or Blocks (Anthropic and Gemini shape); OpenAI tool results set
// ToolCallID.
type Message struct {
	Role       Role
	Content    string
	Blocks     []Block
	ToolCalls  []toolcall.Call
	ToolCallID string
}

// Validate reports whether the message is well formed.
func (m Message) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, m.Role)
	}
	for i, b := range m.Blocks {
		if b.Type == "" {
			return fmt.Errorf("%w: block %d of %s message has no type", ErrInvalidMessage, i, m.Role)
		}
	}
	return nil
}

// Kind identifies the vendor family of an adapter.
type Kind int

const (
	OpenAILike Kind = iota + 1
	Anthropic
	Genai
)

func (k Kind) String() string {
	switch k {
	case OpenAILike:
		return "openai"
	case Anthropic:
		return "anthropic"
	case Genai:
		return "genai"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Usage reports token consumption of a single model call.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Response is the normalised result of a non-streaming model call.
type Response struct {
	Content   string
	ToolCalls []toolcall.Call
	// Raw is the vendor SDK response, kept so adapters can rebuild the
	// assistant turn in their native shape.
	Raw   any
	Usage Usage
}

// Chunk is one element of a streamed model call.
type Chunk struct {
	Content   string
	ToolCalls []toolcall.Call
}

// Adapter is the uniform contract every vendor adapter implements. An
// adapter owns its conversation history, which is nil until a message has
// been set.
type Adapter interface {
	Kind() Kind
	Name() string

	Messages() []Message
	SetMessages(msgs []Message) error
	ClearMessages()
	Kwargs() map[string]any
	SetKwargs(kwargs map[string]any)

	SetSystemMessage(instruction string)
	SetUserMessage(in Input) error
	SetTools(defs []toolcall.Definition)
	SetToolChoice(def toolcall.Definition)

	GenerateResponse(ctx context.Context) (Response, error)
	// GenerateStreamResponse returns a finite, single-use sequence of chunks.
	// A non-nil error ends the sequence.
	GenerateStreamResponse(ctx context.Context) iter.Seq2[Chunk, error]

	ToolFormat() toolcall.Format
	KeysInToolOutput(call toolcall.Call) toolcall.Call
	AssistantMessage(resp Response) []Message
	ToolMessage(results []toolcall.Response) []Message
}
