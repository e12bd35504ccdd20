/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudemodel adapts the Anthropic Messages API to model.Adapter.
//
// The system instruction travels outside the conversation history, tool
// requests are tool_use content blocks and tool results go back as a single
// user message of tool_result blocks. Requests default to 1024 max tokens.
//
// Claude on Vertex AI is reached with WithVertex:
//
//	m, err := claudemodel.New("claude-sonnet-4@20250514",
//		claudemodel.WithVertex(ctx, "us-east5", "my-project"))
package claudemodel
