/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaimodel adapts the OpenAI Chat Completions API, and the
// OpenAI-compatible endpoints of xAI Grok, DeepSeek and Llama API, to
// model.Adapter.
//
//	m, err := openaimodel.New("gpt-4o", openaimodel.WithAPIKey(key))
//	g, err := openaimodel.NewGrok("grok-2-latest", openaimodel.WithAPIKey(xaiKey))
package openaimodel
