/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package provider builds model adapters from a model name and credentials
// read from the environment.
//
// The model name selects the vendor:
//   - "claude-*" uses Anthropic, through Vertex AI when GOOGLE_CLOUD_PROJECT is set
//   - "gemini-*" uses Google GenAI
//   - "grok-*" uses xAI
//   - "deepseek-*" uses DeepSeek
//   - "llama*" and "Llama*" use Llama API
//   - anything else uses OpenAI
//
// Usage:
//
//	_ = provider.LoadDotEnv()
//	cfg, err := provider.LoadConfig(ctx)
//	if err != nil {
//		return err
//	}
//	m, err := provider.New(ctx, cfg, "gpt-4o")
package provider
