/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package provider

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/model/claudemodel"
	"chainguard.dev/agentflow/agents/model/googlemodel"
	"chainguard.dev/agentflow/agents/model/openaimodel"
	"chainguard.dev/agentflow/agents/retry"
	"github.com/chainguard-dev/clog"
)

// Factory builds a fresh adapter for a model name.
type Factory func(ctx context.Context, name string) (model.Adapter, error)

// Factory returns a Factory bound to c.
func (c Config) Factory() Factory {
	return func(ctx context.Context, name string) (model.Adapter, error) {
		return New(ctx, c, name)
	}
}

// New returns an adapter for the named model, picking the vendor from the
// name prefix. Every adapter retries transient vendor errors.
func New(ctx context.Context, cfg Config, name string) (model.Adapter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("unsupported model: %q", name)
	}
	lower := strings.ToLower(name)
	log := clog.FromContext(ctx).With("model", name)

	switch {
	case strings.HasPrefix(lower, "claude-"):
		opts := []claudemodel.Option{claudemodel.WithRetry(retry.Default())}
		if cfg.GCPProjectID != "" && (cfg.UseVertexAI || cfg.AnthropicKey == "") {
			log.With("project", cfg.GCPProjectID).Debug("Using Claude on Vertex AI")
			opts = append(opts, claudemodel.WithVertex(ctx, cfg.GCPRegion, cfg.GCPProjectID))
		} else if cfg.AnthropicKey != "" {
			opts = append(opts, claudemodel.WithAPIKey(cfg.AnthropicKey))
		}
		return adapter(claudemodel.New(name, opts...))

	case strings.HasPrefix(lower, "gemini-"):
		opts := []googlemodel.Option{googlemodel.WithRetry(retry.Default())}
		if cfg.UseVertexAI && cfg.GCPProjectID != "" {
			opts = append(opts, googlemodel.WithVertex(cfg.GCPProjectID, cfg.GCPRegion))
		} else if key := cfg.googleKey(); key != "" {
			opts = append(opts, googlemodel.WithAPIKey(key))
		}
		return adapter(googlemodel.New(ctx, name, opts...))

	case strings.HasPrefix(lower, "grok-"):
		return adapter(openaimodel.NewGrok(name, openAIOptions(cfg.XAIKey)...))

	case strings.HasPrefix(lower, "deepseek-"):
		return adapter(openaimodel.NewDeepSeek(name, openAIOptions(cfg.DeepSeekKey)...))

	case strings.HasPrefix(lower, "llama"):
		return adapter(openaimodel.NewLlama(name, openAIOptions(cfg.LlamaKey)...))

	default:
		opts := openAIOptions(cfg.OpenAIKey)
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openaimodel.WithBaseURL(cfg.OpenAIBaseURL))
		}
		return adapter(openaimodel.New(name, opts...))
	}
}

func openAIOptions(key string) []openaimodel.Option {
	opts := []openaimodel.Option{openaimodel.WithRetry(retry.Default())}
	if key != "" {
		opts = append(opts, openaimodel.WithAPIKey(key))
	}
	return opts
}

// adapter keeps a failed constructor from yielding a non-nil interface
// holding a nil pointer.
func adapter[T model.Adapter](m T, err error) (model.Adapter, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}
