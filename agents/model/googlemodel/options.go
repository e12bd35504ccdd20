/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googlemodel

import (
	"errors"
	"fmt"
	"net/http"

	"chainguard.dev/agentflow/agents/metrics"
	"chainguard.dev/agentflow/agents/retry"
	"google.golang.org/genai"
)

// Option configures a Model.
type Option func(*Model) error

// WithAPIKey selects the Gemini API backend with the given key.
func WithAPIKey(key string) Option {
	return func(m *Model) error {
		if key == "" {
			return errors.New("api key cannot be empty")
		}
		m.clientConfig.APIKey = key
		m.clientConfig.Backend = genai.BackendGeminiAPI
		return nil
	}
}

// WithVertex selects the Vertex AI backend.
func WithVertex(projectID, region string) Option {
	return func(m *Model) error {
		if projectID == "" || region == "" {
			return fmt.Errorf("vertex requires project and region, got %q and %q", projectID, region)
		}
		m.clientConfig.Project = projectID
		m.clientConfig.Location = region
		m.clientConfig.Backend = genai.BackendVertexAI
		return nil
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(base string) Option {
	return func(m *Model) error {
		if base == "" {
			return errors.New("base url cannot be empty")
		}
		m.clientConfig.HTTPOptions.BaseURL = base
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Model) error {
		if c == nil {
			return errors.New("http client cannot be nil")
		}
		m.clientConfig.HTTPClient = c
		return nil
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float32) Option {
	return func(m *Model) error {
		if temp < 0.0 || temp > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", temp)
		}
		m.SetKwargs(map[string]any{"temperature": float64(temp)})
		return nil
	}
}

// WithMaxOutputTokens caps the response length.
func WithMaxOutputTokens(tokens int32) Option {
	return func(m *Model) error {
		if tokens <= 0 {
			return fmt.Errorf("max output tokens must be positive, got %d", tokens)
		}
		m.SetKwargs(map[string]any{"max_tokens": int64(tokens)})
		return nil
	}
}

// WithRetry retries quota exhaustion and transient server errors.
func WithRetry(cfg retry.Config) Option {
	return func(m *Model) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid retry config: %w", err)
		}
		m.retryConfig = cfg
		return nil
	}
}

// WithMetrics records token usage on mt.
func WithMetrics(mt *metrics.Agents) Option {
	return func(m *Model) error {
		m.metrics = mt
		return nil
	}
}

// WithKwargs sets initial call parameters (temperature, max_tokens, top_p).
func WithKwargs(kwargs map[string]any) Option {
	return func(m *Model) error {
		m.SetKwargs(kwargs)
		return nil
	}
}
