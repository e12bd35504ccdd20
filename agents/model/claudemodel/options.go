/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudemodel

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"chainguard.dev/agentflow/agents/metrics"
	"chainguard.dev/agentflow/agents/retry"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
)

// Option configures a Model.
type Option func(*Model) error

// WithAPIKey sets the API key. Without it the SDK reads ANTHROPIC_API_KEY.
func WithAPIKey(key string) Option {
	return func(m *Model) error {
		if key == "" {
			return errors.New("api key cannot be empty")
		}
		m.clientOpts = append(m.clientOpts, option.WithAPIKey(key))
		return nil
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(base string) Option {
	return func(m *Model) error {
		if base == "" {
			return errors.New("base url cannot be empty")
		}
		m.clientOpts = append(m.clientOpts, option.WithBaseURL(base))
		return nil
	}
}

// WithVertex routes requests through Vertex AI using Google default credentials.
func WithVertex(ctx context.Context, region, projectID string) Option {
	return func(m *Model) error {
		if region == "" || projectID == "" {
			return fmt.Errorf("vertex requires region and project, got %q and %q", region, projectID)
		}
		m.clientOpts = append(m.clientOpts, vertex.WithGoogleAuth(ctx, region, projectID))
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Model) error {
		if c == nil {
			return errors.New("http client cannot be nil")
		}
		m.clientOpts = append(m.clientOpts, option.WithHTTPClient(c))
		return nil
	}
}

// WithRequestOptions passes raw SDK request options through.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(m *Model) error {
		m.clientOpts = append(m.clientOpts, opts...)
		return nil
	}
}

// WithMaxTokens sets the default response token budget.
func WithMaxTokens(tokens int64) Option {
	return func(m *Model) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		m.maxTokens = tokens
		return nil
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) Option {
	return func(m *Model) error {
		if temp < 0.0 || temp > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temp)
		}
		m.SetKwargs(map[string]any{"temperature": temp})
		return nil
	}
}

// WithRetry retries rate-limited, overloaded and transient server errors.
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
