/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaimodel

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"chainguard.dev/agentflow/agents/metrics"
	"chainguard.dev/agentflow/agents/retry"
	"github.com/openai/openai-go/option"
)

// Option configures a Model.
type Option func(*Model) error

// WithAPIKey sets the API key. Without it the SDK reads OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(m *Model) error {
		if key == "" {
			return errors.New("api key cannot be empty")
		}
		m.clientOpts = append(m.clientOpts, option.WithAPIKey(key))
		return nil
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(base string) Option {
	return func(m *Model) error {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base url %q", base)
		}
		m.baseURL = base
		m.clientOpts = append(m.clientOpts, option.WithBaseURL(base))
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

// WithRetry retries rate-limited and transient server errors.
func WithRetry(cfg retry.Config) Option {
	return func(m *Model) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid retry config: %w", err)
		}
		m.retryConfig = cfg
		return nil
	}
}

// WithMetrics records token usage on m.
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
