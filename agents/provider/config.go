/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"cloud.google.com/go/compute/metadata"
	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// DefaultMaxDepth bounds tool-call recursion when AGENTFLOW_MAX_DEPTH is unset.
const DefaultMaxDepth = 16

// Config holds vendor credentials and endpoints.
type Config struct {
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	AnthropicKey  string `env:"ANTHROPIC_API_KEY"`
	GoogleKey     string `env:"GOOGLE_API_KEY"`
	GeminiKey     string `env:"GEMINI_API_KEY"`
	XAIKey        string `env:"XAI_API_KEY"`
	DeepSeekKey   string `env:"DEEPSEEK_API_KEY"`
	LlamaKey      string `env:"LLAMA_API_KEY"`

	// Vertex AI, used for Claude and Gemini when a project is set.
	GCPProjectID string `env:"GOOGLE_CLOUD_PROJECT"`
	GCPRegion    string `env:"GOOGLE_CLOUD_LOCATION,default=us-east5"`
	UseVertexAI  bool   `env:"GOOGLE_GENAI_USE_VERTEXAI,default=false"`

	MaxDepth int `env:"AGENTFLOW_MAX_DEPTH,default=16"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("processing config: %w", err)
	}
	if cfg.MaxDepth <= 0 {
		return Config{}, fmt.Errorf("AGENTFLOW_MAX_DEPTH must be positive, got %d", cfg.MaxDepth)
	}
	if cfg.UseVertexAI && cfg.GCPProjectID == "" {
		if err := cfg.detectProject(ctx); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// detectProject reads the project from the metadata server when running on
// Google Cloud. Elsewhere it leaves the config untouched.
func (c *Config) detectProject(ctx context.Context) error {
	if !metadata.OnGCE() {
		return nil
	}
	projectID, err := metadata.ProjectIDWithContext(ctx)
	if err != nil {
		return fmt.Errorf("detecting project ID: %w", err)
	}
	clog.FromContext(ctx).With("project_id", projectID).Info("Detected Google Cloud project")
	c.GCPProjectID = projectID
	return nil
}

// LoadDotEnv loads KEY=VALUE files into the environment without overriding
// variables that are already set. Missing files are ignored. With no paths
// it reads ".env".
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

func (c Config) googleKey() string {
	if c.GoogleKey != "" {
		return c.GoogleKey
	}
	return c.GeminiKey
}
