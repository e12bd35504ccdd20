/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// RunContext describes where an agent run happens: which agent, and for
// workflow runs, which workflow and step.
type RunContext struct {
	Workflow string `json:"workflow,omitempty"`
	Step     string `json:"step,omitempty"`
	Agent    string `json:"agent,omitempty"`
}

// EnrichAttributes appends the run context to metric attributes. Workflow,
// step and agent names are chosen by the application, so their cardinality
// is bounded.
func (r RunContext) EnrichAttributes(baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(baseAttrs), len(baseAttrs)+3)
	copy(attrs, baseAttrs)
	if r.Workflow != "" {
		attrs = append(attrs, attribute.String("workflow", r.Workflow))
	}
	if r.Step != "" {
		attrs = append(attrs, attribute.String("step", r.Step))
	}
	if r.Agent != "" {
		attrs = append(attrs, attribute.String("agent", r.Agent))
	}
	return attrs
}

type runContextKey struct{}

// WithRunContext adds the run context to ctx.
func WithRunContext(ctx context.Context, rc RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// GetRunContext retrieves the run context from ctx.
func GetRunContext(ctx context.Context) RunContext {
	if rc, ok := ctx.Value(runContextKey{}).(RunContext); ok {
		return rc
	}
	return RunContext{}
}

// WithAgent returns ctx with the agent of its run context replaced.
func WithAgent(ctx context.Context, agent string) context.Context {
	rc := GetRunContext(ctx)
	rc.Agent = agent
	return WithRunContext(ctx, rc)
}
