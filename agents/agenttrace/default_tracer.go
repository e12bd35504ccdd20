/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"github.com/chainguard-dev/clog"
)

// NewDefaultTracer creates a tracer that logs completed traces to clog.
func NewDefaultTracer[T any](ctx context.Context) Tracer[T] {
	logger := clog.FromContext(ctx)
	return ByCode[T](func(trace *Trace[T]) {
		log := logger.With(
			"trace_id", trace.ID,
			"agent", trace.Agent,
			"duration_ms", trace.Duration().Milliseconds(),
			"tool_calls", len(trace.ToolCalls),
			"handoffs", len(trace.Handoffs),
		)
		if trace.Error != nil {
			log.Warn("Agent run failed", "error", trace.Error, "trace", trace.String())
			return
		}
		log.Debug("Agent run completed", "trace", trace.String())
	})
}
