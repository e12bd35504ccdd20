/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records agent runs as traces backed by OpenTelemetry spans.

  - RunContext: workflow, step and agent names carried on the context
  - Trace[T]: one run from input to result, with its tool calls and handoffs
  - ToolCall[T]: one tool invocation within a trace
  - Tracer[T]: creates traces and receives them once complete

The agent manager starts a trace per run using the tracer found on the
context; without one, completed traces are logged through clog.

	tracer := agenttrace.ByCode[model.Response](func(tr *agenttrace.Trace[model.Response]) {
		log.Printf("%s used %d tools", tr.Agent, len(tr.ToolCalls))
	})
	ctx = agenttrace.WithTracer[model.Response](ctx, tracer)
*/
package agenttrace
