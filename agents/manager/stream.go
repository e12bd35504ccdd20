/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package manager

import (
	"context"
	"iter"
	"strings"

	"chainguard.dev/agentflow/agents/agenttrace"
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/chainguard-dev/clog"
)

// RunStream runs the named agent and streams its final answer. The
// sequence is single-use; an error ends it.
//
// An agent at registry position 0 without tools is streamed directly.
// Otherwise one batch response detects tool calls. Without calls the
// answer is then streamed; with calls a single tool round runs and the
// model's follow-up is streamed, or on handoff the new agent is streamed.
func (m *Manager) RunStream(ctx context.Context, name string, in model.Input) iter.Seq2[model.Chunk, error] {
	return func(yield func(model.Chunk, error) bool) {
		ctx := m.traceContext(ctx, name)
		trace := agenttrace.StartTrace[model.Response](ctx, in.String())

		var (
			content strings.Builder
			calls   []toolcall.Call
			err     error
		)
		defer func() {
			trace.Complete(model.Response{Content: content.String(), ToolCalls: calls}, err)
		}()

		r := &run{m: m, trace: trace, input: in}
		for chunk, cerr := range r.stream(trace.Context(), name) {
			if cerr != nil {
				err = cerr
				yield(model.Chunk{}, cerr)
				return
			}
			content.WriteString(chunk.Content)
			calls = mergeCalls(calls, chunk.ToolCalls)
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

func (r *run) stream(ctx context.Context, name string) iter.Seq2[model.Chunk, error] {
	return func(yield func(model.Chunk, error) bool) {
		ctx := agenttrace.WithAgent(ctx, name)
		log := clog.FromContext(ctx).With("agent", name)

		a, err := r.m.Initialize(ctx, name, r.input)
		if err != nil {
			yield(model.Chunk{}, err)
			return
		}

		if idx, _ := r.m.Get(name); idx == 0 && len(a.Tools()) == 0 {
			log.Debug("Streaming directly")
			forward(a.StreamResponse(ctx), yield)
			return
		}

		resp, err := a.Response(ctx)
		if err != nil {
			yield(model.Chunk{}, err)
			return
		}
		r.recordTokens(ctx, a, resp)
		if len(resp.ToolCalls) == 0 {
			forward(a.StreamResponse(ctx), yield)
			return
		}

		next, err := r.round(ctx, a, resp)
		if err != nil {
			yield(model.Chunk{}, err)
			return
		}
		if next != nil {
			forward(r.stream(ctx, next.Name()), yield)
			return
		}
		forward(a.StreamResponse(ctx), yield)
	}
}

// mergeCalls folds streamed calls into calls. Adapters may resend the
// aggregated list on every chunk, so a call whose ID is already present
// replaces the earlier snapshot. Calls without an ID are appended.
func mergeCalls(calls, incoming []toolcall.Call) []toolcall.Call {
next:
	for _, c := range incoming {
		if c.ID != "" {
			for i := range calls {
				if calls[i].ID == c.ID {
					calls[i] = c
					continue next
				}
			}
		}
		calls = append(calls, c)
	}
	return calls
}

// forward relays seq to yield until either side stops.
func forward(seq iter.Seq2[model.Chunk, error], yield func(model.Chunk, error) bool) {
	for chunk, err := range seq {
		if !yield(chunk, err) || err != nil {
			return
		}
	}
}
