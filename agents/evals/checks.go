/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"fmt"
	"slices"
	"strings"

	"chainguard.dev/agentflow/agents/agenttrace"
	"chainguard.dev/agentflow/agents/model"
)

// ExactToolCalls fails unless the run made exactly n tool calls.
func ExactToolCalls(n int) Check {
	return func(o Observer, tr *Trace) {
		if got := len(tr.ToolCalls); got != n {
			o.Fail(fmt.Sprintf("tool call count: got = %d, wanted = %d", got, n))
		}
	}
}

// MinToolCalls fails if the run made fewer than n tool calls.
func MinToolCalls(n int) Check {
	return func(o Observer, tr *Trace) {
		if got := len(tr.ToolCalls); got < n {
			o.Fail(fmt.Sprintf("tool call count: got = %d, wanted >= %d", got, n))
		}
	}
}

// MaxToolCalls fails if the run made more than n tool calls.
func MaxToolCalls(n int) Check {
	return func(o Observer, tr *Trace) {
		if got := len(tr.ToolCalls); got > n {
			o.Fail(fmt.Sprintf("tool call count: got = %d, wanted <= %d", got, n))
		}
	}
}

// OnlyTools fails on the first call to a tool outside names.
func OnlyTools(names ...string) Check {
	return func(o Observer, tr *Trace) {
		for _, tc := range tr.ToolCalls {
			if !slices.Contains(names, tc.Name) {
				o.Fail(fmt.Sprintf("unexpected tool call %q, only allowed: %v", tc.Name, names))
				return
			}
		}
	}
}

// RequiredTools fails unless every named tool was called at least once.
func RequiredTools(names ...string) Check {
	return func(o Observer, tr *Trace) {
		var missing []string
		for _, name := range names {
			if !slices.ContainsFunc(tr.ToolCalls, func(tc *agenttrace.ToolCall[model.Response]) bool {
				return tc.Name == name
			}) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			o.Fail(fmt.Sprintf("missing required tool calls: %v", missing))
		}
	}
}

// NoToolErrors fails for every tool call that ended in an error, including
// calls to unknown tools and calls with malformed arguments.
func NoToolErrors() Check {
	return func(o Observer, tr *Trace) {
		for _, tc := range tr.ToolCalls {
			if tc.Error != nil {
				o.Fail(fmt.Sprintf("tool call %s (%s) failed: %v", tc.ID, tc.Name, tc.Error))
			}
		}
	}
}

// ToolCall applies validate to every call of the named tool. The check fails
// if the tool was never called.
func ToolCall(name string, validate func(*agenttrace.ToolCall[model.Response]) error) Check {
	return func(o Observer, tr *Trace) {
		found := false
		for _, tc := range tr.ToolCalls {
			if tc.Name != name {
				continue
			}
			found = true
			if err := validate(tc); err != nil {
				o.Fail(fmt.Sprintf("tool call %s (%s): %v", tc.ID, name, err))
			}
		}
		if !found {
			o.Fail(fmt.Sprintf("no call to tool %q", name))
		}
	}
}

// NoError fails if the run itself returned an error.
func NoError() Check {
	return func(o Observer, tr *Trace) {
		if tr.Error != nil {
			o.Fail(fmt.Sprintf("run failed: %v", tr.Error))
		}
	}
}

// HandedOffTo fails unless control passed through the named agents in
// order. Other handoffs may occur in between.
func HandedOffTo(agents ...string) Check {
	return func(o Observer, tr *Trace) {
		i := 0
		for _, h := range tr.Handoffs {
			if i < len(agents) && h.To == agents[i] {
				i++
			}
		}
		if i < len(agents) {
			o.Fail(fmt.Sprintf("handoff chain: got = %v, wanted = %v", handoffTargets(tr), agents))
		}
	}
}

// NoHandoffs fails if any handoff occurred.
func NoHandoffs() Check {
	return func(o Observer, tr *Trace) {
		if len(tr.Handoffs) > 0 {
			o.Fail(fmt.Sprintf("unexpected handoffs: %v", handoffTargets(tr)))
		}
	}
}

// ResultContains fails unless the final answer contains every substring.
func ResultContains(subs ...string) Check {
	return func(o Observer, tr *Trace) {
		for _, s := range subs {
			if !strings.Contains(tr.Result.Content, s) {
				o.Fail(fmt.Sprintf("result does not contain %q", s))
			}
		}
	}
}

// Result applies validate to the final response of a successful run.
func Result(validate func(model.Response) error) Check {
	return func(o Observer, tr *Trace) {
		if tr.Error != nil {
			return
		}
		if err := validate(tr.Result); err != nil {
			o.Fail(fmt.Sprintf("result validation failed: %v", err))
		}
	}
}

// Summary logs a one-line description of the run.
func Summary() Check {
	return func(o Observer, tr *Trace) {
		o.Log(fmt.Sprintf("%s: %d tool calls, %d handoffs in %s", tr.Agent, len(tr.ToolCalls), len(tr.Handoffs), tr.Duration()))
	}
}

func handoffTargets(tr *Trace) []string {
	out := make([]string, 0, len(tr.Handoffs))
	for _, h := range tr.Handoffs {
		out = append(out, h.To)
	}
	return out
}
