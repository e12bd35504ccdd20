/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals_test

import (
	"context"
	"errors"
	"testing"

	"chainguard.dev/agentflow/agents/agenttrace"
	"chainguard.dev/agentflow/agents/evals"
	"chainguard.dev/agentflow/agents/model"
	"github.com/google/go-cmp/cmp"
)

// record builds a completed trace of agent "calc" and evaluates checks on it.
func record(t *testing.T, build func(*evals.Trace), result model.Response, runErr error, checks ...evals.Check) *evals.Collector {
	t.Helper()
	obs := evals.NewCollector()
	ctx := agenttrace.WithAgent(context.Background(), "calc")
	tr := evals.Tracer(obs, checks...).NewTrace(ctx, "1+1")
	if build != nil {
		build(tr)
	}
	tr.Complete(result, runErr)
	if got := obs.Total(); got != 1 {
		t.Fatalf("Total: got = %d, wanted = 1", got)
	}
	return obs
}

func tools(names ...string) func(*evals.Trace) {
	return func(tr *evals.Trace) {
		for i, n := range names {
			tr.StartToolCall(string(rune('a'+i)), n, nil).Complete("ok", nil)
		}
	}
}

func TestChecks(t *testing.T) {
	failing := func(tr *evals.Trace) {
		tr.StartToolCall("a", "add", nil).Complete(nil, errors.New("boom"))
		tr.BadToolCall("b", "nope", nil, errors.New("unknown tool: \"nope\""))
	}
	handoffs := func(tr *evals.Trace) {
		tr.RecordHandoff("calc", "triage")
		tr.RecordHandoff("triage", "billing")
	}

	tests := []struct {
		name   string
		build  func(*evals.Trace)
		result model.Response
		err    error
		check  evals.Check
		want   []string
	}{{
		name:  "exact ok",
		build: tools("add", "add"),
		check: evals.ExactToolCalls(2),
	}, {
		name:  "exact mismatch",
		build: tools("add"),
		check: evals.ExactToolCalls(2),
		want:  []string{"tool call count: got = 1, wanted = 2"},
	}, {
		name:  "min",
		check: evals.MinToolCalls(1),
		want:  []string{"tool call count: got = 0, wanted >= 1"},
	}, {
		name:  "max",
		build: tools("add", "add", "add"),
		check: evals.MaxToolCalls(2),
		want:  []string{"tool call count: got = 3, wanted <= 2"},
	}, {
		name:  "only tools",
		build: tools("add", "sub", "mul"),
		check: evals.OnlyTools("add", "mul"),
		want:  []string{`unexpected tool call "sub", only allowed: [add mul]`},
	}, {
		name:  "required tools",
		build: tools("add"),
		check: evals.RequiredTools("sub", "add", "div"),
		want:  []string{"missing required tool calls: [div sub]"},
	}, {
		name:  "tool errors",
		build: failing,
		check: evals.NoToolErrors(),
		want: []string{
			"tool call a (add) failed: boom",
			`tool call b (nope) failed: unknown tool: "nope"`,
		},
	}, {
		name:  "tool call validated",
		build: tools("add", "sub", "add"),
		check: evals.ToolCall("add", func(tc *agenttrace.ToolCall[model.Response]) error {
			if tc.ID == "c" {
				return errors.New("bad")
			}
			return nil
		}),
		want: []string{"tool call c (add): bad"},
	}, {
		name:  "tool call missing",
		check: evals.ToolCall("add", func(*agenttrace.ToolCall[model.Response]) error { return nil }),
		want:  []string{`no call to tool "add"`},
	}, {
		name:  "run error",
		err:   errors.New("vendor down"),
		check: evals.NoError(),
		want:  []string{"run failed: vendor down"},
	}, {
		name:  "handoff chain",
		build: handoffs,
		check: evals.HandedOffTo("triage", "billing"),
	}, {
		name:  "handoff subsequence",
		build: handoffs,
		check: evals.HandedOffTo("billing"),
	}, {
		name:  "handoff out of order",
		build: handoffs,
		check: evals.HandedOffTo("billing", "triage"),
		want:  []string{"handoff chain: got = [triage billing], wanted = [billing triage]"},
	}, {
		name:  "no handoffs",
		build: handoffs,
		check: evals.NoHandoffs(),
		want:  []string{"unexpected handoffs: [triage billing]"},
	}, {
		name:   "result contains",
		result: model.Response{Content: "the answer is 2"},
		check:  evals.ResultContains("answer", "3"),
		want:   []string{`result does not contain "3"`},
	}, {
		name:   "result validated",
		result: model.Response{Content: "2"},
		check: evals.Result(func(r model.Response) error {
			if r.Content != "2" {
				return errors.New("wrong")
			}
			return nil
		}),
	}, {
		name: "result skipped on error",
		err:  errors.New("x"),
		check: evals.Result(func(model.Response) error {
			return errors.New("never")
		}),
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := record(t, tt.build, tt.result, tt.err, tt.check)
			if diff := cmp.Diff(tt.want, obs.Failures()); diff != "" {
				t.Errorf("Failures: (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSummaryLogs(t *testing.T) {
	obs := record(t, tools("add"), model.Response{}, nil, evals.Summary())
	logs := obs.Logs()
	if len(logs) != 1 {
		t.Fatalf("Logs: got = %v, wanted one entry", logs)
	}
	if !obs.Passed() {
		t.Errorf("Passed: got = false, failures = %v", obs.Failures())
	}
}

func TestPrefixed(t *testing.T) {
	inner := evals.NewCollector()
	obs := evals.Prefixed(inner, "suite")
	evals.Inject(obs, evals.MinToolCalls(1))(agenttrace.ByCode[model.Response]().NewTrace(context.Background(), "p"))

	if diff := cmp.Diff([]string{"suite: tool call count: got = 0, wanted >= 1"}, inner.Failures()); diff != "" {
		t.Errorf("Failures: (-want +got):\n%s", diff)
	}
	if got := obs.Total(); got != 1 {
		t.Errorf("Total: got = %d, wanted = 1", got)
	}
}
