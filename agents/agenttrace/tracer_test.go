/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"sync"
	"testing"
	"time"
)

type mockTracer[T any] struct {
	traces *[]*Trace[T]
}

func (m *mockTracer[T]) NewTrace(ctx context.Context, prompt string) *Trace[T] {
	return newTraceWithTracer[T](ctx, m, prompt)
}

func (m *mockTracer[T]) RecordTrace(trace *Trace[T]) {
	*m.traces = append(*m.traces, trace)
}

func TestTracerFromContext(t *testing.T) {
	var traces []*Trace[string]
	tracer := &mockTracer[string]{traces: &traces}
	ctx := WithTracer[string](context.Background(), tracer)

	if got := TracerFromContext[string](ctx); got != tracer {
		t.Errorf("TracerFromContext: got = %v, wanted = %v", got, tracer)
	}
	// Tracers are keyed by result type.
	if got := TracerFromContext[int](ctx); got == nil {
		t.Error("TracerFromContext[int]: got = nil, wanted = default tracer")
	}
	if got := TracerFromContext[string](context.Background()); got == nil {
		t.Error("TracerFromContext on empty context: got = nil, wanted = default tracer")
	}
}

func TestStartTraceUsesDefaultTracer(t *testing.T) {
	trace := StartTrace[string](WithAgent(context.Background(), "planner"), "plan a trip")
	if trace == nil {
		t.Fatal("StartTrace: got = nil")
	}
	if trace.ID == "" {
		t.Error("trace ID: got empty")
	}
	trace.StartToolCall("1", "search_flights", nil).Complete([]string{"LH123"}, nil)
	trace.Complete("booked", nil)
}

func TestByCodeHandsOffCompletedRuns(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []*Trace[string]
	)
	record := func(tr *Trace[string]) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, tr)
	}
	tracer := ByCode[string](record, nil, record)

	trace := tracer.NewTrace(WithAgent(context.Background(), "triage"), "refund please")
	trace.RecordHandoff("triage", "billing")
	trace.StartToolCall("c1", "issue_refund", map[string]any{"amount": 12}).Complete("ok", nil)
	trace.Complete("refund issued", nil)

	if len(seen) != 2 {
		t.Fatalf("callbacks: got = %d, wanted = 2", len(seen))
	}
	for _, tr := range seen {
		if tr != trace {
			t.Errorf("callback trace: got = %p, wanted = %p", tr, trace)
		}
	}
	if got := trace.Handoffs[0].To; got != "billing" {
		t.Errorf("handoff target: got = %q, wanted = %q", got, "billing")
	}
	if got := trace.Result; got != "refund issued" {
		t.Errorf("result: got = %q, wanted = %q", got, "refund issued")
	}
}

func TestByCodeCallbacksRunInParallel(t *testing.T) {
	started := make(chan struct{}, 2)
	proceed := make(chan struct{})
	block := func(*Trace[string]) {
		started <- struct{}{}
		<-proceed
	}
	trace := ByCode[string](block, block).NewTrace(context.Background(), "p")

	done := make(chan struct{})
	go func() {
		trace.Complete("r", nil)
		close(done)
	}()

	timeout := time.After(time.Second)
	for range 2 {
		select {
		case <-started:
		case <-timeout:
			t.Fatal("callbacks did not start in parallel")
		}
	}
	close(proceed)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Complete did not return")
	}
}

func TestToolCallDuration(t *testing.T) {
	trace := ByCode[string]().NewTrace(context.Background(), "p")
	tc := trace.StartToolCall("1", "sleep", nil)
	time.Sleep(5 * time.Millisecond)
	tc.Complete(nil, nil)

	if tc.Duration() < 5*time.Millisecond {
		t.Errorf("Duration: got = %v, wanted >= 5ms", tc.Duration())
	}
	if trace.Duration() < tc.Duration() {
		t.Errorf("Duration of open trace: got = %v, wanted >= %v", trace.Duration(), tc.Duration())
	}
}
