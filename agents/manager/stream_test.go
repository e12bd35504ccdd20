/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package manager_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chainguard.dev/agentflow/agents/agenttrace"
	"chainguard.dev/agentflow/agents/manager"
	"chainguard.dev/agentflow/agents/metrics"
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/model/modeltest"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func drain(t *testing.T, m *manager.Manager, name, input string) (string, error) {
	t.Helper()
	var sb strings.Builder
	for chunk, err := range m.RunStream(context.Background(), name, model.Text(input)) {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk.Content)
	}
	return sb.String(), nil
}

func TestRunStreamDirect(t *testing.T) {
	stub := modeltest.New("m").WithStreams([]model.Chunk{{Content: "Hel"}, {Content: "lo"}})
	m := newManager(t)
	require.NoError(t, m.Add(newAgent(t, "chat", stub)))

	got, err := drain(t, m, "chat", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
	assert.Equal(t, 0, stub.Calls)
	assert.Equal(t, 1, stub.StreamCalls)
}

func TestRunStreamTracesEachCallOnce(t *testing.T) {
	var traces []*agenttrace.Trace[model.Response]
	tracer := agenttrace.ByCode[model.Response](func(tr *agenttrace.Trace[model.Response]) {
		traces = append(traces, tr)
	})
	// The aggregated call list is repeated on every chunk, growing as
	// arguments arrive.
	stub := modeltest.New("m").WithStreams([]model.Chunk{
		{Content: "a", ToolCalls: []toolcall.Call{call("c1", "add", `{"a":1`)}},
		{Content: "b", ToolCalls: []toolcall.Call{call("c1", "add", `{"a":1,"b":2}`)}},
		{Content: "c", ToolCalls: []toolcall.Call{call("c1", "add", `{"a":1,"b":2}`), call("c2", "add", "{}")}},
	})
	m := newManager(t, manager.WithTracer(tracer))
	require.NoError(t, m.Add(newAgent(t, "chat", stub)))

	got, err := drain(t, m, "chat", "hi")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	require.Len(t, traces, 1)
	calls := traces[0].Result.ToolCalls
	require.Len(t, calls, 2)
	assert.Equal(t, "c1", calls[0].ID)
	assert.JSONEq(t, `{"a":1,"b":2}`, calls[0].ArgumentString())
	assert.Equal(t, "c2", calls[1].ID)
}

func TestRunStreamWithoutToolCalls(t *testing.T) {
	stub := modeltest.New("m", model.Response{Content: "batch"}).
		WithStreams([]model.Chunk{{Content: "streamed"}})
	m := newManager(t)
	require.NoError(t, m.Add(newAgent(t, "calc", stub, addTool(t))))

	got, err := drain(t, m, "calc", "hi")
	require.NoError(t, err)
	assert.Equal(t, "streamed", got)
	assert.Equal(t, 1, stub.Calls)
	assert.Equal(t, 1, stub.StreamCalls)
}

func TestRunStreamFollowUp(t *testing.T) {
	stub := modeltest.New("m",
		model.Response{ToolCalls: []toolcall.Call{call("c1", "add", `{"a":2,"b":3}`)}},
	).WithStreams([]model.Chunk{{Content: "The answer"}, {Content: " is 5"}})
	m := newManager(t)
	require.NoError(t, m.Add(newAgent(t, "calc", stub, addTool(t))))

	got, err := drain(t, m, "calc", "2+3")
	require.NoError(t, err)
	assert.Equal(t, "The answer is 5", got)

	history := stub.Histories[1]
	require.Len(t, history, 4)
	assert.Equal(t, "5", history[3].Content)
}

func TestRunStreamHandoff(t *testing.T) {
	targetStub := modeltest.New("b", model.Response{Content: "batch"}).
		WithStreams([]model.Chunk{{Content: "from B"}})
	target := newAgent(t, "B", targetStub)
	handoff := function(t, "transfer", func(context.Context, map[string]any) (any, error) { return target, nil })

	stub := modeltest.New("a", model.Response{ToolCalls: []toolcall.Call{call("c1", "transfer", "{}")}})
	m := newManager(t)
	require.NoError(t, m.Add(newAgent(t, "A", stub, handoff)))

	got, err := drain(t, m, "A", "question")
	require.NoError(t, err)
	assert.Equal(t, "from B", got)
	assert.Equal(t, 0, stub.StreamCalls)
	assert.Equal(t, 1, targetStub.StreamCalls)
	assert.Len(t, m.Agents(), 2)
}

func TestRunStreamErrors(t *testing.T) {
	_, err := drain(t, newManager(t), "ghost", "hi")
	assert.ErrorIs(t, err, manager.ErrAgentNotFound)

	boom := errors.New("vendor down")
	m := newManager(t)
	require.NoError(t, m.Add(newAgent(t, "a", modeltest.New("m").WithError(boom))))
	_, err = drain(t, m, "a", "hi")
	assert.ErrorIs(t, err, boom)
}

func TestRunStreamStopsEarly(t *testing.T) {
	stub := modeltest.New("m").WithStreams([]model.Chunk{{Content: "a"}, {Content: "b"}, {Content: "c"}})
	m := newManager(t)
	require.NoError(t, m.Add(newAgent(t, "chat", stub)))

	var got []string
	for chunk, err := range m.RunStream(context.Background(), "chat", model.Text("hi")) {
		require.NoError(t, err)
		got = append(got, chunk.Content)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRunRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mt := metrics.NewWithProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), "test")

	target := newAgent(t, "B", modeltest.New("b", model.Response{Content: "done"}))
	handoff := function(t, "transfer", func(context.Context, map[string]any) (any, error) { return target, nil })
	stub := modeltest.New("a",
		model.Response{
			ToolCalls: []toolcall.Call{call("c1", "add", `{"a":1,"b":2}`)},
			Usage:     model.Usage{PromptTokens: 10, CompletionTokens: 4},
		},
		model.Response{ToolCalls: []toolcall.Call{call("c2", "transfer", "{}")}},
	)
	m := newManager(t, manager.WithMetrics(mt))
	require.NoError(t, m.Add(newAgent(t, "A", stub, addTool(t), handoff)))

	_, err := m.Run(context.Background(), "A", model.Text("go"))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, mm := range sm.Metrics {
			if sum, ok := mm.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[mm.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), totals["agentflow.tool.calls"])
	assert.Equal(t, int64(1), totals["agentflow.handoffs"])
	assert.Equal(t, int64(10), totals["agentflow.token.prompt"])
	assert.Equal(t, int64(4), totals["agentflow.token.completion"])
}

