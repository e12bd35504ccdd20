/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package blueprint

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"chainguard.dev/agentflow/agents/agent"
	"chainguard.dev/agentflow/agents/container"
	"chainguard.dev/agentflow/agents/manager"
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/model/modeltest"
	"chainguard.dev/agentflow/agents/toolcall"
	"chainguard.dev/agentflow/agents/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `
agents:
  - name: analyst
    model: gpt-4o
    instruction: Answer with data.
    kwargs:
      temperature: 0.2
    containers:
      - name: run_sql
        description: Run a SQL query
        image: cgr.dev/chainguard/sqlite
        command: [sqlite3, /data/db]
        max_output_tokens: 2000
        environment:
          - name: QUERY
            type: string
            description: The query to run
        return_to:
          agent: writer
          instruction: "Summarize these rows: {result}"
  - name: writer
    model: claude-sonnet-4-5
    instruction: Turn findings into prose.
  - name: fallback
    model: gemini-2.5-flash
workflows:
  - name: report
    description: Analyze then write
    steps:
      - name: analyze
        agent: analyst
        next:
          - step: polish
            when:
              field: status
              equals: polish
          - step: done
      - name: polish
        agent: fallback
      - name: done
        agent: writer
`

type fakeRuntime struct{ reqs []container.Request }

func (f *fakeRuntime) Run(_ context.Context, req container.Request) ([]byte, error) {
	f.reqs = append(f.reqs, req)
	return []byte("3 rows"), nil
}
func (f *fakeRuntime) Login(context.Context, container.Credentials) error { return nil }

func factoryFor(stubs map[string]*modeltest.Stub) func(context.Context, string) (model.Adapter, error) {
	return func(_ context.Context, name string) (model.Adapter, error) {
		s, ok := stubs[name]
		if !ok {
			return nil, errors.New("unknown model " + name)
		}
		return s, nil
	}
}

func newWorkflows(t *testing.T) *workflow.Manager {
	t.Helper()
	am, err := manager.New()
	require.NoError(t, err)
	wm, err := workflow.New(am)
	require.NoError(t, err)
	return wm
}

func TestLoad(t *testing.T) {
	bp, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, bp.Agents, 3)
	assert.Equal(t, "analyst", bp.Agents[0].Name)
	assert.Equal(t, 0.2, bp.Agents[0].Kwargs["temperature"])
	require.Len(t, bp.Agents[0].Containers, 1)
	assert.Equal(t, "writer", bp.Agents[0].Containers[0].ReturnTo.Agent)
	assert.Equal(t, []string{"sqlite3", "/data/db"}, bp.Agents[0].Containers[0].Command)
	assert.Equal(t, 2000, bp.Agents[0].Containers[0].MaxOutputTokens)

	require.Len(t, bp.Workflows, 1)
	assert.Equal(t, "status", bp.Workflows[0].Steps[0].Next[0].When.Field)
	assert.Nil(t, bp.Workflows[0].Steps[0].Next[1].When)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{{
		name: "unknown field",
		doc:  "agents:\n  - name: a\n    model: m\n    temprature: 1\n",
		want: "temprature",
	}, {
		name: "duplicate agent",
		doc:  "agents:\n  - {name: a, model: m}\n  - {name: a, model: m}\n",
		want: "duplicate agent",
	}, {
		name: "missing model",
		doc:  "agents:\n  - {name: a}\n",
		want: "model is required",
	}, {
		name: "undefined next step",
		doc:  "workflows:\n  - name: w\n    steps:\n      - {name: s, agent: a, next: [{step: nope}]}\n",
		want: `next step "nope"`,
	}, {
		name: "ambiguous condition",
		doc:  "workflows:\n  - name: w\n    steps:\n      - {name: s, agent: a, next: [{step: s, when: {contains: x, field: y}}]}\n",
		want: "exactly one of",
	}, {
		name: "undefined start",
		doc:  "workflows:\n  - name: w\n    start: nope\n    steps:\n      - {name: s, agent: a}\n",
		want: "start step",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplyAndRun(t *testing.T) {
	bp, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	analyst := modeltest.New("gpt-4o", model.Response{ToolCalls: []toolcall.Call{{
		ID: "c1", Name: "run_sql", Arguments: `{"QUERY": "select 1"}`,
	}}})
	writer := modeltest.New("claude-sonnet-4-5",
		model.Response{Content: `{"status": "final", "text": "Three rows found."}`},
		model.Response{Content: "Polished."},
	)
	fallback := modeltest.New("gemini-2.5-flash")
	rt := &fakeRuntime{}

	wm := newWorkflows(t)
	applied, err := Apply(context.Background(), bp, wm, factoryFor(map[string]*modeltest.Stub{
		"gpt-4o":            analyst,
		"claude-sonnet-4-5": writer,
		"gemini-2.5-flash":  fallback,
	}), WithRuntime(rt))
	require.NoError(t, err)
	defer applied.Close()

	require.Len(t, applied.Agents, 3)
	require.Len(t, applied.Workflows, 1)
	assert.Equal(t, 0.2, analyst.Kwargs()["temperature"])
	assert.Equal(t, []string{"run_sql"}, toolNames(applied.Agents[0]))

	results, err := wm.Run(context.Background(), "report", model.Text("How many rows?"))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "analyze", results[0].Step)
	assert.Contains(t, results[0].Response.Content, "Three rows found.")
	assert.Equal(t, "done", results[1].Step)

	require.Len(t, rt.reqs, 1)
	assert.Equal(t, []string{"QUERY=select 1"}, rt.reqs[0].Env)
	assert.Equal(t, "Summarize these rows: 3 rows", applied.Agents[1].Instruction())
}

func toolNames(a *agent.Agent) []string {
	var names []string
	for _, t := range a.Tools() {
		names = append(names, t.Name())
	}
	return names
}

type closer struct{ closed bool }

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestApplyMCPServers(t *testing.T) {
	bp, err := Load(strings.NewReader(`
agents:
  - name: librarian
    model: gpt-4o
    mcp_servers:
      - name: files
        command: mcp-files
        args: [/srv]
`))
	require.NoError(t, err)

	fn, err := agent.NewFunction(toolcall.Definition{Name: "read_file"}, func(context.Context, map[string]any) (any, error) {
		return "contents", nil
	})
	require.NoError(t, err)
	c := &closer{}

	wm := newWorkflows(t)
	ap := &applier{
		wm:      wm,
		factory: factoryFor(map[string]*modeltest.Stub{"gpt-4o": modeltest.New("gpt-4o")}),
		connect: func(_ context.Context, s MCPServer) ([]agent.Tool, io.Closer, error) {
			assert.Equal(t, "mcp-files", s.Command)
			assert.Equal(t, []string{"/srv"}, s.Args)
			return []agent.Tool{agent.NewFunctionTool(fn)}, c, nil
		},
	}
	out := &Applied{}
	require.NoError(t, ap.apply(context.Background(), bp, out))
	assert.Equal(t, []string{"read_file"}, toolNames(out.Agents[0]))

	require.NoError(t, out.Close())
	assert.True(t, c.closed)
}

func TestApplyErrors(t *testing.T) {
	ctx := context.Background()

	bp, err := Load(strings.NewReader("agents:\n  - {name: a, model: missing}\n"))
	require.NoError(t, err)
	_, err = Apply(ctx, bp, newWorkflows(t), factoryFor(nil))
	assert.ErrorContains(t, err, "unknown model")

	bp, err = Load(strings.NewReader(`
agents:
  - name: a
    model: m
    containers:
      - {name: c, image: alpine, return_to: {agent: ghost}}
`))
	require.NoError(t, err)
	_, err = Apply(ctx, bp, newWorkflows(t), factoryFor(map[string]*modeltest.Stub{"m": modeltest.New("m")}))
	assert.ErrorContains(t, err, `return_to agent "ghost"`)

	wm := newWorkflows(t)
	existing, err := agent.New("a", modeltest.New("m"))
	require.NoError(t, err)
	require.NoError(t, wm.Agents().Add(existing))
	bp, err = Load(strings.NewReader("agents:\n  - {name: a, model: m}\n"))
	require.NoError(t, err)
	_, err = Apply(ctx, bp, wm, factoryFor(map[string]*modeltest.Stub{"m": modeltest.New("m")}))
	assert.ErrorContains(t, err, "already registered")

	_, err = Apply(ctx, bp, newWorkflows(t), nil)
	assert.Error(t, err)
}

func TestApplyValidatesBlueprint(t *testing.T) {
	factory := factoryFor(map[string]*modeltest.Stub{"m": modeltest.New("m")})
	tests := []struct {
		name string
		wf   Workflow
		want string
	}{{
		name: "unknown start",
		wf:   Workflow{Name: "w", Start: "nope", Steps: []Step{{Name: "s", Agent: "a"}}},
		want: `start step "nope" is not defined`,
	}, {
		name: "unknown next",
		wf:   Workflow{Name: "w", Steps: []Step{{Name: "s", Agent: "a", Next: []Next{{Step: "gone"}}}}},
		want: `next step "gone" is not defined`,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wm := newWorkflows(t)
			bp := &Blueprint{
				Agents:    []Agent{{Name: "a", Model: "m"}},
				Workflows: []Workflow{tt.wf},
			}
			_, err := Apply(context.Background(), bp, wm, factory)
			assert.ErrorContains(t, err, tt.want)
			assert.Empty(t, wm.Agents().Agents(), "nothing is registered for an invalid blueprint")
			assert.Nil(t, wm.Workflow("w"))
		})
	}

	_, err := Apply(context.Background(), nil, newWorkflows(t), factory)
	assert.Error(t, err)
}
