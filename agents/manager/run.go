/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package manager

import (
	"context"
	"encoding/json"
	"fmt"

	"chainguard.dev/agentflow/agents/agent"
	"chainguard.dev/agentflow/agents/agenttrace"
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/chainguard-dev/clog"
)

// run carries the state of one top-level Run or RunStream across tool
// rounds and handoffs.
type run struct {
	m     *Manager
	trace *agenttrace.Trace[model.Response]
	input model.Input
	depth int
}

// agent initializes the named agent and runs it to a final answer.
func (r *run) agent(ctx context.Context, name string) (model.Response, error) {
	ctx = agenttrace.WithAgent(ctx, name)
	a, err := r.m.Initialize(ctx, name, r.input)
	if err != nil {
		return model.Response{}, err
	}
	resp, err := a.Response(ctx)
	if err != nil {
		return model.Response{}, err
	}
	r.recordTokens(ctx, a, resp)

	for len(resp.ToolCalls) > 0 {
		next, err := r.round(ctx, a, resp)
		if err != nil {
			return model.Response{}, err
		}
		if next != nil {
			return r.agent(ctx, next.Name())
		}
		if resp, err = a.Response(ctx); err != nil {
			return model.Response{}, err
		}
		r.recordTokens(ctx, a, resp)
	}
	return resp, nil
}

// round dispatches the tool calls of resp. When a tool hands off, the
// target is registered and returned and the history is left untouched;
// otherwise the assistant turn and the tool results are appended to the
// history.
func (r *run) round(ctx context.Context, a *agent.Agent, resp model.Response) (*agent.Agent, error) {
	r.depth++
	if r.depth > r.m.maxDepth {
		return nil, fmt.Errorf("%w: agent %s after %d rounds", ErrMaxDepth, a.Name(), r.m.maxDepth)
	}

	results, next := r.dispatch(ctx, a, resp.ToolCalls)
	if next != nil {
		if err := r.m.Add(next); err != nil {
			return nil, err
		}
		r.trace.RecordHandoff(a.Name(), next.Name())
		r.m.metrics.RecordHandoff(ctx, a.Name(), next.Name())
		clog.FromContext(ctx).With("from", a.Name()).With("to", next.Name()).Info("Handing off to agent")
		return next, nil
	}

	mdl := a.Model()
	msgs := mdl.Messages()
	msgs = append(msgs, mdl.AssistantMessage(resp)...)
	msgs = append(msgs, mdl.ToolMessage(results)...)
	if err := a.SetMessages(msgs); err != nil {
		return nil, fmt.Errorf("updating history of %s: %w", a.Name(), err)
	}
	return nil, nil
}

// dispatch executes calls sequentially. It stops at the first tool that
// returns an agent and returns that agent.
func (r *run) dispatch(ctx context.Context, a *agent.Agent, calls []toolcall.Call) ([]toolcall.Response, *agent.Agent) {
	log := clog.FromContext(ctx).With("agent", a.Name())
	mdl := a.Model()

	results := make([]toolcall.Response, 0, len(calls))
	for _, raw := range calls {
		call := mdl.KeysInToolOutput(raw)
		reply := func(result string) {
			results = append(results, toolcall.Response{ID: call.ID, Name: call.Name, Result: result})
		}

		args, err := call.Args()
		if err != nil {
			log.With("tool", call.Name).Warn("Invalid JSON in tool arguments")
			r.trace.BadToolCall(call.ID, call.Name, map[string]any{"arguments": call.ArgumentString()}, err)
			reply("Error: Invalid JSON in arguments")
			continue
		}

		tool, ok := a.FindTool(call.Name)
		if !ok {
			log.With("tool", call.Name).Warn("Unknown tool requested")
			r.trace.BadToolCall(call.ID, call.Name, args, fmt.Errorf("unknown tool: %q", call.Name))
			reply(fmt.Sprintf("Error: Tool '%s' not found", call.Name))
			continue
		}

		log.With("tool", call.Name).With("id", call.ID).Info("Executing tool call")
		tc := r.trace.StartToolCall(call.ID, call.Name, args)
		tc.Agent = a.Name()
		r.m.metrics.RecordToolCall(ctx, mdl.Name(), call.Name)

		out, err := invoke(ctx, tool, args)
		if err != nil {
			tc.Complete(nil, err)
			reply("Error executing tool: " + err.Error())
			continue
		}
		if next, ok := out.(*agent.Agent); ok && next != nil {
			tc.Complete(next.Name(), nil)
			return nil, next
		}
		result := stringify(out)
		tc.Complete(result, nil)
		reply(result)
	}
	return results, nil
}

func (r *run) recordTokens(ctx context.Context, a *agent.Agent, resp model.Response) {
	u := resp.Usage
	if u.PromptTokens == 0 && u.CompletionTokens == 0 {
		return
	}
	r.trace.RecordTokenUsage(a.Model().Name(), u.PromptTokens, u.CompletionTokens)
	r.m.metrics.RecordTokens(ctx, a.Model().Name(), u.PromptTokens, u.CompletionTokens)
}

// invoke runs the tool, turning a panic into an error.
func invoke(ctx context.Context, t agent.Tool, args map[string]any) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("%v", p)
		}
	}()
	return t.Invoke(ctx, args)
}

// stringify renders a tool result as the text fed back to the model.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
