/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"context"
	"strings"

	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
)

// StepInfo describes a step about to run.
type StepInfo struct {
	Name        string
	Description string
	Agent       string
}

// Callbacks observe a streamed workflow run. Any of them may be nil.
type Callbacks struct {
	// OnStep is called before a step runs.
	OnStep func(StepInfo)
	// OnChunk is called for every chunk a step streams.
	OnChunk func(step string, chunk model.Chunk)
	// OnComplete is called once with the results of a successful run.
	OnComplete func(Results)
}

// Stream executes the named workflow like Run, but streams every step. A
// step's answer is assembled from the chunks it streamed.
func (m *Manager) Stream(ctx context.Context, name string, in model.Input, cb Callbacks) (Results, error) {
	results, err := m.execute(ctx, name, in, func(ctx context.Context, s *Step, in model.Input) (model.Response, error) {
		if cb.OnStep != nil {
			cb.OnStep(StepInfo{Name: s.name, Description: s.description, Agent: s.agent.Name()})
		}
		var (
			content strings.Builder
			calls   []toolcall.Call
			seen    = map[string]bool{}
		)
		for chunk, err := range m.agents.RunStream(ctx, s.agent.Name(), in) {
			if err != nil {
				return model.Response{Content: content.String(), ToolCalls: calls}, err
			}
			if cb.OnChunk != nil {
				cb.OnChunk(s.name, chunk)
			}
			content.WriteString(chunk.Content)
			for _, c := range chunk.ToolCalls {
				if c.ID != "" && !seen[c.ID] {
					seen[c.ID] = true
					calls = append(calls, c)
				}
			}
		}
		return model.Response{Content: content.String(), ToolCalls: calls}, nil
	})
	if err == nil && cb.OnComplete != nil {
		cb.OnComplete(results)
	}
	return results, err
}
