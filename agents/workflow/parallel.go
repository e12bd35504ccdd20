/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"context"
	"fmt"

	"chainguard.dev/agentflow/agents/agent"
	"chainguard.dev/agentflow/agents/model"
	"golang.org/x/sync/errgroup"
)

// Request names a workflow and its input for RunParallel.
type Request struct {
	Workflow string
	Input    model.Input
}

// RunParallel runs independent workflows concurrently and returns their
// results in request order. Agents hold conversation state, so no agent
// may be reachable from two requests. The first failure cancels the
// remaining runs.
func (m *Manager) RunParallel(ctx context.Context, reqs ...Request) ([]Results, error) {
	owner := map[*agent.Agent]string{}
	for _, req := range reqs {
		w := m.Workflow(req.Workflow)
		if w == nil {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, req.Workflow)
		}
		for _, s := range w.reachable() {
			if prev, ok := owner[s.agent]; ok && prev != req.Workflow {
				return nil, fmt.Errorf("%w: %s used by %s and %s", ErrSharedAgent, s.agent.Name(), prev, req.Workflow)
			}
			owner[s.agent] = req.Workflow
		}
	}

	out := make([]Results, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := m.Run(ctx, req.Workflow, req.Input)
			out[i] = res
			return err
		})
	}
	return out, g.Wait()
}
