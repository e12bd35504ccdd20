/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package agentzero is the single entry point to agentflow: one value that
// registers agents, runs them and runs workflows over them.
package agentzero

import (
	"context"
	"fmt"
	"iter"

	"chainguard.dev/agentflow/agents/agent"
	"chainguard.dev/agentflow/agents/agenttrace"
	"chainguard.dev/agentflow/agents/blueprint"
	"chainguard.dev/agentflow/agents/manager"
	"chainguard.dev/agentflow/agents/metrics"
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/provider"
	"chainguard.dev/agentflow/agents/workflow"
)

// AgentZero combines an agent manager with a workflow manager.
type AgentZero struct {
	agents    *manager.Manager
	workflows *workflow.Manager
}

type config struct {
	manager  []manager.Option
	workflow []workflow.Option
}

// Option configures an AgentZero.
type Option func(*config)

// WithMaxDepth bounds tool rounds plus handoffs per agent run.
func WithMaxDepth(n int) Option {
	return func(c *config) { c.manager = append(c.manager, manager.WithMaxDepth(n)) }
}

// WithMaxSteps bounds the steps of one workflow run.
func WithMaxSteps(n int) Option {
	return func(c *config) { c.workflow = append(c.workflow, workflow.WithMaxSteps(n)) }
}

// WithMetrics records agent metrics on mt.
func WithMetrics(mt *metrics.Agents) Option {
	return func(c *config) { c.manager = append(c.manager, manager.WithMetrics(mt)) }
}

// WithTracer records every agent run on tr.
func WithTracer(tr agenttrace.Tracer[model.Response]) Option {
	return func(c *config) { c.manager = append(c.manager, manager.WithTracer(tr)) }
}

// New returns an AgentZero with no agents or workflows.
func New(opts ...Option) (*AgentZero, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	am, err := manager.New(cfg.manager...)
	if err != nil {
		return nil, err
	}
	wm, err := workflow.New(am, cfg.workflow...)
	if err != nil {
		return nil, err
	}
	return &AgentZero{agents: am, workflows: wm}, nil
}

// Manager returns the underlying agent manager.
func (z *AgentZero) Manager() *manager.Manager { return z.agents }

// Workflows returns the underlying workflow manager.
func (z *AgentZero) Workflows() *workflow.Manager { return z.workflows }

func (z *AgentZero) AddAgent(a *agent.Agent) error { return z.agents.Add(a) }

func (z *AgentZero) GetAgent(name string) (int, *agent.Agent) { return z.agents.Get(name) }

// RunAgent runs the named agent to a final answer.
func (z *AgentZero) RunAgent(ctx context.Context, name string, in model.Input) (model.Response, error) {
	return z.agents.Run(ctx, name, in)
}

// RunAgentStream runs the named agent and streams its final answer.
func (z *AgentZero) RunAgentStream(ctx context.Context, name string, in model.Input) iter.Seq2[model.Chunk, error] {
	return z.agents.RunStream(ctx, name, in)
}

func (z *AgentZero) CreateWorkflow(name, description string) *workflow.Workflow {
	return z.workflows.CreateWorkflow(name, description)
}

// CreateStep returns a workflow step run by a, registering a.
func (z *AgentZero) CreateStep(a *agent.Agent, name, description string) (*workflow.Step, error) {
	return z.workflows.CreateStep(a, name, description)
}

// CreateStepByName returns a workflow step run by a registered agent.
func (z *AgentZero) CreateStepByName(agentName, name, description string) (*workflow.Step, error) {
	return z.workflows.CreateStepByName(agentName, name, description)
}

func (z *AgentZero) RunWorkflow(ctx context.Context, name string, in model.Input) (workflow.Results, error) {
	return z.workflows.Run(ctx, name, in)
}

func (z *AgentZero) StreamWorkflow(ctx context.Context, name string, in model.Input, cb workflow.Callbacks) (workflow.Results, error) {
	return z.workflows.Stream(ctx, name, in, cb)
}

// RunWorkflows runs independent workflows concurrently.
func (z *AgentZero) RunWorkflows(ctx context.Context, reqs ...workflow.Request) ([]workflow.Results, error) {
	return z.workflows.RunParallel(ctx, reqs...)
}

// LoadBlueprint builds and registers the agents and workflows declared in
// the blueprint at path. The caller must Close the result.
func (z *AgentZero) LoadBlueprint(ctx context.Context, path string, factory provider.Factory, opts ...blueprint.ApplyOption) (*blueprint.Applied, error) {
	bp, err := blueprint.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading blueprint %s: %w", path, err)
	}
	return blueprint.Apply(ctx, bp, z.workflows, factory, opts...)
}
