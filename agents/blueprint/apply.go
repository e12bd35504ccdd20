/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package blueprint

import (
	"context"
	"errors"
	"fmt"
	"io"

	"chainguard.dev/agentflow/agents/agent"
	"chainguard.dev/agentflow/agents/container"
	"chainguard.dev/agentflow/agents/mcptool"
	"chainguard.dev/agentflow/agents/provider"
	"chainguard.dev/agentflow/agents/workflow"
	"github.com/chainguard-dev/clog"
)

// Applied is what Apply built. Close stops the MCP servers it started.
type Applied struct {
	Agents    []*agent.Agent
	Workflows []*workflow.Workflow

	closers []io.Closer
}

// Close stops every MCP server started by Apply.
func (a *Applied) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// ApplyOption configures Apply.
type ApplyOption func(*applier)

// WithRuntime runs every container tool on rt instead of the local docker
// CLI.
func WithRuntime(rt container.Runtime) ApplyOption {
	return func(a *applier) { a.runtime = rt }
}

type connectFunc func(ctx context.Context, s MCPServer) ([]agent.Tool, io.Closer, error)

type applier struct {
	wm      *workflow.Manager
	factory provider.Factory
	runtime container.Runtime
	connect connectFunc
}

func connectMCP(ctx context.Context, s MCPServer) ([]agent.Tool, io.Closer, error) {
	c, err := mcptool.Connect(ctx, s.Name, s.Command, s.Args...)
	if err != nil {
		return nil, nil, err
	}
	tools, err := c.Tools()
	if err != nil {
		return nil, nil, errors.Join(err, c.Close())
	}
	return tools, c, nil
}

// Apply builds every agent, tool and workflow of bp and registers them on
// wm and its agent manager. Agents are created first so that container
// return_to targets can name any agent, including one declared later.
// bp is validated before anything is registered. An error after that point
// stops the MCP servers already started, but agents and workflows already
// registered on wm stay registered.
func Apply(ctx context.Context, bp *Blueprint, wm *workflow.Manager, factory provider.Factory, opts ...ApplyOption) (*Applied, error) {
	if bp == nil {
		return nil, errors.New("blueprint cannot be nil")
	}
	if factory == nil {
		return nil, errors.New("model factory cannot be nil")
	}
	if err := bp.Validate(); err != nil {
		return nil, fmt.Errorf("invalid blueprint: %w", err)
	}
	ap := &applier{wm: wm, factory: factory, connect: connectMCP}
	for _, opt := range opts {
		opt(ap)
	}

	out := &Applied{}
	if err := ap.apply(ctx, bp, out); err != nil {
		return nil, errors.Join(err, out.Close())
	}
	return out, nil
}

func (ap *applier) apply(ctx context.Context, bp *Blueprint, out *Applied) error {
	am := ap.wm.Agents()
	log := clog.FromContext(ctx)

	for _, spec := range bp.Agents {
		if _, existing := am.Get(spec.Name); existing != nil {
			return fmt.Errorf("agent %q is already registered", spec.Name)
		}
		m, err := ap.factory(ctx, spec.Model)
		if err != nil {
			return fmt.Errorf("agent %q: %w", spec.Name, err)
		}
		if len(spec.Kwargs) > 0 {
			m.SetKwargs(spec.Kwargs)
		}
		a, err := agent.New(spec.Name, m, agent.WithInstruction(spec.Instruction))
		if err != nil {
			return err
		}
		if err := am.Add(a); err != nil {
			return err
		}
		out.Agents = append(out.Agents, a)
	}

	for i, spec := range bp.Agents {
		a := out.Agents[i]
		for _, cs := range spec.Containers {
			c, err := ap.container(cs)
			if err != nil {
				return fmt.Errorf("agent %q: %w", spec.Name, err)
			}
			a.AddTool(agent.NewContainerTool(c))
		}
		for _, ms := range spec.MCPServers {
			tools, closer, err := ap.connect(ctx, ms)
			if err != nil {
				return fmt.Errorf("agent %q: %w", spec.Name, err)
			}
			out.closers = append(out.closers, closer)
			for _, t := range tools {
				a.AddTool(t)
			}
		}
		log.With("agent", a.Name()).With("tools", len(a.Tools())).Info("Applied agent")
	}

	for _, spec := range bp.Workflows {
		w, err := ap.workflow(spec)
		if err != nil {
			return err
		}
		out.Workflows = append(out.Workflows, w)
	}
	return nil
}

func (ap *applier) container(cs Container) (*agent.Container, error) {
	opts := []agent.ContainerOption{
		agent.WithCommand(cs.Command...),
		agent.WithVolumes(cs.Volumes...),
	}
	if cs.Network != "" {
		opts = append(opts, agent.WithNetwork(cs.Network))
	}
	if cs.MaxOutputTokens > 0 {
		opts = append(opts, agent.WithMaxOutputTokens(cs.MaxOutputTokens))
	}
	for _, e := range cs.Environment {
		opts = append(opts, agent.WithEnvironment(agent.EnvVar{
			Name:        e.Name,
			Type:        e.Type,
			Description: e.Description,
			Value:       e.Value,
		}))
	}
	if cs.Auth != nil {
		opts = append(opts, agent.WithAuth(container.Credentials{
			Registry: cs.Auth.Registry,
			Username: cs.Auth.Username,
			Password: cs.Auth.password(),
		}))
	}
	if cs.ReturnTo != nil {
		_, target := ap.wm.Agents().Get(cs.ReturnTo.Agent)
		if target == nil {
			return nil, fmt.Errorf("container %q: return_to agent %q is not defined", cs.Name, cs.ReturnTo.Agent)
		}
		opts = append(opts, agent.WithReturnTo(target, cs.ReturnTo.Instruction))
	}
	if ap.runtime != nil {
		opts = append(opts, agent.WithRuntime(ap.runtime))
	}
	return agent.NewContainer(cs.Name, cs.Description, cs.Image, opts...)
}

func (ap *applier) workflow(spec Workflow) (*workflow.Workflow, error) {
	w := ap.wm.CreateWorkflow(spec.Name, spec.Description)
	steps := make(map[string]*workflow.Step, len(spec.Steps))
	for _, ss := range spec.Steps {
		s, err := ap.wm.CreateStepByName(ss.Agent, ss.Name, ss.Description)
		if err != nil {
			return nil, fmt.Errorf("workflow %q: step %q: %w", spec.Name, ss.Name, err)
		}
		steps[ss.Name] = s
		w.AddStep(s)
	}
	for _, ss := range spec.Steps {
		for _, n := range ss.Next {
			steps[ss.Name].When(steps[n.Step], n.When.condition())
		}
	}
	if spec.Start != "" {
		if err := w.SetStartStep(steps[spec.Start]); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *When) condition() workflow.Condition {
	switch {
	case w == nil:
		return nil
	case w.Contains != "":
		return workflow.ContentContains(w.Contains)
	default:
		return workflow.JSONField(w.Field, w.Equals)
	}
}
