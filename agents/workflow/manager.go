/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chainguard.dev/agentflow/agents/agent"
	"chainguard.dev/agentflow/agents/agenttrace"
	"chainguard.dev/agentflow/agents/manager"
	"chainguard.dev/agentflow/agents/model"
	"github.com/chainguard-dev/clog"
)

// DefaultMaxSteps bounds the steps executed by one run, so conditional
// cycles terminate.
const DefaultMaxSteps = 64

var (
	// ErrWorkflowNotFound is returned when a run names an unknown workflow.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrNoStartStep is returned when a workflow has no step to start from.
	ErrNoStartStep = errors.New("workflow has no starting step")

	// ErrStepNotFound is returned when a step is not part of a workflow.
	ErrStepNotFound = errors.New("step not found")

	// ErrMaxSteps is returned when a run exceeds the step bound.
	ErrMaxSteps = errors.New("maximum workflow steps exceeded")

	// ErrSharedAgent is returned when parallel runs would drive one agent
	// from two goroutines.
	ErrSharedAgent = errors.New("agent shared between parallel workflows")
)

// Manager creates workflows and runs them on an agent manager.
type Manager struct {
	agents   *manager.Manager
	maxSteps int

	mu        sync.RWMutex
	workflows map[string]*Workflow
}

// Option configures a Manager.
type Option func(*Manager) error

// WithMaxSteps bounds the steps executed by one run.
func WithMaxSteps(n int) Option {
	return func(m *Manager) error {
		if n <= 0 {
			return fmt.Errorf("max steps must be positive, got %d", n)
		}
		m.maxSteps = n
		return nil
	}
}

// New returns a Manager running steps on am.
func New(am *manager.Manager, opts ...Option) (*Manager, error) {
	if am == nil {
		return nil, errors.New("agent manager cannot be nil")
	}
	m := &Manager{agents: am, maxSteps: DefaultMaxSteps, workflows: map[string]*Workflow{}}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return m, nil
}

// Agents returns the agent manager steps run on.
func (m *Manager) Agents() *manager.Manager { return m.agents }

// CreateWorkflow creates and registers a workflow, replacing any workflow
// of the same name.
func (m *Manager) CreateWorkflow(name, description string) *Workflow {
	w := newWorkflow(name, description)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflows[name] = w
	return w
}

// Workflow returns the named workflow, or nil.
func (m *Manager) Workflow(name string) *Workflow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workflows[name]
}

// CreateStep returns a step run by a, registering a with the agent
// manager.
func (m *Manager) CreateStep(a *agent.Agent, name, description string) (*Step, error) {
	if a == nil {
		return nil, errors.New("agent cannot be nil")
	}
	if name == "" {
		return nil, errors.New("step name cannot be empty")
	}
	if err := m.agents.Add(a); err != nil {
		return nil, err
	}
	return newStep(a, name, description), nil
}

// CreateStepByName returns a step run by the registered agent agentName.
func (m *Manager) CreateStepByName(agentName, name, description string) (*Step, error) {
	_, a := m.agents.Get(agentName)
	if a == nil {
		return nil, fmt.Errorf("%w: %s", manager.ErrAgentNotFound, agentName)
	}
	return m.CreateStep(a, name, description)
}

// Run executes the named workflow from its start step. Each step's answer
// content is the next step's input. The results of completed steps are
// returned even when a later step fails.
func (m *Manager) Run(ctx context.Context, name string, in model.Input) (Results, error) {
	return m.execute(ctx, name, in, func(ctx context.Context, s *Step, in model.Input) (model.Response, error) {
		return m.agents.Run(ctx, s.agent.Name(), in)
	})
}

type stepFunc func(ctx context.Context, s *Step, in model.Input) (model.Response, error)

func (m *Manager) execute(ctx context.Context, name string, in model.Input, run stepFunc) (results Results, err error) {
	w := m.Workflow(name)
	if w == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, name)
	}
	step := w.Start()
	if step == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoStartStep, name)
	}

	log := clog.FromContext(ctx).With("workflow", name)
	defer func() {
		w.setResults(results)
		runsTotal.WithLabelValues(name, status(err)).Inc()
	}()

	for step != nil {
		if len(results) >= m.maxSteps {
			return results, fmt.Errorf("%w: workflow %s after %d steps", ErrMaxSteps, name, m.maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		stepCtx := agenttrace.WithRunContext(ctx, agenttrace.RunContext{Workflow: name, Step: step.name})
		log.With("step", step.name).With("agent", step.agent.Name()).Info("Executing step")

		start := time.Now()
		resp, err := run(stepCtx, step, in)
		elapsed := time.Since(start)
		stepsTotal.WithLabelValues(name, step.name).Inc()
		stepDuration.WithLabelValues(name, step.name).Observe(elapsed.Seconds())
		if err != nil {
			return results, fmt.Errorf("step %s: %w", step.name, err)
		}

		results = append(results, StepResult{
			Step:     step.name,
			Agent:    step.agent.Name(),
			Response: resp,
			Duration: elapsed,
		})
		step = step.follow(resp)
		in = model.Text(resp.Content)
	}
	log.With("steps", len(results)).Info("Workflow completed")
	return results, nil
}
