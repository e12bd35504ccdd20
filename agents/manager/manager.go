/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"chainguard.dev/agentflow/agents/agent"
	"chainguard.dev/agentflow/agents/agenttrace"
	"chainguard.dev/agentflow/agents/metrics"
	"chainguard.dev/agentflow/agents/model"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultMaxDepth bounds tool rounds plus handoffs in a single run.
const DefaultMaxDepth = 16

var (
	// ErrAgentNotFound is returned when a run names an unregistered agent.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrMaxDepth is returned when a run exceeds its tool-call depth.
	ErrMaxDepth = errors.New("maximum tool-call depth exceeded")
)

// Manager is a registry of agents and the loop that runs them. The registry
// is safe for concurrent use; a single agent is not, so concurrent runs must
// target distinct agents.
type Manager struct {
	mu     sync.RWMutex
	agents []*agent.Agent

	maxDepth int
	metrics  *metrics.Agents
	tracer   agenttrace.Tracer[model.Response]
}

// Option configures a Manager.
type Option func(*Manager) error

// WithMaxDepth bounds tool rounds plus handoffs per run.
func WithMaxDepth(n int) Option {
	return func(m *Manager) error {
		if n <= 0 {
			return fmt.Errorf("max depth must be positive, got %d", n)
		}
		m.maxDepth = n
		return nil
	}
}

// WithMetrics records tool calls and handoffs on mt. Attributes are
// enriched with the workflow, step and agent of the run.
func WithMetrics(mt *metrics.Agents) Option {
	return func(m *Manager) error {
		if mt == nil {
			return errors.New("metrics cannot be nil")
		}
		mt.SetAttributeEnricher(func(ctx context.Context, base []attribute.KeyValue) []attribute.KeyValue {
			return agenttrace.GetRunContext(ctx).EnrichAttributes(base)
		})
		m.metrics = mt
		return nil
	}
}

// WithTracer records every run on tr instead of the tracer carried by the
// run's context.
func WithTracer(tr agenttrace.Tracer[model.Response]) Option {
	return func(m *Manager) error {
		if tr == nil {
			return errors.New("tracer cannot be nil")
		}
		m.tracer = tr
		return nil
	}
}

// New returns an empty Manager.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return m, nil
}

// MaxDepth returns the configured depth bound.
func (m *Manager) MaxDepth() int { return m.maxDepth }

// Add registers a. Adding a second agent with an existing name is a no-op;
// the first registration wins.
func (m *Manager) Add(a *agent.Agent) error {
	if a == nil {
		return errors.New("agent cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.agents, func(x *agent.Agent) bool { return x.Name() == a.Name() }) {
		return nil
	}
	m.agents = append(m.agents, a)
	return nil
}

// Get returns the registry position and agent named name, or -1 and nil.
func (m *Manager) Get(name string) (int, *agent.Agent) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, a := range m.agents {
		if a.Name() == name {
			return i, a
		}
	}
	return -1, nil
}

// Agents returns the registered agents in registration order.
func (m *Manager) Agents() []*agent.Agent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.agents)
}

// Initialize prepares the named agent for a run: the system message is set
// from its instruction, its tools are propagated to the model and in, when
// non-zero, is appended as the user turn.
func (m *Manager) Initialize(ctx context.Context, name string, in model.Input) (*agent.Agent, error) {
	_, a := m.Get(name)
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	a.SetSystemMessage(a.Instruction())
	a.SetTools(a.Tools()...)
	if err := a.SetUserMessage(in); err != nil {
		return nil, fmt.Errorf("setting user message for %s: %w", name, err)
	}
	clog.FromContext(ctx).With("agent", name).
		With("tools", len(a.Tools())).
		Debug("Initialized agent")
	return a, nil
}

// Run runs the named agent to a final answer.
func (m *Manager) Run(ctx context.Context, name string, in model.Input) (resp model.Response, err error) {
	ctx = m.traceContext(ctx, name)
	trace := agenttrace.StartTrace[model.Response](ctx, in.String())
	defer func() { trace.Complete(resp, err) }()

	r := &run{m: m, trace: trace, input: in}
	return r.agent(trace.Context(), name)
}

func (m *Manager) traceContext(ctx context.Context, name string) context.Context {
	if m.tracer != nil {
		ctx = agenttrace.WithTracer(ctx, m.tracer)
	}
	return agenttrace.WithAgent(ctx, name)
}
