/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"fmt"
	"strings"

	"chainguard.dev/agentflow/agents/agent"
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/result"
)

// Condition decides, from a step's answer, whether a successor runs.
type Condition func(model.Response) bool

// ContentContains holds when the answer contains substr, ignoring case.
func ContentContains(substr string) Condition {
	substr = strings.ToLower(substr)
	return func(resp model.Response) bool {
		return strings.Contains(strings.ToLower(resp.Content), substr)
	}
}

// JSONField holds when the JSON payload of the answer carries want at the
// dotted path. Values are compared by their printed form.
func JSONField(path string, want any) Condition {
	return func(resp model.Response) bool {
		got, ok := result.Field(resp.Content, path)
		return ok && fmt.Sprint(got) == fmt.Sprint(want)
	}
}

// Not inverts c.
func Not(c Condition) Condition {
	return func(resp model.Response) bool { return !c(resp) }
}

type successor struct {
	step *Step
	when Condition
}

// Step runs one agent within a workflow. The agent is shared, not owned:
// the same agent may back steps of several workflows.
type Step struct {
	name        string
	description string
	agent       *agent.Agent
	next        []successor
}

func newStep(a *agent.Agent, name, description string) *Step {
	if description == "" {
		description = "Step executed by " + a.Name()
	}
	return &Step{name: name, description: description, agent: a}
}

func (s *Step) Name() string        { return s.name }
func (s *Step) Description() string { return s.description }
func (s *Step) Agent() *agent.Agent { return s.agent }

// Then adds an unconditional successor and returns it for chaining.
func (s *Step) Then(next *Step) *Step {
	return s.When(next, nil)
}

// When adds a successor that runs when cond holds for this step's answer.
// A nil cond always holds. Successors are tried in the order they were
// added. A nil next is ignored. When returns next for chaining.
func (s *Step) When(next *Step, cond Condition) *Step {
	if next == nil {
		return nil
	}
	s.next = append(s.next, successor{step: next, when: cond})
	return next
}

// Successors returns the names of the possible next steps in order.
func (s *Step) Successors() []string {
	names := make([]string, 0, len(s.next))
	for _, n := range s.next {
		names = append(names, n.step.name)
	}
	return names
}

// follow returns the first successor whose condition holds, or nil.
func (s *Step) follow(resp model.Response) *Step {
	for _, n := range s.next {
		if n.when == nil || n.when(resp) {
			return n.step
		}
	}
	return nil
}

func (s *Step) String() string {
	return fmt.Sprintf("Step(name=%q, agent=%q, next=%v)", s.name, s.agent.Name(), s.Successors())
}
