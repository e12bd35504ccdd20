/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"fmt"
	"sync"
	"time"

	"chainguard.dev/agentflow/agents/model"
)

// StepResult is the answer of one executed step.
type StepResult struct {
	Step     string
	Agent    string
	Response model.Response
	Duration time.Duration
}

// Results lists executed steps in execution order. A step visited twice
// appears twice.
type Results []StepResult

// Get returns the latest answer of the named step.
func (r Results) Get(step string) (model.Response, bool) {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].Step == step {
			return r[i].Response, true
		}
	}
	return model.Response{}, false
}

// Map returns the latest answer of every executed step keyed by step name.
func (r Results) Map() map[string]model.Response {
	out := make(map[string]model.Response, len(r))
	for _, sr := range r {
		out[sr.Step] = sr.Response
	}
	return out
}

// Final returns the answer of the last executed step.
func (r Results) Final() (model.Response, bool) {
	if len(r) == 0 {
		return model.Response{}, false
	}
	return r[len(r)-1].Response, true
}

// Workflow owns a set of steps and the step execution starts from.
type Workflow struct {
	name        string
	description string

	mu      sync.Mutex
	steps   map[string]*Step
	order   []string
	start   *Step
	results Results
}

func newWorkflow(name, description string) *Workflow {
	if description == "" {
		description = "Workflow " + name
	}
	return &Workflow{name: name, description: description, steps: map[string]*Step{}}
}

func (w *Workflow) Name() string        { return w.name }
func (w *Workflow) Description() string { return w.description }

// AddStep adds s. The first step added becomes the start step. Adding a
// step under an existing name replaces it.
func (w *Workflow) AddStep(s *Step) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addLocked(s)
}

func (w *Workflow) addLocked(s *Step) {
	if _, ok := w.steps[s.name]; !ok {
		w.order = append(w.order, s.name)
	}
	w.steps[s.name] = s
	if w.start == nil {
		w.start = s
	}
}

// SetStartStep makes s the start step. s must already be in the workflow.
func (w *Workflow) SetStartStep(s *Step) error {
	if s == nil {
		return fmt.Errorf("%w: nil step in workflow %s", ErrStepNotFound, w.name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.steps[s.name] != s {
		return fmt.Errorf("%w: %s in workflow %s", ErrStepNotFound, s.name, w.name)
	}
	w.start = s
	return nil
}

// StartsWith adds s when needed, makes it the start step and returns it for
// chaining.
func (w *Workflow) StartsWith(s *Step) *Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.steps[s.name] != s {
		w.addLocked(s)
	}
	w.start = s
	return s
}

// Step returns the named step, or nil.
func (w *Workflow) Step(name string) *Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[name]
}

// Steps returns the steps in the order they were added.
func (w *Workflow) Steps() []*Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Step, 0, len(w.order))
	for _, n := range w.order {
		out = append(out, w.steps[n])
	}
	return out
}

// Start returns the start step, or nil.
func (w *Workflow) Start() *Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.start
}

// Result returns the latest answer of the named step from the most recent
// run.
func (w *Workflow) Result(step string) (model.Response, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.results.Get(step)
}

// Results returns the results of the most recent run.
func (w *Workflow) Results() Results {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append(Results(nil), w.results...)
}

func (w *Workflow) setResults(r Results) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.results = r
}

// reachable walks the graph from the start step. Steps linked by Then or
// When but never added are included.
func (w *Workflow) reachable() []*Step {
	start := w.Start()
	if start == nil {
		return nil
	}
	seen := map[*Step]bool{start: true}
	queue := []*Step{start}
	for i := 0; i < len(queue); i++ {
		for _, n := range queue[i].next {
			if !seen[n.step] {
				seen[n.step] = true
				queue = append(queue, n.step)
			}
		}
	}
	return queue
}

func (w *Workflow) String() string {
	start := "None"
	if s := w.Start(); s != nil {
		start = s.name
	}
	return fmt.Sprintf("Workflow(name=%q, steps=%d, start=%q)", w.name, len(w.Steps()), start)
}
