/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"sync"

	"chainguard.dev/agentflow/agents/agenttrace"
	"chainguard.dev/agentflow/agents/model"
)

// Observer receives the outcome of checks.
type Observer interface {
	// Fail reports a failed expectation.
	Fail(string)
	// Log records a message that is not a failure.
	Log(string)
	// Increment is called once per evaluated trace.
	Increment()
	// Total returns the number of evaluated traces.
	Total() int64
}

// Trace is the trace shape produced by the agent manager.
type Trace = agenttrace.Trace[model.Response]

// Check inspects a completed trace.
type Check func(Observer, *Trace)

// Inject binds checks to an observer, producing a callback suitable for
// agenttrace.ByCode.
func Inject(obs Observer, checks ...Check) agenttrace.TraceCallback[model.Response] {
	return func(tr *Trace) {
		obs.Increment()
		for _, c := range checks {
			c(obs, tr)
		}
	}
}

// Tracer is shorthand for agenttrace.ByCode(Inject(obs, checks...)).
func Tracer(obs Observer, checks ...Check) agenttrace.Tracer[model.Response] {
	return agenttrace.ByCode(Inject(obs, checks...))
}

// Collector is an Observer that keeps every message in memory.
type Collector struct {
	mu       sync.Mutex
	failures []string
	logs     []string
	total    int64
}

var _ Observer = (*Collector)(nil)

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Fail(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, msg)
}

func (c *Collector) Log(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, msg)
}

func (c *Collector) Increment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
}

func (c *Collector) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Failures returns a copy of the failure messages in report order.
func (c *Collector) Failures() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.failures...)
}

// Logs returns a copy of the log messages in report order.
func (c *Collector) Logs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.logs...)
}

// Passed reports whether no failure has been recorded.
func (c *Collector) Passed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.failures) == 0
}

// Prefixed returns an Observer that prepends prefix to every message sent to
// inner. Total and Increment are shared with inner.
func Prefixed(inner Observer, prefix string) Observer {
	return &prefixed{inner: inner, prefix: prefix}
}

type prefixed struct {
	inner  Observer
	prefix string
}

func (p *prefixed) Fail(msg string) { p.inner.Fail(p.prefix + ": " + msg) }
func (p *prefixed) Log(msg string)  { p.inner.Log(p.prefix + ": " + msg) }
func (p *prefixed) Increment()      { p.inner.Increment() }
func (p *prefixed) Total() int64    { return p.inner.Total() }
