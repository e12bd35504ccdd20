/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package evalstest adapts testing.TB to evals.Observer.
package evalstest

import (
	"sync/atomic"
	"testing"

	"chainguard.dev/agentflow/agents/evals"
)

type observer struct {
	tb    testing.TB
	count atomic.Int64
}

// New returns an Observer that reports failures with tb.Error.
func New(tb testing.TB) evals.Observer {
	return &observer{tb: tb}
}

func (o *observer) Fail(msg string) {
	o.tb.Helper()
	o.tb.Error(msg)
}

func (o *observer) Log(msg string) {
	o.tb.Helper()
	o.tb.Log(msg)
}

func (o *observer) Increment() { o.count.Add(1) }

func (o *observer) Total() int64 { return o.count.Load() }
