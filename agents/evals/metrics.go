/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentflow_evaluations_total",
			Help: "Total number of agent runs evaluated",
		},
		[]string{"suite"},
	)

	failureCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentflow_evaluation_failures_total",
			Help: "Total number of failed checks",
		},
		[]string{"suite"},
	)
)

// MetricsObserver counts evaluations and failures in Prometheus.
type MetricsObserver struct {
	evals prometheus.Counter
	fails prometheus.Counter
	total atomic.Int64
}

var _ Observer = (*MetricsObserver)(nil)

// NewMetricsObserver returns an observer labelled with suite.
func NewMetricsObserver(suite string) *MetricsObserver {
	return &MetricsObserver{
		evals: evaluationCounter.WithLabelValues(suite),
		fails: failureCounter.WithLabelValues(suite),
	}
}

func (m *MetricsObserver) Increment() {
	m.total.Add(1)
	m.evals.Inc()
}

func (m *MetricsObserver) Fail(string) { m.fails.Inc() }

// Log is a no-op.
func (m *MetricsObserver) Log(string) {}

func (m *MetricsObserver) Total() int64 { return m.total.Load() }

// Tee fans every message out to all observers. Total reports the first
// observer's count.
func Tee(observers ...Observer) Observer {
	return tee(observers)
}

type tee []Observer

func (t tee) Fail(msg string) {
	for _, o := range t {
		o.Fail(msg)
	}
}

func (t tee) Log(msg string) {
	for _, o := range t {
		o.Log(msg)
	}
}

func (t tee) Increment() {
	for _, o := range t {
		o.Increment()
	}
}

func (t tee) Total() int64 {
	if len(t) == 0 {
		return 0
	}
	return t[0].Total()
}
