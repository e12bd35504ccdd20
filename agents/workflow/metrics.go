/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentflow_workflow_runs_total",
			Help: "Total number of workflow runs by outcome",
		},
		[]string{"workflow", "status"},
	)

	stepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentflow_workflow_steps_total",
			Help: "Total number of workflow steps executed",
		},
		[]string{"workflow", "step"},
	)

	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentflow_workflow_step_duration_seconds",
			Help:    "Wall time of a workflow step, including tool rounds and handoffs",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"workflow", "step"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
