/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package evals checks completed agent runs.
//
// A Check inspects one agenttrace.Trace and reports problems to an Observer.
// Checks are attached to a manager through a trace callback:
//
//	obs := evals.NewCollector()
//	tracer := agenttrace.ByCode(evals.Inject(obs,
//		evals.NoToolErrors(),
//		evals.HandedOffTo("reviewer"),
//	))
//	m, _ := manager.New(manager.WithTracer(tracer))
//
// Observers decide what a failure means. Collector keeps messages for later
// inspection, MetricsObserver counts them in Prometheus and the evalstest
// package turns them into test failures.
package evals
