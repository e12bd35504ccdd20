/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package workflow sequences agents into named workflows.
//
// A Workflow is a graph of Steps. Each Step runs one agent through the
// agent manager; its answer becomes the input of the next step. A step may
// have several successors guarded by Conditions, and the runner follows the
// first one that holds:
//
//	wm := workflow.New(am)
//	wf := wm.CreateWorkflow("support", "Route and answer questions")
//	classify, _ := wm.CreateStep(classifier, "classify", "")
//	tech, _ := wm.CreateStep(technical, "technical", "")
//	general, _ := wm.CreateStep(generalist, "general", "")
//	wf.StartsWith(classify).
//		When(tech, workflow.ContentContains("TECHNICAL"))
//	classify.Then(general)
//
//	results, err := wm.Run(ctx, "support", model.Text("Why does my build fail?"))
//
// Stream runs the same graph with streamed step answers and reports
// progress through Callbacks.
package workflow
