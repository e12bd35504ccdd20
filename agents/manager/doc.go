/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package manager drives agents through the tool-call loop.
//
// A run initializes the named agent (system message, tools, user input) and
// asks its model for a response. While the response requests tools, each
// call is dispatched in order against the agent's tools and the assistant
// turn plus the tool results are appended to the history before the model
// is asked again. Tool failures never abort the loop; they are reported to
// the model as text:
//
//	Error: Invalid JSON in arguments
//	Error: Tool '<name>' not found
//	Error executing tool: <message>
//
// A tool that returns an *agent.Agent hands off: the remaining calls of the
// batch are dropped, the agent is registered if new and run with the
// original input. Tool rounds and handoffs together are bounded by
// WithMaxDepth.
//
// Usage:
//
//	mgr, err := manager.New(manager.WithMaxDepth(8))
//	if err != nil {
//		return err
//	}
//	if err := mgr.Add(calc); err != nil {
//		return err
//	}
//	resp, err := mgr.Run(ctx, "calc", model.Text("what is 2+3?"))
//
// RunStream streams the final answer. An agent at registry position 0 with
// no tools is streamed directly; otherwise a batch call detects tool calls
// first and the answer that follows the tool round is streamed.
package manager
