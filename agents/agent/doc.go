/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package agent binds a model adapter to an instruction and a set of tools.
//
// An Agent does not run the tool-call loop itself; it exposes the model's
// history and response calls so an orchestrator can drive it. Tools are
// either in-process functions or container images:
//
//	add, err := agent.FunctionFor("add", "Add two integers",
//		func(ctx context.Context, args struct {
//			A int `json:"a" jsonschema:"required"`
//			B int `json:"b" jsonschema:"required"`
//		}) (any, error) {
//			return args.A + args.B, nil
//		})
//
//	calc, err := agent.New("calc", m,
//		agent.WithInstruction("You add numbers."),
//		agent.WithTools(agent.NewFunctionTool(add)),
//	)
//
// # Handoff
//
// A tool that returns an *Agent hands the conversation over to that agent.
// Container tools do this when configured with WithReturnTo: the container
// output is substituted into the "{result}" placeholder of the instruction
// template, installed on the target agent, and the target is returned.
package agent
