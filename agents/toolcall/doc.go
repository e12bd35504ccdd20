/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolcall holds the provider-independent shapes exchanged between
// agents and models when tools are involved.
//
// A Definition describes a tool once. Each vendor adapter owns a Format, a
// placeholder template that Render fills in to produce the vendor's tool
// declaration:
//
//	def := toolcall.Definition{
//		Name:        "get_weather",
//		Description: "Look up the weather for a city",
//		Parameters: []toolcall.Parameter{
//			{Name: "city", Type: "string", Required: true},
//		},
//	}
//	decl := def.Render(toolcall.DefaultFormat)
//
// Models answer with Calls, which the agent manager canonicalises with the
// model's KeysInToolOutput and dispatches; each dispatch produces a Response.
package toolcall
