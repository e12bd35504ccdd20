/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package mcptool exposes the tools of a Model Context Protocol server as
// agent function tools.
//
// Connect starts the server as a subprocess speaking MCP over stdio and
// lists its tools:
//
//	c, err := mcptool.Connect(ctx, "files", "mcp-server-filesystem", "/srv/data")
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	tools, err := c.Tools()
//	a, err := agent.New("librarian", m, agent.WithTools(tools...))
package mcptool
