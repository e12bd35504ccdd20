/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"chainguard.dev/agentflow/agents/agent"
	"chainguard.dev/agentflow/agents/toolcall"
	"github.com/chainguard-dev/clog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrToolFailed is returned when the server reports a tool error.
var ErrToolFailed = errors.New("mcp tool reported an error")

// session is the part of *mcp.ClientSession the client uses.
type session interface {
	ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
	Close() error
}

// Client is a connection to one MCP server.
type Client struct {
	name    string
	session session
	cmd     *exec.Cmd
	tools   []*mcp.Tool
}

// Connect starts command as an MCP server and lists its tools. The
// subprocess lives until Close.
func Connect(ctx context.Context, name, command string, args ...string) (*Client, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	impl := &mcp.Implementation{Name: "agentflow", Version: "v1.0.0"}
	s, err := mcp.NewClient(impl, nil).Connect(ctx, mcp.NewCommandTransport(cmd))
	if err != nil {
		return nil, fmt.Errorf("connecting to MCP server %s: %w", name, err)
	}
	c, err := newClient(ctx, name, s)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	c.cmd = cmd
	return c, nil
}

func newClient(ctx context.Context, name string, s session) (*Client, error) {
	c := &Client{name: name, session: s}
	params := &mcp.ListToolsParams{}
	for {
		page, err := s.ListTools(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("listing tools of MCP server %s: %w", name, err)
		}
		c.tools = append(c.tools, page.Tools...)
		if page.NextCursor == "" {
			break
		}
		params.Cursor = page.NextCursor
	}
	clog.FromContext(ctx).With("server", name).
		With("tools", len(c.tools)).
		Info("Connected to MCP server")
	return c, nil
}

// Name returns the server name given to Connect.
func (c *Client) Name() string { return c.name }

// Tools returns one function tool per server tool. The server's input
// schema is used verbatim as the parameter schema.
func (c *Client) Tools() ([]agent.Tool, error) {
	out := make([]agent.Tool, 0, len(c.tools))
	for _, t := range c.tools {
		def, err := definition(t)
		if err != nil {
			return nil, err
		}
		fn, err := agent.NewFunction(def, func(ctx context.Context, args map[string]any) (any, error) {
			return c.Call(ctx, t.Name, args)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, agent.NewFunctionTool(fn))
	}
	return out, nil
}

func definition(t *mcp.Tool) (toolcall.Definition, error) {
	def := toolcall.Definition{Name: t.Name, Description: t.Description}
	if t.InputSchema == nil {
		return def, nil
	}
	b, err := json.Marshal(t.InputSchema)
	if err != nil {
		return def, fmt.Errorf("encoding schema of %s: %w", t.Name, err)
	}
	if err := json.Unmarshal(b, &def.Schema); err != nil {
		return def, fmt.Errorf("decoding schema of %s: %w", t.Name, err)
	}
	return def, nil
}

// Call invokes the named tool and joins the text content of its result.
func (c *Client) Call(ctx context.Context, tool string, args map[string]any) (string, error) {
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("calling %s on %s: %w", tool, c.name, err)
	}
	var sb strings.Builder
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("%w: %s: %s", ErrToolFailed, tool, sb.String())
	}
	return sb.String(), nil
}

// Close ends the session and stops the server process.
func (c *Client) Close() error {
	err := c.session.Close()
	if c.cmd != nil && c.cmd.Process != nil && c.cmd.ProcessState == nil {
		_ = c.cmd.Process.Kill()
	}
	return err
}
