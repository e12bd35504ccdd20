/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/agentflow/agents/toolcall"
)

// ToolKind tags the variant held by a Tool.
type ToolKind int

const (
	FunctionKind ToolKind = iota + 1
	ContainerKind
)

func (k ToolKind) String() string {
	switch k {
	case FunctionKind:
		return "function"
	case ContainerKind:
		return "container"
	default:
		return fmt.Sprintf("ToolKind(%d)", int(k))
	}
}

// Tool is either a Function or a Container. Tools compare equal when they
// wrap the same Function or Container.
type Tool struct {
	kind ToolKind
	fn   *Function
	ctr  *Container
}

// NewFunctionTool wraps fn.
func NewFunctionTool(fn *Function) Tool { return Tool{kind: FunctionKind, fn: fn} }

// NewContainerTool wraps c.
func NewContainerTool(c *Container) Tool { return Tool{kind: ContainerKind, ctr: c} }

// Kind reports which variant t holds. The zero Tool has kind 0.
func (t Tool) Kind() ToolKind { return t.kind }

// Function returns the wrapped Function, or nil.
func (t Tool) Function() *Function { return t.fn }

// Container returns the wrapped Container, or nil.
func (t Tool) Container() *Container { return t.ctr }

// Name returns the name the model uses to call t.
func (t Tool) Name() string {
	switch t.kind {
	case FunctionKind:
		return t.fn.Definition.Name
	case ContainerKind:
		return t.ctr.Name
	default:
		return ""
	}
}

// Definition returns the tool declaration.
func (t Tool) Definition() toolcall.Definition {
	switch t.kind {
	case FunctionKind:
		return t.fn.Definition
	case ContainerKind:
		return t.ctr.Definition()
	default:
		return toolcall.Definition{}
	}
}

// Invoke runs the tool with decoded arguments. A returned *Agent requests a
// handoff.
func (t Tool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	switch t.kind {
	case FunctionKind:
		return t.fn.Handler(ctx, args)
	case ContainerKind:
		return t.ctr.Run(ctx, args)
	default:
		return nil, errors.New("invoking zero tool")
	}
}

// Handler executes a function tool.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Function is an in-process tool.
type Function struct {
	Definition toolcall.Definition
	Handler    Handler
}

// NewFunction validates def and returns a Function.
func NewFunction(def toolcall.Definition, h Handler) (*Function, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("tool %s: handler cannot be nil", def.Name)
	}
	return &Function{Definition: def, Handler: h}, nil
}

// FunctionFor returns a Function whose parameters are reflected from T and
// whose arguments are decoded into T before fn runs.
func FunctionFor[T any](name, description string, fn func(context.Context, T) (any, error)) (*Function, error) {
	def, err := toolcall.DefinitionFor[T](name, description)
	if err != nil {
		return nil, err
	}
	return NewFunction(def, func(ctx context.Context, args map[string]any) (any, error) {
		in, err := toolcall.Decode[T](args)
		if err != nil {
			return nil, fmt.Errorf("decoding arguments: %w", err)
		}
		return fn(ctx, in)
	})
}
