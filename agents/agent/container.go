/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"chainguard.dev/agentflow/agents/container"
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
	"chainguard.dev/agentflow/agents/toolcall/params"
	"github.com/chainguard-dev/clog"
)

// EnvVar is an environment variable of a Container. Variables without a
// Value are declared to the model as parameters of the tool.
type EnvVar struct {
	Name        string
	Type        string
	Description string
	Value       string
}

// ReturnTo hands the conversation to Agent after the container runs.
// Instruction is a template whose "{result}" placeholder receives the
// container output.
type ReturnTo struct {
	Agent       *Agent
	Instruction string
}

// Container is a tool that runs an image to completion. Every run is a fresh
// container; nothing persists between calls.
type Container struct {
	Name        string
	Description string
	Image       string
	Command     []string
	Environment []EnvVar
	Volumes     []string
	Network     string
	Auth        *container.Credentials
	ReturnTo    *ReturnTo
	// MaxOutputTokens clips the output to an estimated token budget. Zero
	// means unlimited.
	MaxOutputTokens int

	runtime   container.Runtime
	loginOnce sync.Once
	loginErr  error
}

// ContainerOption configures a Container.
type ContainerOption func(*Container) error

// WithCommand sets the command run in the image.
func WithCommand(cmd ...string) ContainerOption {
	return func(c *Container) error {
		c.Command = cmd
		return nil
	}
}

// WithEnvironment declares environment variables.
func WithEnvironment(vars ...EnvVar) ContainerOption {
	return func(c *Container) error {
		for _, v := range vars {
			if v.Name == "" {
				return errors.New("environment variable name cannot be empty")
			}
		}
		c.Environment = append(c.Environment, vars...)
		return nil
	}
}

// WithVolumes adds host:container[:mode] bind mounts.
func WithVolumes(volumes ...string) ContainerOption {
	return func(c *Container) error {
		c.Volumes = append(c.Volumes, volumes...)
		return nil
	}
}

// WithNetwork sets the container network.
func WithNetwork(network string) ContainerOption {
	return func(c *Container) error {
		c.Network = network
		return nil
	}
}

// WithMaxOutputTokens clips container output to roughly n tokens.
func WithMaxOutputTokens(n int) ContainerOption {
	return func(c *Container) error {
		if n <= 0 {
			return fmt.Errorf("max output tokens must be positive, got %d", n)
		}
		c.MaxOutputTokens = n
		return nil
	}
}

// WithAuth logs in to a registry before the first run.
func WithAuth(creds container.Credentials) ContainerOption {
	return func(c *Container) error {
		if creds.Username == "" || creds.Password == "" {
			return errors.New("registry credentials require a username and password")
		}
		c.Auth = &creds
		return nil
	}
}

// WithReturnTo hands the conversation to target after each run.
func WithReturnTo(target *Agent, instruction string) ContainerOption {
	return func(c *Container) error {
		if target == nil {
			return errors.New("return_to agent cannot be nil")
		}
		c.ReturnTo = &ReturnTo{Agent: target, Instruction: instruction}
		return nil
	}
}

// WithRuntime sets the runtime used to run the image. The default is a
// container.Docker created on first use.
func WithRuntime(rt container.Runtime) ContainerOption {
	return func(c *Container) error {
		if rt == nil {
			return errors.New("runtime cannot be nil")
		}
		c.runtime = rt
		return nil
	}
}

// NewContainer returns a Container tool.
func NewContainer(name, description, image string, opts ...ContainerOption) (*Container, error) {
	switch {
	case name == "":
		return nil, errors.New("container name cannot be empty")
	case description == "":
		return nil, errors.New("container description cannot be empty")
	case image == "":
		return nil, errors.New("container image cannot be empty")
	}
	c := &Container{Name: name, Description: description, Image: image}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("container %s: %w", name, err)
		}
	}
	return c, nil
}

// Definition declares one required parameter per environment variable
// without a fixed Value.
func (c *Container) Definition() toolcall.Definition {
	def := toolcall.Definition{Name: c.Name, Description: c.Description}
	for _, v := range c.Environment {
		if v.Value != "" {
			continue
		}
		def.Parameters = append(def.Parameters, toolcall.Parameter{
			Name:        v.Name,
			Type:        v.Type,
			Description: v.Description,
			Required:    true,
		})
	}
	return def
}

// Run merges args into the environment, runs the image and returns its
// output. With ReturnTo set the output is installed into the target agent's
// instruction and the target agent is returned instead.
func (c *Container) Run(ctx context.Context, args map[string]any) (any, error) {
	rt, err := c.runtimeFor(ctx)
	if err != nil {
		return nil, err
	}

	env := make(map[string]string, len(c.Environment)+len(args))
	for _, v := range c.Environment {
		if v.Value != "" {
			env[v.Name] = v.Value
			continue
		}
		s, err := params.String(args, v.Name)
		if err != nil {
			return nil, err
		}
		env[v.Name] = s
	}
	for k := range args {
		if _, ok := env[k]; ok {
			continue
		}
		s, err := params.String(args, k)
		if err != nil {
			return nil, err
		}
		env[k] = s
	}
	pairs := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		pairs = append(pairs, k+"="+env[k])
	}

	out, err := rt.Run(ctx, container.Request{
		Image:   c.Image,
		Command: c.Command,
		Env:     pairs,
		Volumes: c.Volumes,
		Network: c.Network,
	})
	if err != nil {
		return nil, err
	}
	result := string(out)
	if c.MaxOutputTokens > 0 {
		result = model.TruncateToTokens(result, c.MaxOutputTokens)
	}

	if c.ReturnTo != nil && c.ReturnTo.Agent != nil {
		clog.FromContext(ctx).With("container", c.Name).
			With("agent", c.ReturnTo.Agent.Name()).
			Info("Returning container output to agent")
		if c.ReturnTo.Instruction != "" {
			c.ReturnTo.Agent.SetInstruction(toolcall.ReplaceResult(c.ReturnTo.Instruction, result))
		}
		return c.ReturnTo.Agent, nil
	}
	return result, nil
}

func (c *Container) runtimeFor(ctx context.Context) (container.Runtime, error) {
	if c.runtime == nil {
		d, err := container.NewDocker()
		if err != nil {
			return nil, err
		}
		c.runtime = d
	}
	if c.Auth != nil {
		c.loginOnce.Do(func() { c.loginErr = c.runtime.Login(ctx, *c.Auth) })
		if c.loginErr != nil {
			return nil, c.loginErr
		}
	}
	return c.runtime, nil
}

func (c *Container) String() string {
	return fmt.Sprintf("Container(name=%q, image=%q)", c.Name, c.Image)
}
