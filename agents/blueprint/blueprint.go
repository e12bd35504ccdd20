/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package blueprint

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Blueprint is the root of a blueprint document.
type Blueprint struct {
	Agents    []Agent    `yaml:"agents"`
	Workflows []Workflow `yaml:"workflows"`
}

// Agent declares one agent and its tools.
type Agent struct {
	Name        string         `yaml:"name"`
	Model       string         `yaml:"model"`
	Instruction string         `yaml:"instruction"`
	Kwargs      map[string]any `yaml:"kwargs"`
	Containers  []Container    `yaml:"containers"`
	MCPServers  []MCPServer    `yaml:"mcp_servers"`
}

// Container declares a container tool.
type Container struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Image       string    `yaml:"image"`
	Command     []string  `yaml:"command"`
	Environment []EnvVar  `yaml:"environment"`
	Volumes     []string  `yaml:"volumes"`
	Network     string    `yaml:"network"`
	Auth        *Auth     `yaml:"auth"`
	ReturnTo    *ReturnTo `yaml:"return_to"`
	// MaxOutputTokens clips the output handed back to the model.
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

// EnvVar declares a container environment variable. Without a Value the
// model must supply it as a tool argument.
type EnvVar struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Value       string `yaml:"value"`
}

// Auth holds registry credentials. PasswordEnv names an environment
// variable holding the password, so secrets stay out of the document.
type Auth struct {
	Registry    string `yaml:"registry"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	PasswordEnv string `yaml:"password_env"`
}

func (a Auth) password() string {
	if a.PasswordEnv != "" {
		return os.Getenv(a.PasswordEnv)
	}
	return a.Password
}

// ReturnTo hands control to another agent once the container finishes.
// "{result}" in Instruction is replaced by the container output.
type ReturnTo struct {
	Agent       string `yaml:"agent"`
	Instruction string `yaml:"instruction"`
}

// MCPServer declares an MCP server whose tools the agent can call.
type MCPServer struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Workflow declares a workflow. Start defaults to the first step.
type Workflow struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Start       string `yaml:"start"`
	Steps       []Step `yaml:"steps"`
}

// Step declares a workflow step and its successors.
type Step struct {
	Name        string `yaml:"name"`
	Agent       string `yaml:"agent"`
	Description string `yaml:"description"`
	Next        []Next `yaml:"next"`
}

// Next is a successor of a step, taken when When holds or When is absent.
type Next struct {
	Step string `yaml:"step"`
	When *When  `yaml:"when"`
}

// When is a successor condition: either Contains, or Field with Equals.
type When struct {
	Contains string `yaml:"contains"`
	Field    string `yaml:"field"`
	Equals   any    `yaml:"equals"`
}

// Load parses and validates a blueprint. Unknown keys are rejected.
func Load(r io.Reader) (*Blueprint, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var bp Blueprint
	if err := dec.Decode(&bp); err != nil {
		if errors.Is(err, io.EOF) {
			return &bp, nil
		}
		return nil, fmt.Errorf("parsing blueprint: %w", err)
	}
	if err := bp.Validate(); err != nil {
		return nil, err
	}
	return &bp, nil
}

// LoadFile loads the blueprint at path.
func LoadFile(path string) (*Blueprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Validate checks names and references within the document. Container
// return_to targets may also name agents registered outside it, so they
// are resolved by Apply.
func (bp *Blueprint) Validate() error {
	var errs []error
	agents := map[string]bool{}
	for i, a := range bp.Agents {
		switch {
		case a.Name == "":
			errs = append(errs, fmt.Errorf("agents[%d]: name is required", i))
		case agents[a.Name]:
			errs = append(errs, fmt.Errorf("agents[%d]: duplicate agent %q", i, a.Name))
		}
		agents[a.Name] = true
		if a.Model == "" {
			errs = append(errs, fmt.Errorf("agent %q: model is required", a.Name))
		}
		for j, c := range a.Containers {
			if c.Name == "" || c.Image == "" {
				errs = append(errs, fmt.Errorf("agent %q: containers[%d]: name and image are required", a.Name, j))
			}
			if c.ReturnTo != nil && c.ReturnTo.Agent == "" {
				errs = append(errs, fmt.Errorf("agent %q: container %q: return_to.agent is required", a.Name, c.Name))
			}
		}
		for j, s := range a.MCPServers {
			if s.Name == "" || s.Command == "" {
				errs = append(errs, fmt.Errorf("agent %q: mcp_servers[%d]: name and command are required", a.Name, j))
			}
		}
	}

	workflows := map[string]bool{}
	for i, w := range bp.Workflows {
		switch {
		case w.Name == "":
			errs = append(errs, fmt.Errorf("workflows[%d]: name is required", i))
		case workflows[w.Name]:
			errs = append(errs, fmt.Errorf("workflows[%d]: duplicate workflow %q", i, w.Name))
		}
		workflows[w.Name] = true
		errs = append(errs, w.validate()...)
	}
	return errors.Join(errs...)
}

func (w Workflow) validate() []error {
	var errs []error
	steps := map[string]bool{}
	for _, s := range w.Steps {
		if s.Name == "" || s.Agent == "" {
			errs = append(errs, fmt.Errorf("workflow %q: every step needs a name and an agent", w.Name))
		}
		if steps[s.Name] {
			errs = append(errs, fmt.Errorf("workflow %q: duplicate step %q", w.Name, s.Name))
		}
		steps[s.Name] = true
	}
	if w.Start != "" && !steps[w.Start] {
		errs = append(errs, fmt.Errorf("workflow %q: start step %q is not defined", w.Name, w.Start))
	}
	for _, s := range w.Steps {
		for _, n := range s.Next {
			if !steps[n.Step] {
				errs = append(errs, fmt.Errorf("workflow %q: step %q: next step %q is not defined", w.Name, s.Name, n.Step))
			}
			if n.When == nil {
				continue
			}
			if (n.When.Contains == "") == (n.When.Field == "") {
				errs = append(errs, fmt.Errorf("workflow %q: step %q: when needs exactly one of contains or field", w.Name, s.Name))
			}
		}
	}
	return errs
}
