/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package container

import (
	"context"
	"errors"
	"fmt"
)

// ErrImageNotAllowed is returned when an image does not match the allow-list.
var ErrImageNotAllowed = errors.New("image not allowed")

// Request describes a single container run.
type Request struct {
	Image   string
	Command []string
	// Env holds KEY=VALUE pairs.
	Env []string
	// Volumes holds host:container[:mode] bind specs.
	Volumes []string
	Network string
}

// Credentials authenticate against a registry. An empty Registry means
// Docker Hub.
type Credentials struct {
	Username string
	Password string
	Registry string
}

// Runtime runs container images.
type Runtime interface {
	// Run executes the request to completion and returns its combined output.
	Run(ctx context.Context, req Request) ([]byte, error)
	// Login authenticates subsequent pulls.
	Login(ctx context.Context, creds Credentials) error
}

// ExecutionError reports a failed run with the output captured so far.
type ExecutionError struct {
	Image  string
	Output string
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("running %s: %v", e.Image, e.Err)
	}
	return fmt.Sprintf("running %s: %v: %s", e.Image, e.Err, e.Output)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// AuthError reports a failed registry login.
type AuthError struct {
	Registry string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authenticating to %s: %v", e.Registry, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
