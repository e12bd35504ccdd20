/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package container

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
)

type execFunc func(ctx context.Context, stdin []byte, binary string, args ...string) ([]byte, error)

type verifyFunc func(ctx context.Context, reg name.Registry, auth authn.Authenticator) error

// Docker is a Runtime backed by the docker CLI.
type Docker struct {
	binary   string
	allowed  []string
	nameOpts []name.Option

	exec   execFunc
	verify verifyFunc
}

var _ Runtime = (*Docker)(nil)

// NewDocker returns a Docker runtime.
func NewDocker(opts ...Option) (*Docker, error) {
	d := &Docker{
		binary: "docker",
		exec:   runCommand,
		verify: pingRegistry,
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return d, nil
}

// Run implements Runtime. The container is removed when it exits.
func (d *Docker) Run(ctx context.Context, req Request) ([]byte, error) {
	ref, err := name.ParseReference(req.Image, d.nameOpts...)
	if err != nil {
		return nil, &ExecutionError{Image: req.Image, Err: fmt.Errorf("parsing image reference: %w", err)}
	}
	if !d.allows(req.Image, ref) {
		return nil, &ExecutionError{Image: req.Image, Err: fmt.Errorf("%w: %s", ErrImageNotAllowed, req.Image)}
	}

	args := []string{"run", "--rm"}
	for _, e := range req.Env {
		args = append(args, "-e", e)
	}
	for _, v := range req.Volumes {
		args = append(args, "-v", v)
	}
	if req.Network != "" {
		args = append(args, "--network", req.Network)
	}
	args = append(args, req.Image)
	args = append(args, req.Command...)

	clog.FromContext(ctx).With("image", ref.String()).
		With("env", len(req.Env)).
		Info("Running container")

	out, err := d.exec(ctx, nil, d.binary, args...)
	if err != nil {
		return out, &ExecutionError{Image: req.Image, Output: strings.TrimSpace(string(out)), Err: err}
	}
	return out, nil
}

// Login implements Runtime. Credentials are checked against the registry's
// token endpoint first, then passed to docker login on stdin.
func (d *Docker) Login(ctx context.Context, creds Credentials) error {
	registry := creds.Registry
	if registry == "" {
		registry = name.DefaultRegistry
	}
	reg, err := name.NewRegistry(registry, d.nameOpts...)
	if err != nil {
		return &AuthError{Registry: registry, Err: err}
	}

	auth := &authn.Basic{Username: creds.Username, Password: creds.Password}
	if err := d.verify(ctx, reg, auth); err != nil {
		return &AuthError{Registry: reg.Name(), Err: err}
	}

	out, err := d.exec(ctx, []byte(creds.Password), d.binary,
		"login", "--username", creds.Username, "--password-stdin", reg.Name())
	if err != nil {
		return &AuthError{Registry: reg.Name(), Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))}
	}
	clog.FromContext(ctx).With("registry", reg.Name()).Info("Logged in to registry")
	return nil
}

func (d *Docker) allows(image string, ref name.Reference) bool {
	if len(d.allowed) == 0 {
		return true
	}
	candidates := []string{image, ref.Context().Name()}
	for _, pattern := range d.allowed {
		for _, c := range candidates {
			if ok, _ := doublestar.Match(pattern, c); ok {
				return true
			}
		}
	}
	return false
}

func runCommand(ctx context.Context, stdin []byte, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	return cmd.CombinedOutput()
}

func pingRegistry(ctx context.Context, reg name.Registry, auth authn.Authenticator) error {
	_, err := transport.NewWithContext(ctx, reg, auth, http.DefaultTransport, []string{reg.Scope(transport.PullScope)})
	return err
}
