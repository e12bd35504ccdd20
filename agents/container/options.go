/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package container

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/go-containerregistry/pkg/name"
)

// Option configures a Docker runtime.
type Option func(*Docker) error

// WithBinary sets the docker-compatible CLI to invoke (docker, podman, nerdctl).
func WithBinary(path string) Option {
	return func(d *Docker) error {
		if path == "" {
			return errors.New("binary cannot be empty")
		}
		d.binary = path
		return nil
	}
}

// WithAllowedImages restricts runs to images matching one of the glob
// patterns. Patterns are matched against the reference as written and
// against its fully qualified repository.
func WithAllowedImages(patterns ...string) Option {
	return func(d *Docker) error {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("invalid image pattern %q", p)
			}
		}
		d.allowed = append(d.allowed, patterns...)
		return nil
	}
}

// WithNameOptions provides name.Options used when parsing image references
// and registries (e.g. name.Insecure).
func WithNameOptions(opts ...name.Option) Option {
	return func(d *Docker) error {
		d.nameOpts = append(d.nameOpts, opts...)
		return nil
	}
}
