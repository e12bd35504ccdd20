/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package container runs tool images to completion and returns their
// combined output.
//
// Docker shells out to the docker CLI. Image references are parsed with
// go-containerregistry and may be restricted to an allow-list of glob
// patterns:
//
//	rt, err := container.NewDocker(
//		container.WithAllowedImages("cgr.dev/chainguard/*", "docker.io/library/**"),
//	)
//	out, err := rt.Run(ctx, container.Request{
//		Image: "cgr.dev/chainguard/wolfi-base",
//		Command: []string{"echo", "hello"},
//	})
//
// Login verifies the credentials against the registry before handing them
// to docker, so bad credentials fail with an *AuthError rather than at pull
// time.
package container
