/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package params provides typed access to decoded tool-call arguments.
//
// Arguments arrive as map[string]any after JSON decoding, so numbers are
// float64 regardless of the declared parameter type. Extract and
// ExtractOptional paper over that for the common integer cases, and String
// renders scalar arguments for consumers that need text, such as container
// environment variables.
package params
