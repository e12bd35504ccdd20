/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package googlemodel adapts the Google GenAI SDK to model.Adapter.
//
// Gemini is reached through the Gemini API with an API key, or through
// Vertex AI with WithVertex. A non-empty system instruction is sent in the
// request config on every call. The SDK never runs functions itself, so
// function calls surface to the caller as tool calls with native map
// arguments.
package googlemodel
