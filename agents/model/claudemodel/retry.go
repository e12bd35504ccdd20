/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudemodel

import (
	"errors"

	"chainguard.dev/agentflow/agents/retry"
	"github.com/anthropics/anthropic-sdk-go"
)

// isRetryable checks if an error is a retryable Claude API error:
// rate limit, overloaded or a transient server error.
func isRetryable(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return retry.TransientStatus(apiErr.StatusCode)
	}
	return false
}
