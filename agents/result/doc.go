/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package result pulls structured data out of free-form model answers.

Models often wrap JSON in a fenced code block or surround it with prose.
ExtractJSON returns the payload, Extract decodes it into a Go type and Field
looks up a single dotted path:

	verdict, err := result.Extract[Verdict](resp.Content)

	if v, ok := result.Field(resp.Content, "review.status"); ok && v == "approved" {
		// ...
	}

Workflow conditions use Field to route on a value the previous step
reported.
*/
package result
