/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package model

// TruncationNotice is appended to text cut down by TruncateToTokens.
const TruncationNotice = "\n\n[Content truncated due to token limit]"

// EstimateTokens approximates the token count of text at four characters
// per token. Use a vendor tokenizer when accuracy matters.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// TruncateToTokens cuts text so that its estimate fits within maxTokens and
// marks the cut with TruncationNotice. Text already within the limit is
// returned unchanged.
func TruncateToTokens(text string, maxTokens int) string {
	if EstimateTokens(text) <= maxTokens {
		return text
	}
	limit := max(maxTokens*4, 0)
	// Back off to a rune boundary.
	for limit > 0 && limit < len(text) && !isRuneStart(text[limit]) {
		limit--
	}
	return text[:limit] + TruncationNotice
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
