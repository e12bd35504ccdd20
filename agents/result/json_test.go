/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{{
		name:  "tagged fence with prose",
		input: "Here you go:\n```json\n{\"key\": \"value\"}\n```\nAnything else?",
		want:  `{"key": "value"}`,
	}, {
		name:  "untagged fence",
		input: "```\n[1, 2, 3]\n```",
		want:  `[1, 2, 3]`,
	}, {
		name:  "upper case tag",
		input: "```JSON\n{\"a\": 1}\n```",
		want:  `{"a": 1}`,
	}, {
		name:  "other language fences are skipped",
		input: "```go\nfmt.Println(1)\n```\n```json\n{\"a\": 1}\n```",
		want:  `{"a": 1}`,
	}, {
		name:  "first of several blocks",
		input: "```json\n{\"n\": 1}\n```\n```json\n{\"n\": 2}\n```",
		want:  `{"n": 1}`,
	}, {
		name:  "empty block",
		input: "```json\n```",
		want:  "",
	}, {
		name:  "unterminated block",
		input: "```json\n{\"open\": true}",
		want:  `{"open": true}`,
	}, {
		name:  "windows line endings",
		input: "```json\r\n{\"a\": 1}\r\n```",
		want:  `{"a": 1}`,
	}, {
		name:  "inline object in prose",
		input: `The verdict is {"status": "ok", "note": "braces } in strings"} as requested.`,
		want:  `{"status": "ok", "note": "braces } in strings"}`,
	}, {
		name:  "plain text",
		input: "  TECHNICAL \n",
		want:  "TECHNICAL",
	}, {
		name:  "unbalanced braces fall back to text",
		input: "{ not json",
		want:  "{ not json",
	}, {
		name:  "empty",
		input: "",
		want:  "",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.input); got != tt.want {
				t.Errorf("ExtractJSON() = %q, wanted %q", got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	type review struct {
		Status string   `json:"status"`
		Issues []string `json:"issues"`
	}

	got, err := Extract[review]("Review:\n```json\n{\"status\": \"changes\", \"issues\": [\"naming\"]}\n```")
	if err != nil {
		t.Fatalf("Extract() = %v", err)
	}
	if diff := cmp.Diff(review{Status: "changes", Issues: []string{"naming"}}, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Extract[review]("```json\n```"); err == nil {
		t.Error("Extract() on empty block: expected error")
	}
	if _, err := Extract[review]("```json\n{\"status\": \n```"); err == nil {
		t.Error("Extract() on malformed JSON: expected error")
	}
}

func TestField(t *testing.T) {
	text := "```json\n{\"review\": {\"status\": \"approved\", \"score\": 9}, \"files\": [\"a.go\", \"b.go\"]}\n```"

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{path: "review.status", want: "approved", wantOK: true},
		{path: "review.score", want: float64(9), wantOK: true},
		{path: "files.1", want: "b.go", wantOK: true},
		{path: "files.7", wantOK: false},
		{path: "review.missing", wantOK: false},
		{path: "review.status.deeper", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Field(text, tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Field(%q) ok = %v, wanted %v", tt.path, ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Field(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}

	if _, ok := Field("no json here", "a"); ok {
		t.Error("Field() on plain text: expected miss")
	}
}
