/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package model

// Input is user input handed to an agent: either plain text or a list of
// messages. The zero value means "no input".
type Input struct {
	msgs []Message
}

// Text wraps s as a single user message. An empty string is still input.
func Text(s string) Input {
	return Input{msgs: []Message{{Role: RoleUser, Content: s}}}
}

// FromMessages wraps pre-built messages.
func FromMessages(msgs ...Message) Input {
	if len(msgs) == 0 {
		return Input{}
	}
	return Input{msgs: append([]Message(nil), msgs...)}
}

// IsZero reports whether the input is absent.
func (in Input) IsZero() bool { return len(in.msgs) == 0 }

// Messages returns a copy of the input messages.
func (in Input) Messages() []Message { return append([]Message(nil), in.msgs...) }

// String returns the concatenated text content of the input.
func (in Input) String() string {
	var out string
	for i, m := range in.msgs {
		if i > 0 {
			out += "\n"
		}
		out += m.Content
	}
	return out
}
