/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package modeltest provides a scripted model.Adapter for tests.
package modeltest

import (
	"context"
	"errors"
	"iter"
	"sync"

	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/toolcall"
)

// ErrExhausted is returned once every scripted response has been consumed.
var ErrExhausted = errors.New("modeltest: no scripted response left")

// Stub is an OpenAI-shaped adapter that replays scripted responses and
// records the history it was called with.
type Stub struct {
	model.Base

	mu        sync.Mutex
	responses []model.Response
	streams   [][]model.Chunk
	err       error

	// Calls and StreamCalls count GenerateResponse and
	// GenerateStreamResponse invocations.
	Calls       int
	StreamCalls int
	// Histories holds a snapshot of the history for every call, batch and
	// streaming alike, in call order.
	Histories [][]model.Message
	// ToolSets holds the tool names declared at every call.
	ToolSets [][]string
}

var _ model.Adapter = (*Stub)(nil)

// New returns a Stub that answers batch calls with responses in order.
func New(name string, responses ...model.Response) *Stub {
	base, err := model.NewBase(name, toolcall.DefaultFormat)
	if err != nil {
		panic(err)
	}
	return &Stub{Base: base, responses: responses}
}

// WithStreams scripts the chunk sequences returned by streaming calls. When
// no stream is left, a streaming call replays the next batch response as a
// single chunk.
func (s *Stub) WithStreams(streams ...[]model.Chunk) *Stub {
	s.streams = streams
	return s
}

// WithError makes every subsequent call fail with err.
func (s *Stub) WithError(err error) *Stub {
	s.err = err
	return s
}

// Kind implements model.Adapter.
func (s *Stub) Kind() model.Kind { return model.OpenAILike }

func (s *Stub) record() {
	s.Histories = append(s.Histories, s.Messages())
	var names []string
	for _, d := range s.Tools() {
		names = append(names, d.Name)
	}
	s.ToolSets = append(s.ToolSets, names)
}

func (s *Stub) next() (model.Response, error) {
	if s.err != nil {
		return model.Response{}, s.err
	}
	if len(s.responses) == 0 {
		return model.Response{}, ErrExhausted
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r, nil
}

// GenerateResponse implements model.Adapter.
func (s *Stub) GenerateResponse(context.Context) (model.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	s.record()
	return s.next()
}

// GenerateStreamResponse implements model.Adapter.
func (s *Stub) GenerateStreamResponse(context.Context) iter.Seq2[model.Chunk, error] {
	s.mu.Lock()
	s.StreamCalls++
	s.record()
	var chunks []model.Chunk
	var err error
	if len(s.streams) > 0 && s.err == nil {
		chunks, s.streams = s.streams[0], s.streams[1:]
	} else {
		var r model.Response
		r, err = s.next()
		chunks = []model.Chunk{{Content: r.Content, ToolCalls: r.ToolCalls}}
	}
	s.mu.Unlock()

	return func(yield func(model.Chunk, error) bool) {
		if err != nil {
			yield(model.Chunk{}, err)
			return
		}
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

// AssistantMessage implements model.Adapter.
func (s *Stub) AssistantMessage(resp model.Response) []model.Message {
	return []model.Message{{Role: model.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls}}
}

// ToolMessage implements model.Adapter.
func (s *Stub) ToolMessage(results []toolcall.Response) []model.Message {
	out := make([]model.Message, 0, len(results))
	for _, r := range results {
		out = append(out, model.Message{Role: model.RoleTool, Content: r.Result, ToolCallID: r.ID})
	}
	return out
}

// Remaining reports how many scripted batch responses are left.
func (s *Stub) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.responses)
}
