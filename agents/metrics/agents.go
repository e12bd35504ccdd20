/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics exposes OpenTelemetry counters for agent runs.
package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// AttributeEnricher returns base (model, tool or from/to attributes) extended
// with attributes derived from ctx.
type AttributeEnricher func(ctx context.Context, base []attribute.KeyValue) []attribute.KeyValue

// MeterName is the instrumentation scope used by New.
const MeterName = "chainguard.dev/agentflow"

// Agents records OpenTelemetry counters for agent runs: token usage per
// model call, tool dispatches and handoffs between agents.
//
// A nil *Agents is valid and records nothing.
type Agents struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	toolCalls        metric.Int64Counter
	handoffs         metric.Int64Counter
	attrEnricher     AttributeEnricher
}

// New creates counters on the global meter provider.
func New() *Agents {
	return NewWithProvider(otel.GetMeterProvider(), MeterName)
}

// NewWithProvider creates counters on the given provider. A counter that
// cannot be created is replaced by a no-op and a warning is logged, so
// metrics never make a run fail.
func NewWithProvider(mp metric.MeterProvider, meterName string) *Agents {
	meter := mp.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))
	return &Agents{
		promptTokens:     counter(meter, meterName, "agentflow.token.prompt", "The number of prompt tokens used", "{tokens}"),
		completionTokens: counter(meter, meterName, "agentflow.token.completion", "The number of completion tokens used", "{tokens}"),
		toolCalls:        counter(meter, meterName, "agentflow.tool.calls", "The number of tool calls dispatched", "{calls}"),
		handoffs:         counter(meter, meterName, "agentflow.handoffs", "The number of handoffs between agents", "{handoffs}"),
	}
}

func counter(meter metric.Meter, meterName, name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		slog.Warn("Failed to create counter, metric will be disabled", "error", err, "meter", meterName, "counter", name)
		return noop.Int64Counter{}
	}
	return c
}

// SetAttributeEnricher sets the attribute enricher, called before every
// recording to add contextual attributes such as the workflow and step.
func (m *Agents) SetAttributeEnricher(enricher AttributeEnricher) {
	if m == nil {
		return
	}
	m.attrEnricher = enricher
}

func (m *Agents) attributes(ctx context.Context, base []attribute.KeyValue, extra []attribute.KeyValue) metric.AddOption {
	if m.attrEnricher != nil {
		base = m.attrEnricher(ctx, base)
	}
	return metric.WithAttributes(append(base, extra...)...)
}

// RecordTokens records prompt and completion token usage for one model call.
func (m *Agents) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64, attrs ...attribute.KeyValue) {
	if m == nil {
		return
	}
	opt := m.attributes(ctx, []attribute.KeyValue{attribute.String("model", model)}, attrs)
	m.promptTokens.Add(ctx, promptTokens, opt)
	m.completionTokens.Add(ctx, completionTokens, opt)
}

// RecordToolCall records one tool dispatch.
func (m *Agents) RecordToolCall(ctx context.Context, model, toolName string, attrs ...attribute.KeyValue) {
	if m == nil {
		return
	}
	m.toolCalls.Add(ctx, 1, m.attributes(ctx, []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("tool", toolName),
	}, attrs))
}

// RecordHandoff records control passing from one agent to another.
func (m *Agents) RecordHandoff(ctx context.Context, from, to string, attrs ...attribute.KeyValue) {
	if m == nil {
		return
	}
	m.handoffs.Add(ctx, 1, m.attributes(ctx, []attribute.KeyValue{
		attribute.String("from", from),
		attribute.String("to", to),
	}, attrs))
}
