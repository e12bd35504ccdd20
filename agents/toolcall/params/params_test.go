/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package params_test

import (
	"testing"

	"chainguard.dev/agentflow/agents/toolcall/params"
)

// Arguments as a model sends them: JSON numbers arrive as float64.
var weatherArgs = map[string]any{
	"city":     "Lisbon",
	"days":     float64(3),
	"metric":   true,
	"radiusKm": float64(12.5),
	"station":  float64(9999999999),
	"tags":     []any{"coast", "sun"},
	"note":     nil,
}

func TestExtract(t *testing.T) {
	if got, err := params.Extract[string](weatherArgs, "city"); err != nil || got != "Lisbon" {
		t.Errorf("Extract[string]: got = %q, %v, wanted = Lisbon", got, err)
	}
	if got, err := params.Extract[int](weatherArgs, "days"); err != nil || got != 3 {
		t.Errorf("Extract[int]: got = %d, %v, wanted = 3", got, err)
	}
	if got, err := params.Extract[int32](weatherArgs, "days"); err != nil || got != 3 {
		t.Errorf("Extract[int32]: got = %d, %v, wanted = 3", got, err)
	}
	if got, err := params.Extract[int64](weatherArgs, "station"); err != nil || got != 9999999999 {
		t.Errorf("Extract[int64]: got = %d, %v, wanted = 9999999999", got, err)
	}
	if got, err := params.Extract[float32](weatherArgs, "radiusKm"); err != nil || got != 12.5 {
		t.Errorf("Extract[float32]: got = %v, %v, wanted = 12.5", got, err)
	}
	if got, err := params.Extract[bool](weatherArgs, "metric"); err != nil || !got {
		t.Errorf("Extract[bool]: got = %v, %v, wanted = true", got, err)
	}
	if got, err := params.Extract[[]any](weatherArgs, "tags"); err != nil || len(got) != 2 {
		t.Errorf("Extract[[]any]: got = %v, %v, wanted two tags", got, err)
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
		want string
	}{{
		name: "missing",
		run:  func() error { _, err := params.Extract[string](weatherArgs, "country"); return err },
		want: "country parameter is required",
	}, {
		name: "wrong type",
		run:  func() error { _, err := params.Extract[string](weatherArgs, "days"); return err },
		want: "days parameter must be of type string, got float64",
	}, {
		name: "string is not numeric",
		run:  func() error { _, err := params.Extract[int](weatherArgs, "city"); return err },
		want: "city parameter must be of type int, got string",
	}, {
		name: "optional wrong type",
		run:  func() error { _, err := params.ExtractOptional(weatherArgs, "metric", "yes"); return err },
		want: "metric parameter must be of type string, got bool",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if err == nil || err.Error() != tt.want {
				t.Errorf("error: got = %v, wanted = %q", err, tt.want)
			}
		})
	}
}

func TestExtractOptional(t *testing.T) {
	if got, err := params.ExtractOptional(weatherArgs, "units", "celsius"); err != nil || got != "celsius" {
		t.Errorf("default: got = %q, %v, wanted = celsius", got, err)
	}
	if got, err := params.ExtractOptional(weatherArgs, "days", 7); err != nil || got != 3 {
		t.Errorf("present: got = %d, %v, wanted = 3", got, err)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"city", "Lisbon"},
		{"days", "3"},
		{"radiusKm", "12.5"},
		{"station", "9999999999"},
		{"metric", "true"},
		{"tags", `["coast","sun"]`},
		{"note", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := params.String(weatherArgs, tt.key)
			if err != nil {
				t.Fatalf("String: %v", err)
			}
			if got != tt.want {
				t.Errorf("String: got = %q, wanted = %q", got, tt.want)
			}
		})
	}

	if _, err := params.String(weatherArgs, "country"); err == nil {
		t.Error("String of missing key: got = nil, wanted error")
	}
	if got, _ := params.String(map[string]any{"n": 7}, "n"); got != "7" {
		t.Errorf("String of int: got = %q, wanted = 7", got)
	}
}
