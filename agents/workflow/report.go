/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

const reportContentWidth = 60

// WriteReport renders results as a markdown table, one row per executed
// step.
func WriteReport(w io.Writer, results Results) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Behavior: tw.Behavior{TrimSpace: tw.Off},
		}),
		tablewriter.WithHeader([]string{"#", "Step", "Agent", "Duration", "Tool calls", "Answer"}),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)

	for i, r := range results {
		if err := table.Append([]string{
			fmt.Sprint(i + 1),
			r.Step,
			r.Agent,
			r.Duration.Round(time.Millisecond).String(),
			fmt.Sprint(len(r.Response.ToolCalls)),
			clip(r.Response.Content, reportContentWidth),
		}); err != nil {
			return fmt.Errorf("appending row for %s: %w", r.Step, err)
		}
	}
	return table.Render()
}

// clip flattens s to one line and shortens it to at most n runes.
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
