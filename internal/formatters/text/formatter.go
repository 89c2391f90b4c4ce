// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"transcript-scan/internal/extract"
	"transcript-scan/internal/formatters"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
			"cyan":   color.New(color.FgCyan),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	results := formatters.FilterByConfidence(report.Results, options)
	if len(results) == 0 {
		return "No fields extracted at the specified confidence levels.", nil
	}

	var builder strings.Builder
	f.sortResults(results)

	width := terminalWidth()

	f.colors["white"].Fprintf(&builder, "%s extraction results\n", report.DocumentType)
	builder.WriteString(strings.Repeat("-", min(width, 72)) + "\n")

	for _, r := range results {
		f.appendResult(&builder, r, options, width)
	}

	successes := 0
	for _, r := range results {
		if r.Success {
			successes++
		}
	}
	builder.WriteString(strings.Repeat("-", min(width, 72)) + "\n")
	fmt.Fprintf(&builder, "%d/%d fields extracted", successes, len(results))

	if len(report.Suggestions) > 0 {
		fmt.Fprintf(&builder, ", %d pattern suggestion(s) generated\n", len(report.Suggestions))
		for _, s := range report.Suggestions {
			f.colors["cyan"].Fprintf(&builder, "  suggestion %s for %s (confidence %.2f)\n", s.SuggestionID, s.PatternID, s.Confidence)
			fmt.Fprintf(&builder, "    %s\n", s.Reasoning)
			if options.Verbose {
				fmt.Fprintf(&builder, "    expression: %s\n", s.Expression)
			}
		}
	} else {
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

func (f *Formatter) appendResult(builder *strings.Builder, r extract.ExtractionResult, options formatters.FormatterOptions, width int) {
	levelColor := f.levelColor(r.Level)

	if !r.Success {
		f.colors["red"].Fprintf(builder, "  MISS ")
		fmt.Fprintf(builder, "%s / %s\n", r.FormName, r.FieldName)
		return
	}

	levelColor.Fprintf(builder, "  %-6s", strings.ToUpper(string(r.Level)))
	fmt.Fprintf(builder, "%s / %s = %s (%.2f)\n", r.FormName, r.FieldName, r.Value, r.Confidence)

	if options.ShowContext && r.Context != "" {
		ctx := strings.ReplaceAll(r.Context, "\n", " ")
		if len(ctx) > width-10 {
			ctx = ctx[:width-10] + "..."
		}
		fmt.Fprintf(builder, "         context: %s\n", ctx)
	}
	if options.Verbose {
		fmt.Fprintf(builder, "         extraction: %s pattern: %s\n", r.ExtractionID, r.PatternID)
	}
}

func (f *Formatter) levelColor(level extract.ConfidenceLevel) *color.Color {
	switch level {
	case extract.ConfidenceHigh:
		return f.colors["green"]
	case extract.ConfidenceMedium:
		return f.colors["yellow"]
	default:
		return f.colors["red"]
	}
}

// sortResults orders by confidence level (high first) then by score
func (f *Formatter) sortResults(results []extract.ExtractionResult) {
	rank := map[extract.ConfidenceLevel]int{
		extract.ConfidenceHigh:   0,
		extract.ConfidenceMedium: 1,
		extract.ConfidenceLow:    2,
	}
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].Success != !results[j].Success {
			return results[i].Success
		}
		if rank[results[i].Level] != rank[results[j].Level] {
			return rank[results[i].Level] < rank[results[j].Level]
		}
		return results[i].Confidence > results[j].Confidence
	})
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
		return w
	}
	return 120
}

func init() {
	formatters.Register(NewFormatter())
}
