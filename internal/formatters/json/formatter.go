// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"transcript-scan/internal/extract"
	"transcript-scan/internal/formatters"
)

// Formatter implements JSON output formatting
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "JSON output for programmatic processing"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

type document struct {
	DocumentType extract.DocumentType        `json:"document_type"`
	Results      []extract.ExtractionResult  `json:"results"`
	Suggestions  []extract.PatternSuggestion `json:"suggestions,omitempty"`
}

func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	doc := document{
		DocumentType: report.DocumentType,
		Results:      formatters.FilterByConfidence(report.Results, options),
		Suggestions:  report.Suggestions,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	return string(data), nil
}

func init() {
	formatters.Register(NewFormatter())
}
