// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"transcript-scan/internal/extract"
	"transcript-scan/internal/formatters"
)

// Formatter implements YAML output formatting
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "yaml"
}

func (f *Formatter) Description() string {
	return "YAML output for configuration-style consumption"
}

func (f *Formatter) FileExtension() string {
	return ".yaml"
}

type document struct {
	DocumentType extract.DocumentType        `yaml:"document_type"`
	Results      []extract.ExtractionResult  `yaml:"results"`
	Suggestions  []extract.PatternSuggestion `yaml:"suggestions,omitempty"`
}

func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	doc := document{
		DocumentType: report.DocumentType,
		Results:      formatters.FilterByConfidence(report.Results, options),
		Suggestions:  report.Suggestions,
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results to YAML: %w", err)
	}
	return string(data), nil
}

func init() {
	formatters.Register(NewFormatter())
}
