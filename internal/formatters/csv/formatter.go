// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"transcript-scan/internal/formatters"
)

// Formatter implements CSV output formatting
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "CSV output for spreadsheet analysis"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)

	header := []string{"extraction_id", "document_type", "form_name", "field_name", "value", "confidence", "level", "success", "pattern_id", "timestamp"}
	if options.ShowContext {
		header = append(header, "context")
	}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range formatters.FilterByConfidence(report.Results, options) {
		row := []string{
			r.ExtractionID,
			string(report.DocumentType),
			r.FormName,
			r.FieldName,
			r.Value,
			strconv.FormatFloat(r.Confidence, 'f', 4, 64),
			string(r.Level),
			strconv.FormatBool(r.Success),
			r.PatternID,
			r.Timestamp.Format(time.RFC3339),
		}
		if options.ShowContext {
			row = append(row, r.Context)
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return builder.String(), nil
}

func init() {
	formatters.Register(NewFormatter())
}
