// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parser turns raw transcript text into structured summaries. Each
// document type has its own parser built over the extraction engine; the
// parsers own the logic that is not per-field pattern matching, such as form
// detection, transaction line scanning and income rollups. A field the
// engine cannot extract is a gap in the summary, never an error.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"transcript-scan/internal/extract"
)

// Extractor is the engine surface the parsers depend on.
type Extractor interface {
	ExtractDocument(docType extract.DocumentType, caseID, documentID, text string) ([]extract.ExtractionResult, error)
	ExtractForms(docType extract.DocumentType, caseID, documentID, text string, forms map[string]bool) ([]extract.ExtractionResult, error)
}

// parseAmount converts an extracted currency string to a float. Unparseable
// values come back as 0 with ok=false so callers can treat them as gaps.
func parseAmount(value string) (float64, bool) {
	cleaned := strings.ReplaceAll(value, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, ".")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var fileYearRe = regexp.MustCompile(`(?i)(?:WI|AT|TI)\s+(\d{2})\b`)
var fourDigitYearRe = regexp.MustCompile(`(20\d{2})`)

// yearFromName derives a four digit tax year from a transcript file name
// like "WI 19 E.pdf". Two digit years pivot at 50. Falls back to the first
// four digit year in the name, then in the text, then "Unknown".
func yearFromName(fileName, text string) string {
	if m := fileYearRe.FindStringSubmatch(fileName); m != nil {
		suffix, _ := strconv.Atoi(m[1])
		if suffix <= 50 {
			return "20" + m[1]
		}
		return "19" + m[1]
	}
	if m := fourDigitYearRe.FindStringSubmatch(fileName); m != nil {
		return m[1]
	}
	if m := fourDigitYearRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return "Unknown"
}
