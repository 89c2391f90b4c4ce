// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package learning

import (
	"regexp"
	"strings"
	"time"

	"transcript-scan/internal/extract"
)

// Weights distributes the four confidence signals. They must sum to 1.
type Weights struct {
	Performance float64 `yaml:"performance"`
	Simplicity  float64 `yaml:"simplicity"`
	Validation  float64 `yaml:"validation"`
	Context     float64 `yaml:"context"`
}

// DefaultWeights returns the standard 40/20/20/20 split.
func DefaultWeights() Weights {
	return Weights{Performance: 0.4, Simplicity: 0.2, Validation: 0.2, Context: 0.2}
}

// Subscores exposes the individual signals for a scored extraction. Each is
// clamped to [0,1] before weighting.
type Subscores struct {
	Performance float64 `json:"performance"`
	Simplicity  float64 `json:"simplicity"`
	Validation  float64 `json:"validation"`
	Context     float64 `json:"context"`
}

// Scorer computes extraction confidence from pattern history, expression
// complexity, value conformance and context similarity.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer. Zero weights fall back to the defaults.
func NewScorer(w Weights) *Scorer {
	if w.Performance+w.Simplicity+w.Validation+w.Context == 0 {
		w = DefaultWeights()
	}
	return &Scorer{weights: w}
}

// Score computes the confidence for one matched value. priorContexts are the
// context windows of this pattern's previous successful extractions.
func (s *Scorer) Score(value string, pattern extract.Pattern, perf extract.PatternPerformance, context string, priorContexts []string) (float64, Subscores) {
	if strings.TrimSpace(value) == "" {
		return 0, Subscores{}
	}

	sub := Subscores{
		Performance: performanceScore(perf),
		Simplicity:  simplicityScore(pattern.Expression),
		Validation:  ValidateValue(value, pattern.FieldType),
		Context:     contextSimilarity(context, priorContexts),
	}

	confidence := sub.Performance*s.weights.Performance +
		sub.Simplicity*s.weights.Simplicity +
		sub.Validation*s.weights.Validation +
		sub.Context*s.weights.Context

	return clamp01(confidence), sub
}

// performanceScore is the pattern's historical success rate. A pattern with
// no attempts gets a neutral 0.5 prior so untested patterns are not punished.
func performanceScore(perf extract.PatternPerformance) float64 {
	if perf.TotalAttempts == 0 {
		return 0.5
	}
	return clamp01(perf.SuccessRate)
}

// simplicityScore penalizes long, heavily quantified expressions. Simpler
// expressions are less likely to be over-fit to one document's quirks.
func simplicityScore(expression string) float64 {
	if expression == "" {
		return 0
	}
	penalty := float64(len(expression)) / 150.0
	penalty += 0.04 * float64(strings.Count(expression, "*")+strings.Count(expression, "+")+strings.Count(expression, "?")+strings.Count(expression, "{"))
	penalty += 0.06 * float64(strings.Count(expression, "|"))
	penalty += 0.03 * float64(strings.Count(expression, "["))
	return clamp01(1 - penalty)
}

var (
	currencyRe = regexp.MustCompile(`^-?\d+(?:\.\d{1,2})?$`)
	strayRe    = regexp.MustCompile(`[^\d.\-]`)
	identRe    = regexp.MustCompile(`^[\d\-]+$`)
	bareYearRe = regexp.MustCompile(`^\d{4}$`)
	digitRe    = regexp.MustCompile(`\d`)
	yearRe     = regexp.MustCompile(`\b\d{4}\b`)
	partDateRe = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}`)
)

// dateLayouts are the accepted date formats for date-typed fields.
var dateLayouts = []string{
	"01-02-2006",
	"01/02/2006",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"January 2 2006",
}

// ValidateValue checks that a matched value conforms to its field's semantic
// type. Full conformance scores 1.0, non-conformance 0.0, and values that
// only conform after stripping stray characters score in between.
func ValidateValue(value string, fieldType extract.FieldType) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	switch fieldType {
	case extract.FieldCurrency:
		cleaned := strings.ReplaceAll(strings.ReplaceAll(value, ",", ""), "$", "")
		cleaned = strings.TrimSpace(cleaned)
		if currencyRe.MatchString(cleaned) {
			return 1.0
		}
		// Numeric after dropping stray characters counts as partial
		stripped := strayRe.ReplaceAllString(cleaned, "")
		if stripped != "" && currencyRe.MatchString(stripped) {
			return 0.5
		}
		return 0

	case extract.FieldDate:
		if parsesAsDate(value) {
			return 1.0
		}
		if yearRe.MatchString(value) || partDateRe.MatchString(value) {
			return 0.5
		}
		return 0

	case extract.FieldIdentifier:
		if identRe.MatchString(value) && len(digitRe.FindAllString(value, -1)) >= 2 {
			return 1.0
		}
		if digitRe.MatchString(value) {
			return 0.5
		}
		return 0

	default: // text
		return 1.0
	}
}

func parsesAsDate(value string) bool {
	value = strings.TrimSpace(value)
	// A bare 4-digit year is a valid tax-period value
	if bareYearRe.MatchString(value) {
		return true
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
