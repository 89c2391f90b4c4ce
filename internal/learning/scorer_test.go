// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package learning

import (
	"math"
	"testing"

	"transcript-scan/internal/extract"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	w := DefaultWeights()
	sum := w.Performance + w.Simplicity + w.Validation + w.Context
	if !almostEqual(sum, 1.0) {
		t.Errorf("default weights sum to %v, want 1.0", sum)
	}
}

func TestNewScorer_ZeroWeightsFallBack(t *testing.T) {
	s := NewScorer(Weights{})
	if s.weights != DefaultWeights() {
		t.Errorf("zero weights should fall back to defaults, got %+v", s.weights)
	}
}

func TestScore_EmptyValue(t *testing.T) {
	s := NewScorer(DefaultWeights())
	confidence, sub := s.Score("  ", extract.Pattern{}, extract.PatternPerformance{}, "", nil)
	if confidence != 0 {
		t.Errorf("empty value should score 0, got %v", confidence)
	}
	if sub != (Subscores{}) {
		t.Errorf("empty value should produce zero subscores, got %+v", sub)
	}
}

func TestScore_SubscoresInRange(t *testing.T) {
	s := NewScorer(DefaultWeights())
	pattern := extract.Pattern{
		Expression: `Wages[\s,]*tips[\s,]*and[\s,]*other[\s,]*compensation[:\s]*\$?([\d,.]+)`,
		FieldType:  extract.FieldCurrency,
	}
	perf := extract.PatternPerformance{TotalAttempts: 10, SuccessCount: 9, SuccessRate: 0.9}
	confidence, sub := s.Score("45,231.00", pattern, perf, "Wages, tips, and other compensation: $45,231.00", []string{"Wages, tips, and other compensation: $40,000.00"})

	for name, v := range map[string]float64{
		"performance": sub.Performance,
		"simplicity":  sub.Simplicity,
		"validation":  sub.Validation,
		"context":     sub.Context,
		"confidence":  confidence,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s subscore out of range: %v", name, v)
		}
	}
	if sub.Validation != 1.0 {
		t.Errorf("clean currency value should validate at 1.0, got %v", sub.Validation)
	}
	if sub.Context <= 0.5 {
		t.Errorf("near-identical contexts should score high, got %v", sub.Context)
	}
}

func TestScore_IsWeightedSum(t *testing.T) {
	w := Weights{Performance: 0.4, Simplicity: 0.2, Validation: 0.2, Context: 0.2}
	s := NewScorer(w)
	pattern := extract.Pattern{Expression: `Rents[:\s]*\$?([\d,.]+)`, FieldType: extract.FieldCurrency}
	confidence, sub := s.Score("1200.00", pattern, extract.PatternPerformance{}, "", nil)

	want := sub.Performance*w.Performance + sub.Simplicity*w.Simplicity + sub.Validation*w.Validation + sub.Context*w.Context
	if !almostEqual(confidence, want) {
		t.Errorf("confidence %v does not equal weighted sum %v", confidence, want)
	}
}

func TestPerformanceScore_NeutralPrior(t *testing.T) {
	if got := performanceScore(extract.PatternPerformance{}); got != 0.5 {
		t.Errorf("zero-attempt pattern should get the 0.5 prior, got %v", got)
	}
	perf := extract.PatternPerformance{TotalAttempts: 4, SuccessRate: 0.75}
	if got := performanceScore(perf); got != 0.75 {
		t.Errorf("expected the recorded success rate, got %v", got)
	}
}

func TestSimplicityScore_PenalizesComplexity(t *testing.T) {
	simple := simplicityScore(`Rents[:\s]*\$([\d,.]+)`)
	convoluted := simplicityScore(`(?:RENTS|Rents|rents)[:\s]*(?:\$|USD)?\s*([\d,.]+|[\d]+(?:\.\d{2})?)(?:\s*(?:per|/)\s*(?:year|month))?`)
	if convoluted >= simple {
		t.Errorf("more complex expression should score lower: simple=%v complex=%v", simple, convoluted)
	}
	if s := simplicityScore(""); s != 0 {
		t.Errorf("empty expression should score 0, got %v", s)
	}
}

func TestValidateValue_Currency(t *testing.T) {
	cases := []struct {
		value string
		want  float64
	}{
		{"45,231.00", 1.0},
		{"$45,231.00", 1.0},
		{"-1200.50", 1.0},
		{"1200", 1.0},
		{"45,231.00x", 0.5},
		{"abc", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := ValidateValue(tc.value, extract.FieldCurrency); got != tc.want {
			t.Errorf("ValidateValue(%q, currency) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestValidateValue_Date(t *testing.T) {
	cases := []struct {
		value string
		want  float64
	}{
		{"01-15-2024", 1.0},
		{"January 15, 2024", 1.0},
		{"Jan. 15, 2024", 1.0},
		{"2024", 1.0},
		{"sometime in 2024", 0.5},
		{"01/15", 0.5},
		{"not a date", 0},
	}
	for _, tc := range cases {
		if got := ValidateValue(tc.value, extract.FieldDate); got != tc.want {
			t.Errorf("ValidateValue(%q, date) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestValidateValue_Identifier(t *testing.T) {
	cases := []struct {
		value string
		want  float64
	}{
		{"12-3456789", 1.0},
		{"123456789", 1.0},
		{"1-A", 0.5},
		{"no digits", 0},
	}
	for _, tc := range cases {
		if got := ValidateValue(tc.value, extract.FieldIdentifier); got != tc.want {
			t.Errorf("ValidateValue(%q, identifier) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestValidateValue_Text(t *testing.T) {
	if got := ValidateValue("Married Filing Joint", extract.FieldText); got != 1.0 {
		t.Errorf("text fields always validate, got %v", got)
	}
}

func TestContextSimilarity(t *testing.T) {
	if got := contextSimilarity("any context", nil); got != 0 {
		t.Errorf("no history should score 0, got %v", got)
	}
	if got := contextSimilarity("", []string{"prior"}); got != 0 {
		t.Errorf("empty current context should score 0, got %v", got)
	}

	identical := contextSimilarity("Federal income tax withheld", []string{"Federal income tax withheld"})
	if !almostEqual(identical, 1.0) {
		t.Errorf("identical contexts should score 1.0, got %v", identical)
	}

	disjoint := contextSimilarity("alpha beta gamma", []string{"delta epsilon zeta"})
	if disjoint != 0 {
		t.Errorf("disjoint contexts should score 0, got %v", disjoint)
	}

	partial := contextSimilarity("Federal income tax withheld 1200", []string{"Federal income tax withheld 900", "State income tax withheld 100"})
	if partial <= 0 || partial >= 1 {
		t.Errorf("overlapping contexts should score strictly between 0 and 1, got %v", partial)
	}
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Wages, tips, and other compensation: $45,231.00")
	want := []string{"wages", "tips", "and", "other", "compensation", "45", "231", "00"}
	if len(tokens) != len(want) {
		t.Fatalf("tokenize returned %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, tokens[i], want[i])
		}
	}
}
