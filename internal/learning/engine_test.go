// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package learning

import (
	"errors"
	"strings"
	"testing"

	"transcript-scan/internal/extract"
)

// fakeRegistry is a minimal in-memory PatternRegistry for engine tests.
type fakeRegistry struct {
	order    []string
	patterns map[string]*extract.Pattern
}

func newFakeRegistry(pats ...extract.Pattern) *fakeRegistry {
	r := &fakeRegistry{patterns: make(map[string]*extract.Pattern)}
	for i := range pats {
		p := pats[i]
		p.Active = true
		r.patterns[p.ID] = &p
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *fakeRegistry) PatternsFor(docType extract.DocumentType) ([]extract.Pattern, error) {
	var out []extract.Pattern
	for _, id := range r.order {
		if r.patterns[id].DocumentType == docType {
			out = append(out, *r.patterns[id])
		}
	}
	if out == nil {
		return nil, extract.NewValidationError("document_type", string(docType), "must be one of WI, AT, TI")
	}
	return out, nil
}

func (r *fakeRegistry) Get(id string) (extract.Pattern, error) {
	p, ok := r.patterns[id]
	if !ok {
		return extract.Pattern{}, extract.NewNotFoundError("pattern", id)
	}
	return *p, nil
}

func (r *fakeRegistry) Deactivate(id string) error {
	p, ok := r.patterns[id]
	if !ok {
		return extract.NewNotFoundError("pattern", id)
	}
	p.Active = false
	return nil
}

func (r *fakeRegistry) SetEnhanced(id, expression string) error {
	p, ok := r.patterns[id]
	if !ok {
		return extract.NewNotFoundError("pattern", id)
	}
	p.Enhanced = expression
	p.Active = true
	return nil
}

func wagesPattern() extract.Pattern {
	return extract.Pattern{
		ID:           "WI_W-2_Wages, Tips, and Other Compensation",
		DocumentType: extract.DocTypeWI,
		FormName:     "W-2",
		FieldName:    "Wages, Tips, and Other Compensation",
		FieldType:    extract.FieldCurrency,
		Expression:   `Wages[\s,]*tips[\s,]*and[\s,]*other[\s,]*compensation[:\s]*\$?([\d,.]+)`,
	}
}

func withheldPattern() extract.Pattern {
	return extract.Pattern{
		ID:           "WI_W-2_Federal Withholding",
		DocumentType: extract.DocTypeWI,
		FormName:     "W-2",
		FieldName:    "Federal Withholding",
		FieldType:    extract.FieldCurrency,
		Expression:   `Federal[\s,]*income[\s,]*tax[\s,]*withheld[:\s]*\$?([\d,.]+)`,
	}
}

const w2Text = `Form W-2 Wage and Tax Statement
Wages, tips, and other compensation: $45,231.00
Federal income tax withheld: $5,000.00
`

func TestExtract_Success(t *testing.T) {
	engine := NewEngine(newFakeRegistry(wagesPattern(), withheldPattern()), Options{})

	results, err := engine.Extract(extract.DocTypeWI, w2Text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected one result per pattern, got %d", len(results))
	}

	wages := results[0]
	if !wages.Success {
		t.Fatal("wages pattern should match")
	}
	if wages.Value != "45,231.00" {
		t.Errorf("expected group capture %q, got %q", "45,231.00", wages.Value)
	}
	if wages.ExtractionID == "" {
		t.Error("extraction id must be assigned")
	}
	if wages.Confidence <= 0 || wages.Confidence > 1 {
		t.Errorf("confidence out of range: %v", wages.Confidence)
	}
	if wages.Level != extract.LevelForScore(wages.Confidence) {
		t.Errorf("level %v does not match confidence %v", wages.Level, wages.Confidence)
	}
	if !strings.Contains(wages.Context, "45,231.00") {
		t.Errorf("context should contain the match: %q", wages.Context)
	}

	// The attempt must be recorded.
	perf := engine.PatternStats(wages.PatternID)
	if perf.TotalAttempts != 1 || perf.SuccessCount != 1 {
		t.Errorf("unexpected performance after success: %+v", perf)
	}
}

func TestExtract_CaseInsensitive(t *testing.T) {
	engine := NewEngine(newFakeRegistry(withheldPattern()), Options{})
	results, err := engine.Extract(extract.DocTypeWI, "FEDERAL INCOME TAX WITHHELD: $750.00")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !results[0].Success {
		t.Error("matching must be case-insensitive")
	}
}

func TestExtract_MissIsNotAnError(t *testing.T) {
	engine := NewEngine(newFakeRegistry(wagesPattern()), Options{})
	results, err := engine.Extract(extract.DocTypeWI, "nothing relevant here")
	if err != nil {
		t.Fatalf("a miss must not be an error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("a miss still produces a result, got %d", len(results))
	}
	r := results[0]
	if r.Success || r.Value != "" || r.Confidence != 0 {
		t.Errorf("unexpected miss result: %+v", r)
	}
	if r.Level != extract.ConfidenceLow {
		t.Errorf("miss should carry the low level, got %v", r.Level)
	}

	perf := engine.PatternStats(r.PatternID)
	if perf.TotalAttempts != 1 || perf.FailureCount != 1 {
		t.Errorf("miss must be recorded as an attempt: %+v", perf)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	engine := NewEngine(newFakeRegistry(wagesPattern()), Options{})
	_, err := engine.Extract(extract.DocTypeWI, "   \n ")
	if !errors.Is(err, extract.ErrValidation) {
		t.Errorf("empty text should be a validation error, got %v", err)
	}
}

func TestExtract_SkipsInactivePatterns(t *testing.T) {
	reg := newFakeRegistry(wagesPattern(), withheldPattern())
	engine := NewEngine(reg, Options{})
	if err := reg.Deactivate("WI_W-2_Federal Withholding"); err != nil {
		t.Fatal(err)
	}

	results, err := engine.Extract(extract.DocTypeWI, w2Text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("inactive patterns must be skipped, got %d results", len(results))
	}
	if results[0].PatternID != "WI_W-2_Wages, Tips, and Other Compensation" {
		t.Errorf("unexpected surviving pattern: %s", results[0].PatternID)
	}
}

func TestExtractForms_Filter(t *testing.T) {
	other := wagesPattern()
	other.ID = "WI_1099-NEC_Non-Employee Compensation"
	other.FormName = "1099-NEC"
	other.FieldName = "Non-Employee Compensation"
	other.Expression = `Non[- ]?Employee[- ]?Compensation[:\s]*\$?([\d,.]+)`

	engine := NewEngine(newFakeRegistry(wagesPattern(), other), Options{})
	results, err := engine.ExtractForms(extract.DocTypeWI, "", "", w2Text, map[string]bool{"W-2": true})
	if err != nil {
		t.Fatalf("ExtractForms failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only the W-2 pattern to run, got %d results", len(results))
	}

	// The filtered-out pattern's stats stay untouched.
	perf := engine.PatternStats(other.ID)
	if perf.TotalAttempts != 0 {
		t.Errorf("filtered pattern should record no attempts: %+v", perf)
	}
}

func TestExtract_EnhancedExpressionPreferred(t *testing.T) {
	reg := newFakeRegistry(withheldPattern())
	engine := NewEngine(reg, Options{})
	if err := reg.SetEnhanced("WI_W-2_Federal Withholding", `Fed W/H[:\s]*\$?([\d,.]+)`); err != nil {
		t.Fatal(err)
	}

	results, _ := engine.Extract(extract.DocTypeWI, "Fed W/H: $321.00")
	if !results[0].Success || results[0].Value != "321.00" {
		t.Errorf("enhanced expression should drive extraction: %+v", results[0])
	}
}

func TestExtract_EnhancedCompileFailureFallsBack(t *testing.T) {
	reg := newFakeRegistry(withheldPattern())
	engine := NewEngine(reg, Options{})
	if err := reg.SetEnhanced("WI_W-2_Federal Withholding", `([invalid`); err != nil {
		t.Fatal(err)
	}

	results, err := engine.Extract(extract.DocTypeWI, w2Text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !results[0].Success || results[0].Value != "5,000.00" {
		t.Errorf("broken enhanced expression must fall back to the primary: %+v", results[0])
	}
}

func TestExtract_DeactivationThroughRegistry(t *testing.T) {
	reg := newFakeRegistry(wagesPattern())
	engine := NewEngine(reg, Options{
		Deactivation: DeactivationPolicy{MinAttempts: 3, Watermark: 0.5},
	})

	for i := 0; i < 3; i++ {
		if _, err := engine.Extract(extract.DocTypeWI, "no wages line here"); err != nil {
			t.Fatal(err)
		}
	}

	p, _ := reg.Get("WI_W-2_Wages, Tips, and Other Compensation")
	if p.Active {
		t.Fatal("persistent failures should deactivate the pattern in the registry")
	}

	results, err := engine.Extract(extract.DocTypeWI, w2Text)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("deactivated pattern must not be attempted, got %d results", len(results))
	}
}

func TestResult_Lookup(t *testing.T) {
	engine := NewEngine(newFakeRegistry(wagesPattern()), Options{})
	results, _ := engine.Extract(extract.DocTypeWI, w2Text)

	got, err := engine.Result(results[0].ExtractionID)
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if got.Value != results[0].Value {
		t.Errorf("lookup returned a different result: %+v", got)
	}

	_, err = engine.Result("missing")
	if !errors.Is(err, extract.ErrNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestStats_Aggregates(t *testing.T) {
	engine := NewEngine(newFakeRegistry(wagesPattern(), withheldPattern()), Options{})
	if _, err := engine.Extract(extract.DocTypeWI, w2Text); err != nil {
		t.Fatal(err)
	}

	stats, err := engine.Stats(extract.DocTypeWI)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalPatterns != 2 || stats.ActivePatterns != 2 {
		t.Errorf("unexpected pattern counts: %+v", stats)
	}
	if stats.TotalAttempts != 2 {
		t.Errorf("expected 2 attempts, got %d", stats.TotalAttempts)
	}
	if stats.OverallSuccessRate != 1.0 {
		t.Errorf("expected 100%% success, got %v", stats.OverallSuccessRate)
	}
}

func TestRestoreSuggestions_ReappliesImplemented(t *testing.T) {
	reg := newFakeRegistry(withheldPattern())
	engine := NewEngine(reg, Options{})

	engine.RestoreSuggestions([]extract.PatternSuggestion{{
		SuggestionID: "s1",
		PatternID:    "WI_W-2_Federal Withholding",
		Expression:   `Fed\. W/H\s*\$?([\d,.]+)`,
		Implemented:  true,
	}})

	p, _ := reg.Get("WI_W-2_Federal Withholding")
	if p.Enhanced == "" {
		t.Fatal("an implemented suggestion must restore its enhanced expression")
	}

	results, err := engine.Extract(extract.DocTypeWI, "Fed. W/H $1,350.00")
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Success || results[0].Value != "1,350.00" {
		t.Errorf("restored enhancement should drive extraction: %+v", results[0])
	}
}

func TestRestoreSuggestions_PendingLeavesRegistryAlone(t *testing.T) {
	reg := newFakeRegistry(withheldPattern())
	engine := NewEngine(reg, Options{})

	engine.RestoreSuggestions([]extract.PatternSuggestion{{
		SuggestionID: "s1",
		PatternID:    "WI_W-2_Federal Withholding",
		Expression:   `Fed\. W/H\s*\$?([\d,.]+)`,
	}})

	p, _ := reg.Get("WI_W-2_Federal Withholding")
	if p.Enhanced != "" {
		t.Errorf("a pending suggestion must not touch the registry: %q", p.Enhanced)
	}
}

func TestRestorePerformance_ReappliesDeactivation(t *testing.T) {
	reg := newFakeRegistry(wagesPattern(), withheldPattern())
	engine := NewEngine(reg, Options{})

	engine.RestorePerformance([]extract.PatternPerformance{{
		PatternID:     "WI_W-2_Federal Withholding",
		FailureCount:  5,
		TotalAttempts: 5,
		Active:        false,
	}})

	p, _ := reg.Get("WI_W-2_Federal Withholding")
	if p.Active {
		t.Fatal("a pattern retired in an earlier run must stay inactive")
	}

	results, err := engine.Extract(extract.DocTypeWI, w2Text)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].PatternID != "WI_W-2_Wages, Tips, and Other Compensation" {
		t.Errorf("restored deactivation must keep the pattern out of extraction: %+v", results)
	}
}

func TestStats_SuggestionCountScopedToDocType(t *testing.T) {
	balance := extract.Pattern{
		ID:           "AT_Account Transcript_Account Balance",
		DocumentType: extract.DocTypeAT,
		FormName:     "Account Transcript",
		FieldName:    "Account Balance",
		FieldType:    extract.FieldCurrency,
		Expression:   `ACCOUNT BALANCE[:\s]*\$?(-?[\d,.]+)`,
	}
	engine := NewEngine(newFakeRegistry(wagesPattern(), balance), Options{})

	engine.RestoreSuggestions([]extract.PatternSuggestion{
		{SuggestionID: "s-wi", PatternID: "WI_W-2_Wages, Tips, and Other Compensation", Expression: `x`},
		{SuggestionID: "s-at", PatternID: "AT_Account Transcript_Account Balance", Expression: `y`},
	})

	stats, err := engine.Stats(extract.DocTypeWI)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SuggestionsGenerated != 1 {
		t.Errorf("suggestion counts must not leak across document types: %+v", stats)
	}
}

func TestRestoreResults_FeedbackAcrossRuns(t *testing.T) {
	// First engine records an extraction.
	first := NewEngine(newFakeRegistry(wagesPattern()), Options{})
	results, _ := first.Extract(extract.DocTypeWI, w2Text)

	// Second engine restores it and accepts feedback against it.
	second := NewEngine(newFakeRegistry(wagesPattern()), Options{})
	second.RestoreResults(results)

	fb, err := second.Feedback().Submit(extract.UserFeedback{
		ExtractionID: results[0].ExtractionID,
		IsCorrect:    true,
	})
	if err != nil {
		t.Fatalf("feedback against a restored extraction failed: %v", err)
	}
	if fb.FeedbackID == "" {
		t.Error("feedback id must be assigned")
	}
}
