// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"transcript-scan/internal/extract"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "learning.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleResult(id, patternID string, ts time.Time) extract.ExtractionResult {
	return extract.ExtractionResult{
		ExtractionID: id,
		CaseID:       "case-001",
		DocumentID:   "doc-001",
		PatternID:    patternID,
		FormName:     "W-2",
		FieldName:    "Wages",
		Value:        "45,231.00",
		Confidence:   0.82,
		Level:        extract.ConfidenceHigh,
		Success:      true,
		Context:      "Wages, tips 45,231.00",
		Timestamp:    ts,
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	db := openTestDB(t)

	// Fresh database answers queries against every table.
	_, err := db.ListExtractions("", 0)
	require.NoError(t, err)
	_, err = db.ListSuggestions("")
	require.NoError(t, err)
	_, err = db.LoadPerformance()
	require.NoError(t, err)
}

func TestSaveAndGetExtraction(t *testing.T) {
	db := openTestDB(t)

	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	want := sampleResult("ext-1", "WI_W-2_Wages", ts)
	want.ExpectedValue = "45,231.00"
	require.NoError(t, db.SaveExtractions([]extract.ExtractionResult{want}))

	got, err := db.GetExtraction("ext-1")
	require.NoError(t, err)
	require.Equal(t, want.ExtractionID, got.ExtractionID)
	require.Equal(t, want.CaseID, got.CaseID)
	require.Equal(t, want.DocumentID, got.DocumentID)
	require.Equal(t, want.PatternID, got.PatternID)
	require.Equal(t, want.FormName, got.FormName)
	require.Equal(t, want.FieldName, got.FieldName)
	require.Equal(t, want.Value, got.Value)
	require.Equal(t, want.ExpectedValue, got.ExpectedValue)
	require.Equal(t, want.Confidence, got.Confidence)
	require.Equal(t, want.Level, got.Level)
	require.Equal(t, want.Success, got.Success)
	require.Equal(t, want.Context, got.Context)
	require.True(t, got.Timestamp.Equal(ts))
}

func TestGetExtractionNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetExtraction("missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, extract.ErrNotFound))
}

func TestListExtractionsFilterAndOrder(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batch := []extract.ExtractionResult{
		sampleResult("ext-b", "WI_W-2_Wages", base.Add(2*time.Hour)),
		sampleResult("ext-a", "WI_W-2_Wages", base),
		sampleResult("ext-c", "AT_Account_Balance", base.Add(time.Hour)),
	}
	require.NoError(t, db.SaveExtractions(batch))

	all, err := db.ListExtractions("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "ext-a", all[0].ExtractionID)
	require.Equal(t, "ext-c", all[1].ExtractionID)
	require.Equal(t, "ext-b", all[2].ExtractionID)

	wages, err := db.ListExtractions("WI_W-2_Wages", 0)
	require.NoError(t, err)
	require.Len(t, wages, 2)
	require.Equal(t, "ext-a", wages[0].ExtractionID)

	limited, err := db.ListExtractions("", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "ext-a", limited[0].ExtractionID)
}

func TestSaveAndListFeedback(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveExtractions([]extract.ExtractionResult{
		sampleResult("ext-1", "WI_W-2_Wages", time.Now().UTC()),
		sampleResult("ext-9", "AT_Account_Balance", time.Now().UTC()),
	}))

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	first := extract.UserFeedback{
		FeedbackID:     "fb-1",
		ExtractionID:   "ext-1",
		IsCorrect:      false,
		CorrectedValue: "45,231.00",
		Comment:        "picked up the YTD column",
		Timestamp:      base,
	}
	second := extract.UserFeedback{
		FeedbackID:   "fb-2",
		ExtractionID: "ext-1",
		IsCorrect:    true,
		Timestamp:    base.Add(time.Minute),
	}
	third := extract.UserFeedback{
		FeedbackID:   "fb-3",
		ExtractionID: "ext-9",
		IsCorrect:    true,
		Timestamp:    base.Add(2 * time.Minute),
	}
	require.NoError(t, db.SaveFeedback(second))
	require.NoError(t, db.SaveFeedback(first))
	require.NoError(t, db.SaveFeedback(third))

	got, err := db.ListFeedback("ext-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "fb-1", got[0].FeedbackID)
	require.False(t, got[0].IsCorrect)
	require.Equal(t, "45,231.00", got[0].CorrectedValue)
	require.Equal(t, "picked up the YTD column", got[0].Comment)
	require.Equal(t, "fb-2", got[1].FeedbackID)
	require.True(t, got[1].IsCorrect)

	// "" lists feedback across every extraction, oldest first.
	all, err := db.ListFeedback("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "fb-1", all[0].FeedbackID)
	require.Equal(t, "fb-2", all[1].FeedbackID)
	require.Equal(t, "fb-3", all[2].FeedbackID)

	other, err := db.ListFeedback("ext-2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestSaveSuggestionsUpsertsImplemented(t *testing.T) {
	db := openTestDB(t)

	s := extract.PatternSuggestion{
		SuggestionID: "sug-1",
		PatternID:    "WI_W-2_Wages",
		Expression:   `Wages[\s:]+\$?\s*([\d,]+\.\d{2})`,
		Confidence:   0.7,
		Reasoning:    "anchored on the corrected value",
		CreatedAt:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.SaveSuggestions([]extract.PatternSuggestion{s}))

	s.Implemented = true
	require.NoError(t, db.SaveSuggestions([]extract.PatternSuggestion{s}))

	got, err := db.ListSuggestions("WI_W-2_Wages")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].Implemented)
	require.Equal(t, s.Expression, got[0].Expression)
	require.Equal(t, s.Reasoning, got[0].Reasoning)

	none, err := db.ListSuggestions("AT_Account_Balance")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestPerformanceRoundTrip(t *testing.T) {
	db := openTestDB(t)

	snap := extract.PatternPerformance{
		PatternID:     "WI_W-2_Wages",
		SuccessCount:  18,
		FailureCount:  2,
		TotalAttempts: 20,
		SuccessRate:   0.9,
		AvgConfidence: 0.81,
		LastUpdated:   time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		Active:        true,
	}
	require.NoError(t, db.SavePerformance([]extract.PatternPerformance{snap}))

	// Upsert replaces the existing row rather than adding a second one.
	snap.SuccessCount = 19
	snap.TotalAttempts = 21
	snap.SuccessRate = float64(19) / 21
	snap.Active = false
	require.NoError(t, db.SavePerformance([]extract.PatternPerformance{snap}))

	got, err := db.LoadPerformance()
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, snap.PatternID, got[0].PatternID)
	require.Equal(t, 19, got[0].SuccessCount)
	require.Equal(t, 2, got[0].FailureCount)
	require.Equal(t, 21, got[0].TotalAttempts)
	require.InDelta(t, snap.SuccessRate, got[0].SuccessRate, 1e-9)
	require.InDelta(t, 0.81, got[0].AvgConfidence, 1e-9)
	require.False(t, got[0].Active)
	require.True(t, got[0].LastUpdated.Equal(snap.LastUpdated))
}

func TestSavePerformanceRejectsInconsistentCounts(t *testing.T) {
	db := openTestDB(t)

	bad := extract.PatternPerformance{
		PatternID:     "WI_W-2_Wages",
		SuccessCount:  5,
		FailureCount:  5,
		TotalAttempts: 9,
		LastUpdated:   time.Now().UTC(),
	}
	require.Error(t, db.SavePerformance([]extract.PatternPerformance{bad}))

	got, err := db.LoadPerformance()
	require.NoError(t, err)
	require.Empty(t, got)
}
