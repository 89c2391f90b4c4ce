// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"fmt"
	"time"
)

// DocumentType identifies the transcript category a pattern applies to.
type DocumentType string

const (
	// DocTypeWI is a Wage & Income transcript.
	DocTypeWI DocumentType = "WI"
	// DocTypeAT is an Account Transcript.
	DocTypeAT DocumentType = "AT"
	// DocTypeTI is a Tax Investigation document.
	DocTypeTI DocumentType = "TI"
)

// ParseDocumentType converts a string into a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocTypeWI, DocTypeAT, DocTypeTI:
		return DocumentType(s), nil
	}
	return "", NewValidationError("document_type", s, "must be one of WI, AT, TI")
}

// FieldType describes the semantic type of an extracted value and drives
// value validation during confidence scoring.
type FieldType string

const (
	FieldCurrency   FieldType = "currency"
	FieldDate       FieldType = "date"
	FieldText       FieldType = "text"
	FieldIdentifier FieldType = "identifier"
)

// ConfidenceLevel buckets a confidence score for display and for deciding
// whether a result needs human review.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// LevelForScore converts a [0,1] confidence score into a level.
func LevelForScore(score float64) ConfidenceLevel {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Pattern is a named text-matching rule for one field of one form within a
// document type. The primary expression is hand-written; the enhanced
// expression, when set, comes from an implemented suggestion and is tried
// first during extraction.
type Pattern struct {
	ID           string       `json:"pattern_id"`
	DocumentType DocumentType `json:"document_type"`
	FormName     string       `json:"form_name"`
	FieldName    string       `json:"field_name"`
	FieldType    FieldType    `json:"field_type"`
	Expression   string       `json:"expression"`
	Enhanced     string       `json:"enhanced_expression,omitempty"`
	Category     string       `json:"category,omitempty"`
	Active       bool         `json:"is_active"`
}

// ExtractionResult records one attempt to apply one pattern to one document.
// A miss is a result with Success=false, never an error.
type ExtractionResult struct {
	ExtractionID  string          `json:"extraction_id"`
	CaseID        string          `json:"case_id,omitempty"`
	DocumentID    string          `json:"document_id,omitempty"`
	PatternID     string          `json:"pattern_id"`
	FormName      string          `json:"form_name"`
	FieldName     string          `json:"field_name"`
	Value         string          `json:"extracted_value,omitempty"`
	ExpectedValue string          `json:"expected_value,omitempty"`
	Confidence    float64         `json:"confidence_score"`
	Level         ConfidenceLevel `json:"confidence_level"`
	Success       bool            `json:"success"`
	Context       string          `json:"context_text,omitempty"`
	Timestamp     time.Time       `json:"extraction_timestamp"`
}

// PatternPerformance aggregates attempt history for one pattern.
// TotalAttempts is always SuccessCount + FailureCount.
type PatternPerformance struct {
	PatternID     string    `json:"pattern_id"`
	SuccessCount  int       `json:"success_count"`
	FailureCount  int       `json:"failure_count"`
	TotalAttempts int       `json:"total_attempts"`
	SuccessRate   float64   `json:"success_rate"`
	AvgConfidence float64   `json:"average_confidence"`
	LastUpdated   time.Time `json:"last_updated"`
	Active        bool      `json:"is_active"`
}

// PatternSuggestion is a proposed alternative expression for a pattern,
// generated after a failed or low-confidence extraction. It is inert until
// explicitly implemented.
type PatternSuggestion struct {
	SuggestionID string    `json:"suggestion_id"`
	PatternID    string    `json:"pattern_id"`
	Expression   string    `json:"suggested_expression"`
	Confidence   float64   `json:"confidence_score"`
	Reasoning    string    `json:"reasoning"`
	Implemented  bool      `json:"is_implemented"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserFeedback is a human judgment about one extraction. Append-only:
// repeated feedback creates new records rather than overwriting.
type UserFeedback struct {
	FeedbackID     string    `json:"feedback_id"`
	ExtractionID   string    `json:"extraction_id"`
	IsCorrect      bool      `json:"is_correct"`
	CorrectedValue string    `json:"corrected_value,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	Timestamp      time.Time `json:"feedback_timestamp"`
}

// AggregateStats summarizes tracker state for one document type.
// OverallSuccessRate is attempts-weighted, so heavily used patterns dominate.
type AggregateStats struct {
	DocumentType         DocumentType `json:"document_type"`
	TotalPatterns        int          `json:"total_patterns"`
	ActivePatterns       int          `json:"active_patterns"`
	TotalAttempts        int          `json:"total_attempts"`
	OverallSuccessRate   float64      `json:"overall_success_rate"`
	AverageConfidence    float64      `json:"average_confidence"`
	SuggestionsGenerated int          `json:"suggestions_generated"`
}

func (s AggregateStats) String() string {
	return fmt.Sprintf("%s: %d patterns (%d active), %d attempts, %.1f%% success, avg confidence %.2f",
		s.DocumentType, s.TotalPatterns, s.ActivePatterns, s.TotalAttempts,
		s.OverallSuccessRate*100, s.AverageConfidence)
}
