// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package learning

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"transcript-scan/internal/extract"
)

// FeedbackProcessor ingests human correctness judgments and applies them to
// pattern statistics. It also owns suggestion promotion.
type FeedbackProcessor struct {
	history  *history
	tracker  *Tracker
	registry PatternMutator
}

// PatternMutator is the slice of the registry feedback needs: promotion
// installs an enhanced expression, nothing else mutates patterns.
type PatternMutator interface {
	Get(id string) (extract.Pattern, error)
	SetEnhanced(id, expression string) error
}

func newFeedbackProcessor(h *history, t *Tracker, r PatternMutator) *FeedbackProcessor {
	return &FeedbackProcessor{history: h, tracker: t, registry: r}
}

// Submit validates and records one feedback event. Feedback referencing an
// unknown extraction fails with NotFound. Resubmissions are recorded for
// audit but leave performance counts untouched once a contradiction has
// been applied.
func (f *FeedbackProcessor) Submit(fb extract.UserFeedback) (extract.UserFeedback, error) {
	if strings.TrimSpace(fb.ExtractionID) == "" {
		return extract.UserFeedback{}, extract.NewValidationError("extraction_id", fb.ExtractionID, "must not be empty")
	}

	result, ok := f.history.result(fb.ExtractionID)
	if !ok {
		return extract.UserFeedback{}, extract.NewNotFoundError("extraction", fb.ExtractionID)
	}

	if fb.FeedbackID == "" {
		fb.FeedbackID = uuid.NewString()
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now()
	}

	applied := f.contradictionApplied(fb.ExtractionID, result.Success)
	f.history.appendFeedback(fb)

	if fb.CorrectedValue != "" {
		f.history.setExpectedValue(fb.ExtractionID, fb.CorrectedValue)
	}

	// A judgment that contradicts the recorded outcome moves one attempt
	// between buckets. One extraction is one attempt, so it moves at most
	// once; confirmations and later contradictions leave counts alone.
	if !applied && fb.IsCorrect != result.Success {
		f.tracker.Reclassify(result.PatternID, fb.IsCorrect)
	}

	return fb, nil
}

// contradictionApplied reports whether earlier feedback already moved this
// extraction's attempt between buckets. Any prior judgment disagreeing
// with the recorded outcome means the move happened, regardless of what
// corrected value accompanied it.
func (f *FeedbackProcessor) contradictionApplied(extractionID string, recordedSuccess bool) bool {
	for _, prev := range f.history.feedbackFor(extractionID) {
		if prev.IsCorrect != recordedSuccess {
			return true
		}
	}
	return false
}

// ImplementSuggestion promotes a suggestion: the target pattern gets the
// suggested expression as its enhanced expression and is reactivated.
// Implementing an already-implemented suggestion is a no-op that returns
// the existing state.
func (f *FeedbackProcessor) ImplementSuggestion(suggestionID string) (extract.PatternSuggestion, error) {
	s, ok := f.history.suggestion(suggestionID)
	if !ok {
		return extract.PatternSuggestion{}, extract.NewNotFoundError("suggestion", suggestionID)
	}
	if s.Implemented {
		return s, nil
	}

	if err := f.registry.SetEnhanced(s.PatternID, s.Expression); err != nil {
		return extract.PatternSuggestion{}, err
	}
	f.history.markImplemented(suggestionID)

	s.Implemented = true
	return s, nil
}
