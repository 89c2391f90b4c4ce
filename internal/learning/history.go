// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package learning

import (
	"sync"

	"transcript-scan/internal/extract"
)

// history is the engine's shared record of extraction results, feedback and
// suggestions. Feedback is append-only; results are immutable except for the
// expected-value annotation feedback sets.
type history struct {
	mu sync.RWMutex

	results     map[string]*extract.ExtractionResult
	resultOrder []string

	feedback []extract.UserFeedback

	suggestions     map[string]*extract.PatternSuggestion
	suggestionOrder []string
}

func newHistory() *history {
	return &history{
		results:     make(map[string]*extract.ExtractionResult),
		suggestions: make(map[string]*extract.PatternSuggestion),
	}
}

func (h *history) addResult(r extract.ExtractionResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results[r.ExtractionID] = &r
	h.resultOrder = append(h.resultOrder, r.ExtractionID)
}

func (h *history) result(id string) (extract.ExtractionResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.results[id]
	if !ok {
		return extract.ExtractionResult{}, false
	}
	return *r, true
}

func (h *history) setExpectedValue(id, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.results[id]; ok {
		r.ExpectedValue = value
	}
}

func (h *history) appendFeedback(fb extract.UserFeedback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.feedback = append(h.feedback, fb)
}

// feedbackFor returns all feedback recorded against one extraction, oldest
// first.
func (h *history) feedbackFor(extractionID string) []extract.UserFeedback {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []extract.UserFeedback
	for _, fb := range h.feedback {
		if fb.ExtractionID == extractionID {
			out = append(out, fb)
		}
	}
	return out
}

// successfulContexts returns the context windows of a pattern's successful
// extractions, oldest first.
func (h *history) successfulContexts(patternID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []string
	for _, id := range h.resultOrder {
		r := h.results[id]
		if r.PatternID == patternID && r.Success && r.Context != "" {
			out = append(out, r.Context)
		}
	}
	return out
}

// correctedValueFor returns the most recent corrected value submitted via
// feedback against any extraction of this pattern, or "".
func (h *history) correctedValueFor(patternID string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := len(h.feedback) - 1; i >= 0; i-- {
		fb := h.feedback[i]
		if fb.CorrectedValue == "" {
			continue
		}
		if r, ok := h.results[fb.ExtractionID]; ok && r.PatternID == patternID {
			return fb.CorrectedValue
		}
	}
	return ""
}

func (h *history) addSuggestions(list []extract.PatternSuggestion) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range list {
		s := list[i]
		if _, dup := h.suggestions[s.SuggestionID]; dup {
			continue
		}
		h.suggestions[s.SuggestionID] = &s
		h.suggestionOrder = append(h.suggestionOrder, s.SuggestionID)
	}
}

func (h *history) suggestion(id string) (extract.PatternSuggestion, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.suggestions[id]
	if !ok {
		return extract.PatternSuggestion{}, false
	}
	return *s, true
}

func (h *history) markImplemented(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.suggestions[id]; ok {
		s.Implemented = true
	}
}

// suggestionsFor lists suggestions, optionally filtered to one pattern id.
// An empty patternID lists everything, in creation order.
func (h *history) suggestionsFor(patternID string) []extract.PatternSuggestion {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []extract.PatternSuggestion
	for _, id := range h.suggestionOrder {
		s := h.suggestions[id]
		if patternID == "" || s.PatternID == patternID {
			out = append(out, *s)
		}
	}
	return out
}

func (h *history) suggestionCountFor(patternIDs map[string]bool) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, id := range h.suggestionOrder {
		if patternIDs[h.suggestions[id].PatternID] {
			n++
		}
	}
	return n
}
