// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package learning implements the pattern learning engine: confidence
// scoring, performance tracking, suggestion generation and feedback
// ingestion layered over the static pattern catalogs.
package learning

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"transcript-scan/internal/extract"
	"transcript-scan/internal/observability"
)

// PatternRegistry is the registry surface the engine depends on.
type PatternRegistry interface {
	PatternsFor(docType extract.DocumentType) ([]extract.Pattern, error)
	Get(id string) (extract.Pattern, error)
	Deactivate(id string) error
	SetEnhanced(id, expression string) error
}

// Options configures an Engine. Zero values select the documented defaults.
type Options struct {
	Weights         Weights
	Deactivation    DeactivationPolicy
	ContextChars    int
	SuggestionLimit int
	Observer        *observability.StandardObserver
}

// Engine is the extraction orchestrator. It owns the registry handle, the
// tracker and all extraction/feedback/suggestion history; there is no
// ambient global state. Construct one at startup and share it.
type Engine struct {
	registry  PatternRegistry
	scorer    *Scorer
	tracker   *Tracker
	suggester *Suggester
	feedback  *FeedbackProcessor
	history   *history
	contexts  *extract.ContextExtractor
	observer  *observability.StandardObserver

	mu       sync.RWMutex
	compiled map[string]*regexp.Regexp
}

// NewEngine creates an engine over a pattern registry.
func NewEngine(registry PatternRegistry, opts Options) *Engine {
	h := newHistory()
	tracker := NewTracker(opts.Deactivation, func(patternID string) {
		// Best effort: the pattern may already be gone from the registry.
		_ = registry.Deactivate(patternID)
	})

	e := &Engine{
		registry:  registry,
		scorer:    NewScorer(opts.Weights),
		tracker:   tracker,
		suggester: NewSuggester(opts.SuggestionLimit),
		history:   h,
		contexts:  extract.NewContextExtractor().WithContextChars(opts.ContextChars),
		observer:  opts.Observer,
		compiled:  make(map[string]*regexp.Regexp),
	}
	e.feedback = newFeedbackProcessor(h, tracker, registry)
	return e
}

// Feedback returns the engine's feedback processor.
func (e *Engine) Feedback() *FeedbackProcessor { return e.feedback }

// Tracker returns the engine's performance tracker.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// Extract runs every active pattern for a document type against the text
// and returns one result per attempted pattern, in catalog order. A pattern
// that fails to match produces a failed result, never an error; only
// structural problems (empty text, unknown document type) are errors.
func (e *Engine) Extract(docType extract.DocumentType, text string) ([]extract.ExtractionResult, error) {
	return e.ExtractDocument(docType, "", "", text)
}

// ExtractDocument is Extract with case/document identities attached to the
// recorded results.
func (e *Engine) ExtractDocument(docType extract.DocumentType, caseID, documentID, text string) ([]extract.ExtractionResult, error) {
	return e.extractFiltered(docType, caseID, documentID, text, nil)
}

// ExtractForms restricts extraction to patterns whose form name is in forms.
// Patterns for absent forms are not attempted, so their performance records
// stay untouched. A nil filter means every form.
func (e *Engine) ExtractForms(docType extract.DocumentType, caseID, documentID, text string, forms map[string]bool) ([]extract.ExtractionResult, error) {
	return e.extractFiltered(docType, caseID, documentID, text, forms)
}

func (e *Engine) extractFiltered(docType extract.DocumentType, caseID, documentID, text string, forms map[string]bool) ([]extract.ExtractionResult, error) {
	var finishTiming func(bool, map[string]interface{})
	if e.observer != nil {
		finishTiming = e.observer.StartTiming("learning_engine", "extract_document", documentID)
	}

	if strings.TrimSpace(text) == "" {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": "empty text"})
		}
		return nil, extract.NewValidationError("raw_text", "", "document text is empty")
	}

	pats, err := e.registry.PatternsFor(docType)
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		return nil, err
	}

	results := make([]extract.ExtractionResult, 0, len(pats))
	for _, p := range pats {
		if !p.Active {
			continue
		}
		if forms != nil && !forms[p.FormName] {
			continue
		}
		results = append(results, e.attempt(p, caseID, documentID, text))
	}

	if finishTiming != nil {
		successes := 0
		for _, r := range results {
			if r.Success {
				successes++
			}
		}
		finishTiming(true, map[string]interface{}{
			"patterns_attempted": len(results),
			"successes":          successes,
		})
	}
	return results, nil
}

// attempt applies one pattern, scores any match, records the attempt and
// triggers suggestion generation on a miss or a low-confidence hit.
func (e *Engine) attempt(p extract.Pattern, caseID, documentID, text string) extract.ExtractionResult {
	result := extract.ExtractionResult{
		ExtractionID: uuid.NewString(),
		CaseID:       caseID,
		DocumentID:   documentID,
		PatternID:    p.ID,
		FormName:     p.FormName,
		FieldName:    p.FieldName,
		Level:        extract.ConfidenceLow,
		Timestamp:    time.Now(),
	}

	var finishStep func(success bool, details string)
	if e.observer != nil && e.observer.DebugObserver != nil {
		finishStep = e.observer.DebugObserver.StartStep("learning_engine", "attempt "+p.ID, documentID)
	}

	re := e.expressionFor(p)
	var value string
	var span []int
	if re != nil {
		if loc := re.FindStringSubmatchIndex(text); loc != nil {
			span = loc[:2]
			if len(loc) >= 4 && loc[2] >= 0 {
				value = text[loc[2]:loc[3]]
				span = loc[2:4]
			} else {
				value = text[loc[0]:loc[1]]
			}
		}
	}

	if strings.TrimSpace(value) != "" {
		info := e.contexts.Extract(text, span[0], span[1])
		perf := e.tracker.StatsFor(p.ID)
		prior := e.history.successfulContexts(p.ID)
		confidence, _ := e.scorer.Score(value, p, perf, info.Window, prior)

		result.Value = value
		result.Context = info.Window
		result.Confidence = confidence
		result.Level = extract.LevelForScore(confidence)
		result.Success = true
	}

	e.tracker.RecordAttempt(p.ID, result.Success, result.Confidence)
	e.history.addResult(result)

	if !result.Success || result.Level == extract.ConfidenceLow {
		e.suggest(p, result)
	}
	if finishStep != nil {
		finishStep(result.Success, fmt.Sprintf("confidence %.2f", result.Confidence))
	}
	return result
}

// expressionFor compiles the pattern's preferred expression. An enhanced
// expression that fails to compile degrades silently to the primary one;
// the degraded state is visible through the debug observer only.
func (e *Engine) expressionFor(p extract.Pattern) *regexp.Regexp {
	if p.Enhanced != "" {
		if re, err := e.compile(p.Enhanced); err == nil {
			return re
		} else if e.observer != nil && e.observer.DebugObserver != nil {
			e.observer.DebugObserver.LogDetail("learning_engine",
				"enhanced expression for "+p.ID+" failed to compile, falling back to primary: "+err.Error())
		}
	}
	re, err := e.compile(p.Expression)
	if err != nil {
		return nil
	}
	return re
}

// compile caches case-insensitive compilation of expressions.
func (e *Engine) compile(expression string) (*regexp.Regexp, error) {
	e.mu.RLock()
	re, ok := e.compiled[expression]
	e.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(`(?i)` + expression)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.compiled[expression] = re
	e.mu.Unlock()
	return re, nil
}

func (e *Engine) suggest(p extract.Pattern, result extract.ExtractionResult) {
	ev := Evidence{
		CorrectedValue: e.history.correctedValueFor(p.ID),
		PriorContexts:  e.history.successfulContexts(p.ID),
		CurrentContext: result.Context,
	}
	candidates := e.suggester.Generate(p, ev)
	if len(candidates) > 0 {
		e.history.addSuggestions(candidates)
	}
}

// RestoreResults seeds extraction history from persisted records without
// touching pattern performance. Used at startup so feedback can target
// extractions recorded by earlier runs.
func (e *Engine) RestoreResults(results []extract.ExtractionResult) {
	for _, r := range results {
		e.history.addResult(r)
	}
}

// RestoreSuggestions seeds suggestion history from persisted records and
// reapplies implemented suggestions to the registry, so enhanced
// expressions survive a restart.
func (e *Engine) RestoreSuggestions(list []extract.PatternSuggestion) {
	if len(list) > 0 {
		e.history.addSuggestions(list)
	}
	for _, s := range list {
		if s.Implemented {
			// Unknown patterns can appear when the registry shrank
			// between runs; skip them.
			_ = e.registry.SetEnhanced(s.PatternID, s.Expression)
		}
	}
}

// RestorePerformance seeds the tracker from persisted snapshots and
// reapplies deactivation to the registry, so a pattern retired in an
// earlier run stays retired.
func (e *Engine) RestorePerformance(snapshots []extract.PatternPerformance) {
	for _, s := range snapshots {
		e.tracker.Restore(s)
		if !s.Active {
			_ = e.registry.Deactivate(s.PatternID)
		}
	}
}

// RestoreFeedback seeds feedback history from persisted records. Restoring
// feedback keeps resubmitted judgments from moving attempts twice and
// lets corrected values feed suggestion evidence across runs.
func (e *Engine) RestoreFeedback(list []extract.UserFeedback) {
	for _, fb := range list {
		e.history.appendFeedback(fb)
	}
}

// Result returns a recorded extraction by id.
func (e *Engine) Result(extractionID string) (extract.ExtractionResult, error) {
	r, ok := e.history.result(extractionID)
	if !ok {
		return extract.ExtractionResult{}, extract.NewNotFoundError("extraction", extractionID)
	}
	return r, nil
}

// Suggestions lists generated suggestions, optionally filtered by pattern
// id ("" lists all).
func (e *Engine) Suggestions(patternID string) []extract.PatternSuggestion {
	return e.history.suggestionsFor(patternID)
}

// PatternStats returns one pattern's aggregate statistics.
func (e *Engine) PatternStats(patternID string) extract.PatternPerformance {
	return e.tracker.StatsFor(patternID)
}

// Stats aggregates statistics for a document type. Suggestion counts are
// scoped to the type's own patterns.
func (e *Engine) Stats(docType extract.DocumentType) (extract.AggregateStats, error) {
	pats, err := e.registry.PatternsFor(docType)
	if err != nil {
		return extract.AggregateStats{}, err
	}
	ids := make(map[string]bool, len(pats))
	for _, p := range pats {
		ids[p.ID] = true
	}
	return e.tracker.Aggregate(docType, pats, e.history.suggestionCountFor(ids)), nil
}
