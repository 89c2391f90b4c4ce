// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package learning

import (
	"sync"
	"time"

	"transcript-scan/internal/extract"
)

// DeactivationPolicy deactivates patterns whose success rate stays under the
// watermark once enough attempts have accumulated. The minimum attempt count
// prevents premature deactivation on small samples.
type DeactivationPolicy struct {
	MinAttempts int     `yaml:"min_attempts"`
	Watermark   float64 `yaml:"success_rate_watermark"`
}

// DefaultDeactivationPolicy returns the standard policy: a pattern is
// deactivated when its success rate is below 0.2 after at least 20 attempts.
func DefaultDeactivationPolicy() DeactivationPolicy {
	return DeactivationPolicy{MinAttempts: 20, Watermark: 0.2}
}

type patternRecord struct {
	mu   sync.Mutex
	perf extract.PatternPerformance
}

// Tracker maintains per-pattern aggregate statistics. Mutation is serialized
// per pattern id; different patterns never contend. Reads may observe a
// slightly stale snapshot, which is acceptable for dashboard consumers.
type Tracker struct {
	mu      sync.RWMutex // guards the records map itself
	records map[string]*patternRecord

	policy       DeactivationPolicy
	onDeactivate func(patternID string)
}

// NewTracker creates a tracker with the given policy. onDeactivate, when
// non-nil, is invoked (outside the record lock) whenever the policy trips
// for a pattern; the registry's Deactivate is the usual target.
func NewTracker(policy DeactivationPolicy, onDeactivate func(patternID string)) *Tracker {
	if policy.MinAttempts <= 0 {
		policy = DefaultDeactivationPolicy()
	}
	return &Tracker{
		records:      make(map[string]*patternRecord),
		policy:       policy,
		onDeactivate: onDeactivate,
	}
}

func (t *Tracker) record(patternID string) *patternRecord {
	t.mu.RLock()
	rec, ok := t.records[patternID]
	t.mu.RUnlock()
	if ok {
		return rec
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok = t.records[patternID]; ok {
		return rec
	}
	rec = &patternRecord{perf: extract.PatternPerformance{PatternID: patternID, Active: true}}
	t.records[patternID] = rec
	return rec
}

// RecordAttempt updates counters and the running average confidence for one
// extraction attempt, then applies the deactivation policy.
func (t *Tracker) RecordAttempt(patternID string, success bool, confidence float64) {
	rec := t.record(patternID)

	rec.mu.Lock()
	p := &rec.perf
	p.TotalAttempts++
	if success {
		p.SuccessCount++
	} else {
		p.FailureCount++
	}
	p.SuccessRate = float64(p.SuccessCount) / float64(p.TotalAttempts)
	// Incremental mean keeps the average exact without storing history
	p.AvgConfidence += (confidence - p.AvgConfidence) / float64(p.TotalAttempts)
	p.LastUpdated = time.Now()

	tripped := p.Active &&
		p.TotalAttempts >= t.policy.MinAttempts &&
		p.SuccessRate < t.policy.Watermark
	if tripped {
		p.Active = false
	}
	rec.mu.Unlock()

	if tripped && t.onDeactivate != nil {
		t.onDeactivate(patternID)
	}
}

// Reclassify moves one previously recorded attempt between the success and
// failure buckets after human feedback contradicts the recorded outcome.
// Total attempts are unchanged; the success rate is recomputed.
func (t *Tracker) Reclassify(patternID string, toSuccess bool) {
	rec := t.record(patternID)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	p := &rec.perf
	if toSuccess {
		if p.FailureCount == 0 {
			return
		}
		p.FailureCount--
		p.SuccessCount++
	} else {
		if p.SuccessCount == 0 {
			return
		}
		p.SuccessCount--
		p.FailureCount++
	}
	if p.TotalAttempts > 0 {
		p.SuccessRate = float64(p.SuccessCount) / float64(p.TotalAttempts)
	}
	p.LastUpdated = time.Now()
}

// StatsFor returns a snapshot of one pattern's statistics, or a zeroed
// record when the pattern has no history yet.
func (t *Tracker) StatsFor(patternID string) extract.PatternPerformance {
	t.mu.RLock()
	rec, ok := t.records[patternID]
	t.mu.RUnlock()
	if !ok {
		return extract.PatternPerformance{PatternID: patternID, Active: true}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.perf
}

// Restore seeds a pattern's statistics from a persisted snapshot. Intended
// for process startup only, before any extraction traffic.
func (t *Tracker) Restore(perf extract.PatternPerformance) {
	rec := t.record(perf.PatternID)
	rec.mu.Lock()
	rec.perf = perf
	rec.mu.Unlock()
}

// Aggregate computes attempts-weighted statistics across the given patterns.
// Patterns with more attempts dominate both the overall success rate and the
// average confidence.
func (t *Tracker) Aggregate(docType extract.DocumentType, pats []extract.Pattern, suggestionsGenerated int) extract.AggregateStats {
	stats := extract.AggregateStats{
		DocumentType:         docType,
		TotalPatterns:        len(pats),
		SuggestionsGenerated: suggestionsGenerated,
	}

	var successes int
	var confidenceSum float64
	for _, p := range pats {
		if p.Active {
			stats.ActivePatterns++
		}
		perf := t.StatsFor(p.ID)
		stats.TotalAttempts += perf.TotalAttempts
		successes += perf.SuccessCount
		confidenceSum += perf.AvgConfidence * float64(perf.TotalAttempts)
	}

	if stats.TotalAttempts > 0 {
		stats.OverallSuccessRate = float64(successes) / float64(stats.TotalAttempts)
		stats.AverageConfidence = confidenceSum / float64(stats.TotalAttempts)
	}
	return stats
}

// Snapshot returns copies of every tracked record, for persistence.
func (t *Tracker) Snapshot() []extract.PatternPerformance {
	t.mu.RLock()
	recs := make([]*patternRecord, 0, len(t.records))
	for _, rec := range t.records {
		recs = append(recs, rec)
	}
	t.mu.RUnlock()

	out := make([]extract.PatternPerformance, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, rec.perf)
		rec.mu.Unlock()
	}
	return out
}
