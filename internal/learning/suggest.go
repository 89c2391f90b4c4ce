// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package learning

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"transcript-scan/internal/extract"
)

// Evidence is what the suggester has to work with after a failed or
// low-confidence extraction.
type Evidence struct {
	// CorrectedValue is the known-good value from prior feedback on this
	// field, when one exists.
	CorrectedValue string
	// PriorContexts are the context windows of this pattern's historical
	// successful extractions.
	PriorContexts []string
	// CurrentContext is the window around the failed attempt, empty when
	// nothing matched at all.
	CurrentContext string
}

// Suggester proposes alternative expressions for patterns that stopped
// matching. Strategies run in order (value-anchored, context-anchored,
// hybrid) and stop as soon as one of them yields candidates.
type Suggester struct {
	limit int
}

// NewSuggester creates a suggester that returns at most limit candidates
// per invocation.
func NewSuggester(limit int) *Suggester {
	if limit <= 0 {
		limit = 5
	}
	return &Suggester{limit: limit}
}

// Generate produces suggestion candidates for a pattern. May return an
// empty slice when no strategy has enough evidence.
func (g *Suggester) Generate(pattern extract.Pattern, ev Evidence) []extract.PatternSuggestion {
	strategies := []func(extract.Pattern, Evidence) []extract.PatternSuggestion{
		g.valueAnchored,
		g.contextAnchored,
		g.hybrid,
	}

	for _, strategy := range strategies {
		if candidates := strategy(pattern, ev); len(candidates) > 0 {
			if len(candidates) > g.limit {
				candidates = candidates[:g.limit]
			}
			return candidates
		}
	}
	return nil
}

// valueAnchored builds an expression that matches the corrected value
// literally, tolerating interior whitespace, thousands separators and a
// currency symbol.
func (g *Suggester) valueAnchored(pattern extract.Pattern, ev Evidence) []extract.PatternSuggestion {
	if ev.CorrectedValue == "" {
		return nil
	}

	expr := flexibleValueExpression(ev.CorrectedValue, pattern.FieldType)
	if expr == "" {
		return nil
	}

	reasoning := fmt.Sprintf("value-anchored: matches the corrected value %q with flexible whitespace and separators", ev.CorrectedValue)
	return []extract.PatternSuggestion{g.candidate(pattern, expr, ev, reasoning)}
}

// contextAnchored mines the most frequent stable tokens adjacent to the
// value in historical successful contexts and uses them as anchors around a
// capturing group.
func (g *Suggester) contextAnchored(pattern extract.Pattern, ev Evidence) []extract.PatternSuggestion {
	prefix, suffix := frequentAnchors(ev.PriorContexts)
	if prefix == "" {
		return nil
	}

	capture := captureForType(pattern.FieldType)
	expr := regexp.QuoteMeta(prefix) + `[:\s]*\$?` + capture
	reasoning := fmt.Sprintf("context-anchored: prefix token %q appears in %d historical successful extraction contexts", prefix, len(ev.PriorContexts))
	out := []extract.PatternSuggestion{g.candidate(pattern, expr, ev, reasoning)}

	if suffix != "" {
		expr2 := regexp.QuoteMeta(prefix) + `[:\s]*\$?` + capture + `\s*` + regexp.QuoteMeta(suffix)
		reasoning2 := fmt.Sprintf("context-anchored: tokens %q and %q bracket the value in historical successful extraction contexts", prefix, suffix)
		out = append(out, g.candidate(pattern, expr2, ev, reasoning2))
	}
	return out
}

// hybrid combines a mined prefix anchor with the flexible corrected-value
// expression. Only reachable when neither simpler strategy produced a
// candidate on its own.
func (g *Suggester) hybrid(pattern extract.Pattern, ev Evidence) []extract.PatternSuggestion {
	if ev.CorrectedValue == "" || len(ev.PriorContexts) == 0 {
		return nil
	}
	prefix, suffix := frequentAnchors(ev.PriorContexts)
	if prefix == "" {
		return nil
	}
	value := flexibleValueExpression(ev.CorrectedValue, pattern.FieldType)
	if value == "" {
		return nil
	}

	expr := regexp.QuoteMeta(prefix) + `[:\s]*` + value
	if suffix != "" {
		expr += `\s*` + regexp.QuoteMeta(suffix)
	}
	reasoning := fmt.Sprintf("hybrid: prefix token %q combined with the corrected value %q to reduce false positives", prefix, ev.CorrectedValue)
	return []extract.PatternSuggestion{g.candidate(pattern, expr, ev, reasoning)}
}

func (g *Suggester) candidate(pattern extract.Pattern, expr string, ev Evidence, reasoning string) extract.PatternSuggestion {
	// Pattern-performance is meaningless for an undeployed expression, so
	// the remaining two scorer signals split its weight evenly.
	confidence := 0.5*simplicityScore(expr) + 0.5*contextSimilarity(ev.CurrentContext, ev.PriorContexts)

	return extract.PatternSuggestion{
		SuggestionID: uuid.NewString(),
		PatternID:    pattern.ID,
		Expression:   expr,
		Confidence:   clamp01(confidence),
		Reasoning:    reasoning,
		CreatedAt:    time.Now(),
	}
}

// captureForType returns the capturing group for a field's value shape.
func captureForType(ft extract.FieldType) string {
	switch ft {
	case extract.FieldCurrency:
		return `([\d,.]+)`
	case extract.FieldDate:
		return `([\d/\-]+|[A-Za-z]+\.?\s+\d{1,2},?\s*\d{4})`
	case extract.FieldIdentifier:
		return `([\d\-]+)`
	default:
		return `([^\n]+)`
	}
}

// flexibleValueExpression turns a literal value into an expression with a
// capturing group that tolerates an optional currency symbol, optional
// thousands separators and flexible interior whitespace.
func flexibleValueExpression(value string, ft extract.FieldType) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if ft == extract.FieldCurrency {
		cleaned := strings.ReplaceAll(strings.ReplaceAll(value, "$", ""), ",", "")
		cleaned = strings.TrimSpace(cleaned)
		intPart, fracPart, hasFrac := strings.Cut(cleaned, ".")
		if intPart == "" || strings.ContainsFunc(intPart, func(r rune) bool { return r < '0' || r > '9' }) {
			return ""
		}

		// Re-introduce optional comma positions every three digits
		var b strings.Builder
		for i, r := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				b.WriteString(`,?`)
			}
			b.WriteRune(r)
		}
		expr := `\$?\s*(` + b.String()
		if hasFrac {
			expr += `\.` + regexp.QuoteMeta(fracPart)
		}
		return expr + `)`
	}

	// Non-currency values: escape literally, then loosen interior runs of
	// whitespace. QuoteMeta leaves spaces alone, so the runs are literal.
	escaped := regexp.QuoteMeta(value)
	escaped = regexp.MustCompile(`\s+`).ReplaceAllString(escaped, `\s+`)
	return `(` + escaped + `)`
}

// frequentAnchors finds the most frequent stable tokens immediately before
// and after a value-looking substring across the prior context windows.
// Tokens shorter than three characters or purely numeric are too unstable
// to anchor on.
func frequentAnchors(contexts []string) (prefix, suffix string) {
	valueRe := regexp.MustCompile(`\$?[\d][\d,]*(?:\.\d+)?`)

	prefixCounts := make(map[string]int)
	suffixCounts := make(map[string]int)
	for _, ctx := range contexts {
		loc := valueRe.FindStringIndex(ctx)
		if loc == nil {
			continue
		}
		before := tokenize(ctx[:loc[0]])
		after := tokenize(ctx[loc[1]:])
		if tok := lastAnchorToken(before); tok != "" {
			prefixCounts[tok]++
		}
		if tok := firstAnchorToken(after); tok != "" {
			suffixCounts[tok]++
		}
	}

	return topToken(prefixCounts), topToken(suffixCounts)
}

func anchorable(tok string) bool {
	if len(tok) < 3 {
		return false
	}
	return strings.ContainsFunc(tok, func(r rune) bool { return r < '0' || r > '9' })
}

func lastAnchorToken(tokens []string) string {
	for i := len(tokens) - 1; i >= 0; i-- {
		if anchorable(tokens[i]) {
			return tokens[i]
		}
	}
	return ""
}

func firstAnchorToken(tokens []string) string {
	for _, tok := range tokens {
		if anchorable(tok) {
			return tok
		}
	}
	return ""
}

func topToken(counts map[string]int) string {
	type entry struct {
		tok string
		n   int
	}
	entries := make([]entry, 0, len(counts))
	for tok, n := range counts {
		entries = append(entries, entry{tok, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].n != entries[j].n {
			return entries[i].n > entries[j].n
		}
		return entries[i].tok < entries[j].tok
	})
	if len(entries) == 0 {
		return ""
	}
	return entries[0].tok
}
