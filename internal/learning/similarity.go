// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package learning

import (
	"math"
	"strings"
	"unicode"
)

// tokenize lowercases text and splits it on any non-alphanumeric rune.
// Pure numbers are kept: amounts are weak anchors but still evidence that
// two context windows describe the same kind of field.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// termFrequencies builds a normalized term-frequency vector for a token list.
func termFrequencies(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return nil
	}
	freq := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	n := float64(len(tokens))
	for tok := range freq {
		freq[tok] /= n
	}
	return freq
}

// cosineSimilarity computes the cosine of two term-frequency vectors.
func cosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for tok, wa := range a {
		normA += wa * wa
		if wb, ok := b[tok]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		normB += wb * wb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// contextSimilarity scores how much the current context window looks like
// the contexts of prior successful extractions for the same pattern. It is
// the mean cosine similarity against each prior window, clamped to [0,1].
// With no history there is no evidence either way and the score is 0.
func contextSimilarity(current string, prior []string) float64 {
	if current == "" || len(prior) == 0 {
		return 0
	}
	cur := termFrequencies(tokenize(current))
	if len(cur) == 0 {
		return 0
	}

	var sum float64
	var counted int
	for _, p := range prior {
		vec := termFrequencies(tokenize(p))
		if len(vec) == 0 {
			continue
		}
		sum += cosineSimilarity(cur, vec)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return clamp01(sum / float64(counted))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
