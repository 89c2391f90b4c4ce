// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import "strings"

// ContextInfo stores the text surrounding a match. It is the evidence the
// scorer's similarity signal and the suggestion generator's anchor mining
// work from.
type ContextInfo struct {
	BeforeText string
	AfterText  string

	// Line containing the match
	FullLine string

	// Window is the flat window (before + match + after) recorded on the
	// ExtractionResult.
	Window string
}

// ContextExtractor slices a context window out of document text around a
// match span.
type ContextExtractor struct {
	// Number of characters before and after the match to consider
	ContextChars int
}

// NewContextExtractor creates a context extractor with the default window.
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{
		ContextChars: 100, // 100 chars either side by default
	}
}

// WithContextChars sets the number of context characters.
func (ce *ContextExtractor) WithContextChars(chars int) *ContextExtractor {
	if chars > 0 {
		ce.ContextChars = chars
	}
	return ce
}

// Extract returns the context around text[start:end].
func (ce *ContextExtractor) Extract(text string, start, end int) ContextInfo {
	if start < 0 || end > len(text) || start > end {
		return ContextInfo{}
	}

	winStart := max(0, start-ce.ContextChars)
	winEnd := min(len(text), end+ce.ContextChars)

	info := ContextInfo{
		BeforeText: text[winStart:start],
		AfterText:  text[end:winEnd],
		Window:     text[winStart:winEnd],
	}

	// Full line containing the start of the match
	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	lineEnd := strings.IndexByte(text[start:], '\n')
	if lineEnd == -1 {
		lineEnd = len(text)
	} else {
		lineEnd += start
	}
	info.FullLine = text[lineStart:lineEnd]

	return info
}
