// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package patterns holds the static catalogs of extraction patterns for the
// supported transcript types and the registry that serves them to the
// learning engine.
package patterns

import (
	"fmt"
	"sync"

	"transcript-scan/internal/extract"
)

// Registry serves patterns by document type and id. Lookup order within a
// document type is declaration order and stays stable for the lifetime of
// the process. Patterns are soft-deactivated, never removed.
type Registry struct {
	mu       sync.RWMutex
	ordered  map[extract.DocumentType][]string
	patterns map[string]*extract.Pattern
}

// NewRegistry builds a registry preloaded with the built-in WI, AT and TI
// catalogs.
func NewRegistry() *Registry {
	r := &Registry{
		ordered:  make(map[extract.DocumentType][]string),
		patterns: make(map[string]*extract.Pattern),
	}
	r.load(wiPatterns())
	r.load(atPatterns())
	r.load(tiPatterns())
	return r
}

func (r *Registry) load(list []extract.Pattern) {
	for i := range list {
		p := list[i]
		p.Active = true
		if _, dup := r.patterns[p.ID]; dup {
			// Catalog bug; keep the first declaration.
			continue
		}
		r.patterns[p.ID] = &p
		r.ordered[p.DocumentType] = append(r.ordered[p.DocumentType], p.ID)
	}
}

// PatternID builds the canonical id for a catalog entry.
func PatternID(docType extract.DocumentType, formName, fieldName string) string {
	return fmt.Sprintf("%s_%s_%s", docType, formName, fieldName)
}

// PatternsFor returns copies of all patterns for a document type, active and
// inactive, in declaration order.
func (r *Registry) PatternsFor(docType extract.DocumentType) ([]extract.Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.ordered[docType]
	if !ok {
		return nil, extract.NewValidationError("document_type", string(docType), "must be one of WI, AT, TI")
	}
	out := make([]extract.Pattern, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.patterns[id])
	}
	return out, nil
}

// Get returns a copy of one pattern.
func (r *Registry) Get(id string) (extract.Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patterns[id]
	if !ok {
		return extract.Pattern{}, extract.NewNotFoundError("pattern", id)
	}
	return *p, nil
}

// Deactivate marks a pattern inactive. History is preserved; the pattern is
// skipped by future extraction passes.
func (r *Registry) Deactivate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patterns[id]
	if !ok {
		return extract.NewNotFoundError("pattern", id)
	}
	p.Active = false
	return nil
}

// SetEnhanced installs an enhanced expression for a pattern and reactivates
// it. Used by suggestion promotion only.
func (r *Registry) SetEnhanced(id, expression string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patterns[id]
	if !ok {
		return extract.NewNotFoundError("pattern", id)
	}
	p.Enhanced = expression
	p.Active = true
	return nil
}

// Count returns the number of registered patterns for a document type.
func (r *Registry) Count(docType extract.DocumentType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered[docType])
}
