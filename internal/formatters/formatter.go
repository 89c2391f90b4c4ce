// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"strings"

	"transcript-scan/internal/extract"
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	ConfidenceLevels map[string]bool // Which confidence levels to display
	Verbose          bool            // Whether to display detailed information
	NoColor          bool            // Whether to disable colored output
	ShowContext      bool            // Whether to display the context window
}

// Report is the full payload a formatter renders: extraction results plus
// any suggestions generated while producing them.
type Report struct {
	DocumentType extract.DocumentType
	Results      []extract.ExtractionResult
	Suggestions  []extract.PatternSuggestion
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders a report according to the formatter's output format
	Format(report Report, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format
	FileExtension() string
}

// FilterByConfidence keeps results whose confidence level is enabled in the
// options. A nil level map keeps everything.
func FilterByConfidence(results []extract.ExtractionResult, options FormatterOptions) []extract.ExtractionResult {
	if options.ConfidenceLevels == nil {
		return results
	}
	var filtered []extract.ExtractionResult
	for _, r := range results {
		if options.ConfidenceLevels[string(r.Level)] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names
func (r *Registry) List() []string {
	var names []string
	for name := range r.formatters {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export formats a report with the named formatter
func Export(format string, report Report, options FormatterOptions) (string, error) {
	formatter, exists := Get(format)
	if !exists {
		availableFormats := List()
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(availableFormats, ", "))
	}
	return formatter.Format(report, options)
}
