// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"transcript-scan/internal/config"
	"transcript-scan/internal/extract"
	"transcript-scan/internal/formatters"
	_ "transcript-scan/internal/formatters/csv"
	_ "transcript-scan/internal/formatters/json"
	_ "transcript-scan/internal/formatters/text"
	_ "transcript-scan/internal/formatters/yaml"
	"transcript-scan/internal/learning"
	"transcript-scan/internal/observability"
	"transcript-scan/internal/parser"
	"transcript-scan/internal/patterns"
	"transcript-scan/internal/store"
	"transcript-scan/internal/version"
)

// configFlags holds command line flag values
type configFlags struct {
	inputFile        string
	documentType     string
	caseID           string
	documentID       string
	outputFormat     string
	confidenceLevels string
	configFile       string
	profileName      string
	listProfiles     bool
	dbPath           string
	noStore          bool
	showStats        bool
	listSuggestions  bool
	suggestionFilter string
	implementID      string
	feedbackID       string
	feedbackCorrect  bool
	correctedValue   string
	feedbackComment  string
	showContext      bool
	verbose          bool
	debug            bool
	noColor          bool
	showVersion      bool
}

func parseFlags() *configFlags {
	flags := &configFlags{}
	flag.StringVar(&flags.inputFile, "file", "", "Path to transcript text file to process")
	flag.StringVar(&flags.documentType, "type", "", "Document type: WI, AT, or TI")
	flag.StringVar(&flags.caseID, "case", "", "Case identifier attached to extraction results")
	flag.StringVar(&flags.documentID, "document", "", "Document identifier attached to extraction results")
	flag.StringVar(&flags.outputFormat, "format", "", "Output format: text, json, csv, yaml")
	flag.StringVar(&flags.confidenceLevels, "confidence", "", "Confidence levels to display (comma-separated: high,medium,low or all)")
	flag.StringVar(&flags.configFile, "config", "", "Path to configuration file")
	flag.StringVar(&flags.profileName, "profile", "", "Configuration profile to use")
	flag.BoolVar(&flags.listProfiles, "list-profiles", false, "List available configuration profiles")
	flag.StringVar(&flags.dbPath, "db", "", "Path to the extraction history database")
	flag.BoolVar(&flags.noStore, "no-store", false, "Do not persist results to the database")
	flag.BoolVar(&flags.showStats, "stats", false, "Show aggregate pattern statistics for the document type")
	flag.BoolVar(&flags.listSuggestions, "suggestions", false, "List stored pattern suggestions")
	flag.StringVar(&flags.suggestionFilter, "pattern", "", "Restrict -suggestions to one pattern id")
	flag.StringVar(&flags.implementID, "implement", "", "Implement a stored suggestion by id")
	flag.StringVar(&flags.feedbackID, "feedback", "", "Submit feedback for an extraction id")
	flag.BoolVar(&flags.feedbackCorrect, "correct", false, "Mark the extraction as correct (with -feedback)")
	flag.StringVar(&flags.correctedValue, "corrected-value", "", "The value the extraction should have produced (with -feedback)")
	flag.StringVar(&flags.feedbackComment, "comment", "", "Free text comment (with -feedback)")
	flag.BoolVar(&flags.showContext, "show-context", false, "Include context windows in output")
	flag.BoolVar(&flags.verbose, "verbose", false, "Enable verbose output")
	flag.BoolVar(&flags.debug, "debug", false, "Enable debug output")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flags.showVersion, "version", false, "Show version information")
	flag.Parse()
	return flags
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format           string
	confidenceLevels string
	documentType     string
	verbose          bool
	debug            bool
	noColor          bool
	dbPath           string
}

// resolveConfiguration resolves final values from config file, profile and
// command line flags, in that precedence order.
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{
		format:           "text",
		confidenceLevels: "all",
		dbPath:           cfg.Storage.Path,
	}

	if cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if cfg.Defaults.ConfidenceLevels != "" {
		final.confidenceLevels = cfg.Defaults.ConfidenceLevels
	}
	final.documentType = cfg.Defaults.DocumentType
	final.verbose = cfg.Defaults.Verbose
	final.debug = cfg.Defaults.Debug
	final.noColor = cfg.Defaults.NoColor

	if activeProfile != nil {
		if activeProfile.Format != "" {
			final.format = activeProfile.Format
		}
		if activeProfile.ConfidenceLevels != "" {
			final.confidenceLevels = activeProfile.ConfidenceLevels
		}
		if activeProfile.DocumentType != "" {
			final.documentType = activeProfile.DocumentType
		}
		final.verbose = activeProfile.Verbose
		final.debug = activeProfile.Debug
		final.noColor = activeProfile.NoColor
	}

	if isFlagSet("format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}
	if isFlagSet("confidence") && flags.confidenceLevels != "" {
		final.confidenceLevels = flags.confidenceLevels
	}
	if isFlagSet("type") && flags.documentType != "" {
		final.documentType = flags.documentType
	}
	if isFlagSet("verbose") {
		final.verbose = flags.verbose
	}
	if isFlagSet("debug") {
		final.debug = flags.debug
	}
	if isFlagSet("no-color") {
		final.noColor = flags.noColor
	}
	if isFlagSet("db") && flags.dbPath != "" {
		final.dbPath = flags.dbPath
	}
	return final
}

// parseConfidenceLevels converts a comma-separated level list into the set
// the formatters filter on. "all" selects every level.
func parseConfidenceLevels(levels string) map[string]bool {
	selected := make(map[string]bool)
	if levels == "" || levels == "all" {
		selected["high"] = true
		selected["medium"] = true
		selected["low"] = true
		return selected
	}
	for _, level := range strings.Split(levels, ",") {
		selected[strings.ToLower(strings.TrimSpace(level))] = true
	}
	return selected
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Println(version.Info())
		return
	}

	cfg := loadConfiguration(flags.configFile)

	if flags.listProfiles {
		fmt.Println("Available profiles:")
		for _, name := range cfg.ListProfiles() {
			profile := cfg.GetProfile(name)
			fmt.Printf("  %s: %s\n", name, profile.Description)
		}
		return
	}

	var activeProfile *config.Profile
	if flags.profileName != "" {
		activeProfile = cfg.GetProfile(flags.profileName)
		if activeProfile == nil {
			fmt.Fprintf(os.Stderr, "Error: profile %q not found\n", flags.profileName)
			os.Exit(1)
		}
	}
	final := resolveConfiguration(cfg, activeProfile, flags)

	var observer *observability.StandardObserver
	if final.debug {
		observer = observability.NewStandardObserver(observability.ObservabilityDebug, os.Stderr)
	} else if final.verbose {
		observer = observability.NewStandardObserver(observability.ObservabilityMetrics, os.Stderr)
	}

	registry := patterns.NewRegistry()
	engine := learning.NewEngine(registry, learning.Options{
		Weights: learning.Weights{
			Performance: cfg.Learning.Weights.Performance,
			Simplicity:  cfg.Learning.Weights.Simplicity,
			Validation:  cfg.Learning.Weights.Validation,
			Context:     cfg.Learning.Weights.Context,
		},
		Deactivation: learning.DeactivationPolicy{
			MinAttempts: cfg.Learning.Deactivation.MinAttempts,
			Watermark:   cfg.Learning.Deactivation.Watermark,
		},
		ContextChars:    cfg.Learning.ContextChars,
		SuggestionLimit: cfg.Learning.SuggestionLimit,
		Observer:        observer,
	})

	var db *store.DB
	if !flags.noStore {
		var err error
		db, err = store.Open(final.dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot open database %s: %v\n", final.dbPath, err)
			os.Exit(1)
		}
		defer db.Close()
		restoreState(engine, db)
	}

	switch {
	case flags.feedbackID != "":
		runFeedback(engine, db, flags)
	case flags.implementID != "":
		runImplement(engine, db, flags.implementID)
	case flags.listSuggestions:
		runListSuggestions(engine, flags.suggestionFilter)
	case flags.showStats:
		runStats(engine, final.documentType)
	case flags.inputFile != "":
		runExtraction(engine, db, flags, final)
	default:
		fmt.Fprintln(os.Stderr, "Error: nothing to do; pass -file, -feedback, -implement, -suggestions or -stats")
		flag.Usage()
		os.Exit(1)
	}
}

// restoreState seeds the engine from the persisted extraction history so
// feedback and suggestions submitted now can target earlier runs.
func restoreState(engine *learning.Engine, db *store.DB) {
	// Implemented suggestions reactivate their pattern, so the persisted
	// active flag is applied after them.
	if suggestions, err := db.ListSuggestions(""); err == nil {
		engine.RestoreSuggestions(suggestions)
	}
	if perf, err := db.LoadPerformance(); err == nil {
		engine.RestorePerformance(perf)
	}
	if results, err := db.ListExtractions("", 0); err == nil {
		engine.RestoreResults(results)
	}
	if feedback, err := db.ListFeedback(""); err == nil {
		engine.RestoreFeedback(feedback)
	}
}

func runExtraction(engine *learning.Engine, db *store.DB, flags *configFlags, final *finalConfiguration) {
	docType, err := extract.ParseDocumentType(strings.ToUpper(final.documentType))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(flags.inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", flags.inputFile, err)
		os.Exit(1)
	}
	text := string(data)

	var results []extract.ExtractionResult
	switch docType {
	case extract.DocTypeWI:
		summary, perr := parser.NewWIParser(engine).Parse(flags.caseID, flags.documentID, flags.inputFile, text)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", perr)
			os.Exit(1)
		}
		results = summary.Results
	case extract.DocTypeAT:
		summary, perr := parser.NewATParser(engine).Parse(flags.caseID, flags.documentID, text)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", perr)
			os.Exit(1)
		}
		results = summary.Results
	case extract.DocTypeTI:
		summary, perr := parser.NewTIParser(engine).Parse(flags.caseID, flags.documentID, text)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", perr)
			os.Exit(1)
		}
		results = summary.Results
	}

	report := formatters.Report{
		DocumentType: docType,
		Results:      results,
		Suggestions:  engine.Suggestions(""),
	}
	options := formatters.FormatterOptions{
		ConfidenceLevels: parseConfidenceLevels(final.confidenceLevels),
		Verbose:          final.verbose,
		NoColor:          final.noColor,
		ShowContext:      flags.showContext,
	}
	output, err := formatters.Export(final.format, report, options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	if db != nil {
		persist(db, engine, results)
	}
}

func persist(db *store.DB, engine *learning.Engine, results []extract.ExtractionResult) {
	if err := db.SaveExtractions(results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not persist extractions: %v\n", err)
	}
	if err := db.SaveSuggestions(engine.Suggestions("")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not persist suggestions: %v\n", err)
	}
	if err := db.SavePerformance(engine.Tracker().Snapshot()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not persist performance: %v\n", err)
	}
}

func runFeedback(engine *learning.Engine, db *store.DB, flags *configFlags) {
	fb, err := engine.Feedback().Submit(extract.UserFeedback{
		ExtractionID:   flags.feedbackID,
		IsCorrect:      flags.feedbackCorrect,
		CorrectedValue: flags.correctedValue,
		Comment:        flags.feedbackComment,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Feedback %s recorded for extraction %s\n", fb.FeedbackID, fb.ExtractionID)

	if db != nil {
		if err := db.SaveFeedback(fb); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not persist feedback: %v\n", err)
		}
		if err := db.SavePerformance(engine.Tracker().Snapshot()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not persist performance: %v\n", err)
		}
		if err := db.SaveSuggestions(engine.Suggestions("")); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not persist suggestions: %v\n", err)
		}
	}
}

func runImplement(engine *learning.Engine, db *store.DB, suggestionID string) {
	s, err := engine.Feedback().ImplementSuggestion(suggestionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Suggestion %s implemented: %s now uses %s\n", s.SuggestionID, s.PatternID, s.Expression)

	if db != nil {
		if err := db.SaveSuggestions([]extract.PatternSuggestion{s}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not persist suggestion: %v\n", err)
		}
	}
}

func runListSuggestions(engine *learning.Engine, patternID string) {
	suggestions := engine.Suggestions(patternID)
	if len(suggestions) == 0 {
		fmt.Println("No suggestions recorded.")
		return
	}
	for _, s := range suggestions {
		status := "pending"
		if s.Implemented {
			status = "implemented"
		}
		fmt.Printf("%s [%s] %s (confidence %.2f)\n", s.SuggestionID, status, s.PatternID, s.Confidence)
		fmt.Printf("  %s\n", s.Reasoning)
		fmt.Printf("  expression: %s\n", s.Expression)
	}
}

func runStats(engine *learning.Engine, documentType string) {
	docType, err := extract.ParseDocumentType(strings.ToUpper(documentType))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	stats, err := engine.Stats(docType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(stats)
}
