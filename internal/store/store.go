// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package store persists extraction results, feedback, suggestions and
// pattern performance snapshots so that feedback submitted in one run can
// reference extractions recorded in an earlier one. The engine itself does
// no I/O; the CLI wires a store around it.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"transcript-scan/internal/extract"
)

// DB wraps the SQLite connection. Entity shapes mirror the engine types
// exactly; no store-specific variants.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path and bootstraps the schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS extractions (
  extraction_id TEXT PRIMARY KEY,
  case_id TEXT,
  document_id TEXT,
  pattern_id TEXT NOT NULL,
  form_name TEXT NOT NULL,
  field_name TEXT NOT NULL,
  extracted_value TEXT,
  expected_value TEXT,
  confidence_score REAL NOT NULL,
  confidence_level TEXT NOT NULL,
  success INTEGER NOT NULL,
  context_text TEXT,
  extraction_timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extractions_pattern ON extractions(pattern_id);
CREATE INDEX IF NOT EXISTS idx_extractions_case ON extractions(case_id);

CREATE TABLE IF NOT EXISTS feedback (
  feedback_id TEXT PRIMARY KEY,
  extraction_id TEXT NOT NULL,
  is_correct INTEGER NOT NULL,
  corrected_value TEXT,
  comment TEXT,
  feedback_timestamp TEXT NOT NULL,
  FOREIGN KEY(extraction_id) REFERENCES extractions(extraction_id)
);
CREATE INDEX IF NOT EXISTS idx_feedback_extraction ON feedback(extraction_id);

CREATE TABLE IF NOT EXISTS suggestions (
  suggestion_id TEXT PRIMARY KEY,
  pattern_id TEXT NOT NULL,
  suggested_expression TEXT NOT NULL,
  confidence_score REAL NOT NULL,
  reasoning TEXT,
  is_implemented INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_suggestions_pattern ON suggestions(pattern_id);

CREATE TABLE IF NOT EXISTS pattern_performance (
  pattern_id TEXT PRIMARY KEY,
  success_count INTEGER NOT NULL,
  failure_count INTEGER NOT NULL,
  total_attempts INTEGER NOT NULL,
  success_rate REAL NOT NULL,
  average_confidence REAL NOT NULL,
  last_updated TEXT NOT NULL,
  is_active INTEGER NOT NULL
);
`
	_, err := d.conn.Exec(schema)
	return err
}

// SaveExtractions inserts a batch of extraction results.
func (d *DB) SaveExtractions(results []extract.ExtractionResult) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO extractions (
  extraction_id, case_id, document_id, pattern_id, form_name, field_name,
  extracted_value, expected_value, confidence_score, confidence_level,
  success, context_text, extraction_timestamp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.Exec(
			r.ExtractionID, r.CaseID, r.DocumentID, r.PatternID, r.FormName, r.FieldName,
			r.Value, r.ExpectedValue, r.Confidence, string(r.Level),
			boolToInt(r.Success), r.Context, r.Timestamp.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetExtraction returns one extraction result by id.
func (d *DB) GetExtraction(extractionID string) (extract.ExtractionResult, error) {
	var r extract.ExtractionResult
	var success int
	var level, ts string
	err := d.conn.QueryRow(`
SELECT extraction_id, case_id, document_id, pattern_id, form_name, field_name,
       extracted_value, expected_value, confidence_score, confidence_level,
       success, context_text, extraction_timestamp
FROM extractions WHERE extraction_id = ?
`, extractionID).Scan(
		&r.ExtractionID, &r.CaseID, &r.DocumentID, &r.PatternID, &r.FormName, &r.FieldName,
		&r.Value, &r.ExpectedValue, &r.Confidence, &level,
		&success, &r.Context, &ts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return extract.ExtractionResult{}, extract.NewNotFoundError("extraction", extractionID)
	}
	if err != nil {
		return extract.ExtractionResult{}, err
	}
	r.Level = extract.ConfidenceLevel(level)
	r.Success = success != 0
	r.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	return r, nil
}

// ListExtractions returns results, optionally filtered to one pattern id
// ("" lists all), oldest first. A zero limit means no limit.
func (d *DB) ListExtractions(patternID string, limit int) ([]extract.ExtractionResult, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
SELECT extraction_id, case_id, document_id, pattern_id, form_name, field_name,
       extracted_value, expected_value, confidence_score, confidence_level,
       success, context_text, extraction_timestamp
FROM extractions`
	args := []any{}
	if patternID != "" {
		query += ` WHERE pattern_id = ?`
		args = append(args, patternID)
	}
	query += ` ORDER BY extraction_timestamp ASC LIMIT ?`
	args = append(args, limit)

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []extract.ExtractionResult
	for rows.Next() {
		var r extract.ExtractionResult
		var success int
		var level, ts string
		if err := rows.Scan(
			&r.ExtractionID, &r.CaseID, &r.DocumentID, &r.PatternID, &r.FormName, &r.FieldName,
			&r.Value, &r.ExpectedValue, &r.Confidence, &level,
			&success, &r.Context, &ts,
		); err != nil {
			return nil, err
		}
		r.Level = extract.ConfidenceLevel(level)
		r.Success = success != 0
		r.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveFeedback appends one feedback record. Feedback is append-only; there
// is no update path.
func (d *DB) SaveFeedback(fb extract.UserFeedback) error {
	_, err := d.conn.Exec(`
INSERT INTO feedback (feedback_id, extraction_id, is_correct, corrected_value, comment, feedback_timestamp)
VALUES (?, ?, ?, ?, ?, ?)
`, fb.FeedbackID, fb.ExtractionID, boolToInt(fb.IsCorrect), fb.CorrectedValue, fb.Comment,
		fb.Timestamp.UTC().Format(time.RFC3339Nano))
	return err
}

// ListFeedback returns feedback, optionally filtered to one extraction
// id ("" lists all), oldest first.
func (d *DB) ListFeedback(extractionID string) ([]extract.UserFeedback, error) {
	query := `
SELECT feedback_id, extraction_id, is_correct, corrected_value, comment, feedback_timestamp
FROM feedback`
	args := []any{}
	if extractionID != "" {
		query += ` WHERE extraction_id = ?`
		args = append(args, extractionID)
	}
	query += ` ORDER BY feedback_timestamp ASC`

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []extract.UserFeedback
	for rows.Next() {
		var fb extract.UserFeedback
		var correct int
		var ts string
		if err := rows.Scan(&fb.FeedbackID, &fb.ExtractionID, &correct, &fb.CorrectedValue, &fb.Comment, &ts); err != nil {
			return nil, err
		}
		fb.IsCorrect = correct != 0
		fb.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, fb)
	}
	return out, rows.Err()
}

// SaveSuggestions upserts suggestion records. Re-saving after promotion
// keeps the implemented flag current.
func (d *DB) SaveSuggestions(list []extract.PatternSuggestion) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO suggestions (suggestion_id, pattern_id, suggested_expression, confidence_score, reasoning, is_implemented, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(suggestion_id) DO UPDATE SET
  is_implemented = excluded.is_implemented
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range list {
		if _, err := stmt.Exec(
			s.SuggestionID, s.PatternID, s.Expression, s.Confidence, s.Reasoning,
			boolToInt(s.Implemented), s.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListSuggestions returns suggestions, optionally filtered to one pattern
// id ("" lists all), oldest first.
func (d *DB) ListSuggestions(patternID string) ([]extract.PatternSuggestion, error) {
	query := `
SELECT suggestion_id, pattern_id, suggested_expression, confidence_score, reasoning, is_implemented, created_at
FROM suggestions`
	args := []any{}
	if patternID != "" {
		query += ` WHERE pattern_id = ?`
		args = append(args, patternID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []extract.PatternSuggestion
	for rows.Next() {
		var s extract.PatternSuggestion
		var implemented int
		var ts string
		if err := rows.Scan(&s.SuggestionID, &s.PatternID, &s.Expression, &s.Confidence, &s.Reasoning, &implemented, &ts); err != nil {
			return nil, err
		}
		s.Implemented = implemented != 0
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SavePerformance upserts pattern performance snapshots.
func (d *DB) SavePerformance(snapshots []extract.PatternPerformance) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO pattern_performance (pattern_id, success_count, failure_count, total_attempts, success_rate, average_confidence, last_updated, is_active)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(pattern_id) DO UPDATE SET
  success_count = excluded.success_count,
  failure_count = excluded.failure_count,
  total_attempts = excluded.total_attempts,
  success_rate = excluded.success_rate,
  average_confidence = excluded.average_confidence,
  last_updated = excluded.last_updated,
  is_active = excluded.is_active
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range snapshots {
		if p.TotalAttempts != p.SuccessCount+p.FailureCount {
			return fmt.Errorf("inconsistent performance snapshot for %s: %d+%d != %d",
				p.PatternID, p.SuccessCount, p.FailureCount, p.TotalAttempts)
		}
		if _, err := stmt.Exec(
			p.PatternID, p.SuccessCount, p.FailureCount, p.TotalAttempts,
			p.SuccessRate, p.AvgConfidence, p.LastUpdated.UTC().Format(time.RFC3339Nano),
			boolToInt(p.Active),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadPerformance returns all persisted performance snapshots.
func (d *DB) LoadPerformance() ([]extract.PatternPerformance, error) {
	rows, err := d.conn.Query(`
SELECT pattern_id, success_count, failure_count, total_attempts, success_rate, average_confidence, last_updated, is_active
FROM pattern_performance
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []extract.PatternPerformance
	for rows.Next() {
		var p extract.PatternPerformance
		var active int
		var ts string
		if err := rows.Scan(&p.PatternID, &p.SuccessCount, &p.FailureCount, &p.TotalAttempts, &p.SuccessRate, &p.AvgConfidence, &ts, &active); err != nil {
			return nil, err
		}
		p.Active = active != 0
		p.LastUpdated, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, p)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
