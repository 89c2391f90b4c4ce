// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"errors"
	"testing"
)

func TestLevelForScore_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  ConfidenceLevel
	}{
		{1.0, ConfidenceHigh},
		{0.8, ConfidenceHigh},
		{0.79, ConfidenceMedium},
		{0.6, ConfidenceMedium},
		{0.59, ConfidenceLow},
		{0.0, ConfidenceLow},
	}
	for _, tc := range cases {
		if got := LevelForScore(tc.score); got != tc.want {
			t.Errorf("LevelForScore(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestParseDocumentType(t *testing.T) {
	for _, valid := range []string{"WI", "AT", "TI"} {
		dt, err := ParseDocumentType(valid)
		if err != nil {
			t.Errorf("ParseDocumentType(%q) failed: %v", valid, err)
		}
		if string(dt) != valid {
			t.Errorf("ParseDocumentType(%q) = %v", valid, dt)
		}
	}

	_, err := ParseDocumentType("PDF")
	if err == nil {
		t.Fatal("expected error for unknown document type")
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestNotFoundError_Wrapping(t *testing.T) {
	err := NewNotFoundError("pattern", "WI_W-2_EIN")
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("NotFoundError should not match ErrValidation")
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("expected to unwrap *NotFoundError")
	}
	if nf.Kind != "pattern" || nf.ID != "WI_W-2_EIN" {
		t.Errorf("unexpected fields: %+v", nf)
	}
}

func TestValidationError_Wrapping(t *testing.T) {
	err := NewValidationError("raw_text", "", "document text is empty")
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should match ErrValidation")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected to unwrap *ValidationError")
	}
	if ve.Field != "raw_text" {
		t.Errorf("unexpected field: %q", ve.Field)
	}
}
