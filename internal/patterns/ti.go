// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import "transcript-scan/internal/extract"

// tiPatterns is the Tax Investigation catalog: resolution fee and liability
// summary figures plus interest projections.
func tiPatterns() []extract.Pattern {
	type field struct {
		name string
		ftyp extract.FieldType
		expr string
	}

	fields := []field{
		{"Total Resolution Fees", extract.FieldCurrency, `Total\s+Resolution\s+Fees\s*\$?([\d,]+\.?\d*)`},
		{"Current Tax Liability", extract.FieldCurrency, `Current\s+Tax\s+Liability\s*\$?([\d,]+\.?\d*)`},
		{"Current and Projected Liability", extract.FieldCurrency, `Current\s*&\s*Projected\s+Tax\s+Liability\s*\$?([\d,]+\.?\d*)`},
		{"Total Individual Balance", extract.FieldCurrency, `Total\s+Individual\s+Balance\s*\$?([\d,]+\.?\d*)`},
		{"Projected Unfiled Balances", extract.FieldCurrency, `Projected\s+Unfiled\s+Balances\s*\$?([\d,]+\.?\d*)`},
		{"Daily Interest", extract.FieldCurrency, `Daily:\s*\$?([\d,]+\.?\d*)`},
		{"Monthly Interest", extract.FieldCurrency, `Monthly:\s*\$?([\d,]+\.?\d*)`},
		{"Yearly Interest", extract.FieldCurrency, `Yearly:\s*\$?([\d,]+\.?\d*)`},
	}

	out := make([]extract.Pattern, 0, len(fields))
	for _, fl := range fields {
		out = append(out, extract.Pattern{
			ID:           PatternID(extract.DocTypeTI, "Investigation", fl.name),
			DocumentType: extract.DocTypeTI,
			FormName:     "Investigation",
			FieldName:    fl.name,
			FieldType:    fl.ftyp,
			Expression:   fl.expr,
		})
	}
	return out
}
