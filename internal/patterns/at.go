// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import "transcript-scan/internal/extract"

// atPatterns is the Account Transcript catalog: header financials, filing
// status, tax year and processing date. Transaction lines are handled by the
// parser's line scanner, not by per-field patterns.
func atPatterns() []extract.Pattern {
	type field struct {
		name string
		ftyp extract.FieldType
		expr string
	}

	fields := []field{
		{"Account Balance", extract.FieldCurrency, `(?:ACCOUNT BALANCE|Account balance)[:\s]*[\$]?([\d,\.\-]+)`},
		{"Accrued Interest", extract.FieldCurrency, `(?:ACCRUED INTEREST|Accrued interest)[:\s]*[\$]?([\d,\.\-]+)`},
		{"Accrued Penalty", extract.FieldCurrency, `(?:ACCRUED PENALTY|Accrued penalty)[:\s]*[\$]?([\d,\.\-]+)`},
		{"Adjusted Gross Income", extract.FieldCurrency, `(?:ADJUSTED GROSS INCOME|Adjusted gross income)[:\s]*[\$]?([\d,\.\-]+)`},
		{"Taxable Income", extract.FieldCurrency, `(?:TAXABLE INCOME|Taxable income)[:\s]*[\$]?([\d,\.\-]+)`},
		{"Tax Per Return", extract.FieldCurrency, `(?:TAX PER RETURN|Tax per return)[:\s]*[\$]?([\d,\.\-]+)`},
		{"SE Taxable Income Taxpayer", extract.FieldCurrency, `(?:SE TAXABLE INCOME TAXPAYER|SE taxable income taxpayer)[:\s]*[\$]?([\d,\.\-]+)`},
		{"SE Taxable Income Spouse", extract.FieldCurrency, `(?:SE TAXABLE INCOME SPOUSE|SE taxable income spouse)[:\s]*[\$]?([\d,\.\-]+)`},
		{"Total Self Employment Tax", extract.FieldCurrency, `(?:TOTAL SELF EMPLOYMENT TAX|Total self employment tax)[:\s]*[\$]?([\d,\.\-]+)`},
		{"Filing Status", extract.FieldText, `(?:FILING STATUS|Filing status)[:\s]*([^,\n]+)`},
		{"Tax Year", extract.FieldDate, `Report for Tax Period Ending:\s*\d{2}-\d{2}-(\d{4})`},
		{"Processing Date", extract.FieldDate, `(?:PROCESSING DATE|Processing date)[:\s]*([A-Za-z]+\.?\s+\d{1,2},?\s*\d{4})`},
	}

	out := make([]extract.Pattern, 0, len(fields))
	for _, fl := range fields {
		out = append(out, extract.Pattern{
			ID:           PatternID(extract.DocTypeAT, "Account", fl.name),
			DocumentType: extract.DocTypeAT,
			FormName:     "Account",
			FieldName:    fl.name,
			FieldType:    fl.ftyp,
			Expression:   fl.expr,
		})
	}
	return out
}
