// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import "transcript-scan/internal/extract"

// Form categories used by the income rollup: SE income feeds self-employment
// totals, NonSE feeds wage totals, Neither is reported but not totaled.
const (
	CategorySE      = "SE"
	CategoryNonSE   = "Non-SE"
	CategoryNeither = "Neither"
)

// wiPatterns is the Wage & Income catalog. Declaration order is lookup
// order. Field names and expressions follow the IRS transcript layout for
// each form.
func wiPatterns() []extract.Pattern {
	type field struct {
		name string
		ftyp extract.FieldType
		expr string
	}
	type form struct {
		name     string
		category string
		fields   []field
	}

	forms := []form{
		{
			name:     "W-2",
			category: CategoryNonSE,
			fields: []field{
				{"Wages, Tips, and Other Compensation", extract.FieldCurrency, `Wages[\s,]*tips[\s,]*and[\s,]*other[\s,]*compensation[:\s]*\$?([\d,.]+)`},
				{"Federal Withholding", extract.FieldCurrency, `Federal[\s,]*income[\s,]*tax[\s,]*withheld[:\s]*\$?([\d,.]+)`},
				{"EIN", extract.FieldIdentifier, `Employer Identification Number \(EIN\):\s*([\d\-]+)`},
			},
		},
		{
			name:     "W-2G",
			category: CategoryNonSE,
			fields: []field{
				{"Gross Winnings", extract.FieldCurrency, `Gross winnings[:\s]*\$([\d,.]+)`},
				{"Federal Withholding", extract.FieldCurrency, `Federal income tax withheld[:\s]*\$([\d,.]+)`},
			},
		},
		{
			name:     "1099-MISC",
			category: CategorySE,
			fields: []field{
				{"Non-Employee Compensation", extract.FieldCurrency, `Non[- ]?Employee[- ]?Compensation[:\s]*\$?([\d,.]+)`},
				{"Medical Payments", extract.FieldCurrency, `Medical[- ]?Payments[:\s]*\$?([\d,.]+)`},
				{"Rents", extract.FieldCurrency, `Rents[:\s]*\$?([\d,.]+)`},
				{"Royalties", extract.FieldCurrency, `Royalties[:\s]*\$?([\d,.]+)`},
				{"Attorney Fees", extract.FieldCurrency, `Attorney[- ]?Fees[:\s]*\$?([\d,.]+)`},
				{"Other Income", extract.FieldCurrency, `Other[- ]?Income[:\s]*\$?([\d,.]+)`},
				{"Federal Withholding", extract.FieldCurrency, `Federal[\s,]*income[\s,]*tax[\s,]*withheld[:\s]*\$?([\d,.]+)`},
				{"FIN", extract.FieldIdentifier, `Payer's Federal Identification Number \(FIN\):\s*([\d\-]+)`},
			},
		},
		{
			name:     "1099-NEC",
			category: CategorySE,
			fields: []field{
				{"Non-Employee Compensation", extract.FieldCurrency, `Non[- ]?Employee[- ]?Compensation[:\s]*\$?([\d,.]+)`},
				{"Federal Withholding", extract.FieldCurrency, `Federal[\s,]*income[\s,]*tax[\s,]*withheld[:\s]*\$?([\d,.]+)`},
				{"FIN", extract.FieldIdentifier, `Payer's Federal Identification Number \(FIN\):\s*([\d\-]+)`},
			},
		},
		{
			name:     "1099-K",
			category: CategorySE,
			fields: []field{
				{"Gross Amount", extract.FieldCurrency, `Gross amount of payment card/third party transactions[:\s]*\$([\d,.]+)`},
				{"Federal Withholding", extract.FieldCurrency, `Federal income tax withheld[:\s]*\$([\d,.]+)`},
			},
		},
		{
			name:     "1099-R",
			category: CategoryNonSE,
			fields: []field{
				{"Taxable Amount", extract.FieldCurrency, `Taxable amount[:\s]*\$([\d,.]+)`},
				{"Gross Distribution", extract.FieldCurrency, `Gross distribution[:\s]*\$([\d,.]+)`},
				{"Federal Withholding", extract.FieldCurrency, `Tax withheld[:\s]*\$([\d,.]+)`},
				{"FIN", extract.FieldIdentifier, `Payer's Federal Identification Number \(FIN\):\s*([\d\-]+)`},
			},
		},
		{
			name:     "1099-INT",
			category: CategoryNeither,
			fields: []field{
				{"Interest", extract.FieldCurrency, `Interest[:\s]*\$([\d,.]+)`},
				{"Savings Bonds", extract.FieldCurrency, `Savings bonds[:\s]*\$([\d,.]+)`},
				{"Federal Withholding", extract.FieldCurrency, `Tax withheld[:\s]*\$([\d,.]+)`},
				{"FIN", extract.FieldIdentifier, `Payer's Federal Identification Number \(FIN\):\s*([\d\-]+)`},
			},
		},
		{
			name:     "1099-DIV",
			category: CategoryNeither,
			fields: []field{
				{"Qualified Dividends", extract.FieldCurrency, `Qualified dividends[:\s]*\$([\d,.]+)`},
				{"Capital Gains", extract.FieldCurrency, `Capital gains[:\s]*\$([\d,.]+)`},
				{"Federal Withholding", extract.FieldCurrency, `Tax withheld[:\s]*\$([\d,.]+)`},
			},
		},
		{
			name:     "1099-G",
			category: CategoryNeither,
			fields: []field{
				{"Unemployment Compensation", extract.FieldCurrency, `Unemployment compensation[:\s]*\$([\d,.]+)`},
				{"Taxable Grants", extract.FieldCurrency, `Taxable grants[:\s]*\$([\d,.]+)`},
				{"Prior Year Refund", extract.FieldCurrency, `Prior year refund[:\s]*\$([\d,.]+)`},
				{"Federal Withholding", extract.FieldCurrency, `Tax withheld[:\s]*\$([\d,.]+)`},
			},
		},
		{
			name:     "SSA-1099",
			category: CategoryNonSE,
			fields: []field{
				{"Total Benefits Paid", extract.FieldCurrency, `Pensions and Annuities \(Total Benefits Paid\)[:\s]*[\r\n\s]*\$?([\d,.]+)`},
				{"Repayments", extract.FieldCurrency, `Repayments[:\s]*\$([\d,.]+)`},
				{"Federal Withholding", extract.FieldCurrency, `Tax Withheld[:\s]*\$([\d,.]+)`},
			},
		},
	}

	var out []extract.Pattern
	for _, f := range forms {
		for _, fl := range f.fields {
			out = append(out, extract.Pattern{
				ID:           PatternID(extract.DocTypeWI, f.name, fl.name),
				DocumentType: extract.DocTypeWI,
				FormName:     f.name,
				FieldName:    fl.name,
				FieldType:    fl.ftyp,
				Expression:   fl.expr,
				Category:     f.category,
			})
		}
	}
	return out
}

// wiFormMarkers maps each WI form to the expression that detects its
// presence in a transcript. Used by the parser to decide which forms to
// extract.
func wiFormMarkers() map[string]string {
	return map[string]string{
		"W-2":       `Form\s*W\s*[-–]?\s*2\b`,
		"W-2G":      `Form W-2G`,
		"1099-MISC": `Form 1099-MISC`,
		"1099-NEC":  `Form 1099-NEC`,
		"1099-K":    `Form 1099-K`,
		"1099-R":    `Form 1099-R`,
		"1099-INT":  `Form 1099-INT`,
		"1099-DIV":  `Form 1099-DIV`,
		"1099-G":    `Form 1099-G`,
		"SSA-1099":  `Form SSA-1099`,
	}
}

// WIFormMarkers exposes the form-detection expressions to the parser.
func WIFormMarkers() map[string]string { return wiFormMarkers() }

// FormCategory returns the rollup category for a WI form name, or Neither
// when the form is unknown.
func FormCategory(formName string) string {
	for _, p := range wiPatterns() {
		if p.FormName == formName {
			return p.Category
		}
	}
	return CategoryNeither
}
