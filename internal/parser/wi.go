// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"regexp"
	"sort"

	"transcript-scan/internal/extract"
	"transcript-scan/internal/patterns"
)

// selfEmploymentTaxRate is the employer-equivalent share used when
// estimating AGI from gross self-employment income.
const selfEmploymentTaxRate = 0.0765

// WIForm is one income form found in a Wage & Income transcript.
type WIForm struct {
	Form        string             `json:"form"`
	Category    string             `json:"category"`
	Fields      map[string]float64 `json:"fields"`
	Identifiers map[string]string  `json:"identifiers,omitempty"`
	Income      float64            `json:"income"`
	Withholding float64            `json:"withholding"`
}

// WIRollup totals income and withholding across forms by category.
type WIRollup struct {
	SEIncome         float64 `json:"se_income"`
	SEWithholding    float64 `json:"se_withholding"`
	NonSEIncome      float64 `json:"non_se_income"`
	NonSEWithholding float64 `json:"non_se_withholding"`
	OtherIncome      float64 `json:"other_income"`
	OtherWithholding float64 `json:"other_withholding"`
	TotalIncome      float64 `json:"total_income"`
	TotalWithholding float64 `json:"total_withholding"`
	EstimatedAGI     float64 `json:"estimated_agi"`
}

// WISummary is the parsed view of one Wage & Income transcript.
type WISummary struct {
	TaxYear string                     `json:"tax_year"`
	Forms   []WIForm                   `json:"forms"`
	Rollup  WIRollup                   `json:"rollup"`
	Results []extract.ExtractionResult `json:"results"`
}

// WIParser parses Wage & Income transcripts. Form detection runs before
// extraction so patterns for forms absent from the document are never
// attempted and never counted against pattern performance.
type WIParser struct {
	engine  Extractor
	markers map[string]*regexp.Regexp
}

// NewWIParser creates a Wage & Income parser over an extraction engine.
func NewWIParser(engine Extractor) *WIParser {
	markers := make(map[string]*regexp.Regexp)
	for form, expr := range patterns.WIFormMarkers() {
		markers[form] = regexp.MustCompile(`(?i)` + expr)
	}
	return &WIParser{engine: engine, markers: markers}
}

// DetectForms returns the names of the WI forms present in the text, sorted.
func (p *WIParser) DetectForms(text string) []string {
	var found []string
	for form, re := range p.markers {
		if re.MatchString(text) {
			found = append(found, form)
		}
	}
	sort.Strings(found)
	return found
}

// Parse extracts every detected form's fields and computes the rollup.
// fileName feeds tax year derivation and may be empty.
func (p *WIParser) Parse(caseID, documentID, fileName, text string) (WISummary, error) {
	detected := p.DetectForms(text)
	filter := make(map[string]bool, len(detected))
	for _, f := range detected {
		filter[f] = true
	}

	results, err := p.engine.ExtractForms(extract.DocTypeWI, caseID, documentID, text, filter)
	if err != nil {
		return WISummary{}, err
	}

	summary := WISummary{
		TaxYear: yearFromName(fileName, text),
		Results: results,
	}

	byForm := make(map[string]*WIForm)
	for _, formName := range detected {
		byForm[formName] = &WIForm{
			Form:        formName,
			Category:    patterns.FormCategory(formName),
			Fields:      make(map[string]float64),
			Identifiers: make(map[string]string),
		}
	}

	for _, r := range results {
		if !r.Success {
			continue
		}
		form, ok := byForm[r.FormName]
		if !ok {
			continue
		}
		switch {
		case isIdentifierField(r.FieldName):
			form.Identifiers[r.FieldName] = r.Value
		default:
			if amount, ok := parseAmount(r.Value); ok {
				form.Fields[r.FieldName] = amount
			}
		}
	}

	for _, formName := range detected {
		form := byForm[formName]
		form.Income = formIncome(formName, form.Fields)
		form.Withholding = form.Fields["Federal Withholding"]
		summary.Forms = append(summary.Forms, *form)
	}

	summary.Rollup = rollup(summary.Forms)
	return summary, nil
}

func isIdentifierField(name string) bool {
	return name == "EIN" || name == "FIN"
}

// incomeFields names the fields that count toward a form's income figure.
// Withholding is always the Federal Withholding field; 1099-R is the one
// form with conditional income logic and is handled separately.
var incomeFields = map[string][]string{
	"W-2":       {"Wages, Tips, and Other Compensation"},
	"W-2G":      {"Gross Winnings"},
	"1099-MISC": {"Non-Employee Compensation", "Medical Payments", "Rents", "Royalties", "Attorney Fees", "Other Income"},
	"1099-NEC":  {"Non-Employee Compensation"},
	"1099-K":    {"Gross Amount"},
	"1099-INT":  {"Interest", "Savings Bonds"},
	"1099-DIV":  {"Qualified Dividends", "Capital Gains"},
	"1099-G":    {"Unemployment Compensation", "Taxable Grants", "Prior Year Refund"},
	"SSA-1099":  {"Total Benefits Paid"},
}

func formIncome(formName string, fields map[string]float64) float64 {
	if formName == "1099-R" {
		// Taxable amount wins when stated; otherwise fall back to the
		// gross distribution.
		if taxable, ok := fields["Taxable Amount"]; ok {
			return taxable
		}
		return fields["Gross Distribution"]
	}
	var total float64
	for _, field := range incomeFields[formName] {
		total += fields[field]
	}
	return total
}

func rollup(forms []WIForm) WIRollup {
	var r WIRollup
	for _, f := range forms {
		switch f.Category {
		case patterns.CategorySE:
			r.SEIncome += f.Income
			r.SEWithholding += f.Withholding
		case patterns.CategoryNonSE:
			r.NonSEIncome += f.Income
			r.NonSEWithholding += f.Withholding
		default:
			r.OtherIncome += f.Income
			r.OtherWithholding += f.Withholding
		}
	}
	r.TotalIncome = r.SEIncome + r.NonSEIncome + r.OtherIncome
	r.TotalWithholding = r.SEWithholding + r.NonSEWithholding + r.OtherWithholding
	r.EstimatedAGI = r.TotalIncome - r.SEIncome*selfEmploymentTaxRate
	return r
}
