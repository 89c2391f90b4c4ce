// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"transcript-scan/internal/extract"
)

// TISummary is the parsed view of one tax investigation document. Found
// records which figures were actually present; absent figures read as zero.
type TISummary struct {
	TotalResolutionFees          float64                    `json:"total_resolution_fees"`
	CurrentTaxLiability          float64                    `json:"current_tax_liability"`
	CurrentAndProjectedLiability float64                    `json:"current_and_projected_liability"`
	TotalIndividualBalance       float64                    `json:"total_individual_balance"`
	ProjectedUnfiledBalances     float64                    `json:"projected_unfiled_balances"`
	DailyInterest                float64                    `json:"daily_interest"`
	MonthlyInterest              float64                    `json:"monthly_interest"`
	YearlyInterest               float64                    `json:"yearly_interest"`
	Found                        map[string]bool            `json:"found"`
	Results                      []extract.ExtractionResult `json:"results"`
}

// TIParser parses tax investigation fee and liability summaries.
type TIParser struct {
	engine Extractor
}

// NewTIParser creates a tax investigation parser over an extraction engine.
func NewTIParser(engine Extractor) *TIParser {
	return &TIParser{engine: engine}
}

// Parse extracts the investigation summary figures.
func (p *TIParser) Parse(caseID, documentID, text string) (TISummary, error) {
	results, err := p.engine.ExtractDocument(extract.DocTypeTI, caseID, documentID, text)
	if err != nil {
		return TISummary{}, err
	}

	summary := TISummary{
		Found:   make(map[string]bool),
		Results: results,
	}
	for _, r := range results {
		if !r.Success {
			continue
		}
		amount, ok := parseAmount(r.Value)
		if !ok {
			continue
		}
		summary.Found[r.FieldName] = true
		switch r.FieldName {
		case "Total Resolution Fees":
			summary.TotalResolutionFees = amount
		case "Current Tax Liability":
			summary.CurrentTaxLiability = amount
		case "Current and Projected Liability":
			summary.CurrentAndProjectedLiability = amount
		case "Total Individual Balance":
			summary.TotalIndividualBalance = amount
		case "Projected Unfiled Balances":
			summary.ProjectedUnfiledBalances = amount
		case "Daily Interest":
			summary.DailyInterest = amount
		case "Monthly Interest":
			summary.MonthlyInterest = amount
		case "Yearly Interest":
			summary.YearlyInterest = amount
		}
	}
	return summary, nil
}
