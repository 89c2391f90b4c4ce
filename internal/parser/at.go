// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"regexp"
	"strings"
	"time"

	"transcript-scan/internal/extract"
)

// Transaction is one posted line from an account transcript's TRANSACTIONS
// section, annotated from the transaction code table when the code is known.
type Transaction struct {
	Code       string  `json:"code"`
	Meaning    string  `json:"meaning"`
	CycleDate  string  `json:"cycle_date"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	DateNote   string  `json:"date_note,omitempty"`
	AmountNote string  `json:"amount_note,omitempty"`
}

// ATSummary is the parsed view of one account transcript.
type ATSummary struct {
	TaxYear                 string                     `json:"tax_year"`
	FilingStatus            string                     `json:"filing_status"`
	ProcessingDate          string                     `json:"processing_date"`
	AccountBalance          float64                    `json:"account_balance"`
	AccruedInterest         float64                    `json:"accrued_interest"`
	AccruedPenalty          float64                    `json:"accrued_penalty"`
	TotalBalance            float64                    `json:"total_balance"`
	AdjustedGrossIncome     float64                    `json:"adjusted_gross_income"`
	TaxableIncome           float64                    `json:"taxable_income"`
	TaxPerReturn            float64                    `json:"tax_per_return"`
	SETaxableIncomeTaxpayer float64                    `json:"se_tax_taxpayer"`
	SETaxableIncomeSpouse   float64                    `json:"se_tax_spouse"`
	TotalSelfEmploymentTax  float64                    `json:"total_se_tax"`
	Transactions            []Transaction              `json:"transactions"`
	Results                 []extract.ExtractionResult `json:"results"`
}

// ATParser parses account transcripts: header financials through the
// engine, transaction lines through a dedicated scanner since they are
// positional rows rather than labeled fields.
type ATParser struct {
	engine Extractor
}

// NewATParser creates an account transcript parser over an extraction engine.
func NewATParser(engine Extractor) *ATParser {
	return &ATParser{engine: engine}
}

// Transaction rows come in two layouts: a compact single line layout and a
// spaced layout where the amount sits on the following line.
var (
	compactTxnRe = regexp.MustCompile(`(?m)^(\d{3}|n/a)([^\d\n]+?)(\d{8})\s+(\d{2}-\d{2}-\d{4})\s+(-?\$?[\d,]+\.\d{2})`)
	spacedTxnRe  = regexp.MustCompile(`(?m)^(\d{3}|n/a)\s*([^\n]+)\n(?:[\w\s]*)?(\d{2}-\d{2}-\d{4})\s*\n\$?([\d,.\-]+)`)
	noReturnRe   = regexp.MustCompile(`(?i)no tax return filed`)
)

// Parse extracts the header fields and scans the transaction section.
func (p *ATParser) Parse(caseID, documentID, text string) (ATSummary, error) {
	results, err := p.engine.ExtractDocument(extract.DocTypeAT, caseID, documentID, text)
	if err != nil {
		return ATSummary{}, err
	}

	summary := ATSummary{Results: results}
	for _, r := range results {
		if !r.Success {
			continue
		}
		switch r.FieldName {
		case "Account Balance":
			summary.AccountBalance, _ = parseAmount(r.Value)
		case "Accrued Interest":
			summary.AccruedInterest, _ = parseAmount(r.Value)
		case "Accrued Penalty":
			summary.AccruedPenalty, _ = parseAmount(r.Value)
		case "Adjusted Gross Income":
			summary.AdjustedGrossIncome, _ = parseAmount(r.Value)
		case "Taxable Income":
			summary.TaxableIncome, _ = parseAmount(r.Value)
		case "Tax Per Return":
			summary.TaxPerReturn, _ = parseAmount(r.Value)
		case "SE Taxable Income Taxpayer":
			summary.SETaxableIncomeTaxpayer, _ = parseAmount(r.Value)
		case "SE Taxable Income Spouse":
			summary.SETaxableIncomeSpouse, _ = parseAmount(r.Value)
		case "Total Self Employment Tax":
			summary.TotalSelfEmploymentTax, _ = parseAmount(r.Value)
		case "Filing Status":
			summary.FilingStatus = strings.TrimSpace(r.Value)
		case "Tax Year":
			summary.TaxYear = strings.TrimSpace(r.Value)
		case "Processing Date":
			summary.ProcessingDate = strings.TrimSpace(r.Value)
		}
	}

	if summary.FilingStatus == "" {
		summary.FilingStatus = "Unknown"
	}
	if summary.TaxYear == "" {
		summary.TaxYear = "Unknown"
	}
	summary.TotalBalance = summary.AccountBalance + summary.AccruedInterest + summary.AccruedPenalty
	summary.Transactions = scanTransactions(text)
	return summary, nil
}

// scanTransactions extracts the rows following the TRANSACTIONS heading.
// The compact layout takes precedence; only when it yields nothing does the
// spaced layout get a pass.
func scanTransactions(text string) []Transaction {
	idx := strings.Index(text, "TRANSACTIONS")
	if idx < 0 {
		return nil
	}
	buf := text[idx:]

	var transactions []Transaction
	for _, m := range compactTxnRe.FindAllStringSubmatch(buf, -1) {
		code, desc, cycle, post, amt := m[1], m[2], m[3], m[4], m[5]
		txn := Transaction{
			Code:      strings.TrimSpace(code),
			Meaning:   strings.TrimSpace(desc),
			CycleDate: cycle[:4] + "-" + cycle[4:6] + "-" + cycle[6:],
			Date:      parsePostDate(post),
		}
		txn.Amount, _ = parseAmount(amt)
		annotate(&txn)
		transactions = append(transactions, txn)
	}
	if len(transactions) > 0 {
		return transactions
	}

	for _, line := range strings.Split(buf, "\n") {
		if noReturnRe.MatchString(line) {
			transactions = append(transactions, Transaction{
				Code:    "n/a",
				Meaning: "No tax return filed",
			})
		}
	}
	for _, m := range spacedTxnRe.FindAllStringSubmatch(buf, -1) {
		code, desc, post, amt := m[1], m[2], m[3], m[4]
		txn := Transaction{
			Code:    strings.TrimSpace(code),
			Meaning: strings.TrimSpace(desc),
			Date:    parsePostDate(post),
		}
		txn.Amount, _ = parseAmount(amt)
		annotate(&txn)
		transactions = append(transactions, txn)
	}
	return transactions
}

// annotate attaches the code table's notes. The scanned description stays
// authoritative for meaning only when the code is unknown.
func annotate(txn *Transaction) {
	if info, ok := CodeFor(txn.Code); ok {
		txn.Meaning = info.Meaning
		txn.DateNote = info.DateNote
		txn.AmountNote = info.AmountNote
	}
}

func parsePostDate(post string) string {
	if t, err := time.Parse("01-02-2006", post); err == nil {
		return t.Format("2006-01-02")
	}
	return post
}
