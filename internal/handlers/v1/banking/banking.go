package banking

import (
	"time"

	"cloud.google.com/go/civil"

	engine "github.com/carson-networks/property-server/internal/banking"
	"github.com/carson-networks/property-server/internal/service"
)

// MatchCandidate is the API response model for one suggested bill.
type MatchCandidate struct {
	BillID      string  `json:"billID" doc:"Bill UUID"`
	Description string  `json:"description" doc:"Bill description"`
	Confidence  float64 `json:"confidence" doc:"Match confidence between 0 and 1"`
	Method      string  `json:"method" doc:"Rule that produced the match"`
	Reason      string  `json:"reason" doc:"Human readable explanation"`
}

// ImportedTransaction is the API response model for a stored statement line.
type ImportedTransaction struct {
	TransactionID string           `json:"transactionID" doc:"Bank transaction UUID"`
	Date          string           `json:"date" doc:"Transaction date (YYYY-MM-DD)"`
	Description   string           `json:"description" doc:"Statement description"`
	Amount        string           `json:"amount" doc:"Decimal amount, negative for money out"`
	CheckNumber   *string          `json:"checkNumber,omitempty" doc:"Check number when present"`
	Category      string           `json:"category" doc:"Transaction category"`
	Vendor        *string          `json:"vendor,omitempty" doc:"Extracted counterparty name"`
	BestMatch     *MatchCandidate  `json:"bestMatch,omitempty" doc:"Highest confidence bill"`
	Alternatives  []MatchCandidate `json:"alternatives" doc:"Other candidate bills, best first"`
}

// ImportBatch is the API response model for a previous import.
type ImportBatch struct {
	ID               string  `json:"id" doc:"Import batch UUID"`
	Filename         string  `json:"filename" doc:"Uploaded file name"`
	AccountType      *string `json:"accountType,omitempty" doc:"Detected account type"`
	DateRangeStart   *string `json:"dateRangeStart,omitempty" doc:"Earliest transaction date"`
	DateRangeEnd     *string `json:"dateRangeEnd,omitempty" doc:"Latest transaction date"`
	TransactionCount int     `json:"transactionCount" doc:"Stored transactions"`
	MatchedCount     int     `json:"matchedCount" doc:"Transactions confirmed against a bill"`
	CreatedAt        string  `json:"createdAt" doc:"RFC3339 import time"`
}

func matchCandidateFromService(c engine.MatchCandidate) MatchCandidate {
	return MatchCandidate{
		BillID:      c.Bill.ID.String(),
		Description: c.Bill.Description,
		Confidence:  c.Confidence,
		Method:      string(c.Method),
		Reason:      c.Reason,
	}
}

func importedTransactionFromService(item service.ImportedItem) ImportedTransaction {
	txn := item.Result.Transaction
	resp := ImportedTransaction{
		TransactionID: item.TransactionID.String(),
		Date:          txn.Date.String(),
		Description:   txn.Description,
		Amount:        txn.Amount.StringFixed(2),
		CheckNumber:   txn.CheckNumber,
		Category:      string(txn.Category),
		Vendor:        txn.ExtractedVendorName,
		Alternatives:  []MatchCandidate{},
	}
	for i, candidate := range item.Result.Matches {
		if i == 0 {
			best := matchCandidateFromService(candidate)
			resp.BestMatch = &best
			continue
		}
		resp.Alternatives = append(resp.Alternatives, matchCandidateFromService(candidate))
	}
	return resp
}

func importedTransactions(items []service.ImportedItem) []ImportedTransaction {
	resp := make([]ImportedTransaction, len(items))
	for i, item := range items {
		resp[i] = importedTransactionFromService(item)
	}
	return resp
}

func importBatchFromService(b service.ImportBatch) ImportBatch {
	resp := ImportBatch{
		ID:               b.ID.String(),
		Filename:         b.Filename,
		DateRangeStart:   formatDate(b.DateRangeStart),
		DateRangeEnd:     formatDate(b.DateRangeEnd),
		TransactionCount: b.TransactionCount,
		MatchedCount:     b.MatchedCount,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
	}
	if b.AccountType != nil {
		accountType := string(*b.AccountType)
		resp.AccountType = &accountType
	}
	return resp
}

func formatDate(d *civil.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
