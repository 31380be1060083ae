package service

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/property-server/internal/banking"
	"github.com/carson-networks/property-server/internal/storage/bankimport"
	"github.com/carson-networks/property-server/internal/storage/bill"
)

// ImportedItem is a stored transaction together with its match result.
type ImportedItem struct {
	TransactionID uuid.UUID
	Result        banking.MatchResult
}

// ImportResult is the triage breakdown of one imported statement.
type ImportResult struct {
	ImportID       uuid.UUID
	Filename       string
	AccountType    *banking.AccountType
	DateRangeStart *civil.Date
	DateRangeEnd   *civil.Date
	Stats          banking.Stats
	Errors         []string

	MatchableCount int
	Stored         int
	Duplicates     int

	AutoConfirmed []ImportedItem
	NeedsReview   []ImportedItem
	NoMatch       []ImportedItem
}

// ImportBatch is a previously imported statement.
type ImportBatch struct {
	ID               uuid.UUID
	Filename         string
	AccountType      *banking.AccountType
	DateRangeStart   *civil.Date
	DateRangeEnd     *civil.Date
	TransactionCount int
	MatchedCount     int
	CreatedAt        time.Time
}

// billSource feeds the matcher from the bills table.
type billSource struct {
	bills bill.IReader
}

func (s billSource) ListOutstandingBills(ctx context.Context) ([]banking.Bill, error) {
	rows, err := s.bills.ListOutstanding(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	bills := make([]banking.Bill, len(rows))
	for i, row := range rows {
		bills[i] = banking.Bill{
			ID:          row.ID,
			Description: row.Description,
			Amount:      row.Amount,
			DueDate:     timeToCivil(row.DueDate),
			PaymentDate: timeToCivil(row.PaymentDate),
			VendorName:  row.VendorName,
			CheckNumber: row.CheckNumber,
			Status:      banking.BillStatus(row.Status),
		}
	}
	return bills, nil
}

func importBatchFromStorage(row *bankimport.Batch) ImportBatch {
	batch := ImportBatch{
		ID:               row.ID,
		Filename:         row.Filename,
		DateRangeStart:   timeToCivil(row.DateRangeStart),
		DateRangeEnd:     timeToCivil(row.DateRangeEnd),
		TransactionCount: row.TransactionCount,
		MatchedCount:     row.MatchedCount,
		CreatedAt:        row.CreatedAt,
	}
	if row.AccountType != nil {
		accountType := banking.AccountType(*row.AccountType)
		batch.AccountType = &accountType
	}
	return batch
}

func timeToCivil(t *time.Time) *civil.Date {
	if t == nil {
		return nil
	}
	d := civil.DateOf(*t)
	return &d
}
