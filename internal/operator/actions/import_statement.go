package actions

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/property-server/internal/banking"
	"github.com/carson-networks/property-server/internal/storage"
	"github.com/carson-networks/property-server/internal/storage/bankimport"
	"github.com/carson-networks/property-server/internal/storage/bill"
)

// ImportedTransaction is the stored outcome of one match result.
type ImportedTransaction struct {
	TransactionID uuid.UUID
	Duplicate     bool
	AutoConfirmed bool
}

// ImportOutcome is filled in by ImportStatement.Perform.
type ImportOutcome struct {
	ImportID       uuid.UUID
	Stored         int
	Duplicates     int
	ConfirmedBills []uuid.UUID
	// Items is aligned with ImportStatement.Results.
	Items []ImportedTransaction
}

// ImportStatement stores one statement batch and applies its auto-confirmed
// matches. A bill is confirmed at most once; later auto-confirm results for
// the same bill, or for a bill confirmed since matching, are stored as
// suggestions for review.
type ImportStatement struct {
	Filename    string
	AccountType *banking.AccountType
	DateStart   *civil.Date
	DateEnd     *civil.Date
	Results     []banking.MatchResult

	Outcome ImportOutcome
	IAction
}

func (a *ImportStatement) Perform(ctx context.Context, writer *storage.Writer) error {
	batch := &bankimport.BatchCreate{
		Filename:       a.Filename,
		DateRangeStart: civilToTime(a.DateStart),
		DateRangeEnd:   civilToTime(a.DateEnd),
	}
	if a.AccountType != nil {
		accountType := string(*a.AccountType)
		batch.AccountType = &accountType
	}

	importID, err := writer.Imports.CreateBatch(ctx, batch)
	if err != nil {
		return fmt.Errorf("create import batch: %w", err)
	}

	outcome := ImportOutcome{
		ImportID:       importID,
		ConfirmedBills: []uuid.UUID{},
		Items:          make([]ImportedTransaction, len(a.Results)),
	}
	seen := make(map[string]bool, len(a.Results))
	confirmedBills := make(map[uuid.UUID]bool)
	now := time.Now().UTC()

	for i, result := range a.Results {
		txn := result.Transaction
		if seen[txn.Fingerprint] {
			outcome.Duplicates++
			outcome.Items[i] = ImportedTransaction{Duplicate: true}
			continue
		}
		seen[txn.Fingerprint] = true

		autoConfirm := false
		if result.AutoConfirm && result.BestMatch != nil && !confirmedBills[result.BestMatch.Bill.ID] {
			autoConfirm, err = billStillOutstanding(ctx, writer, result.BestMatch.Bill.ID)
			if err != nil {
				return err
			}
		}

		create := &bankimport.TransactionCreate{
			ImportID:        importID,
			Fingerprint:     txn.Fingerprint,
			TransactionDate: txn.Date.In(time.UTC),
			Description:     txn.Description,
			Amount:          txn.Amount,
			CheckNumber:     txn.CheckNumber,
			RunningBalance:  txn.RunningBalance,
			Category:        string(txn.Category),
			VendorName:      txn.ExtractedVendorName,
			IsDebit:         txn.IsDebit,
			Confirmed:       autoConfirm,
		}
		if result.BestMatch != nil {
			create.Match = matchFromCandidate(*result.BestMatch)
		}

		txnID, inserted, err := writer.Imports.InsertTransaction(ctx, create)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", txn.Fingerprint, err)
		}
		if !inserted {
			outcome.Duplicates++
			outcome.Items[i] = ImportedTransaction{Duplicate: true}
			continue
		}
		outcome.Stored++

		if autoConfirm {
			billID := result.BestMatch.Bill.ID
			if err := writer.Bills.MarkConfirmed(ctx, billID, now); err != nil {
				return fmt.Errorf("confirm bill %s: %w", billID, err)
			}
			confirmedBills[billID] = true
			outcome.ConfirmedBills = append(outcome.ConfirmedBills, billID)
		}
		outcome.Items[i] = ImportedTransaction{TransactionID: txnID, AutoConfirmed: autoConfirm}
	}

	if err := writer.Imports.SetTransactionCount(ctx, importID, outcome.Stored); err != nil {
		return fmt.Errorf("set transaction count: %w", err)
	}

	a.Outcome = outcome
	return nil
}

func billStillOutstanding(ctx context.Context, writer *storage.Writer, billID uuid.UUID) (bool, error) {
	row, err := writer.Bills.FindByIDForUpdate(ctx, billID)
	if err != nil {
		return false, fmt.Errorf("lock bill %s: %w", billID, err)
	}
	return row != nil && row.Status == bill.StatusSent, nil
}

func matchFromCandidate(candidate banking.MatchCandidate) bankimport.TransactionMatch {
	confidence := candidate.Confidence
	method := string(candidate.Method)
	return bankimport.TransactionMatch{
		BillID:     uuid.NullUUID{UUID: candidate.Bill.ID, Valid: true},
		Confidence: &confidence,
		Method:     &method,
	}
}

func civilToTime(d *civil.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.In(time.UTC)
	return &t
}
