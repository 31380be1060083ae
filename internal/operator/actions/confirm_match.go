package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/property-server/internal/banking"
	"github.com/carson-networks/property-server/internal/storage"
	"github.com/carson-networks/property-server/internal/storage/bill"
)

// ConfirmMatch records a reviewer's choice of bill for a transaction.
type ConfirmMatch struct {
	TransactionID uuid.UUID
	BillID        uuid.UUID
	IAction
}

func (c *ConfirmMatch) Perform(ctx context.Context, writer *storage.Writer) error {
	txn, err := writer.Imports.FindTransactionByIDForUpdate(ctx, c.TransactionID)
	if err != nil {
		return fmt.Errorf("lock transaction %s: %w", c.TransactionID, err)
	}
	if txn == nil {
		return ErrTransactionNotFound
	}

	row, err := writer.Bills.FindByIDForUpdate(ctx, c.BillID)
	if err != nil {
		return fmt.Errorf("lock bill %s: %w", c.BillID, err)
	}
	if row == nil {
		return ErrBillNotFound
	}

	match := matchFromCandidate(banking.MatchCandidate{
		Bill:       banking.Bill{ID: c.BillID},
		Confidence: banking.ConfidenceManual,
		Method:     banking.MatchMethodManual,
	})
	if err := writer.Imports.ConfirmTransaction(ctx, c.TransactionID, match); err != nil {
		return fmt.Errorf("confirm transaction %s: %w", c.TransactionID, err)
	}

	if row.Status == bill.StatusConfirmed {
		return nil
	}
	if err := writer.Bills.MarkConfirmed(ctx, c.BillID, time.Now().UTC()); err != nil {
		return fmt.Errorf("confirm bill %s: %w", c.BillID, err)
	}
	return nil
}
