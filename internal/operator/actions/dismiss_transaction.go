package actions

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/property-server/internal/storage"
	"github.com/carson-networks/property-server/internal/storage/bankimport"
)

// DismissTransaction marks a transaction as reviewed and not a bill payment.
type DismissTransaction struct {
	TransactionID uuid.UUID
	IAction
}

func (d *DismissTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	txn, err := writer.Imports.FindTransactionByIDForUpdate(ctx, d.TransactionID)
	if err != nil {
		return fmt.Errorf("lock transaction %s: %w", d.TransactionID, err)
	}
	if txn == nil {
		return ErrTransactionNotFound
	}

	if err := writer.Imports.ConfirmTransaction(ctx, d.TransactionID, bankimport.TransactionMatch{}); err != nil {
		return fmt.Errorf("dismiss transaction %s: %w", d.TransactionID, err)
	}
	return nil
}
