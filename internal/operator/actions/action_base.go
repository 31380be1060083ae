package actions

import (
	"context"
	"errors"

	"github.com/carson-networks/property-server/internal/storage"
)

var (
	ErrTransactionNotFound = errors.New("bank transaction not found")
	ErrBillNotFound        = errors.New("bill not found")
)

type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
}
