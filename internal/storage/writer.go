package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/property-server/internal/storage/bankimport"
	"github.com/carson-networks/property-server/internal/storage/bill"
)

// Tx is the commit boundary of a Writer.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Writer struct {
	tx      Tx
	Bills   bill.IWriter
	Imports bankimport.IWriter
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx:      tx,
		Bills:   bill.NewWriter(tx),
		Imports: bankimport.NewWriter(tx),
	}
}

// NewWriterFrom assembles a Writer from already constructed parts.
func NewWriterFrom(tx Tx, bills bill.IWriter, imports bankimport.IWriter) *Writer {
	return &Writer{
		tx:      tx,
		Bills:   bills,
		Imports: imports,
	}
}

func (w *Writer) Commit() error {
	return w.tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}
