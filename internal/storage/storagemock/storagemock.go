// Package storagemock provides testify mocks for the storage interfaces.
package storagemock

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/property-server/internal/storage"
	"github.com/carson-networks/property-server/internal/storage/bankimport"
	"github.com/carson-networks/property-server/internal/storage/bill"
)

var (
	_ bill.IWriter       = (*Bills)(nil)
	_ bankimport.IWriter = (*Imports)(nil)
	_ storage.Tx         = (*Tx)(nil)
)

// NewWriter returns a storage.Writer backed by fresh mocks.
func NewWriter() (*storage.Writer, *Tx, *Bills, *Imports) {
	tx, bills, imports := &Tx{}, &Bills{}, &Imports{}
	return storage.NewWriterFrom(tx, bills, imports), tx, bills, imports
}

type Tx struct {
	mock.Mock
}

func (m *Tx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Tx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type Bills struct {
	mock.Mock
}

func (m *Bills) ListOutstanding(ctx context.Context) ([]*bill.Bill, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bill.Bill), args.Error(1)
}

func (m *Bills) FindByID(ctx context.Context, id uuid.UUID) (*bill.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bill.Bill), args.Error(1)
}

func (m *Bills) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bill.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bill.Bill), args.Error(1)
}

func (m *Bills) Insert(ctx context.Context, create *bill.BillCreate) (uuid.UUID, error) {
	args := m.Called(ctx, create)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *Bills) MarkConfirmed(ctx context.Context, id uuid.UUID, confirmedAt time.Time) error {
	return m.Called(ctx, id, confirmedAt).Error(0)
}

type Imports struct {
	mock.Mock
}

func (m *Imports) ListBatches(ctx context.Context, filter *bankimport.BatchFilter) ([]*bankimport.Batch, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bankimport.Batch), args.Error(1)
}

func (m *Imports) FindTransactionByID(ctx context.Context, id uuid.UUID) (*bankimport.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bankimport.Transaction), args.Error(1)
}

func (m *Imports) CreateBatch(ctx context.Context, create *bankimport.BatchCreate) (uuid.UUID, error) {
	args := m.Called(ctx, create)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *Imports) SetTransactionCount(ctx context.Context, batchID uuid.UUID, count int) error {
	return m.Called(ctx, batchID, count).Error(0)
}

func (m *Imports) InsertTransaction(ctx context.Context, create *bankimport.TransactionCreate) (uuid.UUID, bool, error) {
	args := m.Called(ctx, create)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *Imports) FindTransactionByIDForUpdate(ctx context.Context, id uuid.UUID) (*bankimport.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bankimport.Transaction), args.Error(1)
}

func (m *Imports) ConfirmTransaction(ctx context.Context, id uuid.UUID, match bankimport.TransactionMatch) error {
	return m.Called(ctx, id, match).Error(0)
}
