package bankimport

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

const (
	batchTableName       = "bank_import_batches"
	transactionTableName = "bank_transactions"
)

var transactionColumns = []any{
	"id",
	"import_id",
	"fingerprint",
	"transaction_date",
	"description",
	"amount",
	"check_number",
	"running_balance",
	"category",
	"vendor_name",
	"is_debit",
	"matched_bill_id",
	"match_confidence",
	"match_method",
	"confirmed",
	"created_at",
}

// Batch represents one imported statement file.
type Batch struct {
	ID               uuid.UUID  `db:"id"`
	Filename         string     `db:"filename"`
	AccountType      *string    `db:"account_type"`
	DateRangeStart   *time.Time `db:"date_range_start"`
	DateRangeEnd     *time.Time `db:"date_range_end"`
	TransactionCount int        `db:"transaction_count"`
	MatchedCount     int        `db:"matched_count"`
	CreatedAt        time.Time  `db:"created_at"`
}

// BatchCreate is the input for creating a new import batch.
type BatchCreate struct {
	Filename       string
	AccountType    *string
	DateRangeStart *time.Time
	DateRangeEnd   *time.Time
}

// BatchFilter specifies filters for listing import batches.
type BatchFilter struct {
	Limit int
}

// Transaction represents a stored bank transaction.
type Transaction struct {
	ID              uuid.UUID           `db:"id"`
	ImportID        uuid.UUID           `db:"import_id"`
	Fingerprint     string              `db:"fingerprint"`
	TransactionDate time.Time           `db:"transaction_date"`
	Description     string              `db:"description"`
	Amount          decimal.Decimal     `db:"amount"`
	CheckNumber     *string             `db:"check_number"`
	RunningBalance  decimal.NullDecimal `db:"running_balance"`
	Category        string              `db:"category"`
	VendorName      *string             `db:"vendor_name"`
	IsDebit         bool                `db:"is_debit"`
	MatchedBillID   uuid.NullUUID       `db:"matched_bill_id"`
	MatchConfidence *float64            `db:"match_confidence"`
	MatchMethod     *string             `db:"match_method"`
	Confirmed       bool                `db:"confirmed"`
	CreatedAt       time.Time           `db:"created_at"`
}

// TransactionCreate is the input for storing a parsed transaction.
type TransactionCreate struct {
	ImportID        uuid.UUID
	Fingerprint     string
	TransactionDate time.Time
	Description     string
	Amount          decimal.Decimal
	CheckNumber     *string
	RunningBalance  decimal.NullDecimal
	Category        string
	VendorName      *string
	IsDebit         bool
	Match           TransactionMatch
	Confirmed       bool
}

// TransactionMatch links a transaction to a bill. A zero BillID means the
// transaction was reviewed and is not a bill payment.
type TransactionMatch struct {
	BillID     uuid.NullUUID
	Confidence *float64
	Method     *string
}

// IReader defines the read operations on import batches and their transactions.
type IReader interface {
	ListBatches(ctx context.Context, filter *BatchFilter) ([]*Batch, error)
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
}

// IWriter defines the import operations available inside a database transaction.
type IWriter interface {
	IReader
	CreateBatch(ctx context.Context, create *BatchCreate) (uuid.UUID, error)
	SetTransactionCount(ctx context.Context, batchID uuid.UUID, count int) error
	InsertTransaction(ctx context.Context, create *TransactionCreate) (id uuid.UUID, inserted bool, err error)
	FindTransactionByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ConfirmTransaction(ctx context.Context, id uuid.UUID, match TransactionMatch) error
}
