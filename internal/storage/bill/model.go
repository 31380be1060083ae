package bill

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

const tableName = "bills"

var columns = []any{
	"id",
	"description",
	"amount",
	"due_date",
	"payment_date",
	"vendor_name",
	"check_number",
	"status",
	"confirmed_at",
	"created_at",
}

type Status string

const (
	StatusSent      Status = "sent"
	StatusConfirmed Status = "confirmed"
)

// Bill represents a bill record.
type Bill struct {
	ID          uuid.UUID           `db:"id"`
	Description string              `db:"description"`
	Amount      decimal.NullDecimal `db:"amount"`
	DueDate     *time.Time          `db:"due_date"`
	PaymentDate *time.Time          `db:"payment_date"`
	VendorName  *string             `db:"vendor_name"`
	CheckNumber *string             `db:"check_number"`
	Status      Status              `db:"status"`
	ConfirmedAt *time.Time          `db:"confirmed_at"`
	CreatedAt   time.Time           `db:"created_at"`
}

// BillCreate is the input for creating a new bill.
type BillCreate struct {
	Description string
	Amount      decimal.NullDecimal
	DueDate     *time.Time
	PaymentDate *time.Time
	VendorName  *string
	CheckNumber *string
}

// IReader defines the read operations on bills.
type IReader interface {
	ListOutstanding(ctx context.Context) ([]*Bill, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
}

// IWriter defines the bill operations available inside a database transaction.
type IWriter interface {
	IReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Bill, error)
	Insert(ctx context.Context, create *BillCreate) (uuid.UUID, error)
	MarkConfirmed(ctx context.Context, id uuid.UUID, confirmedAt time.Time) error
}
