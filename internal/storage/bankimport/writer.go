package bankimport

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

var _ IWriter = (*Writer)(nil)

type Writer struct {
	tx bob.Executor
	Reader
}

func NewWriter(tx bob.Executor) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

func (w *Writer) CreateBatch(ctx context.Context, create *BatchCreate) (uuid.UUID, error) {
	q := psql.Insert(
		im.Into(batchTableName, "filename", "account_type", "date_range_start", "date_range_end"),
		im.Values(
			psql.Arg(create.Filename),
			psql.Arg(create.AccountType),
			psql.Arg(create.DateRangeStart),
			psql.Arg(create.DateRangeEnd),
		),
		im.Returning("id"),
	)
	return bob.One(ctx, w.tx, q, scan.SingleColumnMapper[uuid.UUID])
}

func (w *Writer) SetTransactionCount(ctx context.Context, batchID uuid.UUID, count int) error {
	q := psql.Update(
		um.Table(batchTableName),
		um.SetCol("transaction_count").ToArg(count),
		um.Where(psql.Quote("id").EQ(psql.Arg(batchID))),
	)
	_, err := bob.Exec(ctx, w.tx, q)
	return err
}

// InsertTransaction stores a transaction unless the batch already holds one
// with the same fingerprint, in which case inserted is false.
func (w *Writer) InsertTransaction(ctx context.Context, create *TransactionCreate) (uuid.UUID, bool, error) {
	q := psql.Insert(
		im.Into(transactionTableName,
			"import_id", "fingerprint", "transaction_date", "description", "amount",
			"check_number", "running_balance", "category", "vendor_name", "is_debit",
			"matched_bill_id", "match_confidence", "match_method", "confirmed",
		),
		im.Values(
			psql.Arg(create.ImportID),
			psql.Arg(create.Fingerprint),
			psql.Arg(create.TransactionDate),
			psql.Arg(create.Description),
			psql.Arg(create.Amount),
			psql.Arg(create.CheckNumber),
			psql.Arg(create.RunningBalance),
			psql.Arg(create.Category),
			psql.Arg(create.VendorName),
			psql.Arg(create.IsDebit),
			psql.Arg(create.Match.BillID),
			psql.Arg(create.Match.Confidence),
			psql.Arg(create.Match.Method),
			psql.Arg(create.Confirmed),
		),
		im.OnConflict("import_id", "fingerprint").DoNothing(),
		im.Returning("id"),
	)

	id, err := bob.One(ctx, w.tx, q, scan.SingleColumnMapper[uuid.UUID])
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// FindTransactionByIDForUpdate locks the transaction row until the surrounding transaction ends.
func (w *Writer) FindTransactionByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return w.findTransaction(ctx, id, sm.ForUpdate())
}

// ConfirmTransaction records the reviewed outcome of a transaction.
func (w *Writer) ConfirmTransaction(ctx context.Context, id uuid.UUID, match TransactionMatch) error {
	q := psql.Update(
		um.Table(transactionTableName),
		um.SetCol("matched_bill_id").ToArg(match.BillID),
		um.SetCol("match_confidence").ToArg(match.Confidence),
		um.SetCol("match_method").ToArg(match.Method),
		um.SetCol("confirmed").ToArg(true),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	_, err := bob.Exec(ctx, w.tx, q)
	return err
}
