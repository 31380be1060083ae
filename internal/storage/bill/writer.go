package bill

import (
	"context"
	"time"

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

// FindByIDForUpdate locks the bill row until the surrounding transaction ends.
func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return w.findByID(ctx, id, sm.ForUpdate())
}

func (w *Writer) Insert(ctx context.Context, create *BillCreate) (uuid.UUID, error) {
	q := psql.Insert(
		im.Into(tableName, "description", "amount", "due_date", "payment_date", "vendor_name", "check_number", "status"),
		im.Values(
			psql.Arg(create.Description),
			psql.Arg(create.Amount),
			psql.Arg(create.DueDate),
			psql.Arg(create.PaymentDate),
			psql.Arg(create.VendorName),
			psql.Arg(create.CheckNumber),
			psql.Arg(string(StatusSent)),
		),
		im.Returning("id"),
	)
	return bob.One(ctx, w.tx, q, scan.SingleColumnMapper[uuid.UUID])
}

func (w *Writer) MarkConfirmed(ctx context.Context, id uuid.UUID, confirmedAt time.Time) error {
	q := psql.Update(
		um.Table(tableName),
		um.SetCol("status").ToArg(string(StatusConfirmed)),
		um.SetCol("confirmed_at").ToArg(confirmedAt),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	_, err := bob.Exec(ctx, w.tx, q)
	return err
}
