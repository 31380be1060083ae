package bankimport

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

const defaultBatchLimit = 20

var _ IReader = (*Reader)(nil)

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// ListBatches returns the most recent import batches with the number of
// their transactions confirmed against a bill.
func (r *Reader) ListBatches(ctx context.Context, filter *BatchFilter) ([]*Batch, error) {
	limit := defaultBatchLimit
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}

	q := psql.Select(
		sm.Columns(
			psql.Quote("b", "id"),
			psql.Quote("b", "filename"),
			psql.Quote("b", "account_type"),
			psql.Quote("b", "date_range_start"),
			psql.Quote("b", "date_range_end"),
			psql.Quote("b", "transaction_count"),
			psql.Raw("count(t.id) FILTER (WHERE t.confirmed AND t.matched_bill_id IS NOT NULL) AS matched_count"),
			psql.Quote("b", "created_at"),
		),
		sm.From(batchTableName).As("b"),
		sm.LeftJoin(transactionTableName).As("t").On(
			psql.Quote("t", "import_id").EQ(psql.Quote("b", "id")),
		),
		sm.GroupBy(psql.Quote("b", "id")),
		sm.OrderBy(psql.Quote("b", "created_at")).Desc(),
		sm.OrderBy(psql.Quote("b", "id")).Desc(),
		sm.Limit(limit),
	)
	return bob.All(ctx, r.exec, q, scan.StructMapper[*Batch]())
}

// FindTransactionByID returns nil when no transaction has the given ID.
func (r *Reader) FindTransactionByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return r.findTransaction(ctx, id)
}

func (r *Reader) findTransaction(ctx context.Context, id uuid.UUID, extra ...bob.Mod[*dialect.SelectQuery]) (*Transaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(transactionColumns...),
		sm.From(transactionTableName),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	queryMods = append(queryMods, extra...)

	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[*Transaction]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}
