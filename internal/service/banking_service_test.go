package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/property-server/internal/banking"
	"github.com/carson-networks/property-server/internal/config"
	"github.com/carson-networks/property-server/internal/operator/actions"
	"github.com/carson-networks/property-server/internal/storage"
	"github.com/carson-networks/property-server/internal/storage/bankimport"
	"github.com/carson-networks/property-server/internal/storage/bill"
	"github.com/carson-networks/property-server/internal/storage/storagemock"
)

const statement = `Date,Description,Amount
01/03/2025,Check 363,-450.00
01/07/2025,Parker Construction Bill Payment,-200.00
01/08/2025,Hardware Depot Bill Payment,-75.00
01/15/2025,ACME CORP DES:PAYROLL,"2,500.00"
`

type mockOperator struct {
	mock.Mock
}

func (m *mockOperator) Process(ctx context.Context, action actions.IAction) error {
	return m.Called(ctx, action).Error(0)
}

type testDeps struct {
	bills    *storagemock.Bills
	imports  *storagemock.Imports
	operator *mockOperator
}

func newTestBankingService(t *testing.T) (*BankingService, testDeps) {
	t.Helper()
	deps := testDeps{
		bills:    &storagemock.Bills{},
		imports:  &storagemock.Imports{},
		operator: &mockOperator{},
	}
	env := &config.Config{
		AutoConfirmThreshold: 0.90,
		BillDateWindowDays:   21,
		ImportCacheTTL:       time.Minute,
	}
	reader := &storage.Reader{Bills: deps.bills, Imports: deps.imports}
	return NewBankingService(reader, deps.operator, env), deps
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func strPtr(s string) *string {
	return &s
}

func TestImportStatement_Triage(t *testing.T) {
	svc, deps := newTestBankingService(t)
	ctx := context.Background()

	securityBill := &bill.Bill{
		ID:          uuid.Must(uuid.NewV4()),
		Description: "Security system annual",
		Amount:      decimal.NullDecimal{Decimal: decimal.RequireFromString("450.00"), Valid: true},
		CheckNumber: strPtr("363"),
		Status:      bill.StatusSent,
	}
	parkerBill := &bill.Bill{
		ID:          uuid.Must(uuid.NewV4()),
		Description: "Roof repair",
		Amount:      decimal.NullDecimal{Decimal: decimal.RequireFromString("200.00"), Valid: true},
		DueDate:     timePtr(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)),
		Status:      bill.StatusSent,
	}
	deps.bills.On("ListOutstanding", ctx).Return([]*bill.Bill{securityBill, parkerBill}, nil).Once()

	importID := uuid.Must(uuid.NewV4())
	txnIDs := []uuid.UUID{uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())}

	var stored *actions.ImportStatement
	deps.operator.On("Process", ctx, mock.AnythingOfType("*actions.ImportStatement")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*actions.ImportStatement)
			stored.Outcome = actions.ImportOutcome{
				ImportID:       importID,
				Stored:         3,
				ConfirmedBills: []uuid.UUID{securityBill.ID},
				Items: []actions.ImportedTransaction{
					{TransactionID: txnIDs[0], AutoConfirmed: true},
					{TransactionID: txnIDs[1]},
					{TransactionID: txnIDs[2]},
				},
			}
		}).Return(nil).Once()

	result, err := svc.ImportStatement(ctx, statement, "january.csv")

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "january.csv", stored.Filename)
	require.Len(t, stored.Results, 3)
	assert.Equal(t, "Check 363", stored.Results[0].Transaction.Description)
	require.NotNil(t, stored.DateStart)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.January, Day: 3}, *stored.DateStart)

	assert.Equal(t, importID, result.ImportID)
	assert.Equal(t, 4, result.Stats.Total)
	assert.Equal(t, 3, result.MatchableCount)
	assert.Equal(t, 3, result.Stored)
	assert.Empty(t, result.Errors)

	require.Len(t, result.AutoConfirmed, 1)
	assert.Equal(t, txnIDs[0], result.AutoConfirmed[0].TransactionID)
	assert.Equal(t, securityBill.ID, result.AutoConfirmed[0].Result.BestMatch.Bill.ID)
	assert.Equal(t, banking.MatchMethodCheckNumberAndAmount, result.AutoConfirmed[0].Result.BestMatch.Method)

	require.Len(t, result.NeedsReview, 1)
	assert.Equal(t, txnIDs[1], result.NeedsReview[0].TransactionID)
	assert.Equal(t, banking.MatchMethodAmountAndDate, result.NeedsReview[0].Result.BestMatch.Method)

	require.Len(t, result.NoMatch, 1)
	assert.Equal(t, txnIDs[2], result.NoMatch[0].TransactionID)
	assert.Nil(t, result.NoMatch[0].Result.BestMatch)

	deps.bills.AssertExpectations(t)
	deps.operator.AssertExpectations(t)
}

func TestImportStatement_DowngradedAndDuplicates(t *testing.T) {
	svc, deps := newTestBankingService(t)
	ctx := context.Background()

	securityBill := &bill.Bill{
		ID:          uuid.Must(uuid.NewV4()),
		Amount:      decimal.NullDecimal{Decimal: decimal.RequireFromString("450.00"), Valid: true},
		CheckNumber: strPtr("363"),
		Status:      bill.StatusSent,
	}
	deps.bills.On("ListOutstanding", ctx).Return([]*bill.Bill{securityBill}, nil)

	txnID := uuid.Must(uuid.NewV4())
	deps.operator.On("Process", ctx, mock.AnythingOfType("*actions.ImportStatement")).
		Run(func(args mock.Arguments) {
			a := args.Get(1).(*actions.ImportStatement)
			a.Outcome = actions.ImportOutcome{
				ImportID:   uuid.Must(uuid.NewV4()),
				Stored:     1,
				Duplicates: 2,
				Items: []actions.ImportedTransaction{
					{TransactionID: txnID},
					{Duplicate: true},
					{Duplicate: true},
				},
			}
		}).Return(nil)

	result, err := svc.ImportStatement(ctx, statement, "again.csv")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Duplicates)
	assert.Empty(t, result.AutoConfirmed)
	require.Len(t, result.NeedsReview, 1)
	assert.Equal(t, txnID, result.NeedsReview[0].TransactionID)
	assert.False(t, result.NeedsReview[0].Result.AutoConfirm)
	assert.Empty(t, result.NoMatch)
}

func TestImportStatement_InvalidStatement(t *testing.T) {
	svc, deps := newTestBankingService(t)

	for _, content := range []string{"", "   \n", "just,some,columns\n1,2,3\n"} {
		result, err := svc.ImportStatement(context.Background(), content, "bad.csv")

		assert.ErrorIs(t, err, ErrInvalidStatement)
		assert.Nil(t, result)
	}
	deps.operator.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestImportStatement_InvalidStatementKeepsCause(t *testing.T) {
	svc, _ := newTestBankingService(t)

	_, err := svc.ImportStatement(context.Background(), "", "empty.csv")

	assert.ErrorIs(t, err, banking.ErrEmptyStatement)
}

func TestImportStatement_NoTransactions(t *testing.T) {
	svc, deps := newTestBankingService(t)

	result, err := svc.ImportStatement(context.Background(), "Date,Description,Amount\nyesterday,Check 1,-5.00\n", "rows.csv")

	assert.ErrorIs(t, err, ErrNoTransactions)
	require.NotNil(t, result)
	assert.Len(t, result.Errors, 1)
	deps.operator.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestImportStatement_BillSourceError(t *testing.T) {
	svc, deps := newTestBankingService(t)
	ctx := context.Background()

	storageErr := errors.New("connection refused")
	deps.bills.On("ListOutstanding", ctx).Return(nil, storageErr)

	result, err := svc.ImportStatement(ctx, statement, "january.csv")

	assert.ErrorIs(t, err, storageErr)
	assert.Nil(t, result)
	deps.operator.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestImportStatement_StoreError(t *testing.T) {
	svc, deps := newTestBankingService(t)
	ctx := context.Background()

	deps.bills.On("ListOutstanding", ctx).Return([]*bill.Bill{}, nil)
	deps.operator.On("Process", ctx, mock.Anything).Return(context.DeadlineExceeded)

	result, err := svc.ImportStatement(ctx, statement, "january.csv")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, result)
}

func TestListImports_CachesUntilWrite(t *testing.T) {
	svc, deps := newTestBankingService(t)
	ctx := context.Background()

	accountType := "checking"
	rows := []*bankimport.Batch{{
		ID:               uuid.Must(uuid.NewV4()),
		Filename:         "january.csv",
		AccountType:      &accountType,
		DateRangeStart:   timePtr(time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)),
		TransactionCount: 3,
		MatchedCount:     1,
		CreatedAt:        time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	}}
	deps.imports.On("ListBatches", ctx, &bankimport.BatchFilter{Limit: defaultImportLimit}).Return(rows, nil).Twice()
	deps.operator.On("Process", ctx, mock.AnythingOfType("*actions.DismissTransaction")).Return(nil)

	first, err := svc.ListImports(ctx, 0)
	require.NoError(t, err)
	second, err := svc.ListImports(ctx, defaultImportLimit)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first, 1)
	assert.Equal(t, "january.csv", first[0].Filename)
	require.NotNil(t, first[0].AccountType)
	assert.Equal(t, banking.AccountTypeChecking, *first[0].AccountType)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.January, Day: 3}, *first[0].DateRangeStart)
	assert.Nil(t, first[0].DateRangeEnd)
	assert.Equal(t, 1, first[0].MatchedCount)

	require.NoError(t, svc.DismissTransaction(ctx, uuid.Must(uuid.NewV4())))
	_, err = svc.ListImports(ctx, 0)
	require.NoError(t, err)

	deps.imports.AssertNumberOfCalls(t, "ListBatches", 2)
}

func TestListImports_StorageError(t *testing.T) {
	svc, deps := newTestBankingService(t)
	ctx := context.Background()

	deps.imports.On("ListBatches", ctx, mock.Anything).Return(nil, errors.New("connection refused"))

	batches, err := svc.ListImports(ctx, 5)

	assert.Error(t, err)
	assert.Nil(t, batches)
}

func TestConfirmMatch_PassesThroughNotFound(t *testing.T) {
	svc, deps := newTestBankingService(t)
	ctx := context.Background()

	txnID := uuid.Must(uuid.NewV4())
	billID := uuid.Must(uuid.NewV4())
	deps.operator.On("Process", ctx, &actions.ConfirmMatch{TransactionID: txnID, BillID: billID}).
		Return(actions.ErrBillNotFound)

	err := svc.ConfirmMatch(ctx, txnID, billID)

	assert.ErrorIs(t, err, actions.ErrBillNotFound)
}

func TestConfirmMatch_Success(t *testing.T) {
	svc, deps := newTestBankingService(t)
	ctx := context.Background()

	txnID := uuid.Must(uuid.NewV4())
	billID := uuid.Must(uuid.NewV4())
	deps.operator.On("Process", ctx, &actions.ConfirmMatch{TransactionID: txnID, BillID: billID}).
		Return(nil).Once()

	require.NoError(t, svc.ConfirmMatch(ctx, txnID, billID))
	deps.operator.AssertExpectations(t)
}
