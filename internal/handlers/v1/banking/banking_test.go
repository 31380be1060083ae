package banking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	engine "github.com/carson-networks/property-server/internal/banking"
	"github.com/carson-networks/property-server/internal/operator/actions"
	"github.com/carson-networks/property-server/internal/service"
)

type mockBankingService struct {
	mock.Mock
}

func (m *mockBankingService) ImportStatement(ctx context.Context, csvContent, filename string) (*service.ImportResult, error) {
	args := m.Called(ctx, csvContent, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

func (m *mockBankingService) ListImports(ctx context.Context, limit int) ([]service.ImportBatch, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ImportBatch), args.Error(1)
}

func (m *mockBankingService) ConfirmMatch(ctx context.Context, transactionID, billID uuid.UUID) error {
	return m.Called(ctx, transactionID, billID).Error(0)
}

func (m *mockBankingService) DismissTransaction(ctx context.Context, transactionID uuid.UUID) error {
	return m.Called(ctx, transactionID).Error(0)
}

func newTestAPI(t *testing.T, svc *mockBankingService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewImportStatementHandler(svc).Register(api)
	NewListImportsHandler(svc).Register(api)
	NewReviewHandler(svc).Register(api)
	return api
}

func sampleImportResult() *service.ImportResult {
	checkNumber := "363"
	accountType := engine.AccountTypeChecking
	start := civil.Date{Year: 2025, Month: time.January, Day: 3}
	end := civil.Date{Year: 2025, Month: time.January, Day: 8}

	best := engine.MatchCandidate{
		Bill:       engine.Bill{ID: uuid.FromStringOrNil("6f1c7d0e-8a1b-4c55-9d8e-0f6b1a2c3d4e"), Description: "Security system annual"},
		Confidence: engine.ConfidenceCheckNumberAndAmount,
		Method:     engine.MatchMethodCheckNumberAndAmount,
		Reason:     "Check #363 and amount $450.00 match",
	}
	alternative := engine.MatchCandidate{
		Bill:       engine.Bill{ID: uuid.FromStringOrNil("0b9e2f44-3c1d-4e8a-b7f6-5a4c3b2a1908"), Description: "Alarm monitoring"},
		Confidence: engine.ConfidenceAmountAndDate,
		Method:     engine.MatchMethodAmountAndDate,
	}

	return &service.ImportResult{
		ImportID:       uuid.FromStringOrNil("d2a6c1f0-1e2b-4c3d-8e9f-a0b1c2d3e4f5"),
		Filename:       "january.csv",
		AccountType:    &accountType,
		DateRangeStart: &start,
		DateRangeEnd:   &end,
		Stats:          engine.Stats{Total: 4, Debits: 3, Credits: 1, Checks: 1},
		MatchableCount: 3,
		Stored:         3,
		AutoConfirmed: []service.ImportedItem{{
			TransactionID: uuid.FromStringOrNil("11111111-2222-4333-8444-555555555555"),
			Result: engine.MatchResult{
				Transaction: engine.ParsedTransaction{
					Date:        start,
					Description: "Check 363",
					Amount:      decimal.RequireFromString("-450"),
					CheckNumber: &checkNumber,
					Category:    engine.CategoryCheck,
					IsDebit:     true,
				},
				Matches:     []engine.MatchCandidate{best, alternative},
				BestMatch:   &best,
				AutoConfirm: true,
			},
		}},
		NeedsReview: []service.ImportedItem{},
		NoMatch:     []service.ImportedItem{},
	}
}

func TestImportStatement_Success(t *testing.T) {
	svc := &mockBankingService{}
	api := newTestAPI(t, svc)

	svc.On("ImportStatement", mock.Anything, "Date,Description,Amount\n", "january.csv").
		Return(sampleImportResult(), nil)

	resp := api.Post("/v1/banking/import", map[string]any{
		"csvContent": "Date,Description,Amount\n",
		"filename":   "january.csv",
	})

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body ImportStatementResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "d2a6c1f0-1e2b-4c3d-8e9f-a0b1c2d3e4f5", body.ImportID)
	require.NotNil(t, body.AccountType)
	assert.Equal(t, "checking", *body.AccountType)
	assert.Equal(t, "2025-01-03", *body.DateRangeStart)
	assert.Equal(t, "2025-01-08", *body.DateRangeEnd)
	assert.Equal(t, ImportCounts{Parsed: 4, Matchable: 3, Stored: 3, AutoConfirmed: 1}, body.Counts)
	assert.Empty(t, body.Errors)

	require.Len(t, body.AutoConfirmed, 1)
	item := body.AutoConfirmed[0]
	assert.Equal(t, "11111111-2222-4333-8444-555555555555", item.TransactionID)
	assert.Equal(t, "2025-01-03", item.Date)
	assert.Equal(t, "-450.00", item.Amount)
	assert.Equal(t, "check", item.Category)
	require.NotNil(t, item.CheckNumber)
	assert.Equal(t, "363", *item.CheckNumber)
	require.NotNil(t, item.BestMatch)
	assert.Equal(t, "check_number_amount", item.BestMatch.Method)
	assert.Equal(t, 0.98, item.BestMatch.Confidence)
	require.Len(t, item.Alternatives, 1)
	assert.Equal(t, "Alarm monitoring", item.Alternatives[0].Description)
}

func TestImportStatement_Errors(t *testing.T) {
	tests := []struct {
		name       string
		result     *service.ImportResult
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "invalid statement",
			err:        fmt.Errorf("%w: %w", service.ErrInvalidStatement, engine.ErrMissingColumns),
			wantStatus: http.StatusBadRequest,
			wantBody:   "missing required columns",
		},
		{
			name:       "no transactions",
			result:     &service.ImportResult{Errors: []string{"line 2: invalid date \"yesterday\""}},
			err:        service.ErrNoTransactions,
			wantStatus: http.StatusBadRequest,
			wantBody:   "yesterday",
		},
		{
			name:       "storage failure",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "failed to import statement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBankingService{}
			api := newTestAPI(t, svc)

			var result any
			if tt.result != nil {
				result = tt.result
			}
			svc.On("ImportStatement", mock.Anything, mock.Anything, mock.Anything).Return(result, tt.err)

			resp := api.Post("/v1/banking/import", map[string]any{
				"csvContent": "whatever",
				"filename":   "bad.csv",
			})

			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}

func TestImportStatement_MissingFilename(t *testing.T) {
	svc := &mockBankingService{}
	api := newTestAPI(t, svc)

	resp := api.Post("/v1/banking/import", map[string]any{
		"csvContent": "Date,Description,Amount\n",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	svc.AssertNotCalled(t, "ImportStatement", mock.Anything, mock.Anything, mock.Anything)
}

func TestListImports(t *testing.T) {
	svc := &mockBankingService{}
	api := newTestAPI(t, svc)

	start := civil.Date{Year: 2025, Month: time.January, Day: 3}
	svc.On("ListImports", mock.Anything, 5).Return([]service.ImportBatch{{
		ID:               uuid.FromStringOrNil("d2a6c1f0-1e2b-4c3d-8e9f-a0b1c2d3e4f5"),
		Filename:         "january.csv",
		DateRangeStart:   &start,
		TransactionCount: 3,
		MatchedCount:     1,
		CreatedAt:        time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC),
	}}, nil)

	resp := api.Get("/v1/banking/imports?limit=5")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var body ListImportsResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Imports, 1)
	assert.Equal(t, "january.csv", body.Imports[0].Filename)
	assert.Nil(t, body.Imports[0].AccountType)
	assert.Equal(t, "2025-01-03", *body.Imports[0].DateRangeStart)
	assert.Nil(t, body.Imports[0].DateRangeEnd)
	assert.Equal(t, 1, body.Imports[0].MatchedCount)
	assert.Equal(t, "2025-02-01T09:30:00Z", body.Imports[0].CreatedAt)
}

func TestListImports_DefaultLimit(t *testing.T) {
	svc := &mockBankingService{}
	api := newTestAPI(t, svc)

	svc.On("ListImports", mock.Anything, 20).Return([]service.ImportBatch{}, nil).Once()

	resp := api.Get("/v1/banking/imports")

	require.Equal(t, http.StatusOK, resp.Code)
	var body ListImportsResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotNil(t, body.Imports)
	assert.Empty(t, body.Imports)
	svc.AssertExpectations(t)
}

func TestListImports_LimitOutOfRange(t *testing.T) {
	svc := &mockBankingService{}
	api := newTestAPI(t, svc)

	resp := api.Get("/v1/banking/imports?limit=500")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	svc.AssertNotCalled(t, "ListImports", mock.Anything, mock.Anything)
}

func TestListImports_Error(t *testing.T) {
	svc := &mockBankingService{}
	api := newTestAPI(t, svc)

	svc.On("ListImports", mock.Anything, 20).Return(nil, errors.New("connection refused"))

	resp := api.Get("/v1/banking/imports")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestConfirmMatch(t *testing.T) {
	transactionID := uuid.Must(uuid.NewV4())
	billID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name       string
		body       map[string]any
		serviceErr error
		callsSvc   bool
		wantStatus int
	}{
		{
			name:       "confirmed",
			body:       map[string]any{"transactionID": transactionID.String(), "billID": billID.String()},
			callsSvc:   true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid transaction id",
			body:       map[string]any{"transactionID": "nope", "billID": billID.String()},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid bill id",
			body:       map[string]any{"transactionID": transactionID.String(), "billID": "nope"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "transaction not found",
			body:       map[string]any{"transactionID": transactionID.String(), "billID": billID.String()},
			serviceErr: actions.ErrTransactionNotFound,
			callsSvc:   true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bill not found",
			body:       map[string]any{"transactionID": transactionID.String(), "billID": billID.String()},
			serviceErr: actions.ErrBillNotFound,
			callsSvc:   true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "storage failure",
			body:       map[string]any{"transactionID": transactionID.String(), "billID": billID.String()},
			serviceErr: errors.New("connection refused"),
			callsSvc:   true,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBankingService{}
			api := newTestAPI(t, svc)
			if tt.callsSvc {
				svc.On("ConfirmMatch", mock.Anything, transactionID, billID).Return(tt.serviceErr).Once()
			}

			resp := api.Post("/v1/banking/confirm", tt.body)

			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			if tt.callsSvc {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "ConfirmMatch", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDismissTransaction(t *testing.T) {
	transactionID := uuid.Must(uuid.NewV4())

	t.Run("dismissed", func(t *testing.T) {
		svc := &mockBankingService{}
		api := newTestAPI(t, svc)
		svc.On("DismissTransaction", mock.Anything, transactionID).Return(nil).Once()

		resp := api.Post("/v1/banking/dismiss", map[string]any{"transactionID": transactionID.String()})

		assert.Equal(t, http.StatusOK, resp.Code)
		svc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockBankingService{}
		api := newTestAPI(t, svc)
		svc.On("DismissTransaction", mock.Anything, transactionID).Return(actions.ErrTransactionNotFound)

		resp := api.Post("/v1/banking/dismiss", map[string]any{"transactionID": transactionID.String()})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := &mockBankingService{}
		api := newTestAPI(t, svc)

		resp := api.Post("/v1/banking/dismiss", map[string]any{"transactionID": "42"})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}
