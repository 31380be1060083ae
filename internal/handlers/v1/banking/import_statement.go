package banking

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/property-server/internal/logging"
	"github.com/carson-networks/property-server/internal/service"
)

// ImportStatementBody is the request body for importing a bank statement.
type ImportStatementBody struct {
	CSVContent string `json:"csvContent" required:"true" doc:"Raw statement export text"`
	Filename   string `json:"filename" required:"true" minLength:"1" doc:"Name of the uploaded file"`
}

// ImportStatementInput is the Huma input for importing a bank statement.
type ImportStatementInput struct {
	Body ImportStatementBody
}

// ImportStats mirrors the parser's aggregate counts.
type ImportStats struct {
	Total   int `json:"total"`
	Debits  int `json:"debits"`
	Credits int `json:"credits"`
	Checks  int `json:"checks"`
}

// ImportCounts summarizes what happened to the parsed transactions.
type ImportCounts struct {
	Parsed        int `json:"parsed" doc:"Transactions recovered from the statement"`
	Matchable     int `json:"matchable" doc:"Debits that could be bill payments"`
	Stored        int `json:"stored" doc:"Transactions saved in this batch"`
	Duplicates    int `json:"duplicates" doc:"Repeated transactions skipped"`
	AutoConfirmed int `json:"autoConfirmed"`
	NeedsReview   int `json:"needsReview"`
	NoMatch       int `json:"noMatch"`
}

// ImportStatementResponseBody is the triage breakdown of an import.
type ImportStatementResponseBody struct {
	ImportID       string                `json:"importID" doc:"Import batch UUID"`
	Filename       string                `json:"filename"`
	AccountType    *string               `json:"accountType,omitempty" doc:"Detected account type"`
	DateRangeStart *string               `json:"dateRangeStart,omitempty"`
	DateRangeEnd   *string               `json:"dateRangeEnd,omitempty"`
	Stats          ImportStats           `json:"stats"`
	Counts         ImportCounts          `json:"counts"`
	AutoConfirmed  []ImportedTransaction `json:"autoConfirmed" doc:"Transactions confirmed against a bill"`
	NeedsReview    []ImportedTransaction `json:"needsReview" doc:"Transactions with a suggested bill"`
	NoMatch        []ImportedTransaction `json:"noMatch" doc:"Bill-like transactions without a candidate"`
	Errors         []string              `json:"errors" doc:"Rows that could not be parsed"`
}

// ImportStatementOutput is the Huma output for importing a bank statement.
type ImportStatementOutput struct {
	Body ImportStatementResponseBody
}

type statementImporter interface {
	ImportStatement(ctx context.Context, csvContent, filename string) (*service.ImportResult, error)
}

// ImportStatementHandler handles POST /v1/banking/import.
type ImportStatementHandler struct {
	BankingService statementImporter
}

// NewImportStatementHandler creates a new ImportStatementHandler.
func NewImportStatementHandler(svc statementImporter) *ImportStatementHandler {
	return &ImportStatementHandler{BankingService: svc}
}

// Register registers the import endpoint with the Huma API.
func (h *ImportStatementHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "import-bank-statement",
		Method:      http.MethodPost,
		Path:        "/v1/banking/import",
		Summary:     "Import bank statement",
		Description: "Parses a bank statement export, matches debits against outstanding bills and stores the batch.",
		Tags:        []string{"Banking"},
	}, h.handle)
}

func (h *ImportStatementHandler) handle(ctx context.Context, input *ImportStatementInput) (*ImportStatementOutput, error) {
	logData := logging.GetLogData(ctx)
	if logData != nil {
		logData.AddData("filename", input.Body.Filename)
	}

	result, err := h.BankingService.ImportStatement(ctx, input.Body.CSVContent, input.Body.Filename)
	switch {
	case errors.Is(err, service.ErrInvalidStatement):
		return nil, huma.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoTransactions):
		details := []error{}
		if result != nil {
			for _, rowErr := range result.Errors {
				details = append(details, errors.New(rowErr))
			}
		}
		return nil, huma.NewError(http.StatusBadRequest, "no transactions could be parsed", details...)
	case err != nil:
		return nil, huma.NewError(http.StatusInternalServerError, "failed to import statement", err)
	}

	resp := ImportStatementResponseBody{
		ImportID:       result.ImportID.String(),
		Filename:       result.Filename,
		DateRangeStart: formatDate(result.DateRangeStart),
		DateRangeEnd:   formatDate(result.DateRangeEnd),
		Stats: ImportStats{
			Total:   result.Stats.Total,
			Debits:  result.Stats.Debits,
			Credits: result.Stats.Credits,
			Checks:  result.Stats.Checks,
		},
		Counts: ImportCounts{
			Parsed:        result.Stats.Total,
			Matchable:     result.MatchableCount,
			Stored:        result.Stored,
			Duplicates:    result.Duplicates,
			AutoConfirmed: len(result.AutoConfirmed),
			NeedsReview:   len(result.NeedsReview),
			NoMatch:       len(result.NoMatch),
		},
		AutoConfirmed: importedTransactions(result.AutoConfirmed),
		NeedsReview:   importedTransactions(result.NeedsReview),
		NoMatch:       importedTransactions(result.NoMatch),
		Errors:        result.Errors,
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	if result.AccountType != nil {
		accountType := string(*result.AccountType)
		resp.AccountType = &accountType
	}

	return &ImportStatementOutput{Body: resp}, nil
}
