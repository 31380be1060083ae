package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/property-server/internal/banking"
	"github.com/carson-networks/property-server/internal/config"
	"github.com/carson-networks/property-server/internal/logging"
	"github.com/carson-networks/property-server/internal/operator/actions"
	"github.com/carson-networks/property-server/internal/storage"
	"github.com/carson-networks/property-server/internal/storage/bankimport"
)

const defaultImportLimit = 20

var (
	ErrInvalidStatement = errors.New("invalid statement")
	ErrNoTransactions   = errors.New("no transactions could be parsed")
)

// actionProcessor runs a write action inside a database transaction.
type actionProcessor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// BankingService imports bank statements and reconciles them against bills.
type BankingService struct {
	reader   *storage.Reader
	operator actionProcessor
	matcher  *banking.Matcher
	imports  *cache.Cache
}

// NewBankingService creates a new BankingService.
func NewBankingService(reader *storage.Reader, op actionProcessor, env *config.Config) *BankingService {
	matcherConfig := banking.DefaultMatcherConfig()
	matcherConfig.AutoConfirmThreshold = env.AutoConfirmThreshold
	matcherConfig.DateWindowDays = env.BillDateWindowDays

	return &BankingService{
		reader:   reader,
		operator: op,
		matcher:  banking.NewMatcher(matcherConfig, billSource{bills: reader.Bills}),
		imports:  cache.New(env.ImportCacheTTL, 2*env.ImportCacheTTL),
	}
}

// ImportStatement parses a statement, matches its bill-like debits against the
// outstanding bills, and stores the batch. When no transaction can be parsed
// the returned result still carries the row errors alongside ErrNoTransactions.
func (s *BankingService) ImportStatement(ctx context.Context, csvContent, filename string) (*ImportResult, error) {
	logData := logging.GetLogData(ctx)

	stopTimer := func() {}
	if logData != nil {
		stopTimer = logData.AddTiming("parseMs")
	}
	err := banking.Validate(csvContent)
	stopTimer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStatement, err)
	}

	if logData != nil {
		stopTimer = logData.AddToExistingTiming("parseMs")
	}
	parsed := banking.Parse(csvContent)
	stopTimer()
	result := &ImportResult{
		Filename:       filename,
		AccountType:    parsed.AccountType,
		DateRangeStart: parsed.DateRangeStart,
		DateRangeEnd:   parsed.DateRangeEnd,
		Stats:          parsed.Stats,
		Errors:         parsed.Errors,
	}
	if len(parsed.Transactions) == 0 {
		return result, ErrNoTransactions
	}

	matchable := banking.MatchableTransactions(parsed.Transactions)
	result.MatchableCount = len(matchable)

	if logData != nil {
		stopTimer = logData.AddTiming("matchMs")
	}
	results, err := s.matcher.MatchTransactionsToBills(ctx, matchable)
	stopTimer()
	if err != nil {
		return nil, fmt.Errorf("match transactions: %w", err)
	}

	action := &actions.ImportStatement{
		Filename:    filename,
		AccountType: parsed.AccountType,
		DateStart:   parsed.DateRangeStart,
		DateEnd:     parsed.DateRangeEnd,
		Results:     results,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, fmt.Errorf("store import: %w", err)
	}
	s.imports.Flush()

	outcome := action.Outcome
	result.ImportID = outcome.ImportID
	result.Stored = outcome.Stored
	result.Duplicates = outcome.Duplicates

	stored := make([]banking.MatchResult, 0, len(results))
	transactionIDs := make(map[string]uuid.UUID, len(results))
	for i, item := range outcome.Items {
		if item.Duplicate {
			continue
		}
		r := results[i]
		r.AutoConfirm = item.AutoConfirmed
		stored = append(stored, r)
		transactionIDs[r.Transaction.Fingerprint] = item.TransactionID
	}

	triage := banking.CategorizeMatchResults(stored)
	result.AutoConfirmed = importedItems(triage.AutoConfirmed, transactionIDs)
	result.NeedsReview = importedItems(triage.NeedsReview, transactionIDs)
	result.NoMatch = importedItems(triage.NoMatch, transactionIDs)

	if logData != nil {
		logData.AddData("importID", outcome.ImportID.String())
		logData.AddData("parsedCount", len(parsed.Transactions))
		logData.AddData("storedCount", outcome.Stored)
		logData.AddData("duplicateCount", outcome.Duplicates)
		logData.AddData("autoConfirmedCount", len(result.AutoConfirmed))
	}

	return result, nil
}

// ListImports returns the most recent import batches, newest first.
func (s *BankingService) ListImports(ctx context.Context, limit int) ([]ImportBatch, error) {
	if limit <= 0 {
		limit = defaultImportLimit
	}

	key := fmt.Sprintf("imports:%d", limit)
	if cached, ok := s.imports.Get(key); ok {
		return cached.([]ImportBatch), nil
	}

	rows, err := s.reader.Imports.ListBatches(ctx, &bankimport.BatchFilter{Limit: limit})
	if err != nil {
		return nil, err
	}

	batches := make([]ImportBatch, len(rows))
	for i, row := range rows {
		batches[i] = importBatchFromStorage(row)
	}
	s.imports.Set(key, batches, cache.DefaultExpiration)

	return batches, nil
}

// ConfirmMatch links a transaction to a bill chosen by a reviewer.
func (s *BankingService) ConfirmMatch(ctx context.Context, transactionID, billID uuid.UUID) error {
	err := s.operator.Process(ctx, &actions.ConfirmMatch{
		TransactionID: transactionID,
		BillID:        billID,
	})
	if err != nil {
		return err
	}
	s.imports.Flush()

	logrus.WithFields(logrus.Fields{
		"transactionID": transactionID.String(),
		"billID":        billID.String(),
	}).Info("BankingService.ConfirmMatch")
	return nil
}

// DismissTransaction marks a transaction as reviewed and not a bill payment.
func (s *BankingService) DismissTransaction(ctx context.Context, transactionID uuid.UUID) error {
	if err := s.operator.Process(ctx, &actions.DismissTransaction{TransactionID: transactionID}); err != nil {
		return err
	}
	s.imports.Flush()
	return nil
}

func importedItems(results []banking.MatchResult, transactionIDs map[string]uuid.UUID) []ImportedItem {
	items := make([]ImportedItem, len(results))
	for i, r := range results {
		items[i] = ImportedItem{
			TransactionID: transactionIDs[r.Transaction.Fingerprint],
			Result:        r,
		}
	}
	return items
}
