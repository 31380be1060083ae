package banking

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// statementDateLayout accepts one or two digit month and day with a four digit year.
const statementDateLayout = "1/2/2006"

var (
	ErrEmptyStatement = errors.New("statement is empty")
	ErrMissingColumns = errors.New("statement is missing required columns")
)

var checkNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbill\s+pay\s+check\s+(\d+):`),
	regexp.MustCompile(`(?i)\bcheck\s+(\d+)\b`),
}

var summaryRowMarkers = []string{
	"beginning balance",
	"ending balance",
	"total credits",
	"total debits",
}

type columnLayout struct {
	date        int
	description int
	amount      int
	balance     int
}

type statementRow struct {
	line   int
	fields []string
}

// Validate performs a cheap pre-check on statement content without parsing rows.
func Validate(raw string) error {
	if strings.TrimSpace(stripBOM(raw)) == "" {
		return ErrEmptyStatement
	}

	rows, _ := readRows(raw)
	var bestMissing []string
	for _, row := range rows {
		layout, missing := detectColumns(row.fields)
		if layout != nil {
			return nil
		}
		if bestMissing == nil || len(missing) < len(bestMissing) {
			bestMissing = missing
		}
	}
	if bestMissing == nil {
		bestMissing = []string{"date", "description", "amount"}
	}

	return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(bestMissing, ", "))
}

// Parse turns raw comma-separated statement text into typed transactions.
// Malformed rows are reported in ParseResult.Errors and skipped.
func Parse(raw string) ParseResult {
	result := ParseResult{
		Transactions: []ParsedTransaction{},
		Errors:       []string{},
	}

	if strings.TrimSpace(stripBOM(raw)) == "" {
		result.Errors = append(result.Errors, "empty file: the statement contains no data")
		return result
	}

	rows, readErrors := readRows(raw)
	result.Errors = append(result.Errors, readErrors...)

	headerIdx := -1
	var layout *columnLayout
	for i, row := range rows {
		if layout, _ = detectColumns(row.fields); layout != nil {
			headerIdx = i
			break
		}
	}
	if layout == nil {
		result.Errors = append(result.Errors, "no recognizable header row: expected date, description and amount columns")
		return result
	}

	result.AccountType = detectAccountType(rows[:headerIdx], rows[headerIdx].fields, layout)

	for _, row := range rows[headerIdx+1:] {
		txn, rowErr, ok := parseRow(row, layout)
		if rowErr != "" {
			result.Errors = append(result.Errors, rowErr)
			continue
		}
		if !ok {
			continue
		}
		result.Transactions = append(result.Transactions, txn)
	}

	result.Stats, result.DateRangeStart, result.DateRangeEnd = summarize(result.Transactions)
	return result
}

func readRows(raw string) ([]statementRow, []string) {
	reader := csv.NewReader(strings.NewReader(stripBOM(raw)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []statementRow
	var readErrors []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErrors = append(readErrors, err.Error())
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, statementRow{line: line, fields: record})
	}
	return rows, readErrors
}

func detectColumns(fields []string) (*columnLayout, []string) {
	layout := columnLayout{date: -1, description: -1, amount: -1, balance: -1}
	for i, cell := range fields {
		name := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case layout.date < 0 && strings.Contains(name, "date"):
			layout.date = i
		case layout.description < 0 && (strings.Contains(name, "description") || name == "payee"):
			layout.description = i
		case layout.amount < 0 && strings.Contains(name, "amount"):
			layout.amount = i
		case layout.balance < 0 && strings.Contains(name, "bal"):
			layout.balance = i
		}
	}

	var missing []string
	if layout.date < 0 {
		missing = append(missing, "date")
	}
	if layout.description < 0 {
		missing = append(missing, "description")
	}
	if layout.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, missing
	}
	return &layout, nil
}

func detectAccountType(metadata []statementRow, header []string, layout *columnLayout) *AccountType {
	for _, row := range metadata {
		text := strings.ToLower(strings.Join(row.fields, " "))
		var detected AccountType
		switch {
		case strings.Contains(text, "savings"):
			detected = AccountTypeSavings
		case strings.Contains(text, "checking"):
			detected = AccountTypeChecking
		case strings.Contains(text, "credit card"):
			detected = AccountTypeCreditCard
		default:
			continue
		}
		return &detected
	}

	if layout.balance >= 0 && strings.Contains(strings.ToLower(header[layout.balance]), "running") {
		detected := AccountTypeChecking
		return &detected
	}
	return nil
}

// parseRow returns the transaction, a row-level error message, and whether
// the row produced a transaction at all.
func parseRow(row statementRow, layout *columnLayout) (ParsedTransaction, string, bool) {
	if isBlankRow(row.fields) || isSummaryRow(row.fields, layout) {
		return ParsedTransaction{}, "", false
	}

	description := strings.TrimSpace(field(row.fields, layout.description))

	rawDate := strings.TrimSpace(field(row.fields, layout.date))
	date, err := parseStatementDate(rawDate)
	if err != nil {
		return ParsedTransaction{}, fmt.Sprintf("line %d: invalid date %q", row.line, rawDate), false
	}

	rawAmount := strings.TrimSpace(field(row.fields, layout.amount))
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return ParsedTransaction{}, fmt.Sprintf("line %d: invalid amount %q", row.line, rawAmount), false
	}
	if amount.IsZero() {
		return ParsedTransaction{}, "", false
	}

	txn := ParsedTransaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		CheckNumber: extractCheckNumber(description),
		IsDebit:     amount.IsNegative(),
	}

	if layout.balance >= 0 {
		if balance, err := parseAmount(field(row.fields, layout.balance)); err == nil {
			txn.RunningBalance = decimal.NullDecimal{Decimal: balance, Valid: true}
		}
	}

	classification := Classify(description, amount)
	txn.Category = classification.Category
	txn.ExtractedVendorName = classification.ExtractedVendorName
	txn.Fingerprint = TransactionHash(txn)

	return txn, "", true
}

func summarize(txns []ParsedTransaction) (Stats, *civil.Date, *civil.Date) {
	stats := Stats{Total: len(txns)}
	var start, end *civil.Date
	for i := range txns {
		txn := &txns[i]
		if txn.IsDebit {
			stats.Debits++
		} else {
			stats.Credits++
		}
		if txn.Category.IsCheck() {
			stats.Checks++
		}
		if start == nil || txn.Date.Before(*start) {
			d := txn.Date
			start = &d
		}
		if end == nil || txn.Date.After(*end) {
			d := txn.Date
			end = &d
		}
	}
	return stats, start, end
}

func extractCheckNumber(description string) *string {
	for _, pattern := range checkNumberPatterns {
		if m := pattern.FindStringSubmatch(description); m != nil {
			number := m[1]
			return &number
		}
	}
	return nil
}

func parseStatementDate(s string) (civil.Date, error) {
	t, err := time.Parse(statementDateLayout, s)
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}

// parseAmount converts strings like "$1,234.56", "-450.00" or "(450.00)" to a decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "").Replace(s)
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return decimal.Zero, errors.New("empty amount")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func isSummaryRow(fields []string, layout *columnLayout) bool {
	description := strings.ToLower(field(fields, layout.description))
	leading := strings.ToLower(field(fields, 0))
	for _, marker := range summaryRowMarkers {
		if strings.Contains(description, marker) || strings.Contains(leading, marker) {
			return true
		}
	}
	return false
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
