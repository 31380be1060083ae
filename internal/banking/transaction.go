package banking

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Category is the semantic classification of a statement line.
type Category string

const (
	CategoryCheck        Category = "check"
	CategoryBillPayCheck Category = "bill_pay_check"
	CategoryBillPay      Category = "bill_pay"
	CategoryACHAutopay   Category = "ach_autopay"
	CategoryWire         Category = "wire"
	CategoryTransfer     Category = "transfer"
	CategoryCreditCard   Category = "credit_card"
	CategoryNoise        Category = "noise"
	CategoryOther        Category = "other"
)

// IsCheck reports whether the category represents a paper or bill-pay check.
func (c Category) IsCheck() bool {
	return c == CategoryCheck || c == CategoryBillPayCheck
}

// AccountType is the kind of account a statement was exported from.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
)

// ParsedTransaction is one transaction line of a statement.
type ParsedTransaction struct {
	Date                civil.Date
	Description         string
	Amount              decimal.Decimal // negative for money out
	CheckNumber         *string
	RunningBalance      decimal.NullDecimal
	Category            Category
	ExtractedVendorName *string
	IsDebit             bool
	Fingerprint         string
}

// Stats holds aggregate counts for a parsed statement.
type Stats struct {
	Total   int
	Debits  int
	Credits int
	Checks  int
}

// ParseResult is the output of parsing one statement.
// Errors may be non-empty even when transactions were recovered.
type ParseResult struct {
	Transactions   []ParsedTransaction
	Errors         []string
	DateRangeStart *civil.Date
	DateRangeEnd   *civil.Date
	Stats          Stats
	AccountType    *AccountType
}
