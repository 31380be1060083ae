package banking

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Confidence values per matching rule, highest first.
const (
	ConfidenceCheckNumberAndAmount    = 0.98
	ConfidenceCheckNumber             = 0.95
	ConfidenceVendorAndAmount         = 0.90
	ConfidenceAmountAndDate           = 0.85
	ConfidenceAmountAndVendorContains = 0.75
	ConfidenceApproxAmountAndVendor   = 0.60
	ConfidenceManual                  = 1.0
)

const (
	DefaultAutoConfirmThreshold = 0.90
	DefaultDateWindowDays       = 21
)

// DefaultAmountTolerance is the relative difference allowed by the approximate amount rule.
var DefaultAmountTolerance = decimal.RequireFromString("0.10")

// BillStatus is the lifecycle state of a bill.
type BillStatus string

const (
	BillStatusSent      BillStatus = "sent"
	BillStatusConfirmed BillStatus = "confirmed"
)

// MatchMethod names the rule that produced a match.
type MatchMethod string

const (
	MatchMethodCheckNumberAndAmount    MatchMethod = "check_number_amount"
	MatchMethodCheckNumber             MatchMethod = "check_number"
	MatchMethodVendorAndAmount         MatchMethod = "vendor_amount"
	MatchMethodAmountAndDate           MatchMethod = "amount_date"
	MatchMethodAmountAndVendorContains MatchMethod = "amount_vendor_contains"
	MatchMethodApproxAmountAndVendor   MatchMethod = "approx_amount_vendor"
	MatchMethodManual                  MatchMethod = "manual"
)

// Bill is an outstanding obligation awaiting confirmation of payment.
type Bill struct {
	ID          uuid.UUID
	Description string
	Amount      decimal.NullDecimal
	DueDate     *civil.Date
	PaymentDate *civil.Date
	VendorName  *string
	CheckNumber *string
	Status      BillStatus
}

// MatchCandidate is one scored transaction/bill pairing.
type MatchCandidate struct {
	Bill       Bill
	Confidence float64
	Method     MatchMethod
	Reason     string
}

// MatchResult holds every candidate for one transaction, best first.
type MatchResult struct {
	Transaction ParsedTransaction
	Matches     []MatchCandidate
	BestMatch   *MatchCandidate
	AutoConfirm bool
}

// BillSource supplies the bills currently awaiting confirmation.
type BillSource interface {
	ListOutstandingBills(ctx context.Context) ([]Bill, error)
}

// MatcherConfig holds the tunables of the matcher.
type MatcherConfig struct {
	AutoConfirmThreshold float64
	DateWindowDays       int
	AmountTolerance      decimal.Decimal
}

// DefaultMatcherConfig returns the calibrated defaults.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		AutoConfirmThreshold: DefaultAutoConfirmThreshold,
		DateWindowDays:       DefaultDateWindowDays,
		AmountTolerance:      DefaultAmountTolerance,
	}
}

// Matcher scores transactions against outstanding bills.
type Matcher struct {
	config MatcherConfig
	bills  BillSource
}

// NewMatcher creates a Matcher reading bills from source.
func NewMatcher(config MatcherConfig, source BillSource) *Matcher {
	return &Matcher{
		config: config,
		bills:  source,
	}
}

// MatchTransactionsToBills reads the outstanding bills once and returns one
// result per transaction, in input order.
func (m *Matcher) MatchTransactionsToBills(ctx context.Context, txns []ParsedTransaction) ([]MatchResult, error) {
	bills, err := m.bills.ListOutstandingBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list outstanding bills: %w", err)
	}

	results := make([]MatchResult, len(txns))
	for i, txn := range txns {
		results[i] = m.MatchTransaction(txn, bills)
	}
	return results, nil
}

// MatchTransaction scores a single transaction against a bill snapshot.
func (m *Matcher) MatchTransaction(txn ParsedTransaction, bills []Bill) MatchResult {
	result := MatchResult{
		Transaction: txn,
		Matches:     []MatchCandidate{},
	}

	for _, bill := range bills {
		if candidate, ok := m.score(txn, bill); ok {
			result.Matches = append(result.Matches, candidate)
		}
	}

	// Equal confidence goes to the bill due closest to the transaction date.
	sort.SliceStable(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		da, db := billDistance(txn.Date, a.Bill), billDistance(txn.Date, b.Bill)
		if da != db {
			return da < db
		}
		return a.Bill.ID.String() < b.Bill.ID.String()
	})

	if len(result.Matches) > 0 {
		best := result.Matches[0]
		result.BestMatch = &best
		result.AutoConfirm = best.Confidence >= m.config.AutoConfirmThreshold
	}
	return result
}

// score applies the rules in descending confidence order and reports the
// first one that fires.
func (m *Matcher) score(txn ParsedTransaction, bill Bill) (MatchCandidate, bool) {
	amount := txn.Amount.Abs()
	exactAmount := bill.Amount.Valid && amount.Equal(bill.Amount.Decimal.Abs())
	checkMatch := sameCheckNumber(txn.CheckNumber, bill.CheckNumber)
	vendor := normalizeName(deref(txn.ExtractedVendorName))

	candidate := MatchCandidate{Bill: bill}
	switch {
	case checkMatch && exactAmount:
		candidate.Confidence = ConfidenceCheckNumberAndAmount
		candidate.Method = MatchMethodCheckNumberAndAmount
		candidate.Reason = fmt.Sprintf("Check #%s and amount $%s match", *txn.CheckNumber, amount.StringFixed(2))
	case checkMatch:
		candidate.Confidence = ConfidenceCheckNumber
		candidate.Method = MatchMethodCheckNumber
		candidate.Reason = fmt.Sprintf("Check #%s matches", *txn.CheckNumber)
	case exactAmount && vendor != "" && vendor == normalizeName(deref(bill.VendorName)):
		candidate.Confidence = ConfidenceVendorAndAmount
		candidate.Method = MatchMethodVendorAndAmount
		candidate.Reason = fmt.Sprintf("Vendor %q and amount $%s match", *txn.ExtractedVendorName, amount.StringFixed(2))
	case exactAmount && m.withinDateWindow(txn.Date, bill):
		candidate.Confidence = ConfidenceAmountAndDate
		candidate.Method = MatchMethodAmountAndDate
		candidate.Reason = fmt.Sprintf("Amount $%s matches within %d days of the bill date", amount.StringFixed(2), m.config.DateWindowDays)
	case exactAmount && vendorMentioned(vendor, bill):
		candidate.Confidence = ConfidenceAmountAndVendorContains
		candidate.Method = MatchMethodAmountAndVendorContains
		candidate.Reason = fmt.Sprintf("Amount $%s matches and vendor %q appears in the bill", amount.StringFixed(2), *txn.ExtractedVendorName)
	case m.approximateAmount(amount, bill) && vendorMentioned(vendor, bill):
		candidate.Confidence = ConfidenceApproxAmountAndVendor
		candidate.Method = MatchMethodApproxAmountAndVendor
		candidate.Reason = fmt.Sprintf("Amount $%s is close to $%s and vendor %q appears in the bill",
			amount.StringFixed(2), bill.Amount.Decimal.Abs().StringFixed(2), *txn.ExtractedVendorName)
	default:
		return MatchCandidate{}, false
	}
	return candidate, true
}

func (m *Matcher) withinDateWindow(date civil.Date, bill Bill) bool {
	for _, billDate := range []*civil.Date{bill.DueDate, bill.PaymentDate} {
		if billDate == nil {
			continue
		}
		if absDays(date.DaysSince(*billDate)) <= m.config.DateWindowDays {
			return true
		}
	}
	return false
}

func (m *Matcher) approximateAmount(amount decimal.Decimal, bill Bill) bool {
	if !bill.Amount.Valid || bill.Amount.Decimal.IsZero() {
		return false
	}
	billAmount := bill.Amount.Decimal.Abs()
	return amount.Sub(billAmount).Abs().LessThanOrEqual(billAmount.Mul(m.config.AmountTolerance))
}

func vendorMentioned(vendor string, bill Bill) bool {
	if vendor == "" {
		return false
	}
	for _, text := range []string{bill.Description, deref(bill.VendorName)} {
		name := normalizeName(text)
		if name == "" {
			continue
		}
		if strings.Contains(name, vendor) || strings.Contains(vendor, name) {
			return true
		}
	}
	return false
}

func sameCheckNumber(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	x := strings.TrimLeft(strings.TrimSpace(*a), "0")
	y := strings.TrimLeft(strings.TrimSpace(*b), "0")
	return x != "" && x == y
}

// billDistance is the day distance between a transaction and the bill's due
// date, falling back to the payment date. Undated bills sort last.
func billDistance(date civil.Date, bill Bill) int {
	const undated = int(^uint(0) >> 1)
	switch {
	case bill.DueDate != nil:
		return absDays(date.DaysSince(*bill.DueDate))
	case bill.PaymentDate != nil:
		return absDays(date.DaysSince(*bill.PaymentDate))
	default:
		return undated
	}
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func absDays(d int) int {
	if d < 0 {
		return -d
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
