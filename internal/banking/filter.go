package banking

import (
	"regexp"
)

var matchableCategories = map[Category]bool{
	CategoryCheck:        true,
	CategoryBillPay:      true,
	CategoryBillPayCheck: true,
	CategoryACHAutopay:   true,
}

// nonBillPatterns catch debits the classifier leaves in bill-like categories
// but which are never bill payments.
var nonBillPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpayroll\b`),
	regexp.MustCompile(`(?i)\bATM\b.*\bwithdr(?:awal|wl)\b|\bwithdr(?:awal|wl)\b.*\bATM\b`),
	regexp.MustCompile(`(?i)\bonline banking transfer\b|\binternal transfer\b|\btransfer (?:to|from) (?:chk|sav|checking|savings)\b`),
	regexp.MustCompile(`(?i)\bvenmo\b.*\bcashout\b`),
	regexp.MustCompile(`(?i)\bzelle\b.*\b(?:received|from)\b`),
	regexp.MustCompile(`(?i)\binterest (?:payment|credit|earned|paid)\b`),
}

// NonBillFilterResult splits debits into possible bill payments and known noise.
type NonBillFilterResult struct {
	Potential []ParsedTransaction
	Filtered  []ParsedTransaction
}

// MatchableTransactions keeps the debits whose category can represent a bill payment.
func MatchableTransactions(txns []ParsedTransaction) []ParsedTransaction {
	matchable := make([]ParsedTransaction, 0, len(txns))
	for _, txn := range txns {
		if txn.IsDebit && matchableCategories[txn.Category] {
			matchable = append(matchable, txn)
		}
	}
	return matchable
}

// FilterNonBillTransactions removes payroll, ATM, internal transfer, peer
// payment cashouts and interest lines from a debit set. Credits are always
// filtered.
func FilterNonBillTransactions(txns []ParsedTransaction) NonBillFilterResult {
	result := NonBillFilterResult{
		Potential: []ParsedTransaction{},
		Filtered:  []ParsedTransaction{},
	}
	for _, txn := range txns {
		if !txn.IsDebit || isNonBill(txn.Description) {
			result.Filtered = append(result.Filtered, txn)
			continue
		}
		result.Potential = append(result.Potential, txn)
	}
	return result
}

func isNonBill(description string) bool {
	for _, pattern := range nonBillPatterns {
		if pattern.MatchString(description) {
			return true
		}
	}
	return false
}
