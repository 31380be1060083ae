package banking

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Classification is the classifier output for one description.
type Classification struct {
	Category            Category
	ExtractedVendorName *string
}

type classificationRule struct {
	category Category
	matches  func(description, upper string) bool
	vendor   func(description string) *string
}

var (
	plainCheckPattern      = regexp.MustCompile(`(?i)^check\s+\d+$`)
	billPayCheckPattern    = regexp.MustCompile(`(?i)^bill\s+pay\s+check\s+(\d+):\s*(.*)$`)
	billPaymentPattern     = regexp.MustCompile(`(?i)^(.+?)\s+bill\s+payment\b`)
	associationNamePattern = regexp.MustCompile(`(?i)^(.*?\b(?:condominium|condo|hoa))\b`)

	wireMarkers       = []string{"WIRE TYPE", "WIRE TRANSFER", "FEDWIRE", "WIRE OUT", "WIRE IN"}
	creditCardMarkers = []string{"APPLECARD", "GSBANK PAYMENT", "AMEX EPAYMENT", "CHASE CREDIT CRD", "CITI CARD", "CAPITAL ONE", "DISCOVER E-PAYMENT", "BARCLAYCARD"}
	noiseMarkers      = []string{"PAYPAL", "VENMO", "UBER", "LYFT", "ZELLE", "CASH APP", "SQUARE CASH", "DOORDASH", "GRUBHUB"}
)

// classificationRules is evaluated in order; the first matching rule wins.
var classificationRules = []classificationRule{
	{
		category: CategoryCheck,
		matches: func(description, _ string) bool {
			return plainCheckPattern.MatchString(description)
		},
	},
	{
		category: CategoryBillPayCheck,
		matches: func(description, _ string) bool {
			return billPayCheckPattern.MatchString(description)
		},
		vendor: func(description string) *string {
			m := billPayCheckPattern.FindStringSubmatch(description)
			if m == nil {
				return nil
			}
			return nonEmpty(m[2])
		},
	},
	{
		category: CategoryBillPay,
		matches: func(description, _ string) bool {
			return billPaymentPattern.MatchString(description)
		},
		vendor: func(description string) *string {
			m := billPaymentPattern.FindStringSubmatch(description)
			if m == nil {
				return nil
			}
			return nonEmpty(m[1])
		},
	},
	{
		category: CategoryACHAutopay,
		matches: func(description, _ string) bool {
			return strings.Contains(description, "DES:")
		},
		vendor: func(description string) *string {
			idx := strings.Index(description, " DES")
			if idx < 0 {
				idx = strings.Index(description, "DES:")
			}
			return nonEmpty(description[:idx])
		},
	},
	{
		category: CategoryWire,
		matches: func(_, upper string) bool {
			return containsAny(upper, wireMarkers)
		},
	},
	{
		category: CategoryTransfer,
		matches: func(_, upper string) bool {
			return strings.Contains(upper, "TRANSFER")
		},
	},
	{
		category: CategoryCreditCard,
		matches: func(_, upper string) bool {
			return containsAny(upper, creditCardMarkers)
		},
	},
	{
		category: CategoryNoise,
		matches: func(_, upper string) bool {
			return containsAny(upper, noiseMarkers)
		},
	},
}

// Classify assigns a category and a best-effort counterparty name to a
// statement description.
func Classify(description string, amount decimal.Decimal) Classification {
	description = strings.TrimSpace(description)
	upper := strings.ToUpper(description)

	for _, rule := range classificationRules {
		if !rule.matches(description, upper) {
			continue
		}
		c := Classification{Category: rule.category}
		if rule.vendor != nil {
			c.ExtractedVendorName = rule.vendor(description)
		}
		return c
	}

	c := Classification{Category: CategoryOther}
	if m := associationNamePattern.FindStringSubmatch(description); m != nil {
		c.ExtractedVendorName = nonEmpty(m[1])
	}
	return c
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
