package banking

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const fingerprintLength = 8

// TransactionHash returns a short deterministic fingerprint over the date,
// description, amount and check number of a transaction.
func TransactionHash(txn ParsedTransaction) string {
	checkNumber := ""
	if txn.CheckNumber != nil {
		checkNumber = *txn.CheckNumber
	}

	input := strings.Join([]string{
		txn.Date.String(),
		txn.Description,
		txn.Amount.StringFixed(2),
		checkNumber,
	}, "|")

	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
