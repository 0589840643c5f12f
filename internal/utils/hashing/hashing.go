package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HashBytes returns the hex sha256 fingerprint of raw file bytes. It drives the
// upload deduplication gate: identical bytes hash to the same job.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashNormalizedRow fingerprints a row's canonical form: amounts at two decimal
// places and dates in UTC RFC3339, so the same logical row always hashes
// identically regardless of source formatting.
func HashNormalizedRow(transactionID, referenceNumber string, amount decimal.Decimal, date time.Time) string {
	payload := strings.Join([]string{
		transactionID,
		referenceNumber,
		amount.StringFixed(2),
		date.UTC().Format(time.RFC3339),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
