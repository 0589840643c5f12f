package hashing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHashBytes(t *testing.T) {
	first := HashBytes([]byte("hello"))
	second := HashBytes([]byte("hello"))
	other := HashBytes([]byte("hello!"))

	assert.Equal(t, first, second, "Identical bytes must produce identical hashes")
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64, "Hash should be hex-encoded sha256")
}

func TestHashNormalizedRowCanonicalForm(t *testing.T) {
	date := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	a := HashNormalizedRow("T1", "R1", decimal.RequireFromString("100"), date)
	b := HashNormalizedRow("T1", "R1", decimal.RequireFromString("100.00"), date)
	assert.Equal(t, a, b, "100 and 100.00 are the same canonical amount")

	// Same instant expressed in a different zone hashes identically.
	est := time.FixedZone("EST", -5*60*60)
	c := HashNormalizedRow("T1", "R1", decimal.RequireFromString("100"), date.In(est))
	assert.Equal(t, a, c)

	d := HashNormalizedRow("T2", "R1", decimal.RequireFromString("100"), date)
	assert.NotEqual(t, a, d)
}
