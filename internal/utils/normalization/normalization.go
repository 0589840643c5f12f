package normalization

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RawRow is one undecoded row from the row source: source header -> cell value.
type RawRow map[string]string

// NormalizedRow is a raw row coerced into the fixed reconciliation schema.
type NormalizedRow struct {
	TransactionID   string
	ReferenceNumber string
	Amount          decimal.Decimal
	Date            time.Time
	RowNumber       int
	RawData         RawRow
}

// dateLayouts are tried in order when coercing the date column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
}

// MissingMappingTargets returns the mandatory matchable fields that the column
// mapping does not cover. Submission must be rejected while this is non-empty.
func MissingMappingTargets(columnMapping map[string]string) []string {
	mapped := make(map[string]bool, len(columnMapping))
	for _, target := range columnMapping {
		mapped[target] = true
	}

	var missing []string
	for _, target := range domain.AllowedMatchFields {
		if !mapped[target] {
			missing = append(missing, target)
		}
	}
	return missing
}

// ParseAmount coerces a cell value into a two-decimal amount. Thousands
// separators are stripped; anything non-numeric is rejected.
func ParseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	return amount.Round(2), nil
}

// ParseDate coerces a cell value into a calendar date using the known layouts.
func ParseDate(value string) (time.Time, error) {
	cleaned := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, cleaned); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// NormalizeRow inverts the column mapping and coerces one raw row. Coercion
// failures are returned as a list of messages; a row with any failure is
// counted failed and excluded, it never aborts the batch.
func NormalizeRow(raw RawRow, columnMapping map[string]string, rowNumber int) (*NormalizedRow, []string) {
	reverse := make(map[string]string, len(columnMapping))
	for sourceColumn, target := range columnMapping {
		reverse[target] = sourceColumn
	}

	transactionID := strings.TrimSpace(raw[reverse[domain.FieldTransactionID]])
	referenceNumber := strings.TrimSpace(raw[reverse[domain.FieldReferenceNumber]])
	amount, amountErr := ParseAmount(raw[reverse[domain.FieldAmount]])
	date, dateErr := ParseDate(raw[reverse[domain.FieldDate]])

	var problems []string
	if transactionID == "" {
		problems = append(problems, "missing transaction id")
	}
	if referenceNumber == "" {
		problems = append(problems, "missing reference number")
	}
	if amountErr != nil {
		problems = append(problems, amountErr.Error())
	}
	if dateErr != nil {
		problems = append(problems, dateErr.Error())
	}
	if len(problems) > 0 {
		return nil, problems
	}

	return &NormalizedRow{
		TransactionID:   transactionID,
		ReferenceNumber: referenceNumber,
		Amount:          amount,
		Date:            date,
		RowNumber:       rowNumber,
		RawData:         raw,
	}, nil
}
