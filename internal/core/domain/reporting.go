package domain

// ReconciliationStats aggregates result statuses for a run or a set of jobs.
// Accuracy is (matched + partially matched) / total * 100 rounded to two
// decimals, and zero when there are no results.
type ReconciliationStats struct {
	Total            int     `json:"total"`
	Matched          int     `json:"matched"`
	PartiallyMatched int     `json:"partiallyMatched"`
	NotMatched       int     `json:"notMatched"`
	Duplicates       int     `json:"duplicates"`
	Accuracy         float64 `json:"accuracy"`
}
