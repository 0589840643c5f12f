package services

import "github.com/Joshua-Peter7/reconsys/internal/utils/normalization"

// RowSource decodes raw file bytes into a finite sequence of key/value rows.
// Byte-level format handling (CSV, Excel, ...) lives behind this port; the
// ingestion pipeline only ever sees rows.
type RowSource interface {
	// Rows decodes the whole file.
	Rows(fileName string, data []byte) ([]normalization.RawRow, error)

	// Preview decodes at most limit rows plus the header, for mapping setup.
	Preview(fileName string, data []byte, limit int) (headers []string, rows []normalization.RawRow, err error)
}
