// Package csvsource decodes CSV uploads into raw rows for the ingestion
// pipeline. It is the only place that knows about the byte-level file format.
package csvsource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Joshua-Peter7/reconsys/internal/utils/normalization"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSource reads comma-separated files with a mandatory header row.
type CSVSource struct{}

// New returns a CSV row source.
func New() *CSVSource {
	return &CSVSource{}
}

func newReader(data []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	// Exported files frequently have ragged trailing columns; tolerate them
	// and let per-row normalization decide what is usable.
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r
}

func readHeader(r *csv.Reader, fileName string) ([]string, error) {
	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file %q has no header row", fileName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %q: %w", fileName, err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, nil
}

func toRow(headers, record []string) normalization.RawRow {
	row := make(normalization.RawRow, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(record) {
			row[h] = strings.TrimSpace(record[i])
		} else {
			row[h] = ""
		}
	}
	return row
}

// Rows decodes the whole file into header-keyed rows.
func (s *CSVSource) Rows(fileName string, data []byte) ([]normalization.RawRow, error) {
	rows, _, err := s.read(fileName, data, -1)
	return rows, err
}

// Preview decodes the header and at most limit rows.
func (s *CSVSource) Preview(fileName string, data []byte, limit int) ([]string, []normalization.RawRow, error) {
	rows, headers, err := s.read(fileName, data, limit)
	if err != nil {
		return nil, nil, err
	}
	return headers, rows, nil
}

func (s *CSVSource) read(fileName string, data []byte, limit int) ([]normalization.RawRow, []string, error) {
	r := newReader(data)

	headers, err := readHeader(r, fileName)
	if err != nil {
		return nil, nil, err
	}

	var rows []normalization.RawRow
	for limit < 0 || len(rows) < limit {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, nil, fmt.Errorf("malformed CSV in %q at line %d: %w", fileName, parseErr.Line, parseErr.Err)
			}
			return nil, nil, fmt.Errorf("failed to read %q: %w", fileName, err)
		}
		rows = append(rows, toRow(headers, record))
	}
	return rows, headers, nil
}
