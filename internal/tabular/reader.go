// Package tabular streams header-keyed records out of RFC 4180 CSV files.
// It does no type coercion: every field is a trimmed string, and columns
// absent from the file read back as empty strings. Callers that need
// numbers parse them at the point of use.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Record is a single CSV row keyed by header name.
type Record struct {
	columns map[string]int
	fields  []string
}

// Get returns the trimmed value of the named column, or "" when the column
// does not exist in the file.
func (r Record) Get(name string) string {
	idx, ok := r.columns[name]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

// Reader yields the records of one CSV file lazily.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
}

// NewReader wraps r and consumes the mandatory header row. A file with no
// header (empty input) is an error.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	// Feeds routinely have ragged rows; downstream treats missing fields
	// as empty rather than failing the load.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("tabular: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		// Strip a UTF-8 BOM that some feed exporters prepend.
		name = strings.TrimPrefix(name, "\ufeff")
		columns[name] = i
	}

	return &Reader{csv: cr, columns: columns}, nil
}

// Next returns the next record, or io.EOF when the file is exhausted.
// Empty lines are skipped.
func (r *Reader) Next() (Record, error) {
	for {
		row, err := r.csv.Read()
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, fmt.Errorf("tabular: reading row: %w", err)
		}

		fields := make([]string, len(row))
		empty := true
		for i, f := range row {
			fields[i] = strings.TrimSpace(f)
			if fields[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}

		return Record{columns: r.columns, fields: fields}, nil
	}
}

// Each invokes fn for every record until EOF or the first error.
func (r *Reader) Each(fn func(Record) error) error {
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
