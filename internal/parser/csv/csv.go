// Package csv reads and writes the row sets exchanged by the stepstore CLI.
// Every cell is text; the caller decides how to map cells to store values.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Options configures reading. The zero value reads comma-separated input
// without a header and keeps cells verbatim.
type Options struct {
	// HasHeader treats the first record as column names.
	HasHeader bool

	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims surrounding whitespace from every cell.
	TrimSpace bool

	// ExpectedFields, when > 0, requires every record to have exactly that
	// many cells.
	ExpectedFields int
}

// Table is a decoded CSV document.
type Table struct {
	Header []string
	Rows   [][]string
}

// Read decodes all of r. A BOM on the first cell is stripped. Errors carry
// the 1-based line of the offending record.
func Read(r io.Reader, opt Options) (Table, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.FieldsPerRecord = opt.ExpectedFields
	if opt.ExpectedFields == 0 {
		cr.FieldsPerRecord = -1
	}
	cr.ReuseRecord = false

	var t Table
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("csv: read: %w", err)
		}
		if first {
			rec = StripHeaderBOM(rec)
		}
		if opt.TrimSpace {
			for i := range rec {
				rec[i] = strings.TrimSpace(rec[i])
			}
		}
		if first && opt.HasHeader {
			t.Header = rec
			first = false
			continue
		}
		first = false
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Write encodes header (when non-empty) followed by rows.
func Write(w io.Writer, header []string, rows [][]string, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
	}
	for i, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}
