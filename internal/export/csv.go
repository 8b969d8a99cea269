// ABOUTME: CSV writer for tables
// ABOUTME: Adds a UTF-8 BOM on request so spreadsheet tools keep accents intact

package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

const utf8BOM = "\ufeff"

// CSVOptions tunes WriteCSV
type CSVOptions struct {
	// Comma defaults to ';', the separator French spreadsheets expect
	Comma rune
	BOM   bool
}

// WriteCSV writes t with a header row
func WriteCSV(w io.Writer, t Table, opts CSVOptions) error {
	if opts.BOM {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}

	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}
