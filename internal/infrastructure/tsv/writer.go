package tsv

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Encode writes rows as a delimited file with the given header.
// Columns missing from a row are written empty.
func Encode(header []string, rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("tsv: write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Values(header)); err != nil {
			return nil, fmt.Errorf("tsv: write line %d: %w", row.Line, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("tsv: flush: %w", err)
	}
	return buf.Bytes(), nil
}
