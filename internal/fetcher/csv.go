// Package fetcher downloads objects from the bucket and parses their CSV and JSON payloads.
package fetcher

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	HasHeader bool // if true, the first row is returned separately as the header
}

// ReadCSV parses every row of r. When opts.HasHeader is set the first row is
// returned as header and excluded from rows. Rows may have differing widths;
// callers that need a rectangular table check widths themselves.
func ReadCSV(r io.Reader, opts CSVOptions) (header []string, rows [][]string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return header, rows, nil
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "csv: read row")
		}

		if first && opts.HasHeader {
			first = false
			header = record
			continue
		}
		first = false
		rows = append(rows, record)
	}
}
