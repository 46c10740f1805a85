// Package timeseries stacks the per-device CSV objects under a bucket prefix
// into one time-indexed table.
package timeseries

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Table is a set of CSV files stacked row-wise. The first CSV column becomes
// the Index; Columns names the remaining columns and every Rows entry holds
// exactly len(Columns) cells.
type Table struct {
	IndexName string
	Columns   []string
	Index     []time.Time
	Rows      [][]string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Index)
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns every cell of the named column in row order.
func (t *Table) Column(name string) ([]string, error) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil, eris.Errorf("timeseries: no column %q", name)
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Float parses the cell at row, col as a float. ok is false for empty cells
// and the usual NaN spellings.
func (t *Table) Float(row, col int) (v float64, ok bool, err error) {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Columns) {
		return 0, false, eris.Errorf("timeseries: cell %d,%d out of range", row, col)
	}
	cell := strings.TrimSpace(t.Rows[row][col])
	switch strings.ToLower(cell) {
	case "", "nan", "null", "none":
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false, eris.Wrapf(err, "timeseries: cell %d,%d", row, col)
	}
	return v, true, nil
}

// WriteCSV renders the table with its index column first, timestamps in RFC 3339.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{t.IndexName}, t.Columns...)); err != nil {
		return eris.Wrap(err, "timeseries: write header")
	}
	for i, ts := range t.Index {
		record := append([]string{ts.Format(time.RFC3339)}, t.Rows[i]...)
		if err := cw.Write(record); err != nil {
			return eris.Wrapf(err, "timeseries: write row %d", i)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "timeseries: flush")
	}
	return nil
}
