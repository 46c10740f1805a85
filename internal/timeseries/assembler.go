package timeseries

import (
	"context"
	"path"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fieldobs-cli/internal/blobstore"
	"github.com/sells-group/fieldobs-cli/internal/fetcher"
)

var (
	// ErrNoFiles is returned when a prefix holds no CSV objects.
	ErrNoFiles = eris.New("timeseries: no csv files under prefix")
	// ErrSchemaMismatch is returned when stacked files disagree on their header.
	ErrSchemaMismatch = eris.New("timeseries: csv headers differ")
	// ErrMalformed is returned for ragged rows and unparsable timestamps.
	ErrMalformed = eris.New("timeseries: malformed csv")
)

// Assembler reads timeseries CSVs from a Store.
type Assembler struct {
	store blobstore.Store
}

// NewAssembler creates an Assembler reading from store.
func NewAssembler(store blobstore.Store) *Assembler {
	return &Assembler{store: store}
}

// CSVKeys returns the keys under prefix ending in ".csv", in listing order.
func CSVKeys(ctx context.Context, s blobstore.Store, prefix string) ([]string, error) {
	keys, err := blobstore.ListKeys(ctx, s, prefix)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, k := range keys {
		if strings.HasSuffix(k, ".csv") {
			out = append(out, k)
		}
	}
	return out, nil
}

// Fetch stacks every CSV object under prefix. Rows keep file order, then
// row order within each file; nothing is sorted or deduplicated.
func (a *Assembler) Fetch(ctx context.Context, prefix string) (*Table, error) {
	keys, err := CSVKeys(ctx, a.store, prefix)
	if err != nil {
		return nil, eris.Wrapf(err, "timeseries: list %q", prefix)
	}
	if len(keys) == 0 {
		return nil, eris.Wrapf(ErrNoFiles, "prefix %q", prefix)
	}

	var (
		t      *Table
		header []string
	)
	for _, key := range keys {
		h, rows, err := fetcher.FetchCSV(ctx, a.store, key, fetcher.CSVOptions{HasHeader: true})
		if err != nil {
			return nil, eris.Wrapf(err, "timeseries: read %s", key)
		}
		if len(h) == 0 {
			return nil, eris.Wrapf(ErrMalformed, "%s: missing header", key)
		}

		if t == nil {
			header = h
			t = &Table{IndexName: h[0], Columns: slices.Clone(h[1:])}
		} else if !slices.Equal(header, h) {
			return nil, eris.Wrapf(ErrSchemaMismatch, "%s: header %v, want %v", key, h, header)
		}

		for i, row := range rows {
			if len(row) != len(header) {
				return nil, eris.Wrapf(ErrMalformed, "%s row %d: %d fields, want %d", key, i+1, len(row), len(header))
			}
			ts, err := fetcher.ParseTimestamp(row[0])
			if err != nil {
				return nil, eris.Wrapf(ErrMalformed, "%s row %d: %v", key, i+1, err)
			}
			t.Index = append(t.Index, ts)
			t.Rows = append(t.Rows, row[1:])
		}
		zap.L().Debug("timeseries: stacked csv", zap.String("key", key), zap.Int("rows", len(rows)))
	}
	return t, nil
}

// FetchField stacks the dataType CSVs of one field, e.g. ("ki_0", "soil_sensors").
func (a *Assembler) FetchField(ctx context.Context, fieldID, dataType string) (*Table, error) {
	return a.Fetch(ctx, path.Join(blobstore.FieldPrefix(fieldID), dataType))
}

// FetchSite stacks the dataType CSVs of a whole site, e.g. ("qvidja", "ec").
func (a *Assembler) FetchSite(ctx context.Context, siteID, dataType string) (*Table, error) {
	return a.Fetch(ctx, path.Join(siteID, dataType))
}
