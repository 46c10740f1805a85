package fetcher

import (
	"bytes"
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fieldobs-cli/internal/blobstore"
)

// FetchJSON downloads key and decodes it as a JSON object of type T.
func FetchJSON[T any](ctx context.Context, s blobstore.Store, key string) (*T, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	obj, err := DecodeJSONObject[T](bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch %s", key)
	}
	return obj, nil
}

// FetchCSV downloads key and parses it with opts.
func FetchCSV(ctx context.Context, s blobstore.Store, key string, opts CSVOptions) ([]string, [][]string, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	header, rows, err := ReadCSV(bytes.NewReader(data), opts)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "fetch %s", key)
	}
	return header, rows, nil
}
