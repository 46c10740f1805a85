package timeseries

import (
	"context"
	"path"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fieldobs-cli/internal/blobstore"
)

// Devices returns the distinct device names stored under
// <siteID>/<fieldIndex>/<kind>/, e.g. the soil sensors of ki_0. A name is the
// path segment directly below the kind, with a ".csv" suffix dropped when the
// device is stored as a single file. Names keep first-seen listing order.
func Devices(ctx context.Context, s blobstore.Store, siteID, fieldIndex, kind string) ([]string, error) {
	prefix := path.Join(siteID, fieldIndex, kind) + "/"
	keys, err := blobstore.ListKeys(ctx, s, prefix)
	if err != nil {
		return nil, eris.Wrapf(err, "timeseries: list devices under %q", prefix)
	}

	seen := map[string]bool{}
	devices := []string{}
	for _, k := range keys {
		rest := strings.TrimPrefix(k, prefix)
		name, _, nested := strings.Cut(rest, "/")
		if !nested {
			name = strings.TrimSuffix(name, ".csv")
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		devices = append(devices, name)
	}
	return devices, nil
}
