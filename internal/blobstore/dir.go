package blobstore

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fieldobs-cli/internal/metrics"
)

// DirStore serves a local directory laid out like the bucket, e.g. a mirror
// made with `aws s3 sync --no-sign-request`.
type DirStore struct {
	root string
}

var _ Store = (*DirStore)(nil)

// NewDir creates a DirStore rooted at root.
func NewDir(root string) *DirStore {
	return &DirStore{root: root}
}

// List returns every regular file whose slash-separated relative path starts with prefix.
func (d *DirStore) List(ctx context.Context, prefix string) ([]Object, error) {
	var objs []Object
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		objs = append(objs, Object{Key: key, Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	if err != nil {
		metrics.ObserveBlob("list", metrics.OutcomeError)
		return nil, eris.Wrapf(err, "blobstore: list %q under %s", prefix, d.root)
	}
	metrics.ObserveBlob("list", metrics.OutcomeOK)

	sort.Slice(objs, func(i, j int) bool { return objs[i].Key < objs[j].Key })
	return objs, nil
}

// Get reads the file stored under key.
func (d *DirStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := d.resolve(key)
	if err != nil {
		metrics.ObserveBlob("get", metrics.OutcomeError)
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			metrics.ObserveBlob("get", metrics.OutcomeNotFound)
			return nil, eris.Wrapf(ErrNotFound, "blobstore: get %q", key)
		}
		metrics.ObserveBlob("get", metrics.OutcomeError)
		return nil, eris.Wrapf(err, "blobstore: get %q", key)
	}
	metrics.ObserveBlob("get", metrics.OutcomeOK)
	return data, nil
}

// URL returns a file:// URL for key.
func (d *DirStore) URL(key string) string {
	root, err := filepath.Abs(d.root)
	if err != nil {
		root = d.root
	}
	return "file://" + filepath.ToSlash(filepath.Join(root, filepath.FromSlash(key)))
}

// resolve maps key onto the filesystem, refusing keys that escape the root.
func (d *DirStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", eris.Errorf("blobstore: invalid key %q", key)
	}
	return filepath.Join(d.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
