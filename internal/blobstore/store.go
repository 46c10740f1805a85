// Package blobstore provides read-only access to the Field Observatory object storage bucket.
package blobstore

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = eris.New("blobstore: object not found")

// Object describes one listed object.
type Object struct {
	Key          string    `json:"key" yaml:"key"`
	Size         int64     `json:"size" yaml:"size"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
}

// Store is the read-only contract every backend implements.
type Store interface {
	// List returns every object whose key starts with prefix, in key order.
	// Multi-page listings are walked internally.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Get returns the full content of the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// URL returns the public URL of the object stored under key.
	URL(key string) string
}

// ListKeys returns the bare keys of every object under prefix.
func ListKeys(ctx context.Context, s Store, prefix string) ([]string, error) {
	objs, err := s.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		keys = append(keys, o.Key)
	}
	return keys, nil
}

// ListURLs returns the public URL of every object under prefix.
func ListURLs(ctx context.Context, s Store, prefix string) ([]string, error) {
	objs, err := s.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(objs))
	for _, o := range objs {
		urls = append(urls, s.URL(o.Key))
	}
	return urls, nil
}

// Exists reports whether key appears in the listing under prefix.
func Exists(ctx context.Context, s Store, prefix, key string) (bool, error) {
	keys, err := ListKeys(ctx, s, prefix)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}

// FieldPrefix converts a field identifier such as "ki_0" into its storage
// prefix ("ki/0"). Identifiers are not validated.
func FieldPrefix(fieldID string) string {
	return strings.ReplaceAll(fieldID, "_", "/")
}
