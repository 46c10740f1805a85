// Package fieldmeta looks up field and site metadata in the bucket's shared
// GeoJSON documents.
package fieldmeta

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/fieldobs-cli/internal/blobstore"
	"github.com/sells-group/fieldobs-cli/internal/fetcher"
)

const (
	DefaultBlocksKey = "fieldobs_blocks_translated.geojson"
	DefaultSitesKey  = "fieldobs_sites_translated.geojson"
)

var (
	// ErrNotFound is returned when no feature carries the requested id.
	ErrNotFound = eris.New("fieldmeta: field not found")
	// ErrMalformed is returned for features without an id or geometry.
	ErrMalformed = eris.New("fieldmeta: malformed geojson")
)

type document struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

func (f feature) str(name string) string {
	s, _ := f.Properties[name].(string)
	return s
}

func (f feature) id() (string, error) {
	id, ok := f.Properties["id"].(string)
	if !ok || id == "" {
		return "", eris.Wrap(ErrMalformed, "feature without properties.id")
	}
	return id, nil
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithBlocksKey overrides the key of the field block document.
func WithBlocksKey(key string) Option {
	return func(c *Catalog) {
		if key != "" {
			c.blocksKey = key
		}
	}
}

// WithSitesKey overrides the key of the site document.
func WithSitesKey(key string) Option {
	return func(c *Catalog) {
		if key != "" {
			c.sitesKey = key
		}
	}
}

// Catalog reads the block and site documents on every call.
type Catalog struct {
	store     blobstore.Store
	blocksKey string
	sitesKey  string
}

// NewCatalog creates a Catalog reading from store.
func NewCatalog(store blobstore.Store, opts ...Option) *Catalog {
	c := &Catalog{store: store, blocksKey: DefaultBlocksKey, sitesKey: DefaultSitesKey}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) load(ctx context.Context, key string) (*document, error) {
	doc, err := fetcher.FetchJSON[document](ctx, c.store, key)
	if err != nil {
		return nil, eris.Wrapf(err, "fieldmeta: load %s", key)
	}
	return doc, nil
}

// Boundary returns the first block feature whose properties.id equals fieldID.
func (c *Catalog) Boundary(ctx context.Context, fieldID string) (*Boundary, error) {
	doc, err := c.load(ctx, c.blocksKey)
	if err != nil {
		return nil, err
	}
	for i, f := range doc.Features {
		id, err := f.id()
		if err != nil {
			return nil, eris.Wrapf(err, "%s feature %d", c.blocksKey, i)
		}
		if id != fieldID {
			continue
		}
		g, err := decodeGeometry(f.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "%s feature %q", c.blocksKey, id)
		}
		return &Boundary{ID: id, Geometry: g, Properties: f.Properties}, nil
	}
	return nil, eris.Wrapf(ErrNotFound, "field %q", fieldID)
}

// Geometry returns the geometry of fieldID's boundary.
func (c *Catalog) Geometry(ctx context.Context, fieldID string) (geom.T, error) {
	b, err := c.Boundary(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return b.Geometry, nil
}

// Sites returns the id of every site feature, optionally only those whose
// site_type is one of siteTypes.
func (c *Catalog) Sites(ctx context.Context, siteTypes ...string) ([]string, error) {
	doc, err := c.load(ctx, c.sitesKey)
	if err != nil {
		return nil, err
	}
	sites := []string{}
	for i, f := range doc.Features {
		id, err := f.id()
		if err != nil {
			return nil, eris.Wrapf(err, "%s feature %d", c.sitesKey, i)
		}
		if len(siteTypes) > 0 && !slices.Contains(siteTypes, f.str("site_type")) {
			continue
		}
		sites = append(sites, id)
	}
	return sites, nil
}

// SiteTypes returns the site_type of every site feature in document order.
// Duplicates are kept.
func (c *Catalog) SiteTypes(ctx context.Context) ([]string, error) {
	doc, err := c.load(ctx, c.sitesKey)
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(doc.Features))
	for _, f := range doc.Features {
		types = append(types, f.str("site_type"))
	}
	return types, nil
}

// Filter selects block features by site or site type. A feature passes when
// it matches either list; an empty Filter passes everything.
type Filter struct {
	Sites     []string
	SiteTypes []string
}

func (f Filter) match(feat feature) bool {
	if len(f.Sites) == 0 && len(f.SiteTypes) == 0 {
		return true
	}
	return slices.Contains(f.Sites, feat.str("site")) || slices.Contains(f.SiteTypes, feat.str("site_type"))
}

// Fields returns the id of every block feature passing filter.
func (c *Catalog) Fields(ctx context.Context, filter Filter) ([]string, error) {
	doc, err := c.load(ctx, c.blocksKey)
	if err != nil {
		return nil, err
	}
	fields := []string{}
	for i, f := range doc.Features {
		if !filter.match(f) {
			continue
		}
		id, err := f.id()
		if err != nil {
			return nil, eris.Wrapf(err, "%s feature %d", c.blocksKey, i)
		}
		fields = append(fields, id)
	}
	return fields, nil
}

func decodeGeometry(raw json.RawMessage) (geom.T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, eris.Wrap(ErrMalformed, "feature without geometry")
	}
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return nil, eris.Wrapf(ErrMalformed, "geometry: %v", err)
	}
	return g, nil
}
