package fieldmeta

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// srid of every geometry in the bucket's GeoJSON documents (WGS 84).
const srid = 4326

// Boundary is one block feature of the field GeoJSON.
type Boundary struct {
	ID         string
	Geometry   geom.T
	Properties map[string]any
}

// Feature returns b as a GeoJSON feature carrying its bounding box.
func (b *Boundary) Feature() *geojson.Feature {
	return &geojson.Feature{
		ID:         b.ID,
		BBox:       b.Geometry.Bounds(),
		Geometry:   b.Geometry,
		Properties: b.Properties,
	}
}

// EWKB encodes the boundary geometry as little-endian EWKB tagged with SRID 4326.
func (b *Boundary) EWKB() ([]byte, error) {
	g, err := withSRID(b.Geometry)
	if err != nil {
		return nil, err
	}
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrapf(err, "fieldmeta: encode %s as EWKB", b.ID)
	}
	return data, nil
}

// withSRID returns a copy of g tagged with srid; g itself is not modified.
func withSRID(g geom.T) (geom.T, error) {
	switch g := g.(type) {
	case *geom.Point:
		return g.Clone().SetSRID(srid), nil
	case *geom.LineString:
		return g.Clone().SetSRID(srid), nil
	case *geom.Polygon:
		return g.Clone().SetSRID(srid), nil
	case *geom.MultiPoint:
		return g.Clone().SetSRID(srid), nil
	case *geom.MultiLineString:
		return g.Clone().SetSRID(srid), nil
	case *geom.MultiPolygon:
		return g.Clone().SetSRID(srid), nil
	case *geom.GeometryCollection:
		return g.Clone().SetSRID(srid), nil
	default:
		return nil, eris.Errorf("fieldmeta: unsupported geometry %T", g)
	}
}
