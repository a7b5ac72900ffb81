package feature

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// shapeRecord is one shapefile record: attributes plus converted geometry.
type shapeRecord struct {
	props    props
	geometry geom.T
}

// readShapefile reads every record of the shapefile at shpPath. Attribute
// names are upper-cased; blank attributes are dropped.
func readShapefile(shpPath string) ([]shapeRecord, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToUpper(strings.TrimRight(f.String(), "\x00"))
	}

	var out []shapeRecord
	for reader.Next() {
		_, shape := reader.Shape()
		p := make(props, len(names))
		for i, name := range names {
			v := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if v != "" {
				p[name] = v
			}
		}
		out = append(out, shapeRecord{props: p, geometry: shapeToGeom(shape)})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "shapefile: read records")
	}
	return out, nil
}

// ParseZonesShapefile reads MHA zones from a shapefile.
func ParseZonesShapefile(shpPath string) ([]Zone, error) {
	recs, err := readShapefile(shpPath)
	if err != nil {
		return nil, err
	}
	zones := make([]Zone, 0, len(recs))
	for _, r := range recs {
		z, ok := zoneFromProps(r.props, "")
		if !ok {
			continue
		}
		z.Geometry = r.geometry
		zones = append(zones, z)
	}
	return zones, nil
}

// ParseTractsShapefile reads tracts from a shapefile.
func ParseTractsShapefile(shpPath string) ([]Tract, error) {
	recs, err := readShapefile(shpPath)
	if err != nil {
		return nil, err
	}
	tracts := make([]Tract, 0, len(recs))
	for _, r := range recs {
		t, ok := tractFromProps(r.props, "")
		if !ok {
			continue
		}
		t.Geometry = r.geometry
		tracts = append(tracts, t)
	}
	return tracts, nil
}

// shapeToGeom converts point and polygon shapes to go-geom geometries with
// SRID 4326. Other shape types yield nil.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(4326)
	case *shp.Polygon:
		return polygonToMultiPolygon(s)
	default:
		return nil
	}
}

// polygonToMultiPolygon groups shapefile parts into polygons. A clockwise
// part starts a polygon; a counter-clockwise part inside the current outer
// ring is a hole of it. Counter-clockwise parts outside it are treated as
// outer rings of their own.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var poly *geom.Polygon
	flush := func() {
		if poly == nil || poly.NumLinearRings() == 0 {
			poly = nil
			return
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("feature: skipping malformed polygon", zap.Error(err))
		}
		poly = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || end > int32(len(p.Points)) || end-start < 4 {
			zap.L().Debug("feature: skipping short ring", zap.Int32("part", i))
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		hole := poly != nil && poly.NumLinearRings() > 0 && signedArea(flat) > 0 &&
			xy.IsPointInRing(geom.XY, geom.Coord{flat[0], flat[1]}, poly.LinearRing(0).FlatCoords())
		if !hole {
			flush()
			poly = geom.NewPolygon(geom.XY)
		}
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("feature: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is the shoelace area of a closed ring: negative for clockwise
// rings, positive for counter-clockwise ones.
func signedArea(flat []float64) float64 {
	var sum float64
	for i := 0; i+3 < len(flat); i += 2 {
		sum += flat[i]*flat[i+3] - flat[i+2]*flat[i+1]
	}
	return sum / 2
}
