package feature

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// decodeFeatureCollection parses a GeoJSON FeatureCollection.
func decodeFeatureCollection(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "geojson: read")
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "geojson: decode feature collection")
	}
	return &fc, nil
}

// ParseTractsGeoJSON reads tracts from a GeoJSON FeatureCollection.
// Features without a GEOID are skipped as missing data.
func ParseTractsGeoJSON(r io.Reader) ([]Tract, error) {
	fc, err := decodeFeatureCollection(r)
	if err != nil {
		return nil, err
	}

	tracts := make([]Tract, 0, len(fc.Features))
	var skipped int
	for _, f := range fc.Features {
		t, ok := tractFromProps(normalizeProps(f.Properties), f.ID)
		if !ok {
			skipped++
			continue
		}
		t.Geometry = f.Geometry
		tracts = append(tracts, t)
	}
	if skipped > 0 {
		zap.L().Warn("feature: skipped tracts without GEOID", zap.Int("skipped", skipped))
	}
	return tracts, nil
}

// ParseZonesGeoJSON reads MHA zones from a GeoJSON FeatureCollection.
func ParseZonesGeoJSON(r io.Reader) ([]Zone, error) {
	fc, err := decodeFeatureCollection(r)
	if err != nil {
		return nil, err
	}

	zones := make([]Zone, 0, len(fc.Features))
	var skipped int
	for _, f := range fc.Features {
		z, ok := zoneFromProps(normalizeProps(f.Properties), f.ID)
		if !ok {
			skipped++
			continue
		}
		z.Geometry = f.Geometry
		zones = append(zones, z)
	}
	if skipped > 0 {
		zap.L().Warn("feature: skipped zones without id", zap.Int("skipped", skipped))
	}
	return zones, nil
}
