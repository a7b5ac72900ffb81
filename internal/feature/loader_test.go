package feature

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/housing-dashboard/internal/fetcher"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func localSources(t *testing.T) (string, Sources) {
	t.Helper()
	dir := t.TempDir()
	return dir, Sources{
		Tracts: Source{URL: writeFile(t, dir, "tracts.geojson", tractsGeoJSON)},
		Zones:  Source{URL: writeFile(t, dir, "zones.geojson", zonesGeoJSON)},
		Burden: Source{URL: writeFile(t, dir, "burden.csv", burdenCSV)},
		Income: Source{URL: writeFile(t, dir, "income.csv", incomeCSV)},
	}
}

func newTestLoader(dir string, opts ...LoaderOption) *Loader {
	opts = append([]LoaderOption{WithTempDir(dir)}, opts...)
	return NewLoader(fetcher.NewRouter(fetcher.Options{}), opts...)
}

func TestLoad_AllSources(t *testing.T) {
	dir, src := localSources(t)

	store, err := newTestLoader(dir).Load(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 2, store.Tracts.Len())
	assert.Equal(t, 1, store.Zones.Len())
	assert.Equal(t, 4, store.Burden.Len())
	assert.Equal(t, 3, store.Income.Len())

	lo, hi := store.YearRange()
	assert.Equal(t, 2018, lo)
	assert.Equal(t, 2020, hi)

	_, ok := store.Tract("53033008100")
	assert.True(t, ok)
}

func TestLoad_IDsUniquePerDataset(t *testing.T) {
	dir, src := localSources(t)
	store, err := newTestLoader(dir).Load(context.Background(), src)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, tr := range store.Tracts.All() {
		assert.False(t, seen[tr.GEOID], tr.GEOID)
		seen[tr.GEOID] = true
	}
	seenKeys := map[BurdenKey]bool{}
	for _, r := range store.Burden.All() {
		assert.False(t, seenKeys[r.BurdenKey])
		seenKeys[r.BurdenKey] = true
	}
}

func TestLoad_OneSourceMissingFailsWhole(t *testing.T) {
	dir, src := localSources(t)
	src.Income.URL = filepath.Join(dir, "missing.csv")

	store, err := newTestLoader(dir).Load(context.Background(), src)
	assert.Nil(t, store)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Len(t, loadErr.Failures, 1)
	assert.Equal(t, "income", loadErr.Failures[0].Source)
}

func TestLoad_UnparsableSourceFailsWhole(t *testing.T) {
	dir, src := localSources(t)
	src.Tracts.URL = writeFile(t, dir, "broken.geojson", `{"type":"FeatureCollection","features":[{`)
	src.Zones.URL = writeFile(t, dir, "zones.txt", "x")

	_, err := newTestLoader(dir).Load(context.Background(), src)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	var names []string
	for _, f := range loadErr.Failures {
		names = append(names, f.Source)
	}
	assert.Contains(t, names, "tracts")
	assert.Contains(t, names, "zones")
}

func TestLoad_DuplicateIDFails(t *testing.T) {
	dir, src := localSources(t)
	src.Burden.URL = writeFile(t, dir, "dup.csv", "year,race\n2019,All\n2019,All\n")

	_, err := newTestLoader(dir).Load(context.Background(), src)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestLoad_HTTPSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tracts.geojson":
			_, _ = w.Write([]byte(tractsGeoJSON))
		case "/zones.geojson":
			_, _ = w.Write([]byte(zonesGeoJSON))
		case "/burden.csv":
			_, _ = w.Write([]byte(burdenCSV))
		case "/income.csv":
			_, _ = w.Write([]byte(incomeCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := Sources{
		Tracts: Source{URL: srv.URL + "/tracts.geojson"},
		Zones:  Source{URL: srv.URL + "/zones.geojson"},
		Burden: Source{URL: srv.URL + "/burden.csv"},
		Income: Source{URL: srv.URL + "/income.csv"},
	}
	store, err := newTestLoader(t.TempDir()).Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Tracts.Len())

	src.Income.URL = srv.URL + "/gone.csv"
	_, err = newTestLoader(t.TempDir()).Load(context.Background(), src)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	var names []string
	for _, f := range loadErr.Failures {
		names = append(names, f.Source)
	}
	assert.Contains(t, names, "income")
}

func TestLoad_PostgresIncome(t *testing.T) {
	dir, src := localSources(t)
	src.Income = Source{URL: "postgres://localhost/housing", Table: "income"}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.ExpectQuery("SELECT \\* FROM income").WillReturnRows(
		pgxmock.NewRows([]string{"year", "bracket", "share"}).
			AddRow(int64(2022), "<$25k", 16.0),
	)

	connector := func(_ context.Context, dsn string) (fetcher.Pool, func(), error) {
		assert.Equal(t, "postgres://localhost/housing", dsn)
		return mock, func() {}, nil
	}

	store, err := newTestLoader(dir, WithConnector(connector)).Load(context.Background(), src)
	require.NoError(t, err)
	row, ok := store.Income.Get(IncomeKey{Year: 2022, Bracket: "<$25k"})
	require.True(t, ok)
	assert.Equal(t, 16.0, *row.Share)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func writeZonesShapefile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "mha.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{
		shp.StringField("ZONE_ID", 16),
		shp.StringField("ZONE_NAME", 32),
		shp.StringField("MHA_TIER", 8),
	})

	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{{
		{X: -122.35, Y: 47.60}, {X: -122.35, Y: 47.62}, {X: -122.31, Y: 47.62},
		{X: -122.31, Y: 47.60}, {X: -122.35, Y: 47.60},
	}}))
	idx := int(w.Write(&poly))
	w.WriteAttribute(idx, 0, "Z-10")
	w.WriteAttribute(idx, 1, "Rainier Beach")
	w.WriteAttribute(idx, 2, "M1")
	w.Close()
	return path
}

func TestParseZonesShapefile(t *testing.T) {
	path := writeZonesShapefile(t, t.TempDir())

	zones, err := ParseZonesShapefile(path)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Z-10", zones[0].ID)
	assert.Equal(t, "Rainier Beach", zones[0].Name)
	assert.Equal(t, "M1", zones[0].Tier)

	mp, ok := zones[0].Geometry.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 4326, mp.SRID())
}

func TestLoad_ZippedShapefile(t *testing.T) {
	dir, src := localSources(t)
	shpDir := filepath.Join(dir, "shp")
	require.NoError(t, os.MkdirAll(shpDir, 0o755))
	writeZonesShapefile(t, shpDir)

	zipPath := filepath.Join(dir, "mha.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	entries, err := os.ReadDir(shpDir)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(shpDir, e.Name()))
		require.NoError(t, err)
		w, err := zw.Create(e.Name())
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	src.Zones = Source{URL: zipPath}
	store, err := newTestLoader(dir).Load(context.Background(), src)
	require.NoError(t, err)
	z, ok := store.Zone("Z-10")
	require.True(t, ok)
	assert.Equal(t, "M1", z.Tier)
}

func TestShapeToGeom(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 4},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 0},
			{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 5, Y: 5},
		},
	}
	g := shapeToGeom(poly)
	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())

	pt, ok := shapeToGeom(&shp.Point{X: 1, Y: 2}).(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, pt.FlatCoords())

	assert.Nil(t, shapeToGeom(&shp.PolyLine{}))
	assert.Nil(t, shapeToGeom(&shp.Polygon{}))
}

func TestShapeToGeom_GroupsHolesWithOuterRing(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 4,
		Parts:    []int32{0, 5, 10, 15},
		Points: []shp.Point{
			// clockwise outer ring
			{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0},
			// counter-clockwise hole inside it
			{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 4}, {X: 2, Y: 4}, {X: 2, Y: 2},
			// counter-clockwise ring outside it
			{X: 20, Y: 20}, {X: 21, Y: 20}, {X: 21, Y: 21}, {X: 20, Y: 21}, {X: 20, Y: 20},
			// clockwise island
			{X: 30, Y: 30}, {X: 30, Y: 31}, {X: 31, Y: 31}, {X: 31, Y: 30}, {X: 30, Y: 30},
		},
	}
	mp, ok := shapeToGeom(poly).(*geom.MultiPolygon)
	require.True(t, ok)
	require.Equal(t, 3, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())
	assert.Equal(t, 1, mp.Polygon(1).NumLinearRings())
	assert.Equal(t, 1, mp.Polygon(2).NumLinearRings())
	assert.Equal(t, []float64{2, 2, 4, 2, 4, 4, 2, 4, 2, 2}, mp.Polygon(0).LinearRing(1).FlatCoords())
}

func TestSignedArea(t *testing.T) {
	cw := []float64{0, 0, 0, 1, 1, 1, 1, 0, 0, 0}
	ccw := []float64{0, 0, 1, 0, 1, 1, 0, 1, 0, 0}
	assert.InDelta(t, -1, signedArea(cw), 1e-9)
	assert.InDelta(t, 1, signedArea(ccw), 1e-9)
}
