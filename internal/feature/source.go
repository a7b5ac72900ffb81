package feature

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-dashboard/internal/fetcher"
)

// Format is the encoding of a dataset source.
type Format string

// Supported source formats.
const (
	FormatGeoJSON   Format = "geojson"
	FormatShapefile Format = "shapefile"
	FormatCSV       Format = "csv"
	FormatXLSX      Format = "xlsx"
	FormatSQLite    Format = "sqlite"
	FormatPostgres  Format = "postgres"
)

// Source locates one dataset. URL is a local path, file://, http(s)://,
// ftp://, or a postgres:// DSN.
type Source struct {
	URL    string `mapstructure:"url"`
	Format string `mapstructure:"format"`
	// Table names the table for sqlite and postgres sources.
	Table string `mapstructure:"table"`
	// Sheet names the worksheet for xlsx sources; empty means the first.
	Sheet string `mapstructure:"sheet"`
}

// Sources are the four datasets the dashboard needs.
type Sources struct {
	Tracts Source `mapstructure:"tracts"`
	Zones  Source `mapstructure:"zones"`
	Burden Source `mapstructure:"burden"`
	Income Source `mapstructure:"income"`
}

// ResolveFormat returns the explicit format, or infers it from the URL.
func (s Source) ResolveFormat() (Format, error) {
	if s.URL == "" {
		return "", eris.New("feature: source url is empty")
	}
	if s.Format != "" {
		f := Format(strings.ToLower(s.Format))
		switch f {
		case FormatGeoJSON, FormatShapefile, FormatCSV, FormatXLSX, FormatSQLite, FormatPostgres:
			return f, nil
		}
		return "", eris.Errorf("feature: unknown format %q", s.Format)
	}

	switch fetcher.Scheme(s.URL) {
	case "postgres", "postgresql":
		return FormatPostgres, nil
	}

	path := s.URL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	case ".shp", ".zip":
		return FormatShapefile, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite, nil
	}
	return "", eris.Errorf("feature: cannot infer format of %q", fetcher.Redact(s.URL))
}
