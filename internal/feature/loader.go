package feature

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/housing-dashboard/internal/fetcher"
)

// Connector opens a Postgres pool for a DSN. The returned func releases it.
type Connector func(ctx context.Context, dsn string) (fetcher.Pool, func(), error)

// PGXConnector connects with pgxpool.
func PGXConnector(ctx context.Context, dsn string) (fetcher.Pool, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, eris.Wrap(err, "feature: connect postgres")
	}
	return pool, pool.Close, nil
}

// Loader reads the dashboard datasets from their sources.
type Loader struct {
	fetcher fetcher.Fetcher
	connect Connector
	tempDir string
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithConnector overrides how postgres sources are opened.
func WithConnector(c Connector) LoaderOption {
	return func(l *Loader) { l.connect = c }
}

// WithTempDir sets where remote and zipped shapefiles are staged.
func WithTempDir(dir string) LoaderOption {
	return func(l *Loader) { l.tempDir = dir }
}

// NewLoader creates a Loader reading sources through f.
func NewLoader(f fetcher.Fetcher, opts ...LoaderOption) *Loader {
	l := &Loader{fetcher: f, connect: PGXConnector, tempDir: os.TempDir()}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load fetches all four datasets concurrently and joins them. If any source
// fails, the result is a single *LoadError naming every failed source and
// no store is returned.
func (l *Loader) Load(ctx context.Context, src Sources) (*Store, error) {
	log := zap.L().With(zap.String("component", "feature.loader"))

	var (
		tracts *Dataset[string, Tract]
		zones  *Dataset[string, Zone]
		burden *Dataset[BurdenKey, BurdenRow]
		income *Dataset[IncomeKey, IncomeRow]

		mu       sync.Mutex
		failures []SourceError
	)

	g, gctx := errgroup.WithContext(ctx)
	run := func(name string, fn func(ctx context.Context) (int, error)) {
		g.Go(func() error {
			start := time.Now()
			n, err := fn(gctx)
			if err != nil {
				mu.Lock()
				failures = append(failures, SourceError{Source: name, Err: err})
				mu.Unlock()
				return err
			}
			log.Info("dataset loaded",
				zap.String("dataset", name),
				zap.Int("rows", n),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		})
	}

	run("tracts", func(ctx context.Context) (int, error) {
		rows, err := l.loadTracts(ctx, src.Tracts)
		if err != nil {
			return 0, err
		}
		tracts, err = tractDataset(rows)
		return len(rows), err
	})
	run("zones", func(ctx context.Context) (int, error) {
		rows, err := l.loadZones(ctx, src.Zones)
		if err != nil {
			return 0, err
		}
		zones, err = zoneDataset(rows)
		return len(rows), err
	})
	run("burden", func(ctx context.Context) (int, error) {
		t, err := l.loadTable(ctx, src.Burden)
		if err != nil {
			return 0, err
		}
		rows := BurdenRowsFromTable(t)
		burden, err = burdenDataset(rows)
		return len(rows), err
	})
	run("income", func(ctx context.Context) (int, error) {
		t, err := l.loadTable(ctx, src.Income)
		if err != nil {
			return 0, err
		}
		rows := IncomeRowsFromTable(t)
		income, err = incomeDataset(rows)
		return len(rows), err
	})

	if err := g.Wait(); err != nil {
		loadErr := &LoadError{Failures: rootFailures(failures)}
		log.Error("dataset load failed", zap.Error(loadErr))
		return nil, loadErr
	}

	return assemble(tracts, zones, burden, income), nil
}

// rootFailures drops sources that only failed because a sibling's failure
// cancelled the shared context, and orders the rest by source name.
func rootFailures(all []SourceError) []SourceError {
	var roots []SourceError
	for _, f := range all {
		if !errors.Is(f.Err, context.Canceled) {
			roots = append(roots, f)
		}
	}
	if len(roots) == 0 {
		roots = all
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Source < roots[j].Source })
	return roots
}

func (l *Loader) loadTracts(ctx context.Context, src Source) ([]Tract, error) {
	format, err := src.ResolveFormat()
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatGeoJSON:
		body, err := l.fetcher.Download(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		defer body.Close() //nolint:errcheck
		return ParseTractsGeoJSON(body)
	case FormatShapefile:
		path, cleanup, err := l.stageShapefile(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		return ParseTractsShapefile(path)
	default:
		return nil, eris.Errorf("feature: format %s cannot hold tracts", format)
	}
}

func (l *Loader) loadZones(ctx context.Context, src Source) ([]Zone, error) {
	format, err := src.ResolveFormat()
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatGeoJSON:
		body, err := l.fetcher.Download(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		defer body.Close() //nolint:errcheck
		return ParseZonesGeoJSON(body)
	case FormatShapefile:
		path, cleanup, err := l.stageShapefile(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		return ParseZonesShapefile(path)
	default:
		return nil, eris.Errorf("feature: format %s cannot hold zones", format)
	}
}

func (l *Loader) loadTable(ctx context.Context, src Source) (*fetcher.Table, error) {
	format, err := src.ResolveFormat()
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		body, err := l.fetcher.Download(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		defer body.Close() //nolint:errcheck
		return fetcher.ReadCSV(body)
	case FormatXLSX:
		body, err := l.fetcher.Download(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		defer body.Close() //nolint:errcheck
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, eris.Wrap(err, "feature: read xlsx source")
		}
		return fetcher.ReadXLSX(data, src.Sheet)
	case FormatSQLite:
		path, cleanup, err := l.stageLocal(ctx, src.URL, "dataset.sqlite")
		if err != nil {
			return nil, err
		}
		defer cleanup()
		return fetcher.ReadSQLiteTable(ctx, path, src.Table)
	case FormatPostgres:
		pool, release, err := l.connect(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		defer release()
		return fetcher.ReadPostgresTable(ctx, pool, src.Table)
	default:
		return nil, eris.Errorf("feature: format %s is not tabular", format)
	}
}

// stageLocal returns a local path for rawURL, downloading remote sources
// into a temp dir named after base.
func (l *Loader) stageLocal(ctx context.Context, rawURL, base string) (string, func(), error) {
	switch fetcher.Scheme(rawURL) {
	case "", "file":
		return fetcher.LocalPath(rawURL), func() {}, nil
	}

	dir, err := os.MkdirTemp(l.tempDir, "dataset-*")
	if err != nil {
		return "", nil, eris.Wrap(err, "feature: create temp dir")
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	dest := filepath.Join(dir, base)
	if _, err := fetcher.DownloadToFile(ctx, l.fetcher, rawURL, dest); err != nil {
		cleanup()
		return "", nil, err
	}
	return dest, cleanup, nil
}

// stageShapefile returns the path of a readable .shp for rawURL. Zipped
// shapefiles are extracted; a remote bare .shp is not supported because
// its .dbf sidecar cannot be located.
func (l *Loader) stageShapefile(ctx context.Context, rawURL string) (string, func(), error) {
	isZip := strings.EqualFold(filepath.Ext(rawURL), ".zip")
	remote := fetcher.Scheme(rawURL) != "" && fetcher.Scheme(rawURL) != "file"
	if !isZip {
		if remote {
			return "", nil, eris.Errorf("feature: remote shapefiles must be zipped: %s", rawURL)
		}
		return fetcher.LocalPath(rawURL), func() {}, nil
	}

	zipPath, cleanupZip, err := l.stageLocal(ctx, rawURL, "shapefile.zip")
	if err != nil {
		return "", nil, err
	}

	dir, err := os.MkdirTemp(l.tempDir, "shapefile-*")
	if err != nil {
		cleanupZip()
		return "", nil, eris.Wrap(err, "feature: create extract dir")
	}
	cleanup := func() {
		_ = os.RemoveAll(dir)
		cleanupZip()
	}

	paths, err := fetcher.ExtractZIP(zipPath, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	shpPath, ok := fetcher.FindByExt(paths, ".shp")
	if !ok {
		cleanup()
		return "", nil, eris.Errorf("feature: no .shp file in %s", rawURL)
	}
	return shpPath, cleanup, nil
}
