package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-dashboard/internal/resilience"
)

func TestScheme(t *testing.T) {
	assert.Equal(t, "", Scheme("data/tracts.geojson"))
	assert.Equal(t, "", Scheme(`C:\data\tracts.geojson`))
	assert.Equal(t, "file", Scheme("file:///tmp/x.csv"))
	assert.Equal(t, "https", Scheme("HTTPS://example.com/x.csv"))
	assert.Equal(t, "ftp", Scheme("ftp://ftp2.census.gov/x.zip"))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://dash:xxxxx@db:5432/housing", Redact("postgres://dash:s3cret@db:5432/housing"))
	assert.Equal(t, "ftp://anon@ftp.example.org/zones.zip", Redact("ftp://anon@ftp.example.org/zones.zip"))
	assert.Equal(t, "https://example.org/tracts.geojson", Redact("https://example.org/tracts.geojson"))
	assert.Equal(t, "data/tracts.geojson", Redact("data/tracts.geojson"))
}

func TestLocalPath(t *testing.T) {
	assert.Equal(t, "/tmp/x.csv", LocalPath("file:///tmp/x.csv"))
	assert.Equal(t, "rel/x.csv", LocalPath("rel/x.csv"))
}

func TestRouter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "income.csv")
	require.NoError(t, os.WriteFile(path, []byte("year,bracket,share\n"), 0o644))

	r := NewRouter(Options{})
	for _, u := range []string{path, "file://" + path} {
		body, err := r.Download(context.Background(), u)
		require.NoError(t, err)
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		_ = body.Close()
		assert.Equal(t, "year,bracket,share\n", string(data))
	}
}

func TestRouter_FileMissing(t *testing.T) {
	r := NewRouter(Options{})
	_, err := r.Download(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestRouter_UnsupportedScheme(t *testing.T) {
	r := NewRouter(Options{})
	_, err := r.Download(context.Background(), "s3://bucket/key")
	assert.ErrorContains(t, err, "unsupported scheme")
}

func TestDownloadToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	n, err := DownloadToFile(context.Background(), NewRouter(Options{}), srv.URL+"/zones.zip", dest)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestDownloadToFile_FetchError(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.bin")
	_, err := DownloadToFile(context.Background(), NewRouter(Options{}), "s3://bucket/key", dest)
	require.Error(t, err)
	assert.NoFileExists(t, dest)
}

func TestHTTPFetcher_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{UserAgent: "test-agent", RateLimit: 1000})
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPFetcher_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{RateLimit: 1000})
	_, err := f.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcher_BreakerStopsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{
		RateLimit:   1000,
		MaxAttempts: 5,
		Breaker:     resilience.BreakerConfig{Failures: 2, Cooldown: time.Minute},
	})
	_, err := f.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrHostUnavailable)
	assert.Equal(t, int32(2), calls.Load())

	_, err = f.Download(context.Background(), srv.URL+"/other.csv")
	assert.ErrorIs(t, err, resilience.ErrHostUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestParseFTPURL(t *testing.T) {
	host, path, err := parseFTPURL("ftp://ftp2.census.gov/geo/tiger/zones.zip")
	require.NoError(t, err)
	assert.Equal(t, "ftp2.census.gov:21", host)
	assert.Equal(t, "/geo/tiger/zones.zip", path)

	host, _, err = parseFTPURL("ftp://localhost:2121/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "localhost:2121", host)

	_, _, err = parseFTPURL("http://example.com/a.csv")
	assert.Error(t, err)

	_, _, err = parseFTPURL("ftp://example.com")
	assert.Error(t, err)
}
