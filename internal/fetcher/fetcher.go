// Package fetcher opens dataset sources from local files, HTTP, and FTP and
// parses tabular formats (CSV, XLSX, SQLite, Postgres) into string tables.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher opens a source URL for reading.
type Fetcher interface {
	// Download returns the source body. The caller must close it.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Options configures the scheme-specific fetchers behind a Router.
type Options struct {
	HTTP HTTPOptions
	FTP  FTPOptions
}

// Router dispatches a source URL to the fetcher for its scheme. Bare paths
// and file:// URLs are read from the local filesystem.
type Router struct {
	file Fetcher
	http Fetcher
	ftp  Fetcher
}

// NewRouter creates a Router with the default fetcher per scheme.
func NewRouter(opts Options) *Router {
	return &Router{
		file: FileFetcher{},
		http: NewHTTPFetcher(opts.HTTP),
		ftp:  NewFTPFetcher(opts.FTP),
	}
}

// Download opens rawURL with the fetcher registered for its scheme.
func (r *Router) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	switch Scheme(rawURL) {
	case "http", "https":
		return r.http.Download(ctx, rawURL)
	case "ftp":
		return r.ftp.Download(ctx, rawURL)
	case "file", "":
		return r.file.Download(ctx, rawURL)
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme in %q", rawURL)
	}
}

// DownloadToFile copies the source at rawURL into path using f. Returns
// bytes written.
func DownloadToFile(ctx context.Context, f Fetcher, rawURL, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	out, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "fetcher: create file")
	}
	n, err := io.Copy(out, body)
	if err != nil {
		_ = out.Close()
		return n, eris.Wrap(err, "fetcher: write file")
	}
	if err := out.Close(); err != nil {
		return n, eris.Wrap(err, "fetcher: close file")
	}
	return n, nil
}

// Scheme returns the lower-cased URL scheme of rawURL, or "" for plain paths.
// Windows drive letters are not treated as schemes.
func Scheme(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || len(u.Scheme) < 2 {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// Redact hides the password in rawURL's userinfo, such as a Postgres DSN
// or an authenticated FTP URL. Other inputs are returned unchanged.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	return u.Redacted()
}

// FileFetcher reads sources from the local filesystem.
type FileFetcher struct{}

// Download opens the file named by path or file:// URL.
func (FileFetcher) Download(_ context.Context, rawURL string) (io.ReadCloser, error) {
	path := LocalPath(rawURL)
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", path)
	}
	return f, nil
}

// LocalPath strips a file:// prefix from rawURL.
func LocalPath(rawURL string) string {
	if Scheme(rawURL) == "file" {
		if u, err := url.Parse(rawURL); err == nil {
			return u.Path
		}
	}
	return rawURL
}
