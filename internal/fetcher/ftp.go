package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-dashboard/internal/resilience"
)

// FTPOptions configures the FTP fetcher.
type FTPOptions struct {
	Timeout time.Duration
}

// FTPFetcher downloads sources over anonymous FTP.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher creates an FTPFetcher with defaults applied.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &FTPFetcher{opts: opts}
}

// parseFTPURL extracts host:port and path from an FTP URL.
func parseFTPURL(rawURL string) (host string, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "fetcher: parse ftp url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("fetcher: expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	path = u.Path
	if path == "" {
		return "", "", eris.New("fetcher: empty path in ftp url")
	}
	return host, path, nil
}

// ftpConnReader closes the FTP response and the connection together.
type ftpConnReader struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpConnReader) Read(p []byte) (int, error) {
	return r.resp.Read(p)
}

func (r *ftpConnReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "fetcher: close ftp response")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "fetcher: quit ftp connection")
	}
	return nil
}

// Download connects, logs in anonymously and retrieves the file. Dial
// failures are retried.
func (f *FTPFetcher) Download(ctx context.Context, ftpURL string) (io.ReadCloser, error) {
	host, path, err := parseFTPURL(ftpURL)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("fetcher: ftp connecting", zap.String("host", host), zap.String("path", path))

	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger(Redact(ftpURL))

	var conn *ftp.ServerConn
	err = resilience.Do(ctx, retry, func(ctx context.Context) error {
		c, dialErr := ftp.Dial(host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
		if dialErr != nil {
			return eris.Wrap(dialErr, "fetcher: ftp dial")
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "fetcher: ftp login")
	}

	resp, err := conn.Retr(path)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "fetcher: ftp retrieve")
	}

	return &ftpConnReader{resp: resp, conn: conn}, nil
}
