package geosynth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

// isDiskErr distinguishes local filesystem failures (surfaced as
// ErrIO, never retried) from transport failures (retried).
func isDiskErr(err error) bool {
	var pathErr *fs.PathError
	return errors.As(err, &pathErr)
}

// HTTPClient is the interface for HTTP operations.
// *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// archiveClient fetches dataset archives from the remote file host.
// The host is a plain HTTP(S) file server; one GET per archive.
type archiveClient struct {
	// baseURL is the base URL of the archive host.
	baseURL string

	// httpClient is used for all HTTP requests.
	httpClient HTTPClient

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

// newArchiveClient creates a client for the archive host.
// The baseURL is normalized by removing any trailing slashes.
func newArchiveClient(baseURL string, client HTTPClient, logger Logger) *archiveClient {
	return &archiveClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger,
	}
}

// archiveURL builds the remote URL for an archive:
// <base>/<variant>/<archive>.zip
func (c *archiveClient) archiveURL(a Archive) string {
	return c.baseURL + "/" + string(a.Variant) + "/" + a.Filename()
}

// fetchArchive streams an archive to dstPath, reporting byte deltas
// through onProgress as they arrive. The declared size (Content-Length,
// 0 if absent) is returned alongside the transferred byte count.
//
// Writes go to dstPath directly; the caller passes a temporary path
// and renames on success, so a killed process never leaves a partial
// file mistaken for a complete one.
func (c *archiveClient) fetchArchive(ctx context.Context, a Archive, dstPath string, onProgress func(delta, total int64)) (int64, error) {
	url := c.archiveURL(a)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %v: %w", a.Name, err, ErrNetwork)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("archive %s for variant %q: %w", a.Name, a.Variant, ErrUnavailable)
	case resp.StatusCode != http.StatusOK:
		return 0, fmt.Errorf("fetching %s: status %d: %w", a.Name, resp.StatusCode, ErrNetwork)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return 0, fmt.Errorf("%w: creating %s: %v", ErrIO, dstPath, err)
	}

	var reader io.Reader = resp.Body
	if onProgress != nil {
		reader = &progressReader{reader: resp.Body, onProgress: func(delta int64) {
			onProgress(delta, total)
		}}
	}

	n, err := io.Copy(out, reader)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: closing %s: %v", ErrIO, dstPath, closeErr)
	}
	if err != nil {
		os.Remove(dstPath)
		if errors.Is(err, ErrIO) {
			return n, err
		}
		if isDiskErr(err) {
			return n, fmt.Errorf("%w: writing %s: %v", ErrIO, dstPath, err)
		}
		return n, fmt.Errorf("reading %s: %v: %w", a.Name, err, ErrNetwork)
	}

	if total > 0 && n != total {
		os.Remove(dstPath)
		return n, fmt.Errorf("fetching %s: got %d of %d bytes: %w", a.Name, n, total, ErrNetwork)
	}

	if c.logger != nil {
		c.logger.Debug("archive fetched", "archive", a.Name, "bytes", n)
	}
	return n, nil
}

// progressReader wraps an io.Reader and reports progress as bytes are
// read. The callback receives the delta, not a cumulative total.
type progressReader struct {
	reader     io.Reader
	onProgress func(delta int64)
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 && pr.onProgress != nil {
		pr.onProgress(int64(n))
	}
	return
}
