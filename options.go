package geosynth

import "time"

// Concurrency constants for archive downloads.
const (
	// DefaultConcurrency is the default number of archives fetched in
	// parallel.
	DefaultConcurrency = 3

	// MaxConcurrency is the maximum allowed parallel archive fetches.
	MaxConcurrency = 8
)

// Retry configuration for transient network failures.
// The policy is deliberately small and documented: transient errors
// get MaxRetries attempts with exponential backoff; a corrupt archive
// gets exactly one re-fetch; storage errors are never retried.
const (
	// MaxRetries is the maximum number of attempts for a network fetch.
	MaxRetries = 3

	// InitialBackoff is the backoff before the first retry.
	InitialBackoff = 1 * time.Second

	// MaxBackoff caps the backoff between retries.
	MaxBackoff = 4 * time.Second
)

// DownloadOption configures a download run.
type DownloadOption func(*downloadConfig)

// downloadConfig holds configuration for one download run.
type downloadConfig struct {
	// force re-downloads archives whose completion markers are present.
	force bool

	// cleanup deletes archive zips after successful extraction.
	cleanup bool

	// concurrency is the number of archives fetched in parallel.
	concurrency int

	// progressFn receives progress updates. May be called from
	// multiple goroutines.
	progressFn func(DownloadProgress)
}

// newDownloadConfig returns a downloadConfig with default values.
// Cleanup defaults to on: retained zips double disk usage and the
// completion marker already prevents re-downloads.
func newDownloadConfig() *downloadConfig {
	return &downloadConfig{
		cleanup:     true,
		concurrency: DefaultConcurrency,
	}
}

// WithForce re-downloads archives even when their completion markers
// are present.
func WithForce() DownloadOption {
	return func(c *downloadConfig) {
		c.force = true
	}
}

// WithKeepArchives retains the downloaded zip files after extraction
// instead of deleting them.
func WithKeepArchives() DownloadOption {
	return func(c *downloadConfig) {
		c.cleanup = false
	}
}

// WithConcurrency sets the number of archives fetched in parallel.
// Values are clamped to the range [1, MaxConcurrency].
func WithConcurrency(n int) DownloadOption {
	return func(c *downloadConfig) {
		if n < 1 {
			n = 1
		}
		if n > MaxConcurrency {
			n = MaxConcurrency
		}
		c.concurrency = n
	}
}

// WithProgress sets a callback for progress updates during a download
// run. The callback is invoked from download goroutines and must be
// thread-safe.
func WithProgress(fn func(DownloadProgress)) DownloadOption {
	return func(c *downloadConfig) {
		c.progressFn = fn
	}
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig)

// managerConfig holds configuration for Manager construction.
type managerConfig struct {
	// httpClient is used for all HTTP requests to the archive host.
	httpClient HTTPClient

	// logger receives diagnostic log messages.
	logger Logger
}

// WithHTTPClient sets a custom HTTP client for archive requests.
// Useful for testing with mock servers or customizing timeouts.
// If not set, http.DefaultClient is used.
func WithHTTPClient(client HTTPClient) ManagerOption {
	return func(c *managerConfig) {
		c.httpClient = client
	}
}

// WithLogger sets a logger for diagnostic output.
// If not set, logging is disabled.
func WithLogger(logger Logger) ManagerOption {
	return func(c *managerConfig) {
		c.logger = logger
	}
}
