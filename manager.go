package geosynth

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
)

// Manager provides programmatic access to dataset acquisition.
// All methods are safe for concurrent use.
// For CLI integration, use NewCommand instead.
type Manager interface {
	// Resolve expands data type identifiers into the archive set for
	// the configured variant. Fails with ErrInvalidRequest on unknown
	// identifiers.
	Resolve(identifiers []string) ([]Archive, error)

	// Download resolves the identifiers and ensures every resolved
	// archive is present locally, fetching with bounded concurrency.
	// Per-archive failures are isolated; the returned Report carries
	// one result per archive and the error is non-nil iff any archive
	// failed.
	Download(ctx context.Context, identifiers []string, opts ...DownloadOption) (*Report, error)

	// EnsureLocal makes a single archive's contents present locally.
	// The outcome is classified in the result, never as an error.
	EnsureLocal(ctx context.Context, a Archive, opts ...DownloadOption) ArchiveResult

	// Status reports local completeness for every archive the
	// identifiers resolve to, without touching the network.
	Status(identifiers []string) ([]ArchiveStatus, error)

	// Dataset opens the scene index over the configured variant
	// directory.
	Dataset() (*Dataset, error)

	// Dir returns the variant directory the manager downloads into.
	Dir() string
}

// manager is the concrete implementation of the Manager interface.
type manager struct {
	// cfg holds the module configuration.
	cfg Config

	// storage handles local filesystem layout and markers.
	storage *storage

	// engine runs the fetch+extract pipeline.
	engine *downloadEngine

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

var _ Manager = (*manager)(nil)

// NewManager creates a new Manager with the given configuration.
// An empty BaseURL falls back to DefaultBaseURL; an empty Variant
// falls back to VariantDemo; an unknown Variant is rejected.
func NewManager(cfg Config, opts ...ManagerOption) (Manager, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	mcfg := &managerConfig{
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(mcfg)
	}

	st, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	client := newArchiveClient(cfg.BaseURL, mcfg.httpClient, mcfg.logger)

	return &manager{
		cfg:     cfg,
		storage: st,
		engine:  newDownloadEngine(client, st, mcfg.logger),
		logger:  mcfg.logger,
	}, nil
}

func (m *manager) variant() Variant {
	if m.cfg.Variant == "" {
		return VariantDemo
	}
	return m.cfg.Variant
}

// Resolve expands data type identifiers into the archive set.
func (m *manager) Resolve(identifiers []string) ([]Archive, error) {
	return Resolve(identifiers, m.variant())
}

// Download ensures every archive the identifiers resolve to is present
// locally.
func (m *manager) Download(ctx context.Context, identifiers []string, opts ...DownloadOption) (*Report, error) {
	archives, err := m.Resolve(identifiers)
	if err != nil {
		return nil, err
	}

	cfg := newDownloadConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Cross-process lock on the variant directory. Two concurrent runs
	// extracting into the same tree would race on shared scene dirs.
	if err := m.storage.ensureDir(filepath.Dir(m.storage.lockPath())); err != nil {
		return nil, err
	}
	lock, err := newDownloadLock(m.storage.lockPath(), DefaultLockTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: creating download lock: %v", ErrIO, err)
	}
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("%w: another process is downloading this variant: %v", ErrIO, err)
	}
	defer lock.Unlock()

	report := m.engine.downloadAll(ctx, archives, cfg)

	if report.Failed() {
		return report, m.failureSummary(report)
	}
	return report, nil
}

// failureSummary folds the failed results into one error listing which
// archives failed and why.
func (m *manager) failureSummary(report *Report) error {
	failures := report.Failures()
	err := fmt.Errorf("%d of %d archives failed", len(failures), len(report.Results))
	for _, f := range failures {
		err = fmt.Errorf("%v; %s: %v", err, f.Archive.Name, f.Err)
	}
	return err
}

// EnsureLocal makes a single archive's contents present locally.
func (m *manager) EnsureLocal(ctx context.Context, a Archive, opts ...DownloadOption) ArchiveResult {
	cfg := newDownloadConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return m.engine.ensureLocal(ctx, a, cfg)
}

// Status reports marker presence per resolved archive.
func (m *manager) Status(identifiers []string) ([]ArchiveStatus, error) {
	archives, err := m.Resolve(identifiers)
	if err != nil {
		return nil, err
	}

	out := make([]ArchiveStatus, 0, len(archives))
	for _, a := range archives {
		marker, ok, err := m.storage.readMarker(a)
		if err != nil {
			return nil, err
		}
		status := ArchiveStatus{Archive: a, Complete: ok}
		if ok {
			status.ExtractedAt = marker.ExtractedAt
		}
		out = append(out, status)
	}
	return out, nil
}

// Dataset opens the scene index over the variant directory.
func (m *manager) Dataset() (*Dataset, error) {
	return OpenDir(m.storage.variantDir())
}

// Dir returns the variant directory.
func (m *manager) Dir() string {
	return m.storage.variantDir()
}

// Download is the package-level convenience mirroring the library's
// primary workflow: resolve, fetch, extract. Equivalent to creating a
// Manager and calling its Download, for callers that do not need to
// hold one.
func Download(ctx context.Context, cfg Config, identifiers []string, opts ...DownloadOption) (*Report, error) {
	mgr, err := NewManager(cfg)
	if err != nil {
		return nil, err
	}
	return mgr.Download(ctx, identifiers, opts...)
}
