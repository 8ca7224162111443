package geosynth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// downloadEngine processes one archive at a time: cache check, fetch
// to a temporary path, extract into an archive-scoped temp directory,
// rename into the shared tree, then write the completion marker.
type downloadEngine struct {
	// client fetches archives from the remote host.
	client *archiveClient

	// storage provides the on-disk layout and marker bookkeeping.
	storage storageInterface

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

func newDownloadEngine(client *archiveClient, storage storageInterface, logger Logger) *downloadEngine {
	return &downloadEngine{
		client:  client,
		storage: storage,
		logger:  logger,
	}
}

// ensureLocal makes one archive's contents present under the variant
// directory. The returned result is never an error value; failures are
// classified into the result's Err so that callers can aggregate them.
func (e *downloadEngine) ensureLocal(ctx context.Context, a Archive, cfg *downloadConfig) ArchiveResult {
	start := time.Now()
	res := ArchiveResult{Archive: a}

	// Cache check. A present marker means a previous run fully
	// extracted this archive; repeated invocations over a complete
	// dataset must do no network I/O.
	if !cfg.force {
		if m, ok, err := e.storage.readMarker(a); err != nil {
			res.Outcome = OutcomeFailed
			res.Err = err
			res.Duration = time.Since(start)
			return res
		} else if ok {
			if e.logger != nil {
				e.logger.Debug("archive already extracted", "archive", a.Name, "at", m.ExtractedAt)
			}
			res.Outcome = OutcomeSkipped
			res.Duration = time.Since(start)
			return res
		}
	}

	bytes, err := e.downloadAndExtract(ctx, a, cfg)
	res.BytesFetched = bytes
	res.Duration = time.Since(start)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	res.Outcome = OutcomeDownloaded
	return res
}

// downloadAndExtract runs the fetch+extract pipeline with the retry
// policy: network errors get MaxRetries attempts with exponential
// backoff; a corrupt archive is re-fetched exactly once; storage
// errors are fatal immediately.
func (e *downloadEngine) downloadAndExtract(ctx context.Context, a Archive, cfg *downloadConfig) (int64, error) {
	var total int64
	corruptRetried := false

	backoff := InitialBackoff
	attempt := 1
	for {
		n, err := e.attemptOnce(ctx, a, cfg)
		total += n
		if err == nil {
			return total, nil
		}

		switch {
		case errors.Is(err, ErrNetwork) && attempt < MaxRetries:
			if e.logger != nil {
				e.logger.Warn("fetch failed, retrying", "archive", a.Name, "attempt", attempt, "error", err)
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return total, fmt.Errorf("fetching %s: %w: %v", a.Name, ErrNetwork, ctx.Err())
			}
			backoff *= 2
			if backoff > MaxBackoff {
				backoff = MaxBackoff
			}
			attempt++

		case errors.Is(err, ErrCorruptArchive) && !corruptRetried:
			// The zip was fully transferred but would not extract;
			// throw it away and fetch once more.
			corruptRetried = true
			os.Remove(e.storage.zipPath(a))
			if e.logger != nil {
				e.logger.Warn("corrupt archive, re-fetching", "archive", a.Name, "error", err)
			}

		default:
			return total, err
		}
	}
}

// attemptOnce performs a single fetch+extract+mark cycle.
func (e *downloadEngine) attemptOnce(ctx context.Context, a Archive, cfg *downloadConfig) (int64, error) {
	zipPath := e.storage.zipPath(a)
	tmpPath := e.storage.tempZipPath(a)

	if err := e.storage.ensureDir(filepath.Dir(zipPath)); err != nil {
		return 0, err
	}

	// Delete a previous incomplete download.
	os.Remove(tmpPath)

	var fetched int64
	_, statErr := os.Stat(zipPath)
	haveZip := statErr == nil && !cfg.force

	if !haveZip {
		var onProgress func(delta, total int64)
		if cfg.progressFn != nil {
			var done int64
			onProgress = func(delta, total int64) {
				done += delta
				cfg.progressFn(DownloadProgress{
					Archive:        a.Name,
					Phase:          PhaseFetch,
					BytesTotal:     total,
					BytesCompleted: done,
				})
			}
		}

		n, err := e.client.fetchArchive(ctx, a, tmpPath, onProgress)
		fetched = n
		if err != nil {
			return fetched, err
		}
		if err := os.Rename(tmpPath, zipPath); err != nil {
			os.Remove(tmpPath)
			return fetched, fmt.Errorf("%w: placing %s: %v", ErrIO, zipPath, err)
		}
	}

	var onExtract func(extracted, total int)
	if cfg.progressFn != nil {
		onExtract = func(extracted, total int) {
			cfg.progressFn(DownloadProgress{
				Archive:        a.Name,
				Phase:          PhaseExtract,
				FilesTotal:     total,
				FilesExtracted: extracted,
			})
		}
	}

	err := extractArchive(zipPath, e.storage.extractDir(a), e.storage.variantDir(), onExtract)
	if err != nil {
		return fetched, err
	}

	info, err := os.Stat(zipPath)
	var size int64
	if err == nil {
		size = info.Size()
	}

	// The marker is the extraction receipt; it must land before any
	// cleanup so an interruption between the two only wastes disk,
	// never correctness.
	if err := e.storage.writeMarker(completionMarker{
		Archive:     a.Name,
		Variant:     a.Variant,
		Bytes:       size,
		ExtractedAt: time.Now().UTC(),
	}); err != nil {
		return fetched, err
	}

	if cfg.cleanup {
		if err := os.Remove(zipPath); err != nil && !os.IsNotExist(err) {
			if e.logger != nil {
				e.logger.Warn("could not remove archive zip", "archive", a.Name, "error", err)
			}
		}
	}

	if cfg.progressFn != nil {
		cfg.progressFn(DownloadProgress{Archive: a.Name, Phase: PhaseDone})
	}
	if e.logger != nil {
		e.logger.Info("archive extracted", "archive", a.Name, "variant", a.Variant, "bytes", size)
	}
	return fetched, nil
}

// downloadAll processes the archives with a bounded worker pool.
// Archives are independent; a failure in one never stops the others,
// and results keep the input order.
func (e *downloadEngine) downloadAll(ctx context.Context, archives []Archive, cfg *downloadConfig) *Report {
	results := make([]ArchiveResult, len(archives))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)

	for i, a := range archives {
		i, a := i, a
		g.Go(func() error {
			results[i] = e.ensureLocal(ctx, a, cfg)
			// Failures are aggregated in the report, not returned,
			// so the pool keeps draining the remaining archives.
			return nil
		})
	}

	g.Wait()
	return &Report{Results: results}
}
