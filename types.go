package geosynth

import (
	"fmt"
	"strings"
	"time"
)

// DefaultBaseURL is the public bucket serving the dataset archives.
const DefaultBaseURL = "https://storage.googleapis.com/geomagical-geosynth-public"

// Config configures the geosynth module.
type Config struct {
	// BaseURL is the base URL of the archive host.
	// If empty, DefaultBaseURL is used.
	BaseURL string

	// DataDir is the destination root for downloaded scenes.
	// If empty, uses the platform-appropriate default.
	// Can also be set via the GEOSYNTH_DATA_DIR environment variable.
	DataDir string

	// Variant selects the dataset release tier.
	// If empty, VariantDemo is used.
	Variant Variant
}

// Variant is a dataset release tier.
//
// The demo variant contains the following scenes:
//   - AI043_007_v001-8e009bbdcbffb624b8d86b0005a01915
//   - AI043_008_v001-43f091c0ab99ee97f02204db92babad3
//   - AI043_010_v001-2b71d64e5d04563b56e0d3e5725307d3
//   - AI48_003_v001-0a825c69869524ed2518d04de356504d
//   - AI48_006_v001-6b752db1da84a977212a6dd18f3cddf7
//   - AI48_009_v001-2d5dc4fb7323f2aae0a91430bdadf5ee
type Variant string

const (
	// VariantDemo is the small sample release.
	VariantDemo Variant = "demo"

	// VariantFull is the complete release.
	VariantFull Variant = "full"
)

// ParseVariant validates a variant name (case-insensitive).
// Returns ErrInvalidRequest for anything other than "demo" or "full".
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(s)) {
	case VariantDemo:
		return VariantDemo, nil
	case VariantFull:
		return VariantFull, nil
	default:
		return "", fmt.Errorf("%w: variant %q not valid, choose one of: [demo full]", ErrInvalidRequest, s)
	}
}

// Archive is one remotely hosted compressed bundle covering one or
// more data types.
type Archive struct {
	// Name identifies the archive, e.g. "depth" or "layout_lines_full".
	Name string

	// Variant is the release tier the archive belongs to.
	Variant Variant

	// DataTypes lists the data types the archive carries, sorted.
	DataTypes []DataType
}

// Filename returns the remote and local zip filename for the archive.
func (a Archive) Filename() string {
	return a.Name + ".zip"
}

// Outcome classifies the result of ensuring one archive is local.
type Outcome int

const (
	// OutcomeSkipped means the completion marker was present and no
	// network access was performed.
	OutcomeSkipped Outcome = iota

	// OutcomeDownloaded means the archive was fetched and extracted.
	OutcomeDownloaded

	// OutcomeFailed means the archive could not be made local.
	OutcomeFailed
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ArchiveResult is the per-archive outcome of a download run.
type ArchiveResult struct {
	// Archive identifies the processed archive.
	Archive Archive

	// Outcome classifies what happened.
	Outcome Outcome

	// Err is nil unless Outcome is OutcomeFailed. Matches one of the
	// package sentinels via errors.Is.
	Err error

	// BytesFetched is the number of bytes transferred from the network.
	// Zero for cache hits.
	BytesFetched int64

	// Duration is how long the archive took to process.
	Duration time.Duration
}

// Report aggregates per-archive outcomes of one download run.
type Report struct {
	// Results holds one entry per resolved archive, in resolution order.
	Results []ArchiveResult
}

// Failed reports whether any archive failed.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

// Failures returns the failed results only.
func (r *Report) Failures() []ArchiveResult {
	var out []ArchiveResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			out = append(out, res)
		}
	}
	return out
}

// ArchiveStatus describes local completeness of one archive.
type ArchiveStatus struct {
	// Archive identifies the archive.
	Archive Archive

	// Complete is true when the completion marker is present.
	Complete bool

	// ExtractedAt is when the marker was written. Zero if incomplete.
	ExtractedAt time.Time
}

// DownloadPhase identifies what an archive download is currently doing.
type DownloadPhase string

const (
	// PhaseFetch is the network transfer phase.
	PhaseFetch DownloadPhase = "fetch"

	// PhaseExtract is the local extraction phase.
	PhaseExtract DownloadPhase = "extract"

	// PhaseDone is reported once after the marker is written.
	PhaseDone DownloadPhase = "done"
)

// DownloadProgress reports progress for one archive.
// Callbacks may be invoked from multiple goroutines and must be
// thread-safe.
type DownloadProgress struct {
	// Archive is the archive name being processed.
	Archive string

	// Phase is the current phase.
	Phase DownloadPhase

	// BytesTotal is the declared size of the transfer, or 0 if the
	// server did not declare one.
	BytesTotal int64

	// BytesCompleted is the bytes transferred so far.
	BytesCompleted int64

	// FilesTotal is the number of entries in the archive.
	// Only set during PhaseExtract.
	FilesTotal int

	// FilesExtracted is the number of entries extracted so far.
	FilesExtracted int
}
