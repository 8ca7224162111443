package geosynth

import (
	"errors"
	"fmt"
)

// Sentinel errors for dataset operations.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrInvalidRequest indicates an unknown data type or variant was
	// requested. Always a caller bug; never retried.
	ErrInvalidRequest = errors.New("geosynth: invalid request")

	// ErrNetwork indicates a transport or server failure while fetching
	// an archive. Retried with bounded backoff before being surfaced.
	ErrNetwork = errors.New("geosynth: network error")

	// ErrUnavailable indicates the remote archive does not exist for the
	// requested variant (HTTP 404). Not retried.
	ErrUnavailable = errors.New("geosynth: archive not available")

	// ErrIO indicates a filesystem operation failed (disk full,
	// permission). Fatal; never retried.
	ErrIO = errors.New("geosynth: storage error")

	// ErrCorruptArchive indicates a downloaded archive could not be
	// extracted. The partial extraction is rolled back and the archive
	// is re-fetched once before the error is surfaced.
	ErrCorruptArchive = errors.New("geosynth: corrupt archive")

	// ErrMissingAsset indicates a scene has no file for the requested
	// data type. Surfaced to the accessing code only.
	ErrMissingAsset = errors.New("geosynth: asset not present for scene")

	// ErrDecode indicates an asset file exists but its content is
	// malformed. Surfaced per read; does not abort iteration.
	ErrDecode = errors.New("geosynth: decode error")

	// ErrNoVisualization indicates the data type has no defined
	// visualization. The capability is absent, not the asset.
	ErrNoVisualization = errors.New("geosynth: no visualization defined")
)

// InvalidRequestError reports an identifier that is not in the catalog.
type InvalidRequestError struct {
	// Identifier is the offending data type or group name.
	Identifier string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("geosynth: invalid request: unknown identifier %q", e.Identifier)
}

// Unwrap makes errors.Is(err, ErrInvalidRequest) hold.
func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

// MissingAssetError reports an absent data type for a specific scene.
type MissingAssetError struct {
	SceneID  string
	DataType DataType
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("geosynth: scene %s has no %s asset", e.SceneID, e.DataType)
}

func (e *MissingAssetError) Unwrap() error { return ErrMissingAsset }

// DecodeError identifies which asset file could not be decoded.
// The caller must always see the offending path.
type DecodeError struct {
	// Path is the file that failed to decode.
	Path string

	// Reason describes what went wrong.
	Reason error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("geosynth: decoding %s: %v", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

// decodeErr wraps a failure against a path into a DecodeError.
func decodeErr(path string, format string, args ...any) error {
	return &DecodeError{Path: path, Reason: fmt.Errorf(format, args...)}
}
