package geosynth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultLockTimeout is the default timeout for acquiring the
// per-variant download lock.
const DefaultLockTimeout = 30 * time.Second

// metaDirName is the per-variant directory holding completion markers,
// retained zips, and extraction scratch space. Dotted so the scene
// index never mistakes it for a scene.
const metaDirName = ".geosynth"

// envDataDir is the environment override for the destination root.
const envDataDir = "GEOSYNTH_DATA_DIR"

// completionMarker is the persisted proof that an archive was fully
// extracted. It is written only after extraction succeeds, never after
// a bare download, so an interrupted run re-attempts the archive.
type completionMarker struct {
	// Archive is the archive name the marker belongs to.
	Archive string `json:"archive"`

	// Variant namespaces the marker by release tier.
	Variant Variant `json:"variant"`

	// Bytes is the size of the downloaded zip.
	Bytes int64 `json:"bytes"`

	// ExtractedAt is when extraction completed.
	ExtractedAt time.Time `json:"extracted_at"`
}

// storageInterface defines the local filesystem operations the
// download manager needs. Implemented by *storage for production and
// by mocks in tests.
type storageInterface interface {
	// variantDir returns <dataDir>/<variant>, the directory the scene
	// index later scans.
	variantDir() string

	// zipPath returns where the retained archive zip lives.
	zipPath(a Archive) string

	// tempZipPath returns the in-flight download path for an archive.
	tempZipPath(a Archive) string

	// extractDir returns the archive-scoped temporary extraction dir.
	extractDir(a Archive) string

	// lockPath returns the per-variant download lock file.
	lockPath() string

	// readMarker loads the completion marker for an archive.
	// ok is false when no marker exists.
	readMarker(a Archive) (m completionMarker, ok bool, err error)

	// writeMarker atomically persists the completion marker.
	writeMarker(m completionMarker) error

	// ensureDir creates a directory and its parents.
	ensureDir(path string) error
}

// storage handles all local filesystem layout and marker bookkeeping.
type storage struct {
	// dataDir is the destination root holding one directory per variant.
	dataDir string

	// variant selects the subdirectory all operations work under.
	variant Variant
}

var _ storageInterface = (*storage)(nil)

// newStorage resolves the destination root for the configuration.
// Priority: GEOSYNTH_DATA_DIR > Config.DataDir > platform default.
func newStorage(cfg Config) (*storage, error) {
	variant := cfg.Variant
	if variant == "" {
		variant = VariantDemo
	}
	if _, err := ParseVariant(string(variant)); err != nil {
		return nil, err
	}

	var dataDir string
	if envDir := os.Getenv(envDataDir); envDir != "" {
		dataDir = envDir
	} else if cfg.DataDir != "" {
		dataDir = cfg.DataDir
	} else {
		defaultDir, err := getDefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("%w: resolving default data dir: %v", ErrIO, err)
		}
		dataDir = defaultDir
	}

	return &storage{dataDir: dataDir, variant: variant}, nil
}

func (s *storage) variantDir() string {
	return filepath.Join(s.dataDir, string(s.variant))
}

func (s *storage) metaDir() string {
	return filepath.Join(s.variantDir(), metaDirName)
}

func (s *storage) markerPath(a Archive) string {
	return filepath.Join(s.metaDir(), "markers", a.Name+".json")
}

func (s *storage) zipPath(a Archive) string {
	return filepath.Join(s.metaDir(), "archives", a.Filename())
}

func (s *storage) tempZipPath(a Archive) string {
	return s.zipPath(a) + ".tmp"
}

func (s *storage) extractDir(a Archive) string {
	return filepath.Join(s.metaDir(), "tmp", a.Name)
}

func (s *storage) lockPath() string {
	return filepath.Join(s.metaDir(), "download.lock")
}

func (s *storage) ensureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIO, path, err)
	}
	return nil
}

// readMarker loads and parses the completion marker for an archive.
// A marker that exists but cannot be parsed is treated as absent, so a
// half-written marker from a crashed run forces a re-download rather
// than poisoning the cache check.
func (s *storage) readMarker(a Archive) (completionMarker, bool, error) {
	data, err := os.ReadFile(s.markerPath(a))
	if os.IsNotExist(err) {
		return completionMarker{}, false, nil
	}
	if err != nil {
		return completionMarker{}, false, fmt.Errorf("%w: reading marker for %s: %v", ErrIO, a.Name, err)
	}

	var m completionMarker
	if err := json.Unmarshal(data, &m); err != nil {
		return completionMarker{}, false, nil
	}
	if m.Archive != a.Name || m.Variant != a.Variant {
		return completionMarker{}, false, nil
	}
	return m, true, nil
}

// writeMarker persists the completion marker with write-then-rename so
// a crash can never leave a marker that lies about extraction state.
func (s *storage) writeMarker(m completionMarker) error {
	path := s.markerPath(Archive{Name: m.Archive, Variant: m.Variant})
	if err := s.ensureDir(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding marker: %v", ErrIO, err)
	}
	return s.atomicWrite(path, data)
}

// atomicWrite writes data to path using write-then-rename.
func (s *storage) atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrIO, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: renaming %s: %v", ErrIO, path, err)
	}
	return nil
}
