package geosynth

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractArchive unpacks a downloaded zip into tmpDir and then renames
// each top-level entry (scene directories) into finalDir.
//
// The two-stage layout gives per-archive atomicity: nothing appears
// under finalDir until the whole zip extracted cleanly, and concurrent
// extractions of different archives never interleave partial writes.
// Scene directories from different archives merge because each archive
// contributes distinct files per scene.
//
// Any failure before the rename stage removes tmpDir so a retry starts
// clean. Malformed zip content fails with ErrCorruptArchive.
func extractArchive(zipPath, tmpDir, finalDir string, onProgress func(extracted, total int)) (err error) {
	defer func() {
		if err != nil {
			os.RemoveAll(tmpDir)
		}
	}()

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("opening %s: %v: %w", zipPath, err, ErrCorruptArchive)
	}
	defer zr.Close()

	if err := os.RemoveAll(tmpDir); err != nil {
		return fmt.Errorf("%w: clearing %s: %v", ErrIO, tmpDir, err)
	}
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIO, tmpDir, err)
	}

	total := len(zr.File)
	for i, f := range zr.File {
		if err := extractEntry(f, tmpDir); err != nil {
			return err
		}
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	return mergeIntoFinal(tmpDir, finalDir)
}

// extractEntry writes one zip entry under dstRoot, rejecting paths
// that escape it.
func extractEntry(f *zip.File, dstRoot string) error {
	rel := filepath.Clean(filepath.FromSlash(f.Name))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("entry %q escapes archive root: %w", f.Name, ErrCorruptArchive)
	}
	dst := filepath.Join(dstRoot, rel)

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(dst, 0755); err != nil {
			return fmt.Errorf("%w: creating %s: %v", ErrIO, dst, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIO, filepath.Dir(dst), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("entry %q: %v: %w", f.Name, err, ErrCorruptArchive)
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIO, dst, err)
	}

	_, err = io.Copy(out, rc)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		if isDiskErr(err) {
			return fmt.Errorf("%w: writing %s: %v", ErrIO, dst, err)
		}
		return fmt.Errorf("entry %q: %v: %w", f.Name, err, ErrCorruptArchive)
	}
	return nil
}

// mergeIntoFinal moves the extracted tree into the shared variant
// directory. Scene directories are created on first sight; individual
// files are renamed in, which is atomic on the same filesystem.
func mergeIntoFinal(tmpDir, finalDir string) error {
	if err := os.MkdirAll(finalDir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIO, finalDir, err)
	}

	err := filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("%w: walking %s: %v", ErrIO, path, err)
		}
		rel, relErr := filepath.Rel(tmpDir, path)
		if relErr != nil {
			return fmt.Errorf("%w: %v", ErrIO, relErr)
		}
		dst := filepath.Join(finalDir, rel)

		if info.IsDir() {
			if rel == "." {
				return nil
			}
			if mkErr := os.MkdirAll(dst, 0755); mkErr != nil {
				return fmt.Errorf("%w: creating %s: %v", ErrIO, dst, mkErr)
			}
			return nil
		}

		if rnErr := os.Rename(path, dst); rnErr != nil {
			return fmt.Errorf("%w: placing %s: %v", ErrIO, dst, rnErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return os.RemoveAll(tmpDir)
}
