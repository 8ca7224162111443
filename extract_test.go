package geosynth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeZipFile(t *testing.T, path string, files map[string][]byte) {
	t.Helper()
	mustWriteFile(t, path, zipBytes(t, files))
}

func TestExtractArchive(t *testing.T) {
	t.Run("extracts and merges into the final dir", func(t *testing.T) {
		root := t.TempDir()
		zipPath := filepath.Join(root, "rgb.zip")
		writeZipFile(t, zipPath, map[string][]byte{
			"scene_a/rgb.png": []byte("a"),
			"scene_b/rgb.png": []byte("b"),
		})

		tmpDir := filepath.Join(root, "tmp")
		finalDir := filepath.Join(root, "final")
		if err := extractArchive(zipPath, tmpDir, finalDir, nil); err != nil {
			t.Fatalf("extractArchive() error = %v", err)
		}

		for scene, want := range map[string]string{"scene_a": "a", "scene_b": "b"} {
			data, err := os.ReadFile(filepath.Join(finalDir, scene, "rgb.png"))
			if err != nil {
				t.Fatalf("reading extracted file: %v", err)
			}
			if string(data) != want {
				t.Errorf("extracted content = %q, want %q", data, want)
			}
		}

		if _, err := os.Stat(tmpDir); !os.IsNotExist(err) {
			t.Error("temp dir not removed after merge")
		}
	})

	t.Run("archives merge into shared scene dirs", func(t *testing.T) {
		root := t.TempDir()
		finalDir := filepath.Join(root, "final")

		first := filepath.Join(root, "rgb.zip")
		writeZipFile(t, first, map[string][]byte{"scene_a/rgb.png": []byte("rgb")})
		second := filepath.Join(root, "depth.zip")
		writeZipFile(t, second, map[string][]byte{"scene_a/depth.npz": []byte("depth")})

		if err := extractArchive(first, filepath.Join(root, "t1"), finalDir, nil); err != nil {
			t.Fatalf("first extractArchive() error = %v", err)
		}
		if err := extractArchive(second, filepath.Join(root, "t2"), finalDir, nil); err != nil {
			t.Fatalf("second extractArchive() error = %v", err)
		}

		for _, name := range []string{"rgb.png", "depth.npz"} {
			if _, err := os.Stat(filepath.Join(finalDir, "scene_a", name)); err != nil {
				t.Errorf("merged file %s missing: %v", name, err)
			}
		}
	})

	t.Run("progress counts every entry", func(t *testing.T) {
		root := t.TempDir()
		zipPath := filepath.Join(root, "rgb.zip")
		writeZipFile(t, zipPath, map[string][]byte{
			"scene_a/rgb.png": []byte("a"),
			"scene_b/rgb.png": []byte("b"),
			"scene_c/rgb.png": []byte("c"),
		})

		var calls int
		var lastExtracted, lastTotal int
		err := extractArchive(zipPath, filepath.Join(root, "tmp"), filepath.Join(root, "final"),
			func(extracted, total int) {
				calls++
				lastExtracted, lastTotal = extracted, total
			})
		if err != nil {
			t.Fatalf("extractArchive() error = %v", err)
		}
		if calls != 3 || lastExtracted != 3 || lastTotal != 3 {
			t.Errorf("progress calls=%d last=%d/%d, want 3 calls ending at 3/3", calls, lastExtracted, lastTotal)
		}
	})

	t.Run("not a zip fails with ErrCorruptArchive", func(t *testing.T) {
		root := t.TempDir()
		zipPath := filepath.Join(root, "rgb.zip")
		mustWriteFile(t, zipPath, []byte("garbage bytes"))

		tmpDir := filepath.Join(root, "tmp")
		err := extractArchive(zipPath, tmpDir, filepath.Join(root, "final"), nil)
		if !errors.Is(err, ErrCorruptArchive) {
			t.Errorf("extractArchive() error = %v, want ErrCorruptArchive", err)
		}
		if _, statErr := os.Stat(tmpDir); !os.IsNotExist(statErr) {
			t.Error("temp dir not rolled back after failure")
		}
	})

	t.Run("path traversal entries rejected", func(t *testing.T) {
		root := t.TempDir()
		zipPath := filepath.Join(root, "evil.zip")
		writeZipFile(t, zipPath, map[string][]byte{
			"../escape.txt": []byte("evil"),
		})

		finalDir := filepath.Join(root, "final")
		err := extractArchive(zipPath, filepath.Join(root, "tmp"), finalDir, nil)
		if !errors.Is(err, ErrCorruptArchive) {
			t.Errorf("extractArchive() error = %v, want ErrCorruptArchive", err)
		}
		if _, statErr := os.Stat(filepath.Join(root, "escape.txt")); !os.IsNotExist(statErr) {
			t.Error("traversal entry escaped the extraction root")
		}
	})

	t.Run("dot-dot filename prefix is not a traversal", func(t *testing.T) {
		root := t.TempDir()
		zipPath := filepath.Join(root, "ok.zip")
		writeZipFile(t, zipPath, map[string][]byte{
			"scene_a/..notes.txt": []byte("fine"),
		})

		finalDir := filepath.Join(root, "final")
		if err := extractArchive(zipPath, filepath.Join(root, "tmp"), finalDir, nil); err != nil {
			t.Fatalf("extractArchive() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(finalDir, "scene_a", "..notes.txt")); err != nil {
			t.Errorf("dot-dot prefixed entry not extracted: %v", err)
		}
	})

	t.Run("nothing lands in the final dir on failure", func(t *testing.T) {
		root := t.TempDir()
		zipPath := filepath.Join(root, "evil.zip")
		writeZipFile(t, zipPath, map[string][]byte{
			"scene_a/rgb.png": []byte("fine"),
			"../escape.txt":   []byte("evil"),
		})

		finalDir := filepath.Join(root, "final")
		if err := extractArchive(zipPath, filepath.Join(root, "tmp"), finalDir, nil); err == nil {
			t.Fatal("extractArchive() error = nil, want failure")
		}
		if _, err := os.Stat(filepath.Join(finalDir, "scene_a")); !os.IsNotExist(err) {
			t.Error("partial extraction leaked into the final dir")
		}
	})
}
