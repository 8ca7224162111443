package geosynth

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// buildIndex scans the variant directory once and returns one entry
// per scene, sorted lexicographically by scene identifier so that
// integer indexing is stable across runs and machines regardless of
// filesystem enumeration order.
//
// A directory whose files match no catalog entry is not a scene and is
// excluded. A scene missing some data types is still included; partial
// scenes are valid since not every archive need be downloaded.
func buildIndex(dir string) ([]*Scene, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading dataset dir %s: %v", ErrIO, dir, err)
	}

	var scenes []*Scene
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		sceneDir := filepath.Join(dir, entry.Name())
		present, err := scanScene(sceneDir)
		if err != nil {
			return nil, err
		}
		if len(present) == 0 {
			continue
		}

		scenes = append(scenes, &Scene{
			id:      entry.Name(),
			dir:     sceneDir,
			present: present,
		})
	}

	sort.Slice(scenes, func(i, j int) bool { return scenes[i].id < scenes[j].id })
	return scenes, nil
}

// scanScene records which catalog data types have a file in the scene
// directory. Unrecognized files are ignored.
func scanScene(dir string) (map[DataType]struct{}, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading scene dir %s: %v", ErrIO, dir, err)
	}

	present := make(map[DataType]struct{})
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if dt, ok := knownFilenames[f.Name()]; ok {
			present[dt] = struct{}{}
		}
	}
	return present, nil
}
