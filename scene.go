package geosynth

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Scene groups the asset handles for a single captured exemplar.
// A Scene owns paths and metadata only, never decoded data.
type Scene struct {
	id      string
	dir     string
	present map[DataType]struct{}
}

// ID returns the stable scene identifier, derived from the scene's
// directory name.
func (s *Scene) ID() string { return s.id }

// Dir returns the scene's directory.
func (s *Scene) Dir() string { return s.dir }

// DataTypes returns the data types present for this scene, sorted.
func (s *Scene) DataTypes() []DataType {
	out := make([]DataType, 0, len(s.present))
	for dt := range s.present {
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether the scene has a file for the data type.
func (s *Scene) Has(dt DataType) bool {
	_, ok := s.present[dt]
	return ok
}

// Asset returns the lazy handle for the given data type.
// A data type absent for this scene fails with ErrMissingAsset; it is
// never replaced by a placeholder.
func (s *Scene) Asset(dt DataType) (*Asset, error) {
	if !dt.Valid() {
		return nil, &InvalidRequestError{Identifier: string(dt)}
	}
	if !s.Has(dt) {
		return nil, &MissingAssetError{SceneID: s.id, DataType: dt}
	}
	return &Asset{
		sceneID: s.id,
		dt:      dt,
		path:    filepath.Join(s.dir, dt.Filename()),
	}, nil
}

// String summarizes the scene for diagnostics.
func (s *Scene) String() string {
	names := make([]string, 0, len(s.present))
	for _, dt := range s.DataTypes() {
		names = append(names, string(dt))
	}
	return fmt.Sprintf("Scene(%s: %s)", s.id, strings.Join(names, ", "))
}
