package geosynth

import "fmt"

// Dataset is an ordered, indexable view over the scenes of one
// downloaded variant. It owns the root path and the scene index; the
// index is built once at construction and never mutated.
//
// The dataset tree must not be mutated concurrently with use. This is
// a documented precondition, not an enforced invariant.
type Dataset struct {
	dir    string
	scenes []*Scene
}

// Open builds a dataset over cfg.DataDir/<variant>.
func Open(cfg Config) (*Dataset, error) {
	st, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}
	return OpenDir(st.variantDir())
}

// OpenDir builds a dataset over a directory that directly contains
// scene subdirectories.
func OpenDir(dir string) (*Dataset, error) {
	scenes, err := buildIndex(dir)
	if err != nil {
		return nil, err
	}
	return &Dataset{dir: dir, scenes: scenes}, nil
}

// Dir returns the directory the dataset was built over.
func (d *Dataset) Dir() string { return d.dir }

// Len returns the number of scenes.
func (d *Dataset) Len() int { return len(d.scenes) }

// At returns the scene at position i. Negative positions index from
// the end, so At(-1) is the last scene. Out-of-range positions fail.
func (d *Dataset) At(i int) (*Scene, error) {
	n := len(d.scenes)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, fmt.Errorf("geosynth: scene index %d out of range [0, %d)", i, n)
	}
	return d.scenes[i], nil
}

// Scenes returns the scenes in index order. The slice is a fresh copy,
// so a new iteration always starts at position 0 and callers cannot
// perturb the index.
func (d *Dataset) Scenes() []*Scene {
	out := make([]*Scene, len(d.scenes))
	copy(out, d.scenes)
	return out
}

// SceneByID returns the scene with the given identifier, or false if
// no such scene exists.
func (d *Dataset) SceneByID(id string) (*Scene, bool) {
	// The index is sorted but small; linear scan keeps this trivial.
	for _, s := range d.scenes {
		if s.id == id {
			return s, true
		}
	}
	return nil, false
}

// WithDataType returns the scenes that have a file for the given data
// type, in index order.
func (d *Dataset) WithDataType(dt DataType) []*Scene {
	var out []*Scene
	for _, s := range d.scenes {
		if s.Has(dt) {
			out = append(out, s)
		}
	}
	return out
}
