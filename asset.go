package geosynth

import "os"

// Asset is a lazy handle to one data type file of one scene.
// Constructing an Asset never touches disk; Read performs exactly one
// decode per call and returns a fresh value each time, so repeated
// reads are idempotent but not free. This keeps memory flat when
// iterating thousands of scenes.
type Asset struct {
	sceneID string
	dt      DataType
	path    string
}

// DataType returns the data type the asset decodes as.
func (a *Asset) DataType() DataType { return a.dt }

// Path returns the on-disk path the asset reads from.
func (a *Asset) Path() string { return a.path }

// Exists reports whether the backing file is present on disk.
func (a *Asset) Exists() bool {
	_, err := os.Stat(a.path)
	return err == nil
}

// Read decodes the backing file according to the data type's decode
// kind. A missing file fails with ErrMissingAsset; malformed content
// fails with a DecodeError naming the path.
func (a *Asset) Read() (Value, error) {
	if !a.Exists() {
		return nil, &MissingAssetError{SceneID: a.sceneID, DataType: a.dt}
	}
	return decodeValue(a.dt, a.path)
}

// ReadFloat reads the asset as a FloatArray.
// Fails with a DecodeError if the data type decodes to another kind.
func (a *Asset) ReadFloat() (*FloatArray, error) {
	v, err := a.Read()
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*FloatArray)
	if !ok {
		return nil, decodeErr(a.path, "%s decodes as %s, not a float array", a.dt, a.dt.Kind())
	}
	return arr, nil
}

// ReadBytes reads the asset as a ByteArray.
func (a *Asset) ReadBytes() (*ByteArray, error) {
	v, err := a.Read()
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*ByteArray)
	if !ok {
		return nil, decodeErr(a.path, "%s decodes as %s, not a byte array", a.dt, a.dt.Kind())
	}
	return arr, nil
}

// ReadMasks reads the asset as per-instance boolean mask stacks.
func (a *Asset) ReadMasks() (InstanceMasks, error) {
	v, err := a.Read()
	if err != nil {
		return nil, err
	}
	masks, ok := v.(InstanceMasks)
	if !ok {
		return nil, decodeErr(a.path, "%s decodes as %s, not instance masks", a.dt, a.dt.Kind())
	}
	return masks, nil
}

// ReadLighting reads the asset as a lighting model.
func (a *Asset) ReadLighting() (*LightingModel, error) {
	v, err := a.Read()
	if err != nil {
		return nil, err
	}
	model, ok := v.(*LightingModel)
	if !ok {
		return nil, decodeErr(a.path, "%s decodes as %s, not lighting", a.dt, a.dt.Kind())
	}
	return model, nil
}
