package geosynth

import "fmt"

// Value is a decoded asset payload. One of *FloatArray, *ByteArray,
// InstanceMasks, or *LightingModel.
type Value interface {
	value()
}

// FloatArray is a dense float32 array with row-major storage.
// Depth maps are (H, W), normals and HDR imagery (H, W, 3),
// intrinsics (3, 3), gravity (3).
type FloatArray struct {
	// Shape gives the extent of each dimension.
	Shape []int

	// Data holds the elements in row-major order. len(Data) is the
	// product of Shape.
	Data []float32
}

func (*FloatArray) value() {}

// Len returns the total number of elements.
func (a *FloatArray) Len() int { return numElems(a.Shape) }

// At returns the element at the given indices.
// Panics if the number of indices does not match the rank.
func (a *FloatArray) At(idx ...int) float32 {
	return a.Data[flatIndex(a.Shape, idx)]
}

// Clone returns a deep copy. Reads already return fresh arrays; Clone
// exists for callers that mutate derived values.
func (a *FloatArray) Clone() *FloatArray {
	out := &FloatArray{
		Shape: append([]int(nil), a.Shape...),
		Data:  append([]float32(nil), a.Data...),
	}
	return out
}

// ByteArray is a dense uint8 array with row-major storage.
// Standard imagery is (H, W, 3) RGB or (H, W) grayscale.
type ByteArray struct {
	Shape []int
	Data  []uint8
}

func (*ByteArray) value() {}

// Len returns the total number of elements.
func (a *ByteArray) Len() int { return numElems(a.Shape) }

// At returns the element at the given indices.
func (a *ByteArray) At(idx ...int) uint8 {
	return a.Data[flatIndex(a.Shape, idx)]
}

// Clone returns a deep copy.
func (a *ByteArray) Clone() *ByteArray {
	return &ByteArray{
		Shape: append([]int(nil), a.Shape...),
		Data:  append([]uint8(nil), a.Data...),
	}
}

// BoolArray is a dense boolean array with row-major storage.
// Instance mask stacks are (N, H, W), one slice per instance.
type BoolArray struct {
	Shape []int
	Data  []bool
}

func (*BoolArray) value() {}

// Len returns the total number of elements.
func (a *BoolArray) Len() int { return numElems(a.Shape) }

// At returns the element at the given indices.
func (a *BoolArray) At(idx ...int) bool {
	return a.Data[flatIndex(a.Shape, idx)]
}

// Mask returns the (H, W) slice for instance i of an (N, H, W) stack.
// The returned array shares storage with the stack.
func (a *BoolArray) Mask(i int) *BoolArray {
	if len(a.Shape) != 3 {
		panic(fmt.Sprintf("geosynth: Mask on rank-%d array", len(a.Shape)))
	}
	h, w := a.Shape[1], a.Shape[2]
	return &BoolArray{
		Shape: []int{h, w},
		Data:  a.Data[i*h*w : (i+1)*h*w],
	}
}

// InstanceMasks maps a class label to the (N, H, W) stack of
// per-instance boolean masks present in a scene.
type InstanceMasks map[string]*BoolArray

func (InstanceMasks) value() {}

func numElems(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func flatIndex(shape, idx []int) int {
	if len(idx) != len(shape) {
		panic(fmt.Sprintf("geosynth: %d indices for rank-%d array", len(idx), len(shape)))
	}
	flat := 0
	for i, d := range shape {
		flat = flat*d + idx[i]
	}
	return flat
}
