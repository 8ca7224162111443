package geosynth

import (
	"fmt"
	"math"
)

// Visualization helpers: pure, stateless transforms from decoded
// values to displayable uint8 RGB images. They never touch disk.
// Only some data types define a visualization; the rest fail with
// ErrNoVisualization, which reports the absence of the capability
// rather than a problem with the asset.

// VisualizeOptions tunes the defined visualizations.
type VisualizeOptions struct {
	// DepthMin and DepthMax bound the depth range mapped onto the
	// Turbo colormap. Used by the depth visualization only.
	DepthMin float32
	DepthMax float32

	// Base is an optional (H, W, 3) image to blend instance masks
	// over. Used by the instance segmentation visualization only.
	Base *ByteArray

	// Alpha is the mask blend weight over Base, in (0, 1].
	// Defaults to 0.5 when Base is set.
	Alpha float32
}

// Visualize produces a uint8 RGB visualization of a decoded value for
// the given data type.
//
// Defined for: depth (Turbo colormap), normals (XYZ mapped to RGB),
// semantic_segmentation (label palette), instance_segmentation
// (per-instance colors, optionally blended over opts.Base).
func Visualize(dt DataType, v Value, opts VisualizeOptions) (*ByteArray, error) {
	switch dt {
	case Depth:
		arr, ok := v.(*FloatArray)
		if !ok || len(arr.Shape) != 2 {
			return nil, fmt.Errorf("geosynth: depth visualization needs a (H, W) float array")
		}
		min, max := opts.DepthMin, opts.DepthMax
		if min == 0 && max == 0 {
			min, max = 0, 10
		}
		return Turbo(arr, min, max), nil

	case Normals:
		arr, ok := v.(*FloatArray)
		if !ok || len(arr.Shape) != 3 || arr.Shape[2] != 3 {
			return nil, fmt.Errorf("geosynth: normals visualization needs a (H, W, 3) float array")
		}
		return visualizeNormals(arr), nil

	case SemanticSegmentation:
		arr, ok := v.(*ByteArray)
		if !ok || len(arr.Shape) != 2 {
			return nil, fmt.Errorf("geosynth: semantic visualization needs a (H, W) byte array")
		}
		return visualizeSemantic(arr)

	case InstanceSegmentation:
		masks, ok := v.(InstanceMasks)
		if !ok {
			return nil, fmt.Errorf("geosynth: instance visualization needs instance masks")
		}
		return VisualizeInstances(masks, opts.Base, opts.Alpha)

	default:
		return nil, fmt.Errorf("%w for %s", ErrNoVisualization, dt)
	}
}

// ToUint8 maps float data in [0, 1] to uint8 with rounding and
// clipping, preserving shape.
func ToUint8(a *FloatArray) *ByteArray {
	out := &ByteArray{Shape: append([]int(nil), a.Shape...), Data: make([]uint8, len(a.Data))}
	for i, v := range a.Data {
		scaled := math.Round(float64(v) * 255)
		if scaled < 0 {
			scaled = 0
		}
		if scaled > 255 {
			scaled = 255
		}
		out.Data[i] = uint8(scaled)
	}
	return out
}

// ApplyPalette colormaps float data in [0, 1] through an RGB palette,
// interpolating between adjacent entries. Data is scaled onto a
// 256-entry index range and clamped to the palette's last entry. The
// output gains a trailing channel axis of length 3.
func ApplyPalette(palette [][3]uint8, a *FloatArray) (*ByteArray, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("geosynth: empty palette")
	}

	shape := append(append([]int(nil), a.Shape...), 3)
	out := &ByteArray{Shape: shape, Data: make([]uint8, len(a.Data)*3)}
	last := len(palette) - 1
	for i, v := range a.Data {
		pos := float64(v) * 255
		if pos < 0 {
			pos = 0
		}
		if pos > float64(last) {
			pos = float64(last)
		}
		lo := int(pos)
		hi := lo + 1
		if hi > last {
			hi = last
		}
		f := pos - float64(lo)
		for c := 0; c < 3; c++ {
			blended := float64(palette[lo][c]) + (float64(palette[hi][c])-float64(palette[lo][c]))*f
			out.Data[i*3+c] = uint8(math.Round(blended))
		}
	}
	return out, nil
}

// Turbo maps a (H, W) float array onto the Turbo colormap, producing
// a (H, W, 3) uint8 image. Values are normalized into [min, max].
func Turbo(a *FloatArray, min, max float32) *ByteArray {
	h, w := a.Shape[0], a.Shape[1]
	out := &ByteArray{Shape: []int{h, w, 3}, Data: make([]uint8, h*w*3)}

	span := float64(max - min)
	if span <= 0 {
		span = 1
	}
	for i, v := range a.Data {
		t := (float64(v) - float64(min)) / span
		r, g, b := turboAt(t)
		out.Data[i*3] = uint8(math.Round(r * 255))
		out.Data[i*3+1] = uint8(math.Round(g * 255))
		out.Data[i*3+2] = uint8(math.Round(b * 255))
	}
	return out
}

// visualizeNormals maps unit normals to RGB with n/2 + 0.5.
func visualizeNormals(a *FloatArray) *ByteArray {
	scaled := &FloatArray{Shape: a.Shape, Data: make([]float32, len(a.Data))}
	for i, v := range a.Data {
		scaled.Data[i] = v/2 + 0.5
	}
	return ToUint8(scaled)
}

// visualizeSemantic colorizes a (H, W) label image by the semantic
// palette. Stored labels index the palette directly, so the image is
// normalized before the interpolating application.
func visualizeSemantic(a *ByteArray) (*ByteArray, error) {
	norm := &FloatArray{Shape: append([]int(nil), a.Shape...), Data: make([]float32, len(a.Data))}
	for i, label := range a.Data {
		norm.Data[i] = float32(label) / 255
	}
	return ApplyPalette(SemanticPalette, norm)
}

// VisualizeInstances colorizes per-instance masks. With a nil base, a
// black canvas sized from the first mask stack is used and instances
// are painted opaque; with a base image, masks are alpha-blended over
// it. Instances are colored in label order so the output is
// deterministic.
func VisualizeInstances(masks InstanceMasks, base *ByteArray, alpha float32) (*ByteArray, error) {
	if len(masks) == 0 {
		return nil, fmt.Errorf("geosynth: no instances to visualize")
	}

	var h, w int
	for _, label := range masks.Labels() {
		stack := masks[label]
		h, w = stack.Shape[1], stack.Shape[2]
		break
	}

	var out *ByteArray
	if base != nil {
		if len(base.Shape) != 3 || base.Shape[0] != h || base.Shape[1] != w || base.Shape[2] != 3 {
			return nil, fmt.Errorf("geosynth: base image shape %v does not match masks (%d, %d)", base.Shape, h, w)
		}
		out = base.Clone()
		if alpha <= 0 || alpha > 1 {
			alpha = 0.5
		}
	} else {
		out = &ByteArray{Shape: []int{h, w, 3}, Data: make([]uint8, h*w*3)}
		alpha = 1
	}

	instance := 0
	for _, label := range masks.Labels() {
		stack := masks[label]
		if stack.Shape[1] != h || stack.Shape[2] != w {
			return nil, fmt.Errorf("geosynth: mask stack %q shape %v does not match (%d, %d)", label, stack.Shape, h, w)
		}
		for n := 0; n < stack.Shape[0]; n++ {
			color := instanceColor(instance)
			instance++
			mask := stack.Mask(n)
			for i, on := range mask.Data {
				if !on {
					continue
				}
				for c := 0; c < 3; c++ {
					old := float32(out.Data[i*3+c])
					out.Data[i*3+c] = uint8(old*(1-alpha) + float32(color[c])*alpha)
				}
			}
		}
	}
	return out, nil
}

// InstanceBBox computes the normalized inclusive bounding box of a
// (H, W) binary mask as [top_left_x, top_left_y, bottom_right_x,
// bottom_right_y], all in [0, 1]. A mask with no set pixels yields all
// NaN.
func InstanceBBox(mask *BoolArray) ([4]float32, error) {
	if len(mask.Shape) != 2 {
		return [4]float32{}, fmt.Errorf("geosynth: bbox needs a (H, W) mask, got rank %d", len(mask.Shape))
	}
	h, w := mask.Shape[0], mask.Shape[1]

	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask.Data[y*w+x] {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < 0 {
		nan := float32(math.NaN())
		return [4]float32{nan, nan, nan, nan}, nil
	}

	return [4]float32{
		float32(minX) / float32(w),
		float32(minY) / float32(h),
		float32(maxX) / float32(w),
		float32(maxY) / float32(h),
	}, nil
}

// InstanceBBoxes computes bounding boxes for every instance in the
// mapping, keyed by class label, one box per stack entry.
func InstanceBBoxes(masks InstanceMasks) (map[string][][4]float32, error) {
	out := make(map[string][][4]float32, len(masks))
	for label, stack := range masks {
		boxes := make([][4]float32, 0, stack.Shape[0])
		for n := 0; n < stack.Shape[0]; n++ {
			box, err := InstanceBBox(stack.Mask(n))
			if err != nil {
				return nil, err
			}
			boxes = append(boxes, box)
		}
		out[label] = boxes
	}
	return out, nil
}
