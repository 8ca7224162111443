package geosynth

import (
	"image"
	_ "image/png"
	"os"
	"sort"

	"github.com/mdouchement/hdr"
	_ "github.com/mdouchement/hdr/codec/rgbe"
)

// decodeValue dispatches on the data type's decode kind.
// Every call decodes from disk and returns a fresh value; nothing is
// cached across calls.
func decodeValue(dt DataType, path string) (Value, error) {
	switch dt.Kind() {
	case KindImage:
		return decodeImage(path)
	case KindHDRImage:
		return decodeHDRImage(path)
	case KindFloatTensor:
		return decodeFloatTensor(path)
	case KindInstanceMasks:
		return decodeInstanceMasks(path)
	case KindLighting:
		return decodeLighting(path)
	default:
		return nil, decodeErr(path, "no decoder for kind %s", dt.Kind())
	}
}

// decodeImage reads an 8-bit PNG into a (H, W, 3) RGB or (H, W)
// grayscale ByteArray.
func decodeImage(path string) (*ByteArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, decodeErr(path, "opening image: %v", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, decodeErr(path, "parsing image: %v", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if gray, ok := img.(*image.Gray); ok {
		out := &ByteArray{Shape: []int{h, w}, Data: make([]uint8, h*w)}
		for y := 0; y < h; y++ {
			copy(out.Data[y*w:(y+1)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
		return out, nil
	}

	out := &ByteArray{Shape: []int{h, w, 3}, Data: make([]uint8, h*w*3)}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out.Data[i] = uint8(r >> 8)
			out.Data[i+1] = uint8(g >> 8)
			out.Data[i+2] = uint8(bl >> 8)
			i += 3
		}
	}
	return out, nil
}

// decodeHDRImage reads a Radiance RGBE image into a (H, W, 3) float32
// FloatArray.
func decodeHDRImage(path string) (*FloatArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, decodeErr(path, "opening hdr image: %v", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, decodeErr(path, "parsing hdr image: %v", err)
	}

	hdrImg, ok := img.(hdr.Image)
	if !ok {
		return nil, decodeErr(path, "not a high dynamic range image")
	}

	b := hdrImg.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &FloatArray{Shape: []int{h, w, 3}, Data: make([]float32, h*w*3)}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := hdrImg.HDRAt(x, y).HDRRGBA()
			out.Data[i] = float32(r)
			out.Data[i+1] = float32(g)
			out.Data[i+2] = float32(bl)
			i += 3
		}
	}
	return out, nil
}

// decodeFloatTensor reads a single-array npz into a FloatArray.
// A non-mask npz with more than one entry is malformed.
func decodeFloatTensor(path string) (*FloatArray, error) {
	entries, err := readNpz(path)
	if err != nil {
		return nil, err
	}
	if len(entries) != 1 {
		return nil, decodeErr(path, "expected a single array, npz has %d entries", len(entries))
	}
	return entries[0].array.toFloat32(path)
}

// decodeInstanceMasks reads an npz of boolean stacks into an
// InstanceMasks mapping, one (N, H, W) stack per class label.
func decodeInstanceMasks(path string) (InstanceMasks, error) {
	entries, err := readNpz(path)
	if err != nil {
		return nil, err
	}

	out := make(InstanceMasks, len(entries))
	for _, e := range entries {
		stack, err := e.array.toBool(path)
		if err != nil {
			return nil, err
		}
		if len(stack.Shape) != 3 {
			return nil, decodeErr(path, "mask stack %q has rank %d, want 3", e.name, len(stack.Shape))
		}
		out[e.name] = stack
	}
	return out, nil
}

// Labels returns the class labels present in the mapping, sorted.
func (m InstanceMasks) Labels() []string {
	out := make([]string, 0, len(m))
	for label := range m {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}
