package geosynth

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/x448/float16"
)

// npy container parsing. The dataset stores tensors as compressed npz
// files (a zip of one .npy entry per array). Depth and normals are
// stored as float16 and widened to float32 on read, so the parser has
// to understand the "<f2" descr that general-purpose readers reject.

// npyMagic is the six-byte prefix of every npy stream.
const npyMagic = "\x93NUMPY"

// npyArray is a parsed npy payload prior to type conversion.
type npyArray struct {
	// descr is the numpy dtype string, e.g. "<f2" or "|b1".
	descr string

	// shape gives the extent of each dimension. Empty for 0-d scalars.
	shape []int

	// raw is the little-endian element data.
	raw []byte
}

// itemSize returns the per-element byte width for a descr.
func itemSize(descr string) (int, bool) {
	switch descr {
	case "|b1", "|u1", "<u1", "|i1", "<i1":
		return 1, true
	case "<f2", "<i2", "<u2":
		return 2, true
	case "<f4", "<i4", "<u4":
		return 4, true
	case "<f8", "<i8", "<u8":
		return 8, true
	default:
		return 0, false
	}
}

// parseNpy reads a single npy stream.
func parseNpy(r io.Reader, path string) (*npyArray, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, decodeErr(path, "short npy header: %v", err)
	}
	if string(magic[:6]) != npyMagic {
		return nil, decodeErr(path, "not an npy stream")
	}
	major := magic[6]

	var headerLen int
	switch major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, decodeErr(path, "reading npy header length: %v", err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, decodeErr(path, "reading npy header length: %v", err)
		}
		headerLen = int(n)
	default:
		return nil, decodeErr(path, "unsupported npy version %d", major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, decodeErr(path, "short npy header dict: %v", err)
	}

	descr, fortran, shape, err := parseNpyHeader(string(header))
	if err != nil {
		return nil, decodeErr(path, "%v", err)
	}
	if fortran {
		return nil, decodeErr(path, "fortran-order arrays not supported")
	}

	size, ok := itemSize(descr)
	if !ok {
		return nil, decodeErr(path, "unsupported dtype %q", descr)
	}

	want := numElems(shape) * size
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, decodeErr(path, "reading npy data: %v", err)
	}
	if len(raw) < want {
		return nil, decodeErr(path, "truncated npy data: have %d bytes, want %d", len(raw), want)
	}

	return &npyArray{descr: descr, shape: shape, raw: raw[:want]}, nil
}

// parseNpyHeader parses the python dict literal that follows the npy
// magic, e.g. {'descr': '<f4', 'fortran_order': False, 'shape': (3, 3), }.
func parseNpyHeader(h string) (descr string, fortran bool, shape []int, err error) {
	descr, err = dictString(h, "descr")
	if err != nil {
		return "", false, nil, err
	}

	switch {
	case strings.Contains(h, "'fortran_order': True"):
		fortran = true
	case strings.Contains(h, "'fortran_order': False"):
		fortran = false
	default:
		return "", false, nil, fmt.Errorf("npy header missing fortran_order")
	}

	open := strings.Index(h, "(")
	closing := strings.Index(h, ")")
	if open < 0 || closing < open {
		return "", false, nil, fmt.Errorf("npy header missing shape")
	}
	for _, part := range strings.Split(h[open+1:closing], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, convErr := strconv.Atoi(part)
		if convErr != nil || d < 0 {
			return "", false, nil, fmt.Errorf("npy header bad shape element %q", part)
		}
		shape = append(shape, d)
	}

	return descr, fortran, shape, nil
}

// dictString extracts a single-quoted string value for key from a
// python dict literal.
func dictString(h, key string) (string, error) {
	marker := "'" + key + "':"
	i := strings.Index(h, marker)
	if i < 0 {
		return "", fmt.Errorf("npy header missing %s", key)
	}
	rest := h[i+len(marker):]
	start := strings.Index(rest, "'")
	if start < 0 {
		return "", fmt.Errorf("npy header bad %s", key)
	}
	end := strings.Index(rest[start+1:], "'")
	if end < 0 {
		return "", fmt.Errorf("npy header bad %s", key)
	}
	return rest[start+1 : start+1+end], nil
}

// toFloat32 converts the payload to a FloatArray, widening or
// narrowing the stored element type as needed.
func (a *npyArray) toFloat32(path string) (*FloatArray, error) {
	n := numElems(a.shape)
	out := &FloatArray{Shape: append([]int(nil), a.shape...), Data: make([]float32, n)}

	switch a.descr {
	case "<f2":
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint16(a.raw[i*2:])
			out.Data[i] = float16.Frombits(bits).Float32()
		}
	case "<f4":
		for i := 0; i < n; i++ {
			out.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(a.raw[i*4:]))
		}
	case "<f8":
		for i := 0; i < n; i++ {
			out.Data[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(a.raw[i*8:])))
		}
	case "<i4":
		for i := 0; i < n; i++ {
			out.Data[i] = float32(int32(binary.LittleEndian.Uint32(a.raw[i*4:])))
		}
	case "<i8":
		for i := 0; i < n; i++ {
			out.Data[i] = float32(int64(binary.LittleEndian.Uint64(a.raw[i*8:])))
		}
	case "|u1", "<u1":
		for i := 0; i < n; i++ {
			out.Data[i] = float32(a.raw[i])
		}
	default:
		return nil, decodeErr(path, "dtype %q not convertible to float32", a.descr)
	}

	return out, nil
}

// toBool converts the payload to a BoolArray.
func (a *npyArray) toBool(path string) (*BoolArray, error) {
	if a.descr != "|b1" {
		return nil, decodeErr(path, "dtype %q is not boolean", a.descr)
	}
	n := numElems(a.shape)
	out := &BoolArray{Shape: append([]int(nil), a.shape...), Data: make([]bool, n)}
	for i := 0; i < n; i++ {
		out.Data[i] = a.raw[i] != 0
	}
	return out, nil
}

// npzEntry is one named array inside an npz container.
type npzEntry struct {
	name  string
	array *npyArray
}

// readNpz opens an npz container and parses every entry, preserving
// the container order.
func readNpz(path string) ([]npzEntry, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, decodeErr(path, "opening npz: %v", err)
	}
	defer zr.Close()

	var entries []npzEntry
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, ".npy")
		rc, err := f.Open()
		if err != nil {
			return nil, decodeErr(path, "opening npz entry %s: %v", f.Name, err)
		}
		arr, err := parseNpy(rc, path)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, npzEntry{name: name, array: arr})
	}
	if len(entries) == 0 {
		return nil, decodeErr(path, "empty npz")
	}
	return entries, nil
}
