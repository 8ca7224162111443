package geosynth

// Shared fixture builders. Tensor fixtures are built byte-by-byte so
// the tests exercise the real container parsing instead of a
// write-then-read round trip through this package.

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

// Common float16 bit patterns.
const (
	halfHalf   = 0x3800 // 0.5
	halfOne    = 0x3C00 // 1.0
	halfTwo    = 0x4000 // 2.0
	halfNegOne = 0xBC00 // -1.0
)

// npyBytes serializes a version 1 npy stream.
func npyBytes(t *testing.T, descr string, shape []int, raw []byte) []byte {
	t.Helper()

	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	shapeStr := "(" + strings.Join(dims, ", ") + ")"
	if len(shape) == 1 {
		shapeStr = "(" + dims[0] + ",)"
	}

	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shapeStr)
	for (10+len(header)+1)%16 != 0 {
		header += " "
	}
	header += "\n"

	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.WriteByte(1)
	buf.WriteByte(0)
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(header))); err != nil {
		t.Fatalf("writing npy header length: %v", err)
	}
	buf.WriteString(header)
	buf.Write(raw)
	return buf.Bytes()
}

// writeNpz writes an npz container with the given npy payloads, keyed
// by entry name without the .npy suffix. Entries are written in sorted
// name order.
func writeNpz(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name + ".npy")
		if err != nil {
			t.Fatalf("creating npz entry: %v", err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			t.Fatalf("writing npz entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing npz: %v", err)
	}
	mustWriteFile(t, path, buf.Bytes())
}

func f32le(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func f16le(bits ...uint16) []byte {
	out := make([]byte, 2*len(bits))
	for i, b := range bits {
		binary.LittleEndian.PutUint16(out[i*2:], b)
	}
	return out
}

func boolBytes(vals ...bool) []byte {
	out := make([]byte, len(vals))
	for i, v := range vals {
		if v {
			out[i] = 1
		}
	}
	return out
}

// writeGrayPNG writes a (h, w) 8-bit grayscale PNG.
func writeGrayPNG(t *testing.T, path string, w, h int, pix []uint8) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, pix)
	writePNG(t, path, img)
}

// writeRGBPNG writes a (h, w) color PNG from flat RGB triples.
func writeRGBPNG(t *testing.T, path string, w, h int, rgb []uint8) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Pix[i*4] = rgb[i*3]
		img.Pix[i*4+1] = rgb[i*3+1]
		img.Pix[i*4+2] = rgb[i*3+2]
		img.Pix[i*4+3] = 0xFF
	}
	writePNG(t, path, img)
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	mustWriteFile(t, path, buf.Bytes())
}

// writeHDR writes a flat (non-RLE) Radiance RGBE image. Each pixel is
// four bytes: red, green, blue mantissas and a shared exponent.
// (128, 128, 128, 129) decodes to RGB (1.0, 1.0, 1.0).
func writeHDR(t *testing.T, path string, w, h int, pixels [][4]byte) {
	t.Helper()

	if len(pixels) != w*h {
		t.Fatalf("hdr fixture: %d pixels for %dx%d image", len(pixels), w, h)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y %d +X %d\n", h, w)
	for _, p := range pixels {
		buf.Write(p[:])
	}
	mustWriteFile(t, path, buf.Bytes())
}

// zipBytes builds a zip archive in memory from path -> content.
func zipBytes(t *testing.T, files map[string][]byte) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry: %v", err)
		}
		if _, err := w.Write(files[name]); err != nil {
			t.Fatalf("writing zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func mustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating fixture dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
}

// sceneFixture creates a scene directory with the given data types,
// each backed by a minimal decodable file, and returns the scene dir.
func sceneFixture(t *testing.T, variantDir, sceneID string, dtypes ...DataType) string {
	t.Helper()

	dir := filepath.Join(variantDir, sceneID)
	for _, dt := range dtypes {
		path := filepath.Join(dir, dt.Filename())
		switch dt.Kind() {
		case KindImage:
			writeGrayPNG(t, path, 2, 2, []uint8{0, 1, 2, 3})
		case KindHDRImage:
			writeHDR(t, path, 1, 1, [][4]byte{{128, 128, 128, 129}})
		case KindFloatTensor:
			writeNpz(t, path, map[string][]byte{
				"arr_0": npyBytes(t, "<f4", []int{2, 2}, f32le(1, 2, 3, 4)),
			})
		case KindInstanceMasks:
			writeNpz(t, path, map[string][]byte{
				"chair": npyBytes(t, "|b1", []int{1, 2, 2}, boolBytes(true, false, false, true)),
			})
		case KindLighting:
			mustWriteFile(t, path, []byte(`{"ambient":{"color":[1,1,1],"intensity":0.5},"points":[],"directionals":[]}`))
		}
	}
	return dir
}
