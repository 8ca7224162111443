package geosynth

import "sort"

// DataType identifies one categorical kind of per-scene data.
// The set of data types is closed; adding a new kind of data to the
// dataset means adding a constant here and a row to the catalog.
type DataType string

// All data types shipped with the dataset. Types prefixed with "hdr_"
// are high-dynamic-range companions of their base type.
const (
	CubeEnvironmentMap      DataType = "cube_environment_map"
	Depth                   DataType = "depth"
	Extrinsics              DataType = "extrinsics"
	Gravity                 DataType = "gravity"
	HdrCubeEnvironmentMap   DataType = "hdr_cube_environment_map"
	HdrReflectance          DataType = "hdr_reflectance"
	HdrResidual             DataType = "hdr_residual"
	HdrRgb                  DataType = "hdr_rgb"
	HdrShading              DataType = "hdr_shading"
	HdrSphereEnvironmentMap DataType = "hdr_sphere_environment_map"
	InstanceSegmentation    DataType = "instance_segmentation"
	Intrinsics              DataType = "intrinsics"
	LayoutLinesFull         DataType = "layout_lines_full"
	LayoutLinesOccluded     DataType = "layout_lines_occluded"
	LayoutLinesVisible      DataType = "layout_lines_visible"
	Lighting                DataType = "lighting"
	Normals                 DataType = "normals"
	Reflectance             DataType = "reflectance"
	Residual                DataType = "residual"
	Rgb                     DataType = "rgb"
	SemanticSegmentation    DataType = "semantic_segmentation"
	Shading                 DataType = "shading"
	SphereEnvironmentMap    DataType = "sphere_environment_map"
)

// Group aliases accepted anywhere a DataType identifier is accepted.
const (
	// GroupAll expands to every known data type.
	GroupAll = "all"

	// GroupNonHDR expands to every data type whose HDR flag is false.
	GroupNonHDR = "non-hdr"
)

// DecodeKind selects the decode routine for a data type's on-disk file.
type DecodeKind int

const (
	// KindImage is an 8-bit PNG image, (H, W, 3) RGB or (H, W) grayscale.
	KindImage DecodeKind = iota

	// KindHDRImage is a Radiance RGBE image decoded to (H, W, 3) float32.
	KindHDRImage

	// KindFloatTensor is a single-array npz decoded to float32.
	// float16 payloads are widened to float32 on read.
	KindFloatTensor

	// KindInstanceMasks is an npz mapping class labels to (N, H, W)
	// boolean per-instance mask stacks.
	KindInstanceMasks

	// KindLighting is a JSON light-source description.
	KindLighting
)

// String returns a short name for the decode kind, for listings and errors.
func (k DecodeKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindHDRImage:
		return "hdr-image"
	case KindFloatTensor:
		return "float-tensor"
	case KindInstanceMasks:
		return "instance-masks"
	case KindLighting:
		return "lighting"
	default:
		return "unknown"
	}
}

// assetSpec is one row of the static catalog: everything the rest of
// the package needs to know about a data type.
type assetSpec struct {
	// ext is the file extension including the leading dot.
	ext string

	// kind selects the decode routine.
	kind DecodeKind

	// hdr marks high-dynamic-range types, excluded from the "non-hdr" group.
	hdr bool

	// archive is the name of the remote archive carrying this type.
	// The published bucket hosts one zip per data type, so names map
	// one-to-one today, but several types may share an archive.
	archive string
}

// assetSpecs is the full catalog. Keep sorted by data type name.
var assetSpecs = map[DataType]assetSpec{
	CubeEnvironmentMap:      {ext: ".npz", kind: KindFloatTensor, archive: "cube_environment_map"},
	Depth:                   {ext: ".npz", kind: KindFloatTensor, archive: "depth"},
	Extrinsics:              {ext: ".npz", kind: KindFloatTensor, archive: "extrinsics"},
	Gravity:                 {ext: ".npz", kind: KindFloatTensor, archive: "gravity"},
	HdrCubeEnvironmentMap:   {ext: ".npz", kind: KindFloatTensor, hdr: true, archive: "hdr_cube_environment_map"},
	HdrReflectance:          {ext: ".hdr", kind: KindHDRImage, hdr: true, archive: "hdr_reflectance"},
	HdrResidual:             {ext: ".hdr", kind: KindHDRImage, hdr: true, archive: "hdr_residual"},
	HdrRgb:                  {ext: ".hdr", kind: KindHDRImage, hdr: true, archive: "hdr_rgb"},
	HdrShading:              {ext: ".hdr", kind: KindHDRImage, hdr: true, archive: "hdr_shading"},
	HdrSphereEnvironmentMap: {ext: ".hdr", kind: KindHDRImage, hdr: true, archive: "hdr_sphere_environment_map"},
	InstanceSegmentation:    {ext: ".npz", kind: KindInstanceMasks, archive: "instance_segmentation"},
	Intrinsics:              {ext: ".npz", kind: KindFloatTensor, archive: "intrinsics"},
	LayoutLinesFull:         {ext: ".npz", kind: KindFloatTensor, archive: "layout_lines_full"},
	LayoutLinesOccluded:     {ext: ".npz", kind: KindFloatTensor, archive: "layout_lines_occluded"},
	LayoutLinesVisible:      {ext: ".npz", kind: KindFloatTensor, archive: "layout_lines_visible"},
	Lighting:                {ext: ".json", kind: KindLighting, archive: "lighting"},
	Normals:                 {ext: ".npz", kind: KindFloatTensor, archive: "normals"},
	Reflectance:             {ext: ".png", kind: KindImage, archive: "reflectance"},
	Residual:                {ext: ".png", kind: KindImage, archive: "residual"},
	Rgb:                     {ext: ".png", kind: KindImage, archive: "rgb"},
	SemanticSegmentation:    {ext: ".png", kind: KindImage, archive: "semantic_segmentation"},
	Shading:                 {ext: ".png", kind: KindImage, archive: "shading"},
	SphereEnvironmentMap:    {ext: ".png", kind: KindImage, archive: "sphere_environment_map"},
}

// knownFilenames is the reverse lookup used by the scene index when
// matching on-disk filenames. Built once at init.
var knownFilenames = func() map[string]DataType {
	m := make(map[string]DataType, len(assetSpecs))
	for dt, spec := range assetSpecs {
		m[string(dt)+spec.ext] = dt
	}
	return m
}()

// Valid reports whether dt is a known data type.
func (dt DataType) Valid() bool {
	_, ok := assetSpecs[dt]
	return ok
}

// Ext returns the file extension for the data type, including the dot.
// Returns "" for unknown types.
func (dt DataType) Ext() string {
	return assetSpecs[dt].ext
}

// Kind returns the decode kind for the data type.
func (dt DataType) Kind() DecodeKind {
	return assetSpecs[dt].kind
}

// IsHDR reports whether the data type belongs to the HDR-only group.
func (dt DataType) IsHDR() bool {
	return assetSpecs[dt].hdr
}

// ArchiveName returns the name of the remote archive carrying this
// data type. Multiple data types may share one archive.
func (dt DataType) ArchiveName() string {
	return assetSpecs[dt].archive
}

// Filename returns the on-disk filename for the data type within a
// scene directory, e.g. "depth.npz".
func (dt DataType) Filename() string {
	return string(dt) + assetSpecs[dt].ext
}

// ParseDataType validates an identifier against the catalog.
// Returns ErrInvalidRequest for unknown identifiers. Group aliases
// ("all", "non-hdr") are not data types and are rejected here; they
// are expanded by Resolve.
func ParseDataType(s string) (DataType, error) {
	dt := DataType(s)
	if !dt.Valid() {
		return "", &InvalidRequestError{Identifier: s}
	}
	return dt, nil
}

// AllDataTypes returns every known data type, sorted by name.
func AllDataTypes() []DataType {
	out := make([]DataType, 0, len(assetSpecs))
	for dt := range assetSpecs {
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NonHDRDataTypes returns every data type outside the HDR group,
// sorted by name.
func NonHDRDataTypes() []DataType {
	out := make([]DataType, 0, len(assetSpecs))
	for dt, spec := range assetSpecs {
		if !spec.hdr {
			out = append(out, dt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
