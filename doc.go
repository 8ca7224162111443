// Package geosynth downloads and reads the GeoSynth dataset, a
// collection of photorealistic synthetic indoor scenes with per-pixel
// ground truth (color, depth, normals, segmentation, lighting and
// more).
//
// Downloads are idempotent and safe to resume: archives already
// extracted are skipped, partial failures never corrupt the local
// copy, and concurrent processes coordinate through a file lock.
//
// Basic usage:
//
//	cfg := geosynth.Config{Variant: geosynth.VariantDemo}
//	report, err := geosynth.Download(ctx, cfg, []string{"rgb", "depth"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mgr, _ := geosynth.NewManager(cfg)
//	ds, _ := mgr.Dataset()
//	scene, _ := ds.At(0)
//	asset, _ := scene.Asset(geosynth.Depth)
//	depth, err := asset.ReadFloat()
//
// Assets are lazy: opening a dataset or scene touches only directory
// listings, and file contents are decoded on Read.
package geosynth
