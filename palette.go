package geosynth

import "math"

// turboAt evaluates the Turbo colormap polynomial approximation at
// t in [0, 1], returning RGB in [0, 1]. Coefficients are the published
// fifth-order fit to the Turbo lookup table.
func turboAt(t float64) (r, g, b float64) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	t2 := t * t
	t3 := t2 * t
	t4 := t3 * t
	t5 := t4 * t

	r = 0.13572138 + 4.61539260*t - 42.66032258*t2 + 132.13108234*t3 - 152.94239396*t4 + 59.28637943*t5
	g = 0.09140261 + 2.19418839*t + 4.84296658*t2 - 14.18503333*t3 + 4.27729857*t4 + 2.82956604*t5
	b = 0.10667330 + 12.64194608*t - 60.58204836*t2 + 110.36276771*t3 - 89.90310912*t4 + 27.34824973*t5

	return clamp01(r), clamp01(g), clamp01(b)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SemanticPalette is the 256-entry RGB palette used to colorize
// semantic segmentation labels. Entry i is the color for the stored
// pixel value i. Built once at init from evenly spaced hues so that
// neighboring label values get visually distinct colors.
var SemanticPalette = func() [][3]uint8 {
	palette := make([][3]uint8, 256)
	palette[0] = [3]uint8{0, 0, 0} // background stays black
	for i := 1; i < 256; i++ {
		// Golden-angle hue stepping spreads consecutive labels far
		// apart on the color wheel.
		hue := math.Mod(float64(i)*137.508, 360)
		r, g, b := hsvToRGB(hue, 0.72, 0.92)
		palette[i] = [3]uint8{r, g, b}
	}
	return palette
}()

// instanceColor returns a stable color for instance i of any class.
func instanceColor(i int) [3]uint8 {
	hue := math.Mod(float64(i)*137.508+53, 360)
	r, g, b := hsvToRGB(hue, 0.85, 1.0)
	return [3]uint8{r, g, b}
}

// hsvToRGB converts hue [0, 360), saturation and value [0, 1] to
// 8-bit RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8(math.Round((r + m) * 255)), uint8(math.Round((g + m) * 255)), uint8(math.Round((b + m) * 255))
}
