package renderer

import (
	"image/color"
	"math"
)

// Palette maps a normalized field value in [0,1] to a color.
type Palette func(v float64) color.RGBA

// TrailPalette ramps from transparent through amber to white.
func TrailPalette(v float64) color.RGBA {
	v = clamp01(v)
	// sqrt lifts faint trails so they stay visible next to a saturated core
	v = math.Sqrt(v)
	return color.RGBA{
		R: uint8(255 * math.Min(1, 2*v)),
		G: uint8(255 * math.Max(0, 2*v-0.6) / 1.4),
		B: uint8(255 * math.Max(0, 2*v-1.4) / 0.6),
		A: uint8(220 * v),
	}
}

// HomePalette ramps from transparent to cyan.
func HomePalette(v float64) color.RGBA {
	v = math.Sqrt(clamp01(v))
	return color.RGBA{R: 40, G: uint8(120 + 135*v), B: 255, A: uint8(200 * v)}
}

// Normalize writes values/ceiling into dst, allocating when dst is too
// short. A non-positive ceiling normalizes by the field maximum.
func Normalize(dst, values []float64, ceiling float64) []float64 {
	if cap(dst) < len(values) {
		dst = make([]float64, len(values))
	}
	dst = dst[:len(values)]

	if ceiling <= 0 {
		for _, v := range values {
			ceiling = math.Max(ceiling, v)
		}
	}
	if ceiling <= 0 {
		clear(dst)
		return dst
	}
	for i, v := range values {
		dst[i] = v / ceiling
	}
	return dst
}

// LevelColor colors an ant by its activity level: red when active,
// blue when inactive, brighter further from zero.
func LevelColor(level float64) color.RGBA {
	m := clamp01(math.Abs(level))
	shade := uint8(110 + 145*m)
	if level > 0 {
		return color.RGBA{R: shade, G: 60, B: 50, A: 255}
	}
	return color.RGBA{R: 60, G: 90, B: shade, A: 255}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
