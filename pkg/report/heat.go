package report

import (
	"fmt"
	"slices"
)

// HeatMode selects how cell values map to colours.
type HeatMode string

// Heat modes.
const (
	HeatContinuous HeatMode = "continuous"
	HeatBands      HeatMode = "bands"
)

// RGB is a 24-bit colour.
type RGB struct {
	R, G, B uint8
}

// Hex returns the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Neutral is the colour of cells with no heat.
var Neutral = RGB{R: 255, G: 255, B: 255}

// Band endpoints.
var (
	bandLow  = RGB{R: 255, G: 237, B: 160}
	bandHigh = RGB{R: 189, G: 0, B: 38}
)

// DefaultBands are the absolute thresholds used in band mode.
var DefaultBands = []float64{1, 5, 20, 100}

// HeatScale assigns presentation colours to cell values. It has no effect on
// the values themselves.
type HeatScale struct {
	Mode  HeatMode
	Bands []float64
}

// Color returns the colour of value in a table whose largest value is maxValue.
func (h HeatScale) Color(value, maxValue float64) RGB {
	if h.Mode == HeatBands {
		return h.band(value)
	}

	if maxValue <= 0 {
		return Neutral
	}

	n := min(max(value/maxValue, 0), 1)

	return RGB{R: uint8(255 * n), G: uint8(255 * (1 - n))}
}

func (h HeatScale) band(value float64) RGB {
	if value <= 0 {
		return Neutral
	}

	bands := h.Bands
	if len(bands) == 0 {
		bands = DefaultBands
	}

	bands = slices.Sorted(slices.Values(bands))

	idx := len(bands)

	for i, limit := range bands {
		if value <= limit {
			idx = i

			break
		}
	}

	return lerp(bandLow, bandHigh, float64(idx)/float64(len(bands)))
}

func lerp(a, b RGB, t float64) RGB {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}

	return RGB{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}
