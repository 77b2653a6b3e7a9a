package visualization

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Colormap maps normalized intensities in [0, 1] to colors by linear
// interpolation between evenly spaced stops.
type Colormap struct {
	Name  string
	stops []color.RGBA
}

var colormaps = map[string]Colormap{
	"viridis": {Name: "viridis", stops: []color.RGBA{
		{0x44, 0x01, 0x54, 0xff},
		{0x48, 0x28, 0x78, 0xff},
		{0x3e, 0x49, 0x89, 0xff},
		{0x31, 0x68, 0x8e, 0xff},
		{0x26, 0x82, 0x8e, 0xff},
		{0x1f, 0x9e, 0x89, 0xff},
		{0x35, 0xb7, 0x79, 0xff},
		{0x6e, 0xce, 0x58, 0xff},
		{0xfd, 0xe7, 0x25, 0xff},
	}},
	"gray": {Name: "gray", stops: []color.RGBA{
		{0x00, 0x00, 0x00, 0xff},
		{0xff, 0xff, 0xff, 0xff},
	}},
}

// LookupColormap returns the named colormap
func LookupColormap(name string) (Colormap, error) {
	key := strings.ToLower(name)
	if key == "grey" {
		key = "gray"
	}
	c, ok := colormaps[key]
	if !ok {
		return Colormap{}, fmt.Errorf("unknown colormap %q", name)
	}
	return c, nil
}

// At returns the color for t, clamped to [0, 1]. NaN maps to the lowest color.
func (c Colormap) At(t float64) color.RGBA {
	if t <= 0 || math.IsNaN(t) {
		return c.stops[0]
	}
	if t >= 1 {
		return c.stops[len(c.stops)-1]
	}

	pos := t * float64(len(c.stops)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := c.stops[i], c.stops[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac))
	}
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 0xff}
}

// Render normalizes data to the min/max of its finite elements and colors
// every element. NaN and ±Inf elements are left transparent.
func (c Colormap) Render(data mat.Matrix) *image.RGBA {
	rows, cols := data.Dims()
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))

	lo, hi, ok := finiteRange(data)
	if !ok {
		return img
	}
	span := hi - lo

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := data.At(y, x)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			t := 0.0
			if span > 0 {
				t = (v - lo) / span
			}
			img.SetRGBA(x, y, c.At(t))
		}
	}
	return img
}

// finiteRange returns the smallest and largest finite elements of data;
// ok is false when there are none.
func finiteRange(data mat.Matrix) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	rows, cols := data.Dims()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := data.At(y, x)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	return lo, hi, ok
}
