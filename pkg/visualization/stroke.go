package visualization

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// Stroke describes an outline: its color and its width in points
type Stroke struct {
	Color color.Color
	Width float64
}

type fpoint struct {
	x, y float64
}

// Rectangle outlines the axis-aligned box with corner (x, y) and the given
// size in data units. The outline is clipped to the axes.
func (f *Figure) Rectangle(x, y, width, height float64, s Stroke) {
	corners := [][2]float64{{x, y}, {x + width, y}, {x + width, y + height}, {x, y + height}}
	pts := make([]fpoint, 0, len(corners))
	for _, c := range corners {
		px, py := f.ToPixel(c[0], c[1])
		pts = append(pts, fpoint{px, py})
	}
	f.strokePath(pts, true, s, f.axes)
}

// Line draws a polyline through the data points (xs[i], ys[i]), clipped to the axes
func (f *Figure) Line(xs, ys []float64, s Stroke) {
	n := min(len(xs), len(ys))
	pts := make([]fpoint, 0, n)
	for i := 0; i < n; i++ {
		px, py := f.ToPixel(xs[i], ys[i])
		pts = append(pts, fpoint{px, py})
	}
	f.strokePath(pts, false, s, f.axes)
}

// strokePath fills one quad per segment. Segments are extended by half the
// width at both ends, which gives square caps and mitred right-angle corners.
func (f *Figure) strokePath(pts []fpoint, closed bool, s Stroke, clip image.Rectangle) {
	clip = clip.Intersect(f.canvas.Bounds())
	if len(pts) < 2 || clip.Empty() || s.Color == nil || !(s.Width > 0) {
		return
	}

	w := f.Points(s.Width) / 2
	if w < 0.5 {
		w = 0.5
	}

	raster := vector.NewRasterizer(clip.Dx(), clip.Dy())
	ox, oy := float64(clip.Min.X), float64(clip.Min.Y)

	segments := len(pts) - 1
	if closed {
		segments = len(pts)
	}

	drawn := false
	for i := 0; i < segments; i++ {
		a, b := pts[i], pts[(i+1)%len(pts)]

		vx, vy := b.x-a.x, b.y-a.y
		vl := math.Hypot(vx, vy)
		if vl == 0 || math.IsNaN(vl) || math.IsInf(vl, 0) {
			continue
		}
		ux, uy := vx/vl, vy/vl
		nx, ny := -uy*w, ux*w

		// extend along the segment direction
		sx, sy := a.x-ux*w, a.y-uy*w
		ex, ey := b.x+ux*w, b.y+uy*w

		raster.MoveTo(clampCoord(sx+nx-ox), clampCoord(sy+ny-oy))
		raster.LineTo(clampCoord(ex+nx-ox), clampCoord(ey+ny-oy))
		raster.LineTo(clampCoord(ex-nx-ox), clampCoord(ey-ny-oy))
		raster.LineTo(clampCoord(sx-nx-ox), clampCoord(sy-ny-oy))
		raster.ClosePath()
		drawn = true
	}

	if drawn {
		raster.Draw(f.canvas, clip, image.NewUniform(s.Color), image.Point{})
	}
}

// clampCoord bounds far off-canvas vertices so the rasterizer's scanline walk stays short
func clampCoord(v float64) float32 {
	const limit = 1 << 16
	return float32(math.Max(-limit, math.Min(limit, v)))
}
