package visualization

import (
	"image/color"
	"math"
	"strconv"
)

const (
	frameWidth    = 0.8 // pt
	tickLength    = 3.5 // pt
	tickPad       = 3.5 // pt
	tickLabelSize = 10  // pt
	maxTicks      = 9
)

// drawFrame outlines the axes box and labels both axes with evenly spaced ticks
func (f *Figure) drawFrame() {
	black := color.RGBA{A: 0xff}
	frame := Stroke{Color: black, Width: frameWidth}
	bounds := f.canvas.Bounds()

	a := f.axes
	corners := []fpoint{
		{float64(a.Min.X), float64(a.Min.Y)},
		{float64(a.Max.X), float64(a.Min.Y)},
		{float64(a.Max.X), float64(a.Max.Y)},
		{float64(a.Min.X), float64(a.Max.Y)},
	}
	f.strokePath(corners, true, frame, bounds)

	tick := f.Points(tickLength)
	pad := f.Points(tickPad)
	labelStyle := TextStyle{Color: black, Size: tickLabelSize}
	e := f.extent

	bottom := float64(a.Max.Y)
	for _, v := range NiceTicks(e.Left, e.Right, maxTicks) {
		px, _ := f.ToPixel(v, e.Top)
		f.strokePath([]fpoint{{px, bottom}, {px, bottom + tick}}, false, frame, bounds)

		style := labelStyle
		style.HAlign, style.VAlign = Center, Top
		f.drawText(px, bottom+tick+pad, formatTick(v, e.Left, e.Right), style)
	}

	left := float64(a.Min.X)
	for _, v := range NiceTicks(e.Bottom, e.Top, maxTicks) {
		_, py := f.ToPixel(e.Left, v)
		f.strokePath([]fpoint{{left, py}, {left - tick, py}}, false, frame, bounds)

		style := labelStyle
		style.HAlign, style.VAlign = Right, Middle
		f.drawText(left-tick-pad, py, formatTick(v, e.Bottom, e.Top), style)
	}
}

// NiceTicks returns round tick values covering [lo, hi] (in either order),
// spaced by 1, 2, 2.5 or 5 times a power of ten, at most n of them.
func NiceTicks(lo, hi float64, n int) []float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	span := hi - lo
	if span <= 0 || n < 2 || math.IsNaN(span) || math.IsInf(span, 0) {
		return nil
	}

	step := tickStep(span, n)
	start := math.Ceil(lo/step-1e-9) * step
	var ticks []float64
	for v := start; v <= hi+step*1e-9; v += step {
		// snap to the step grid to keep labels free of accumulated error
		ticks = append(ticks, math.Round(v/step)*step)
	}
	return ticks
}

func tickStep(span float64, n int) float64 {
	raw := span / float64(n-1)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*mag >= raw {
			return m * mag
		}
	}
	return 10 * mag
}

// formatTick prints v with just enough decimals for the tick spacing of [lo, hi]
func formatTick(v, lo, hi float64) string {
	step := tickStep(math.Abs(hi-lo), maxTicks)
	decimals := 0
	for ; decimals < 12; decimals++ {
		scaled := step * math.Pow(10, float64(decimals))
		if math.Abs(scaled-math.Round(scaled)) <= 1e-9*scaled {
			break
		}
	}
	// adding zero turns -0 into 0
	return strconv.FormatFloat(v+0, 'f', decimals, 64)
}
