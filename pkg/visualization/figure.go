// Package visualization renders intensity arrays onto a raster figure in
// real-world coordinates and draws annotations on top of them.
package visualization

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// Subplot area of a single-axes figure, as fractions of the figure size
const (
	subplotLeft   = 0.125
	subplotRight  = 0.9
	subplotBottom = 0.11
	subplotTop    = 0.88
)

// FigureStyle configures the figure canvas
type FigureStyle struct {
	// Width and Height are the figure size in inches
	Width, Height float64

	// DPI is the number of canvas pixels per inch
	DPI float64

	// Colormap names the intensity colormap
	Colormap string

	// AccentColor is used for the center square and its labels
	AccentColor string
}

// DefaultFigureStyle returns a 10x6 inch figure at 100 dpi
func DefaultFigureStyle() FigureStyle {
	return FigureStyle{
		Width:       10,
		Height:      6,
		DPI:         100,
		Colormap:    "viridis",
		AccentColor: "red",
	}
}

func (s FigureStyle) withDefaults() FigureStyle {
	d := DefaultFigureStyle()
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.DPI <= 0 {
		s.DPI = d.DPI
	}
	if s.Colormap == "" {
		s.Colormap = d.Colormap
	}
	if s.AccentColor == "" {
		s.AccentColor = d.AccentColor
	}
	return s
}

// Extent is the data-coordinate box an image is mapped onto. Left and Right
// are the values at the left and right edges, Bottom and Top the values at the
// lower and upper edges; Bottom > Top gives a downward-pointing vertical axis.
type Extent struct {
	Left, Right, Bottom, Top float64
}

// Figure is a raster drawing surface with a single set of axes
type Figure struct {
	style  FigureStyle
	canvas *image.RGBA
	axes   image.Rectangle
	extent Extent
	faces  *faceCache
}

// NewFigure creates a blank white figure. Zero style fields take defaults.
func NewFigure(style FigureStyle) *Figure {
	style = style.withDefaults()

	w := int(math.Round(style.Width * style.DPI))
	h := int(math.Round(style.Height * style.DPI))
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	return &Figure{
		style:  style,
		canvas: canvas,
		axes:   subplotArea(w, h),
		extent: Extent{Left: 0, Right: 1, Bottom: 0, Top: 1},
		faces:  newFaceCache(style.DPI),
	}
}

func subplotArea(w, h int) image.Rectangle {
	return image.Rect(
		int(math.Round(subplotLeft*float64(w))),
		int(math.Round((1-subplotTop)*float64(h))),
		int(math.Round(subplotRight*float64(w))),
		int(math.Round((1-subplotBottom)*float64(h))),
	)
}

// Style returns the effective figure style
func (f *Figure) Style() FigureStyle {
	return f.style
}

// Canvas returns the rendered figure
func (f *Figure) Canvas() *image.RGBA {
	return f.canvas
}

// Axes returns the axes box in canvas pixels
func (f *Figure) Axes() image.Rectangle {
	return f.axes
}

// Extent returns the data coordinates currently mapped onto the axes box
func (f *Figure) Extent() Extent {
	return f.extent
}

// Points converts a length in typographic points to canvas pixels
func (f *Figure) Points(pt float64) float64 {
	return pt * f.style.DPI / 72
}

// ToPixel maps data coordinates to canvas coordinates
func (f *Figure) ToPixel(x, y float64) (float64, float64) {
	e := f.extent
	px := float64(f.axes.Min.X) + (x-e.Left)/(e.Right-e.Left)*float64(f.axes.Dx())
	py := float64(f.axes.Min.Y) + (y-e.Top)/(e.Bottom-e.Top)*float64(f.axes.Dy())
	return px, py
}

// Imshow renders data as a colormapped image spanning extent. The axes box
// is shrunk to keep data units square and row 0 is drawn along the top edge.
func (f *Figure) Imshow(data mat.Matrix, extent Extent) error {
	rows, cols := data.Dims()
	if rows == 0 || cols == 0 {
		return errors.New("cannot show an empty array")
	}

	dataW := math.Abs(extent.Right - extent.Left)
	dataH := math.Abs(extent.Top - extent.Bottom)
	if dataW == 0 || dataH == 0 || math.IsNaN(dataW) || math.IsNaN(dataH) {
		return fmt.Errorf("degenerate extent %+v", extent)
	}

	cmap, err := LookupColormap(f.style.Colormap)
	if err != nil {
		return err
	}

	f.axes = fitAspect(subplotArea(f.canvas.Bounds().Dx(), f.canvas.Bounds().Dy()), dataW/dataH)
	f.extent = extent

	src := cmap.Render(data)

	// Nearest neighbour keeps pixels crisp when enlarging; bilinear avoids aliasing when shrinking
	var interp xdraw.Interpolator = xdraw.NearestNeighbor
	if f.axes.Dx() < cols || f.axes.Dy() < rows {
		interp = xdraw.ApproxBiLinear
	}
	interp.Scale(f.canvas, f.axes, src, src.Bounds(), xdraw.Over, nil)

	f.drawFrame()
	return nil
}

// fitAspect returns the largest box of the given width/height ratio centered in area
func fitAspect(area image.Rectangle, ratio float64) image.Rectangle {
	aw, ah := float64(area.Dx()), float64(area.Dy())

	w, h := aw, aw/ratio
	if aw/ah > ratio {
		w, h = ah*ratio, ah
	}

	x0 := float64(area.Min.X) + (aw-w)/2
	y0 := float64(area.Min.Y) + (ah-h)/2
	return image.Rect(
		int(math.Round(x0)),
		int(math.Round(y0)),
		int(math.Round(x0+w)),
		int(math.Round(y0+h)),
	)
}
