// Package optics renders microscopy arrays at their physical scale.
//
// An OpticalSystem is built for one magnification entry. It loads the stored
// array once, derives the real-world size of the field of view from the
// camera sensor geometry and the magnification factor, and draws calibrated
// annotations (a centered reference square and a scale bar) on top of it.
package optics

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"opticalscale/internal/models"
	"opticalscale/pkg/arrayio"
	"opticalscale/pkg/visualization"
)

// ErrUnsupportedPosition is returned for scale bar positions other than
// "lower left" and "lower right"
var ErrUnsupportedPosition = errors.New("unsupported scale bar position")

// margin is the scale bar inset as a fraction of the field of view
const margin = 0.05

// Surface receives drawing calls in real-world (µm) coordinates.
// *visualization.Figure implements it.
type Surface interface {
	Rectangle(x, y, width, height float64, s visualization.Stroke)
	Line(xs, ys []float64, s visualization.Stroke)
	Text(x, y float64, text string, style visualization.TextStyle)
}

// OpticalSystem holds one loaded array and its real-world dimensions
type OpticalSystem struct {
	magnification models.Magnification
	camera        models.Camera
	image         *mat.Dense

	// derived once in New and never recomputed
	realWidth  float64
	realHeight float64
	realCenter models.Point

	style  visualization.FigureStyle
	logger *log.Logger
}

// Option configures an OpticalSystem
type Option func(*OpticalSystem)

// WithLogger reports pixel equivalents of the drawn annotations to logger
func WithLogger(logger *log.Logger) Option {
	return func(s *OpticalSystem) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFigureStyle sets the figure used by DisplayImage
func WithFigureStyle(style visualization.FigureStyle) Option {
	return func(s *OpticalSystem) {
		s.style = style
	}
}

// New loads the array of the magnification entry and computes the real-world
// field of view. A missing or unreadable array is returned as *arrayio.LoadError.
func New(camera models.Camera, magnification models.Magnification, opts ...Option) (*OpticalSystem, error) {
	img, err := arrayio.Load(magnification.FileName)
	if err != nil {
		return nil, err
	}
	return newSystem(camera, magnification, img, opts), nil
}

// NewFromArray builds an OpticalSystem around an array that is already in
// memory. The array is copied.
func NewFromArray(camera models.Camera, magnification models.Magnification, img mat.Matrix, opts ...Option) *OpticalSystem {
	return newSystem(camera, magnification, mat.DenseCopyOf(img), opts)
}

func newSystem(camera models.Camera, magnification models.Magnification, img *mat.Dense, opts []Option) *OpticalSystem {
	s := &OpticalSystem{
		magnification: magnification,
		camera:        camera,
		image:         img,
		style:         visualization.DefaultFigureStyle(),
		logger:        log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.realWidth, s.realHeight = realDimensions(camera, magnification)
	s.realCenter = models.Point{X: s.realWidth / 2, Y: s.realHeight / 2}
	return s
}

// realDimensions returns the field of view in µm: sensor pixels times pixel
// size, divided by the magnification factor, per axis.
func realDimensions(camera models.Camera, magnification models.Magnification) (float64, float64) {
	w := float64(camera.SensorWidth) * camera.PixelSize / magnification.Mag
	h := float64(camera.SensorHeight) * camera.PixelSize / magnification.Mag
	return w, h
}

// Magnification returns the entry the system was built for
func (s *OpticalSystem) Magnification() models.Magnification { return s.magnification }

// Camera returns the sensor geometry
func (s *OpticalSystem) Camera() models.Camera { return s.camera }

// RealWidth returns the width of the field of view in µm
func (s *OpticalSystem) RealWidth() float64 { return s.realWidth }

// RealHeight returns the height of the field of view in µm
func (s *OpticalSystem) RealHeight() float64 { return s.realHeight }

// RealCenter returns the center of the field of view in µm
func (s *OpticalSystem) RealCenter() models.Point { return s.realCenter }

// Image returns a copy of the loaded array
func (s *OpticalSystem) Image() *mat.Dense {
	return mat.DenseCopyOf(s.image)
}

// LengthInPixels converts a length in µm to sensor pixels at this magnification
func (s *OpticalSystem) LengthInPixels(um float64) float64 {
	return um * s.magnification.Mag / s.camera.PixelSize
}

// DrawCenterSquare outlines a square of side sizeUm centered on the field of
// view. The square is drawn in real-world coordinates; its sensor-pixel size is
// only reported to the logger. With showCoordinates every corner is labelled
// with its coordinates, placed outside the square.
func (s *OpticalSystem) DrawCenterSquare(surface Surface, sizeUm float64, showCoordinates bool) {
	accent := s.accentColor()

	s.logger.Printf("center square: %s µm (%.1f px at %s)",
		formatLength(sizeUm), s.LengthInPixels(sizeUm), s.magnification.Name)

	cx, cy := s.realCenter.X, s.realCenter.Y
	half := sizeUm / 2
	left, right := cx-half, cx+half
	top, bottom := cy-half, cy+half

	surface.Rectangle(left, top, sizeUm, sizeUm, visualization.Stroke{Color: accent, Width: 1})

	if showCoordinates {
		for i, c := range squareCorners(left, top, right, bottom) {
			style := visualization.TextStyle{Color: accent, Size: 8}

			// labels point away from the square
			style.HAlign = visualization.Left
			if i == 0 || i == 3 {
				style.HAlign = visualization.Right
			}
			style.VAlign = visualization.Top
			if i == 0 || i == 1 {
				style.VAlign = visualization.Bottom
			}

			surface.Text(c.X, c.Y, fmt.Sprintf("(%.2f, %.2f)", c.X, c.Y), style)
		}
	}

	surface.Text(right+5, cy, formatLength(sizeUm)+" µm", visualization.TextStyle{
		Color:    accent,
		Size:     10,
		VAlign:   visualization.Middle,
		Rotation: 270,
	})
}

// squareCorners lists the corners clockwise from the top-left one
func squareCorners(left, top, right, bottom float64) [4]models.Point {
	return [4]models.Point{
		{X: left, Y: top},
		{X: right, Y: top},
		{X: right, Y: bottom},
		{X: left, Y: bottom},
	}
}

// ScaleBarOptions configures AddScaleBar. Start from DefaultScaleBarOptions
// and override fields: Thickness and FontSize are used as given, while an
// empty Color or Position takes the default.
type ScaleBarOptions struct {
	// Thickness is the line width in points; 0 draws no line
	Thickness float64

	// Color is a color name or hex code, "white" when empty
	Color string

	// Position is LowerLeft (when empty) or LowerRight
	Position models.Position

	// FontSize is the label size in points; 0 omits the label
	FontSize float64
}

// DefaultScaleBarOptions returns a 2pt white bar in the lower left with a 10pt label
func DefaultScaleBarOptions() ScaleBarOptions {
	return ScaleBarOptions{
		Thickness: 2,
		Color:     "white",
		Position:  models.LowerLeft,
		FontSize:  10,
	}
}

func (o ScaleBarOptions) withDefaults() ScaleBarOptions {
	d := DefaultScaleBarOptions()
	if o.Color == "" {
		o.Color = d.Color
	}
	if o.Position == "" {
		o.Position = d.Position
	}
	return o
}

// ScaleBarStart returns the left end of a scale bar of lengthUm at position
func (s *OpticalSystem) ScaleBarStart(lengthUm float64, position models.Position) (models.Point, error) {
	y := s.realHeight - margin*s.realHeight

	switch position {
	case models.LowerLeft:
		return models.Point{X: margin * s.realWidth, Y: y}, nil
	case models.LowerRight:
		return models.Point{X: s.realWidth - lengthUm - margin*s.realWidth, Y: y}, nil
	}

	return models.Point{}, fmt.Errorf("%w: %q (use %q or %q)",
		ErrUnsupportedPosition, string(position), string(models.LowerRight), string(models.LowerLeft))
}

// AddScaleBar draws a horizontal bar of lengthUm with a bold length label
// under its middle. Nothing is drawn when the position or color is invalid.
func (s *OpticalSystem) AddScaleBar(surface Surface, lengthUm float64, opts ScaleBarOptions) error {
	opts = opts.withDefaults()

	start, err := s.ScaleBarStart(lengthUm, opts.Position)
	if err != nil {
		return err
	}

	c, err := visualization.ParseColor(opts.Color)
	if err != nil {
		return fmt.Errorf("scale bar: %w", err)
	}

	s.logger.Printf("scale bar: %s µm (%.1f px at %s) %s",
		formatLength(lengthUm), s.LengthInPixels(lengthUm), s.magnification.Name, opts.Position)

	surface.Line(
		[]float64{start.X, start.X + lengthUm},
		[]float64{start.Y, start.Y},
		visualization.Stroke{Color: c, Width: opts.Thickness},
	)

	if opts.FontSize <= 0 {
		return nil
	}
	surface.Text(start.X+lengthUm/2, start.Y-opts.Thickness, formatLength(lengthUm)+" µm", visualization.TextStyle{
		Color:  c,
		Size:   opts.FontSize,
		HAlign: visualization.Center,
		VAlign: visualization.Top,
		Bold:   true,
	})

	return nil
}

// DisplayOptions selects the annotations drawn by DisplayImage
type DisplayOptions struct {
	SquareSizeUm     float64
	ShowSquare       bool
	ShowScaleBar     bool
	ScaleBarLengthUm float64

	// ScaleBar styles the scale bar, DefaultScaleBarOptions in DefaultDisplayOptions
	ScaleBar ScaleBarOptions
}

// DefaultDisplayOptions returns a 10 µm square and a 10 µm default-styled
// scale bar, both hidden
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		SquareSizeUm:     10,
		ShowSquare:       false,
		ShowScaleBar:     false,
		ScaleBarLengthUm: 10,
		ScaleBar:         DefaultScaleBarOptions(),
	}
}

// Render draws the array on a new figure spanning [0, W] horizontally and
// [H, 0] vertically, so the array origin sits at the top-left, then adds the
// requested annotations.
func (s *OpticalSystem) Render(opts DisplayOptions) (*visualization.Figure, error) {
	fig := visualization.NewFigure(s.style)

	extent := visualization.Extent{Left: 0, Right: s.realWidth, Bottom: s.realHeight, Top: 0}
	if err := fig.Imshow(s.image, extent); err != nil {
		return nil, fmt.Errorf("failed to render array: %w", err)
	}

	if opts.ShowSquare {
		s.DrawCenterSquare(fig, opts.SquareSizeUm, true)
	}

	if opts.ShowScaleBar {
		if err := s.AddScaleBar(fig, opts.ScaleBarLengthUm, opts.ScaleBar); err != nil {
			return nil, err
		}
	}

	return fig, nil
}

// DisplayImage renders the figure and hands it to presenter, blocking until
// the presenter returns.
func (s *OpticalSystem) DisplayImage(opts DisplayOptions, presenter Presenter) error {
	fig, err := s.Render(opts)
	if err != nil {
		return err
	}
	return presenter.Present(fig.Canvas())
}

// Presenter shows a rendered figure; see visualization.FilePresenter and
// visualization.ViewerPresenter.
type Presenter = visualization.Presenter

// accentColor is the configured square color, red when it is unset or does
// not parse. Config.Validate rejects such colors before a system is built.
func (s *OpticalSystem) accentColor() color.Color {
	c, err := visualization.ParseColor(s.style.AccentColor)
	if err != nil {
		return color.RGBA{R: 0xff, A: 0xff}
	}
	return c
}

// formatLength prints a length without trailing zeros: 10 -> "10", 2.5 -> "2.5"
func formatLength(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
