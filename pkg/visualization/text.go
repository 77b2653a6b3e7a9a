package visualization

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// HAlign positions text horizontally relative to its anchor point
type HAlign int

const (
	Left HAlign = iota
	Center
	Right
)

// VAlign positions text vertically relative to its anchor point
type VAlign int

const (
	Baseline VAlign = iota
	Top
	Middle
	Bottom
)

// TextStyle describes how a label is drawn
type TextStyle struct {
	Color color.Color

	// Size is the font size in points
	Size float64

	HAlign HAlign
	VAlign VAlign

	// Rotation is in degrees, counter-clockwise
	Rotation float64

	Bold bool
}

var (
	parseFonts            sync.Once
	regularFont, boldFont *opentype.Font
)

func loadFonts() {
	parseFonts.Do(func() {
		// Parse failures leave the fonts nil and callers fall back to basicfont
		regularFont, _ = opentype.Parse(goregular.TTF)
		boldFont, _ = opentype.Parse(gobold.TTF)
	})
}

type faceKey struct {
	size float64
	bold bool
}

type faceEntry struct {
	face font.Face

	// synthetic is set when bold was requested but only a regular face exists
	synthetic bool
}

type faceCache struct {
	dpi   float64
	faces map[faceKey]faceEntry
}

func newFaceCache(dpi float64) *faceCache {
	return &faceCache{dpi: dpi, faces: make(map[faceKey]faceEntry)}
}

// get returns a face for the size in points, falling back to basicfont.Face7x13
func (c *faceCache) get(size float64, bold bool) faceEntry {
	if size <= 0 {
		size = 10
	}
	key := faceKey{size, bold}
	if e, ok := c.faces[key]; ok {
		return e
	}

	loadFonts()
	f := regularFont
	if bold {
		f = boldFont
	}

	e := faceEntry{face: basicfont.Face7x13, synthetic: bold}
	if f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     c.dpi,
			Hinting: font.HintingFull,
		})
		if err == nil {
			e = faceEntry{face: face}
		}
	}

	c.faces[key] = e
	return e
}

// Text draws s anchored at data point (x, y). Text is not clipped to the axes.
func (f *Figure) Text(x, y float64, s string, style TextStyle) {
	if s == "" || style.Color == nil {
		return
	}
	px, py := f.ToPixel(x, y)
	f.drawText(px, py, s, style)
}

// drawText draws s anchored at canvas position (px, py)
func (f *Figure) drawText(px, py float64, s string, style TextStyle) {
	if math.IsNaN(px) || math.IsNaN(py) {
		return
	}

	entry := f.faces.get(style.Size, style.Bold)
	tile, ascent := renderLabel(s, entry, style.Color)

	rotation := math.Mod(style.Rotation, 360)
	if rotation < 0 {
		rotation += 360
	}

	var label image.Image = tile
	switch rotation {
	case 0:
	case 90:
		label = imaging.Rotate90(tile)
	case 180:
		label = imaging.Rotate180(tile)
	case 270:
		label = imaging.Rotate270(tile)
	default:
		label = imaging.Rotate(tile, rotation, color.Transparent)
	}

	lb := label.Bounds()
	w, h := float64(lb.Dx()), float64(lb.Dy())

	var x0, y0 float64
	switch style.HAlign {
	case Center:
		x0 = px - w/2
	case Right:
		x0 = px - w
	default:
		x0 = px
	}

	switch style.VAlign {
	case Top:
		y0 = py
	case Middle:
		y0 = py - h/2
	case Bottom:
		y0 = py - h
	default:
		// Baseline only has a meaning for horizontal text
		if rotation == 0 {
			y0 = py - float64(ascent)
		} else {
			y0 = py - h
		}
	}

	at := image.Pt(int(math.Round(x0)), int(math.Round(y0)))
	dst := image.Rectangle{Min: at, Max: at.Add(lb.Size())}
	draw.Draw(f.canvas, dst, label, lb.Min, draw.Over)
}

// renderLabel draws s onto a transparent tile sized to the text box and
// returns the tile with the baseline offset from its top edge.
func renderLabel(s string, entry faceEntry, c color.Color) (*image.RGBA, int) {
	metrics := entry.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	height := ascent + metrics.Descent.Ceil()

	width := font.MeasureString(entry.face, s).Ceil()
	if entry.synthetic {
		width++
	}

	tile := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	d := &font.Drawer{
		Dst:  tile,
		Src:  image.NewUniform(c),
		Face: entry.face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(s)

	// Synthetic bold: re-draw with a 1px horizontal offset to embolden the glyphs
	if entry.synthetic {
		d.Dot = fixed.P(1, ascent)
		d.DrawString(s)
	}

	return tile, ascent
}
