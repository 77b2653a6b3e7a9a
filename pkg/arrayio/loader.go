// Package arrayio loads the stored 2D intensity arrays that back each
// magnification entry.
package arrayio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sbinet/npyio/npy"
	"gonum.org/v1/gonum/mat"
)

// LoadError reports an array file that could not be found or parsed
type LoadError struct {
	Path string
	Err  error
}

// Error names the file and the underlying failure
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load array %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying failure
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads the array stored at path. NumPy .npy files are read as-is;
// common image formats are converted to 16-bit luminance.
func Load(path string) (*mat.Dense, error) {
	var (
		m   *mat.Dense
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".npy":
		m, err = loadNpy(path)
	case ".tif", ".tiff", ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		m, err = loadImage(path)
	default:
		err = fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}

	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return m, nil
}

func loadNpy(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npy.NewReader(f)
	if err != nil {
		return nil, err
	}

	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("expected a 2D array, got shape %v", shape)
	}
	rows, cols := shape[0], shape[1]
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("empty array with shape %v", shape)
	}

	data, err := readFloats(r, r.Header.Descr.Type)
	if err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("array holds %d values, shape %v needs %d", len(data), shape, rows*cols)
	}

	if r.Header.Descr.Fortran {
		m := mat.NewDense(cols, rows, data)
		return mat.DenseCopyOf(m.T()), nil
	}
	return mat.NewDense(rows, cols, data), nil
}

// readFloats decodes the payload into the slice type matching its dtype and
// widens it to float64.
func readFloats(r *npy.Reader, dtype string) ([]float64, error) {
	if len(dtype) < 2 {
		return nil, fmt.Errorf("invalid dtype %q", dtype)
	}

	// Byte order is handled by the reader; only kind and width matter here
	switch dtype[1:] {
	case "f8":
		var v []float64
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return v, nil
	case "f4":
		var v []float32
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "u1":
		var v []uint8
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "u2":
		var v []uint16
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "u4":
		var v []uint32
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "i1":
		var v []int8
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "i2":
		var v []int16
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "i4":
		var v []int32
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "i8":
		var v []int64
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	}

	return nil, fmt.Errorf("unsupported dtype %q", dtype)
}

type number interface {
	~float32 | ~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32 | ~int64
}

func widen[T number](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func loadImage(path string) (*mat.Dense, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img)
}

// FromImage converts an image to a matrix of 16-bit luminance values,
// one row per image row.
func FromImage(img image.Image) (*mat.Dense, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.New("empty image")
	}

	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			m.Set(y-b.Min.Y, x-b.Min.X, float64(g.Y))
		}
	}
	return m, nil
}
