package visualization

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Presenter shows a rendered figure to the user
type Presenter interface {
	Present(img image.Image) error
}

// PresenterFunc adapts a function to the Presenter interface
type PresenterFunc func(img image.Image) error

// Present calls fn(img)
func (fn PresenterFunc) Present(img image.Image) error {
	return fn(img)
}

// FilePresenter saves the figure as a PNG, or as a JPEG when Path ends in .jpg/.jpeg
type FilePresenter struct {
	Path string

	// Quality is the JPEG quality, 90 when unset
	Quality int
}

// Present encodes img to Path, replacing any existing file
func (p FilePresenter) Present(img image.Image) error {
	if dir := filepath.Dir(p.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(p.Path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer file.Close()

	if err := encode(file, img, p.Path, p.Quality); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return file.Close()
}

func encode(file *os.File, img image.Image, name string, quality int) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		if quality <= 0 {
			quality = 90
		}
		return jpeg.Encode(file, img, &jpeg.Options{Quality: quality})
	default:
		return png.Encode(file, img)
	}
}

// ViewerPresenter writes the figure to a temporary PNG and opens it with an
// external viewer command, blocking until the command exits. Blocking viewers
// such as feh or eog are preferred; launchers that return at once (xdg-open,
// open) get their temporary file kept, since the viewer they spawn still
// needs it.
type ViewerPresenter struct {
	// Command is the viewer executable, e.g. "feh" or "eog"
	Command string

	// Args are passed before the image path
	Args []string

	// Dir holds the temporary file; the system temp directory when empty
	Dir string

	// Keep leaves the temporary file in place after the viewer exits
	Keep bool
}

// launchers hand the file to another program and exit immediately
var launchers = map[string]bool{
	"xdg-open":   true,
	"open":       true,
	"gio":        true,
	"gnome-open": true,
	"kde-open":   true,
}

// keepsFile reports whether the temporary file outlives Present
func (p ViewerPresenter) keepsFile() bool {
	return p.Keep || launchers[filepath.Base(p.Command)]
}

// Present writes img to a temporary PNG and runs the viewer on it
func (p ViewerPresenter) Present(img image.Image) error {
	if p.Command == "" {
		return fmt.Errorf("no viewer command configured")
	}

	file, err := os.CreateTemp(p.Dir, "opticalscale-*.png")
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	name := file.Name()
	if !p.keepsFile() {
		defer os.Remove(name)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	cmd := exec.Command(p.Command, append(append([]string{}, p.Args...), name)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("viewer %s failed: %w", p.Command, err)
	}
	return nil
}

// MultiPresenter presents the figure with each presenter in turn, stopping at the first error
type MultiPresenter []Presenter

// Present runs every presenter in order
func (m MultiPresenter) Present(img image.Image) error {
	for _, p := range m {
		if err := p.Present(img); err != nil {
			return err
		}
	}
	return nil
}
