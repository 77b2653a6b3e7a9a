package visualization

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestColormap verifies endpoints, interpolation and rendering of the colormaps
func TestColormap(t *testing.T) {
	gray, err := LookupColormap("Grey")
	if err != nil {
		t.Fatalf("Failed to look up gray: %v", err)
	}
	if c := gray.At(-1); c != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("Expected black below range, got %v", c)
	}
	if c := gray.At(0.5); c.R != 128 {
		t.Errorf("Expected mid gray 128, got %v", c)
	}

	viridis, err := LookupColormap("viridis")
	if err != nil {
		t.Fatalf("Failed to look up viridis: %v", err)
	}
	if c := viridis.At(1); c != (color.RGBA{0xfd, 0xe7, 0x25, 0xff}) {
		t.Errorf("Expected viridis yellow at 1, got %v", c)
	}

	if _, err := LookupColormap("jet"); err == nil {
		t.Error("Expected error for unknown colormap")
	}

	data := mat.NewDense(1, 3, []float64{10, 20, math.NaN()})
	img := gray.Render(data)
	if img.RGBAAt(0, 0).R != 0 || img.RGBAAt(1, 0).R != 255 {
		t.Errorf("Expected min to black and max to white, got %v %v", img.RGBAAt(0, 0), img.RGBAAt(1, 0))
	}
	if img.RGBAAt(2, 0).A != 0 {
		t.Errorf("Expected NaN to stay transparent, got %v", img.RGBAAt(2, 0))
	}

	flat := gray.Render(mat.NewDense(2, 2, []float64{5, 5, 5, 5}))
	if flat.RGBAAt(1, 1) != gray.At(0) {
		t.Errorf("Expected constant data to map to the low end, got %v", flat.RGBAAt(1, 1))
	}
}

// TestColormapInfinite verifies that infinite elements are masked instead of
// stretching the normalization range
func TestColormapInfinite(t *testing.T) {
	gray, err := LookupColormap("gray")
	if err != nil {
		t.Fatalf("Failed to look up gray: %v", err)
	}

	if c := gray.At(math.NaN()); c != gray.At(0) {
		t.Errorf("Expected NaN to map to the low end, got %v", c)
	}
	if c := gray.At(math.Inf(1)); c != gray.At(1) {
		t.Errorf("Expected +Inf to map to the high end, got %v", c)
	}

	data := mat.NewDense(2, 2, []float64{math.Inf(1), 10, 20, math.Inf(-1)})
	img := gray.Render(data)
	if img.RGBAAt(1, 0).R != 0 || img.RGBAAt(0, 1).R != 255 {
		t.Errorf("Expected finite min to black and max to white, got %v %v", img.RGBAAt(1, 0), img.RGBAAt(0, 1))
	}
	if img.RGBAAt(0, 0).A != 0 || img.RGBAAt(1, 1).A != 0 {
		t.Errorf("Expected infinite elements to stay transparent, got %v %v", img.RGBAAt(0, 0), img.RGBAAt(1, 1))
	}

	empty := gray.Render(mat.NewDense(1, 2, []float64{math.Inf(1), math.NaN()}))
	if empty.RGBAAt(0, 0).A != 0 || empty.RGBAAt(1, 0).A != 0 {
		t.Error("Expected an array without finite elements to render fully transparent")
	}
}

// TestParseColor verifies named and hex colors
func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"white", color.RGBA{255, 255, 255, 255}},
		{"Red", color.RGBA{255, 0, 0, 255}},
		{"#0f0", color.RGBA{0, 255, 0, 255}},
		{"#123456", color.RGBA{0x12, 0x34, 0x56, 255}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, expected %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "#12", "#gggggg", "chartreusey"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

// TestNiceTicks verifies tick spacing and labels
func TestNiceTicks(t *testing.T) {
	ticks := NiceTicks(0, 130, 9)
	want := []float64{0, 20, 40, 60, 80, 100, 120}
	if len(ticks) != len(want) {
		t.Fatalf("Expected ticks %v, got %v", want, ticks)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("Tick %d: expected %f, got %f", i, want[i], ticks[i])
		}
	}

	// Reversed ranges give the same ticks
	if got := NiceTicks(78, 0, 9); len(got) != 8 || got[7] != 70 {
		t.Errorf("Expected 0..70 in steps of 10, got %v", got)
	}

	if got := NiceTicks(1, 1, 9); got != nil {
		t.Errorf("Expected no ticks for empty range, got %v", got)
	}

	if s := formatTick(7.5, 0, 20); s != "7.5" {
		t.Errorf("Expected label 7.5, got %q", s)
	}
	if s := formatTick(40, 0, 130); s != "40" {
		t.Errorf("Expected label 40, got %q", s)
	}
	if s := formatTick(0.2, 0, 1.3); s != "0.2" {
		t.Errorf("Expected label 0.2, got %q", s)
	}
}

// TestFilePresenter verifies that PNG and JPEG outputs are written and decodable
func TestFilePresenter(t *testing.T) {
	fig := newTestFigure(t)
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "out", "view.png")
	if err := (FilePresenter{Path: pngPath}).Present(fig.Canvas()); err != nil {
		t.Fatalf("Failed to present PNG: %v", err)
	}
	decodeFile(t, pngPath, png.Decode, fig.Canvas().Bounds())

	jpgPath := filepath.Join(dir, "view.jpg")
	if err := (FilePresenter{Path: jpgPath}).Present(fig.Canvas()); err != nil {
		t.Fatalf("Failed to present JPEG: %v", err)
	}
	decodeFile(t, jpgPath, jpeg.Decode, fig.Canvas().Bounds())
}

func decodeFile(t *testing.T, path string, decode func(r io.Reader) (image.Image, error), want image.Rectangle) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		t.Fatalf("Failed to decode %s: %v", path, err)
	}
	if img.Bounds() != want {
		t.Errorf("Expected bounds %v, got %v", want, img.Bounds())
	}
}

// TestViewerPresenter verifies that the viewer command runs on a written file
func TestViewerPresenter(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true command not available")
	}

	dir := t.TempDir()
	p := ViewerPresenter{Command: "true", Dir: dir, Keep: true}
	if err := p.Present(image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("Viewer presenter failed: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "opticalscale-*.png"))
	if len(matches) != 1 {
		t.Errorf("Expected one kept image, got %v", matches)
	}

	if err := (ViewerPresenter{}).Present(image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("Expected error without a viewer command")
	}
}

// TestViewerPresenterLaunchers verifies that the temporary file is removed after
// a blocking viewer and kept for launchers that return immediately
func TestViewerPresenterLaunchers(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	bin := t.TempDir()
	launcher := filepath.Join(bin, "xdg-open")
	if err := os.WriteFile(launcher, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("Failed to write launcher: %v", err)
	}
	viewer := filepath.Join(bin, "feh")
	if err := os.WriteFile(viewer, []byte("#!/bin/sh\ntest -f \"$1\"\n"), 0755); err != nil {
		t.Fatalf("Failed to write viewer: %v", err)
	}

	tests := []struct {
		command string
		kept    int
	}{
		{viewer, 0},
		{launcher, 1},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.command), func(t *testing.T) {
			dir := t.TempDir()
			p := ViewerPresenter{Command: tt.command, Dir: dir}
			if err := p.Present(image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
				t.Fatalf("Viewer presenter failed: %v", err)
			}

			matches, _ := filepath.Glob(filepath.Join(dir, "opticalscale-*.png"))
			if len(matches) != tt.kept {
				t.Errorf("Expected %d kept images, got %v", tt.kept, matches)
			}
		})
	}
}
