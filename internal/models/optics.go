package models

// Magnification is one entry of the objective lookup table: the array file
// captured at that magnification and its magnification factor.
type Magnification struct {
	// Name identifies the entry, e.g. "X50"
	Name string `yaml:"name"`

	// FileName is the path of the stored 2D intensity array
	FileName string `yaml:"fileName"`

	// Mag is the unitless magnification factor
	Mag float64 `yaml:"mag"`
}

// Camera describes the fixed sensor geometry
type Camera struct {
	// SensorWidth and SensorHeight are the sensor dimensions in pixels
	SensorWidth  int `yaml:"sensorWidth"`
	SensorHeight int `yaml:"sensorHeight"`

	// PixelSize is the physical size of one sensor pixel in µm
	PixelSize float64 `yaml:"pixelSize"`
}

// Point is a location in real-world (µm) coordinates
type Point struct {
	X, Y float64
}

// Position selects where the scale bar is placed
type Position string

const (
	LowerLeft  Position = "lower left"
	LowerRight Position = "lower right"
)
