package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"opticalscale/internal/models"
	"opticalscale/pkg/config"
	"opticalscale/pkg/optics"
	"opticalscale/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "config.yaml", "YAML file with the camera and magnification table")
	initConfig := flag.Bool("init-config", false, "Write a default config file to -config and exit")
	magName := flag.String("mag", "X50", "Magnification entry to display")
	showSquare := flag.Bool("square", false, "Draw the centered reference square")
	squareSize := flag.Float64("square-size", 10, "Side of the reference square in µm")
	showScaleBar := flag.Bool("scale-bar", false, "Draw a scale bar")
	scaleBarLength := flag.Float64("scale-bar-length", 10, "Scale bar length in µm")
	position := flag.String("position", string(models.LowerLeft), "Scale bar position: \"lower left\" or \"lower right\"")
	outputPath := flag.String("output", "", "Output image (.png or .jpg); overrides the config")
	viewer := flag.String("view", "", "Blocking viewer command used to show the image, e.g. feh or eog; overrides the config")
	verbose := flag.Bool("verbose", false, "Log pixel equivalents of the annotations")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ResolvePaths(filepath.Dir(*configPath))

	mag, err := cfg.Magnification(*magName)
	if err != nil {
		log.Fatalf("%v (available: %s)", err, strings.Join(cfg.MagnificationNames(), ", "))
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	opts := []optics.Option{
		optics.WithFigureStyle(visualization.FigureStyle{
			Width:       cfg.Display.FigureWidth,
			Height:      cfg.Display.FigureHeight,
			DPI:         cfg.Display.DPI,
			Colormap:    cfg.Display.Colormap,
			AccentColor: cfg.Display.SquareColor,
		}),
	}
	if *verbose || cfg.Output.Verbose {
		opts = append(opts, optics.WithLogger(logger))
	}

	system, err := optics.New(cfg.Camera, mag, opts...)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", mag.Name, err)
	}

	fmt.Printf("Magnification %s (%gx): field of view %.2f x %.2f µm, center (%.2f, %.2f)\n",
		mag.Name, mag.Mag, system.RealWidth(), system.RealHeight(),
		system.RealCenter().X, system.RealCenter().Y)

	display := optics.DefaultDisplayOptions()
	display.ShowSquare = *showSquare
	display.SquareSizeUm = *squareSize
	display.ShowScaleBar = *showScaleBar
	display.ScaleBarLengthUm = *scaleBarLength
	display.ScaleBar.Position = models.Position(*position)

	out := cfg.Output.Path
	if *outputPath != "" {
		out = *outputPath
	}
	view := cfg.Output.Viewer
	if *viewer != "" {
		view = *viewer
	}

	var presenters visualization.MultiPresenter
	if out != "" {
		presenters = append(presenters, visualization.FilePresenter{Path: out})
	}
	if view != "" {
		presenters = append(presenters, visualization.ViewerPresenter{Command: view})
	}
	if len(presenters) == 0 {
		log.Fatalf("Nothing to do: set an output path or a viewer")
	}

	if err := system.DisplayImage(display, presenters); err != nil {
		log.Fatalf("Display failed: %v", err)
	}

	if out != "" {
		fmt.Printf("Image saved to: %s\n", out)
	}
}
