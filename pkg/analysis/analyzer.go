package analysis

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"radialscan/internal/models"
	"radialscan/internal/monitoring"
	"radialscan/pkg/csvlog"
	"radialscan/pkg/imageio"
	"radialscan/pkg/radius"
	"radialscan/pkg/visualization"
)

// Params holds the analysis parameters.
// These parameters control the input/output and scan configuration.
type Params struct {
	// InputPath is the image to analyse (MRC map or raster image)
	InputPath string

	// Section selects the z-section of a multi-section MRC stack
	Section int

	// OutputPath is the CSV log the result row is appended to
	OutputPath string

	// CSV controls the record format of the log
	CSV csvlog.Options

	// Scan holds the estimator parameters
	Scan radius.Params

	// Verbose prints the array excerpt and every computed standard deviation
	Verbose bool

	// PlotDir, when non-empty, receives the profile plot and overlay image
	PlotDir string

	// Stdout receives progress output; os.Stdout when nil
	Stdout io.Writer
}

// Analyzer runs the single-shot radius measurement:
// 1. Loading the input image
// 2. Scanning outward from the origin for the first flat window
// 3. Appending the selected value to the result log
// 4. Optionally rendering the profile plot and overlay
type Analyzer struct {
	// params stores the analysis configuration
	params *Params

	// image holds the loaded input
	image *models.Image

	// result holds the scan outcome once Process has run
	result *radius.Result

	out io.Writer
}

// NewAnalyzer creates a new analyzer instance with the provided parameters
func NewAnalyzer(params *Params) *Analyzer {
	out := params.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &Analyzer{
		params: params,
		out:    out,
	}
}

// Process runs the complete analysis pipeline
func (a *Analyzer) Process() error {
	estimator, err := radius.NewEstimator(a.params.Scan)
	if err != nil {
		return fmt.Errorf("invalid scan parameters: %w", err)
	}

	// Step 1: Load the input image
	fmt.Fprintln(a.out, "Step 1: Loading input image...")
	img, err := imageio.Load(a.params.InputPath, imageio.LoadOptions{Section: a.params.Section})
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	a.image = img

	rows, cols := img.Dims()
	fmt.Fprintf(a.out, "Loaded %s with dimensions %dx%d\n", filepath.Base(a.params.InputPath), rows, cols)
	if a.params.Verbose {
		fmt.Fprintf(a.out, "%v\n", mat.Formatted(img.Data, mat.Excerpt(3), mat.Squeeze()))
	}

	// Step 2: Scan outward from the origin
	origin := img.Origin()
	fmt.Fprintln(a.out, "Step 2: Scanning for the feature edge...")
	fmt.Fprintf(a.out, "Origin: x=%d y=%d\n", origin.X, origin.Y)
	if a.params.Verbose {
		estimator.OnStep(func(s radius.Step) {
			fmt.Fprintf(a.out, "%d\t%g\n", s.Cursor, s.StdDev)
		})
	}

	res, err := estimator.Scan(img.Data)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	a.result = res

	if res.Found {
		fmt.Fprintf(a.out, "The radius is %d pixels\n", res.Radius)
		if img.PixelSize > 0 {
			fmt.Fprintf(a.out, "(%.2f Angstrom at %.3f A/px)\n", float64(res.Radius)*img.PixelSize, img.PixelSize)
		}
	} else {
		fmt.Fprintf(a.out, "No window fell below threshold %g\n", a.params.Scan.Threshold)
	}

	// Step 3: Append the result to the log
	fmt.Fprintln(a.out, "Step 3: Appending result...")
	if err := csvlog.Append(a.params.OutputPath, res.Output, a.params.CSV); err != nil {
		return fmt.Errorf("failed to append result: %w", err)
	}
	if len(res.Output) > 0 {
		fmt.Fprintf(a.out, "Appended %s %d to %s\n", a.params.Scan.Record, res.Output[0], a.params.OutputPath)
	} else {
		fmt.Fprintln(a.out, "Nothing to append")
	}

	// Step 4: Render artefacts
	if a.params.PlotDir != "" {
		fmt.Fprintln(a.out, "Step 4: Rendering plots...")
		a.saveArtefacts()
	}

	return nil
}

// saveArtefacts writes the profile plot and overlay. Failures are warnings.
func (a *Analyzer) saveArtefacts() {
	profilePath := filepath.Join(a.params.PlotDir, "profile.png")
	if err := visualization.SaveProfilePlot(a.result, a.params.Scan.Threshold, profilePath); err != nil {
		monitoring.Logf("Warning: failed to save profile plot: %v", err)
	} else {
		fmt.Fprintf(a.out, "Profile plot saved to: %s\n", profilePath)
	}

	viewer, err := visualization.NewViewer(a.image)
	if err != nil {
		monitoring.Logf("Warning: failed to create viewer: %v", err)
		return
	}
	r := 0
	if a.result.Found {
		r = a.result.Radius
	}
	overlayPath := filepath.Join(a.params.PlotDir, "overlay.jpg")
	if err := viewer.SaveJPEG(viewer.RenderOverlay(a.result.Origin, r), overlayPath); err != nil {
		monitoring.Logf("Warning: failed to save overlay: %v", err)
		return
	}
	fmt.Fprintf(a.out, "Overlay saved to: %s\n", overlayPath)
}

// Result returns the scan outcome, nil before Process succeeds
func (a *Analyzer) Result() *radius.Result {
	return a.result
}

// Image returns the loaded input image, nil before Process runs
func (a *Analyzer) Image() *models.Image {
	return a.image
}
