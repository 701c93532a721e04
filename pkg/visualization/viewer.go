// Package visualization renders scan artefacts: the standard deviation profile
// and an overlay of the detected radius on the analysed image.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"radialscan/internal/models"
)

// Viewer renders an analysed image for inspection
type Viewer struct {
	// img holds the intensities being displayed
	img *models.Image

	// min and max span the intensity range used for normalisation
	min float64
	max float64
}

// NewViewer creates a viewer over img
func NewViewer(img *models.Image) (*Viewer, error) {
	rows, cols := img.Dims()
	if rows == 0 || cols == 0 {
		return nil, &models.DomainError{Op: "new viewer", Msg: "empty image"}
	}

	raw := mat.DenseCopyOf(img.Data).RawMatrix().Data
	return &Viewer{
		img: img,
		min: floats.Min(raw),
		max: floats.Max(raw),
	}, nil
}

// Render returns the image normalised to the full 16-bit grey range.
// A constant image renders black.
func (v *Viewer) Render() *image.Gray16 {
	rows, cols := v.img.Dims()
	out := image.NewGray16(image.Rect(0, 0, cols, rows))

	span := v.max - v.min
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			var value float64
			if span > 0 {
				value = (v.img.Data.At(y, x) - v.min) / span
			}
			out.SetGray16(x, y, color.Gray16{Y: uint16(math.Max(0, math.Min(65535, value*65535)))})
		}
	}
	return out
}

// RenderOverlay renders the image with a white circle of radiusPx pixels
// around origin and a marker at the origin itself
func (v *Viewer) RenderOverlay(origin models.Origin, radiusPx int) *image.Gray16 {
	out := v.Render()
	white := color.Gray16{Y: 65535}

	if radiusPx > 0 {
		// Sample the circle densely enough to leave no gaps
		steps := int(math.Ceil(2*math.Pi*float64(radiusPx))) * 2
		for i := 0; i < steps; i++ {
			theta := 2 * math.Pi * float64(i) / float64(steps)
			x := origin.Y + int(math.Round(float64(radiusPx)*math.Cos(theta)))
			y := origin.X + int(math.Round(float64(radiusPx)*math.Sin(theta)))
			if image.Pt(x, y).In(out.Bounds()) {
				out.SetGray16(x, y, white)
			}
		}
	}

	for d := -2; d <= 2; d++ {
		for _, p := range []image.Point{{X: origin.Y + d, Y: origin.X}, {X: origin.Y, Y: origin.X + d}} {
			if p.In(out.Bounds()) {
				out.SetGray16(p.X, p.Y, white)
			}
		}
	}
	return out
}

// SaveJPEG saves a rendered image as a JPEG file
func (v *Viewer) SaveJPEG(img image.Image, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return file.Close()
}
