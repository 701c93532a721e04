// Package imageio loads 2D intensity maps from disk.
//
// MRC maps (header followed by a raw array) are the primary input. Common
// raster formats are also accepted and converted to luminance in [0, 1].
package imageio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"radialscan/internal/models"
)

// LoadOptions controls how a file is turned into an Image
type LoadOptions struct {
	// Section is the z-section read from a multi-section MRC stack
	Section int
}

// Load reads the image at path, choosing the decoder from the file extension
func Load(path string, opts LoadOptions) (*models.Image, error) {
	var (
		img *models.Image
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mrc", ".mrcs", ".map", ".st", ".ali":
		img, err = readMRC(path, opts.Section)
	case ".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".bmp":
		img, err = readRaster(path)
	default:
		return nil, fmt.Errorf("unsupported image format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	img.Source = path
	return img, nil
}

// readRaster decodes a raster image into an Image with one row per pixel row
func readRaster(path string) (*models.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return FromImage(decoded)
}

// FromImage converts a decoded image to luminance in [0, 1] using the
// standard grey model weights
func FromImage(src image.Image) (*models.Image, error) {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	values := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.Gray16Model.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			values[y*width+x] = float64(g.Y) / 65535.0
		}
	}

	return models.NewImage(height, width, values)
}
