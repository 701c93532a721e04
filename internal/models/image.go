package models

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Image represents a single 2D intensity map loaded for analysis
type Image struct {
	// Data holds the intensities, one matrix row per array row (axis 0)
	Data *mat.Dense

	// Source is the path the image was loaded from, if any
	Source string

	// PixelSize is the physical size of a pixel in Angstrom, 0 when unknown
	PixelSize float64
}

// NewImage builds an Image from row-major values with the given dimensions.
// The values slice is used as the backing store and must not be modified afterwards.
func NewImage(rows, cols int, values []float64) (*Image, error) {
	if rows <= 0 || cols <= 0 {
		return nil, &DomainError{Op: "new image", Msg: fmt.Sprintf("degenerate dimensions %dx%d", rows, cols)}
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("image data has %d values, want %d", len(values), rows*cols)
	}
	return &Image{Data: mat.NewDense(rows, cols, values)}, nil
}

// Dims returns the number of rows (X) and columns (Y)
func (img *Image) Dims() (int, int) {
	if img == nil || img.Data == nil {
		return 0, 0
	}
	return img.Data.Dims()
}

// Origin returns the assumed centre of the radial feature
func (img *Image) Origin() Origin {
	x, y := img.Dims()
	return OriginOf(x, y)
}

// Origin is the integer centre coordinate of an image
type Origin struct {
	X int
	Y int
}

// OriginOf computes floor(x/2), floor(y/2)
func OriginOf(x, y int) Origin {
	return Origin{X: x / 2, Y: y / 2}
}

// Axis selects the direction the scan walks in
type Axis int

const (
	// AxisX walks along rows (array axis 0)
	AxisX Axis = iota
	// AxisY walks along columns (array axis 1)
	AxisY
)

// ParseAxis converts "x" or "y" into an Axis
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "":
		return AxisX, nil
	case "y":
		return AxisY, nil
	default:
		return AxisX, fmt.Errorf("invalid axis: %s (must be x or y)", s)
	}
}

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// DomainError reports input for which the analysis is undefined,
// such as an empty array or a window whose statistic is not finite.
type DomainError struct {
	Op  string
	Msg string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: domain error: %s", e.Op, e.Msg)
}
