// Package radius estimates the radius of a radially symmetric feature by
// walking outward from the image centre until the local intensity spread
// falls below a threshold.
package radius

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"radialscan/internal/models"
)

// Default scan parameters, matching the values the measurement was calibrated with.
const (
	DefaultThreshold  = 0.01
	DefaultWindowSize = 3
)

// RecordMode selects which quantity a detection contributes to Result.Output
type RecordMode int

const (
	// RecordRadius records Cursor - origin, the measured radius in pixels
	RecordRadius RecordMode = iota
	// RecordSentinel records the forced terminal cursor value X+1
	RecordSentinel
)

// ParseRecordMode converts "radius" or "sentinel" into a RecordMode
func ParseRecordMode(s string) (RecordMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "radius", "":
		return RecordRadius, nil
	case "sentinel":
		return RecordSentinel, nil
	default:
		return RecordRadius, fmt.Errorf("invalid record mode: %s (must be radius or sentinel)", s)
	}
}

func (m RecordMode) String() string {
	if m == RecordSentinel {
		return "sentinel"
	}
	return "radius"
}

// Params holds the scan configuration
type Params struct {
	// Threshold is the standard deviation below which a window counts as flat
	Threshold float64

	// WindowSize is the number of consecutive rows pooled into one window
	WindowSize int

	// Axis is the direction of the scan; AxisY scans columns
	Axis models.Axis

	// Record selects the value appended to Result.Output on detection
	Record RecordMode
}

// DefaultParams returns the calibrated default parameters
func DefaultParams() Params {
	return Params{
		Threshold:  DefaultThreshold,
		WindowSize: DefaultWindowSize,
		Axis:       models.AxisX,
		Record:     RecordRadius,
	}
}

// Validate checks that the parameters describe a well-defined scan
func (p Params) Validate() error {
	if p.WindowSize < 1 {
		return &models.DomainError{Op: "radius params", Msg: fmt.Sprintf("window size %d must be at least 1", p.WindowSize)}
	}
	if math.IsNaN(p.Threshold) || math.IsInf(p.Threshold, 0) || p.Threshold <= 0 {
		return fmt.Errorf("threshold must be a positive finite number, got %v", p.Threshold)
	}
	if p.Axis != models.AxisX && p.Axis != models.AxisY {
		return fmt.Errorf("invalid axis %d", p.Axis)
	}
	if p.Record != RecordRadius && p.Record != RecordSentinel {
		return fmt.Errorf("invalid record mode %d", p.Record)
	}
	return nil
}

// Step is the statistic computed for one cursor position
type Step struct {
	// Cursor is the first row of the window
	Cursor int

	// Rows is the number of rows actually in the window; fewer than the
	// window size near the upper boundary
	Rows int

	// StdDev is the population standard deviation of the flattened window
	StdDev float64
}

// Result is the outcome of a single scan
type Result struct {
	// Origin is the image centre, floor(X/2), floor(Y/2), in array coordinates
	Origin models.Origin

	// Start is the origin index along the scan axis, where the cursor begins
	Start int

	// Found reports whether any window fell below the threshold
	Found bool

	// Cursor is the start of the first qualifying window
	Cursor int

	// Radius is Cursor - Start in pixels
	Radius int

	// Sentinel is the forced loop-exit cursor value, length of the scan axis + 1.
	// It is set whether or not a window qualified.
	Sentinel int

	// Trace holds every statistic computed, in scan order
	Trace []Step

	// Output holds zero or one value, chosen by Params.Record
	Output []int
}

// Estimator runs the outward variance scan
type Estimator struct {
	params Params
	onStep func(Step)
}

// NewEstimator creates an estimator, rejecting invalid parameters
func NewEstimator(params Params) (*Estimator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{params: params}, nil
}

// Params returns the estimator configuration
func (e *Estimator) Params() Params {
	return e.params
}

// OnStep registers a callback invoked after each statistic is computed
func (e *Estimator) OnStep(fn func(Step)) {
	e.onStep = fn
}

// Origin returns floor(X/2), floor(Y/2) for any matrix
func Origin(a mat.Matrix) models.Origin {
	r, c := a.Dims()
	return models.OriginOf(r, c)
}

// Scan walks the cursor from the origin towards the upper boundary of the
// scan axis and stops at the first window whose standard deviation is
// strictly below the threshold.
//
// Windows that extend past the boundary are truncated. When the cursor
// reaches the boundary itself the window is empty and the scan ends without
// a detection. An empty matrix, or a window with a non-finite statistic,
// yields a *models.DomainError.
func (e *Estimator) Scan(a mat.Matrix) (*Result, error) {
	if a == nil {
		return nil, &models.DomainError{Op: "radius scan", Msg: "nil matrix"}
	}
	rows, cols := a.Dims()
	if rows == 0 || cols == 0 {
		return nil, &models.DomainError{Op: "radius scan", Msg: fmt.Sprintf("empty array %dx%d", rows, cols)}
	}

	res := &Result{Origin: models.OriginOf(rows, cols)}

	if e.params.Axis == models.AxisY {
		a = a.T()
		rows, cols = cols, rows
	}
	x0 := rows / 2
	res.Start = x0
	res.Sentinel = rows + 1

	row := make([]float64, cols)
	window := make([]float64, 0, e.params.WindowSize*cols)

	for c := x0; c <= rows; c++ {
		end := c + e.params.WindowSize
		if end > rows {
			end = rows
		}
		if end <= c {
			break
		}

		window = window[:0]
		for r := c; r < end; r++ {
			mat.Row(row, r, a)
			window = append(window, row...)
		}
		s := stat.PopStdDev(window, nil)
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, &models.DomainError{Op: "radius scan", Msg: fmt.Sprintf("non-finite standard deviation at cursor %d", c)}
		}

		step := Step{Cursor: c, Rows: end - c, StdDev: s}
		res.Trace = append(res.Trace, step)
		if e.onStep != nil {
			e.onStep(step)
		}

		if s < e.params.Threshold {
			res.Found = true
			res.Cursor = c
			res.Radius = c - x0
			if e.params.Record == RecordSentinel {
				res.Output = append(res.Output, res.Sentinel)
			} else {
				res.Output = append(res.Output, res.Radius)
			}
			break
		}
	}

	return res, nil
}
