package visualization

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"radialscan/pkg/radius"
)

// SaveProfilePlot draws the windowed standard deviation against cursor
// position, with the detection threshold as a horizontal line and the
// detected cursor, if any, highlighted. The output format follows the file
// extension (png, svg, pdf, ...).
func SaveProfilePlot(res *radius.Result, threshold float64, path string) error {
	if res == nil || len(res.Trace) == 0 {
		return fmt.Errorf("no scan steps to plot")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plot dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Windowed standard deviation"
	p.X.Label.Text = "Cursor (pixels)"
	p.Y.Label.Text = "Std dev"

	pts := make(plotter.XYs, len(res.Trace))
	for i, s := range res.Trace {
		pts[i] = plotter.XY{X: float64(s.Cursor), Y: s.StdDev}
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	points.Shape = draw.CircleGlyph{}
	points.Radius = vg.Points(2)
	p.Add(line, points)
	p.Legend.Add("std dev", line, points)

	limit := plotter.NewFunction(func(float64) float64 { return threshold })
	limit.Color = color.RGBA{R: 200, A: 255}
	limit.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(limit)
	p.Legend.Add(fmt.Sprintf("threshold %.3g", threshold), limit)

	if res.Found {
		hit, err := plotter.NewScatter(plotter.XYs{{X: float64(res.Cursor), Y: res.Trace[len(res.Trace)-1].StdDev}})
		if err != nil {
			return err
		}
		hit.Shape = draw.CrossGlyph{}
		hit.Radius = vg.Points(5)
		hit.Color = color.RGBA{B: 200, A: 255}
		p.Add(hit)
		p.Legend.Add(fmt.Sprintf("radius %d px", res.Radius), hit)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}
