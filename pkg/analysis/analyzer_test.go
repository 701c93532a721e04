package analysis

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"radialscan/internal/models"
	"radialscan/internal/monitoring"
	"radialscan/pkg/csvlog"
	"radialscan/pkg/imageio"
	"radialscan/pkg/radius"
)

// writeTestParticle writes a size x size MRC whose rows below flatFrom are
// noisy and whose remaining rows are identical
func writeTestParticle(t *testing.T, dir string, size, flatFrom int) string {
	t.Helper()
	values := make([]float64, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if y < flatFrom {
				values[y*size+x] = float64((x*7+y*3)%5) / 4.0
			} else {
				values[y*size+x] = 0.25
			}
		}
	}
	img, err := models.NewImage(size, size, values)
	if err != nil {
		t.Fatalf("Failed to build image: %v", err)
	}
	path := filepath.Join(dir, "particle.mrc")
	if err := imageio.WriteMRC(path, img); err != nil {
		t.Fatalf("Failed to write MRC: %v", err)
	}
	return path
}

func newTestParams(dir, input string) *Params {
	return &Params{
		InputPath:  input,
		OutputPath: filepath.Join(dir, "distance.csv"),
		CSV:        csvlog.DefaultOptions(),
		Scan:       radius.DefaultParams(),
		Verbose:    true,
		Stdout:     &bytes.Buffer{},
	}
}

// TestProcessEndToEnd runs the 10x10 case: noisy rows 0-4, identical rows 5-9
func TestProcessEndToEnd(t *testing.T) {
	dir := t.TempDir()
	params := newTestParams(dir, writeTestParticle(t, dir, 10, 5))

	analyzer := NewAnalyzer(params)
	if err := analyzer.Process(); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	res := analyzer.Result()
	if !res.Found || res.Cursor != 5 || res.Radius != 0 || res.Sentinel != 11 {
		t.Errorf("Unexpected result %+v", res)
	}

	out := params.Stdout.(*bytes.Buffer).String()
	// The single step at cursor 5 is printed as "<cursor>\t<std dev>"
	for _, want := range []string{"Origin: x=5 y=5", "\n5\t0\n", "The radius is 0 pixels"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	records, err := csvlog.ReadAll(params.OutputPath)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if len(records) != 1 || records[0][0] != "0" {
		t.Errorf("Expected log [[0]], got %v", records)
	}
}

// TestProcessStepLines checks that every scanned cursor is printed in verbose
// mode and that quiet mode prints none of them
func TestProcessStepLines(t *testing.T) {
	dir := t.TempDir()
	input := writeTestParticle(t, dir, 16, 10)

	params := newTestParams(dir, input)
	analyzer := NewAnalyzer(params)
	if err := analyzer.Process(); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	trace := analyzer.Result().Trace
	if len(trace) != 3 {
		t.Fatalf("Expected steps at cursors 8, 9, 10, got %d steps", len(trace))
	}
	out := params.Stdout.(*bytes.Buffer).String()
	for _, s := range trace {
		line := fmt.Sprintf("\n%d\t%g\n", s.Cursor, s.StdDev)
		if !strings.Contains(out, line) {
			t.Errorf("Expected step line %q in output:\n%s", line, out)
		}
	}

	quiet := newTestParams(dir, input)
	quiet.Verbose = false
	if err := NewAnalyzer(quiet).Process(); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	out = quiet.Stdout.(*bytes.Buffer).String()
	for _, s := range trace {
		if strings.Contains(out, fmt.Sprintf("\n%d\t", s.Cursor)) {
			t.Errorf("Quiet output should not contain step %d:\n%s", s.Cursor, out)
		}
	}
	if !strings.Contains(out, "The radius is 2 pixels") {
		t.Errorf("Quiet output should still report the radius:\n%s", out)
	}
}

// TestProcessSentinelAppends verifies the sentinel mode and append semantics across runs
func TestProcessSentinelAppends(t *testing.T) {
	dir := t.TempDir()
	params := newTestParams(dir, writeTestParticle(t, dir, 10, 5))
	params.Scan.Record = radius.RecordSentinel

	for i := 0; i < 2; i++ {
		if err := NewAnalyzer(params).Process(); err != nil {
			t.Fatalf("Process %d failed: %v", i, err)
		}
	}

	data, err := os.ReadFile(params.OutputPath)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if string(data) != "11\r\n11\r\n" {
		t.Errorf("Expected two sentinel rows, got %q", string(data))
	}
}

// TestProcessNoDetection leaves the log untouched when nothing qualifies
func TestProcessNoDetection(t *testing.T) {
	dir := t.TempDir()
	params := newTestParams(dir, writeTestParticle(t, dir, 12, 100))

	analyzer := NewAnalyzer(params)
	if err := analyzer.Process(); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if analyzer.Result().Found {
		t.Error("Expected no detection")
	}
	if _, err := os.Stat(params.OutputPath); !os.IsNotExist(err) {
		t.Errorf("Expected no log file, stat returned %v", err)
	}
}

func TestProcessMissingInput(t *testing.T) {
	dir := t.TempDir()
	params := newTestParams(dir, filepath.Join(dir, "missing.mrc"))

	if err := NewAnalyzer(params).Process(); err == nil {
		t.Error("Expected error for missing input")
	}
}

func TestProcessInvalidParams(t *testing.T) {
	dir := t.TempDir()
	params := newTestParams(dir, writeTestParticle(t, dir, 10, 5))
	params.Scan.WindowSize = 0

	if err := NewAnalyzer(params).Process(); err == nil {
		t.Error("Expected error for zero window size")
	}
}

// TestProcessWithPlots renders the artefacts next to the log
func TestProcessWithPlots(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping plot rendering in short mode")
	}

	orig := monitoring.Logf
	defer func() { monitoring.Logf = orig }()

	var warnings []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		warnings = append(warnings, format)
	})

	dir := t.TempDir()
	params := newTestParams(dir, writeTestParticle(t, dir, 16, 10))
	params.PlotDir = filepath.Join(dir, "plots")

	if err := NewAnalyzer(params).Process(); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Unexpected warnings: %v", warnings)
	}
	for _, name := range []string{"profile.png", "overlay.jpg"} {
		if _, err := os.Stat(filepath.Join(params.PlotDir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}
