package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("radius %d", 4)
	if got != "radius 4" {
		t.Errorf("Expected %q, got %q", "radius 4", got)
	}

	SetLogger(nil)
	Logf("ignored %d", 1)
	if got != "radius 4" {
		t.Errorf("No-op logger should not write, got %q", got)
	}
}
