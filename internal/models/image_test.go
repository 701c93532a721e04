package models

import (
	"errors"
	"testing"
)

func TestNewImage(t *testing.T) {
	img, err := NewImage(2, 3, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	r, c := img.Dims()
	if r != 2 || c != 3 {
		t.Errorf("Expected 2x3, got %dx%d", r, c)
	}
	if got := img.Data.At(1, 0); got != 4 {
		t.Errorf("Expected row-major value 4, got %f", got)
	}

	if _, err := NewImage(2, 3, []float64{1}); err == nil {
		t.Error("Expected error for short data")
	}

	_, err = NewImage(0, 3, nil)
	var de *DomainError
	if !errors.As(err, &de) {
		t.Errorf("Expected DomainError for zero rows, got %v", err)
	}
}

// TestOriginOf checks floor division for even and odd sizes
func TestOriginOf(t *testing.T) {
	if o := OriginOf(10, 10); o.X != 5 || o.Y != 5 {
		t.Errorf("Expected (5,5), got (%d,%d)", o.X, o.Y)
	}
	if o := OriginOf(11, 7); o.X != 5 || o.Y != 3 {
		t.Errorf("Expected (5,3), got (%d,%d)", o.X, o.Y)
	}
	if r, c := (*Image)(nil).Dims(); r != 0 || c != 0 {
		t.Errorf("Expected nil image to have no dims, got %dx%d", r, c)
	}
}

func TestParseAxis(t *testing.T) {
	if a, err := ParseAxis("Y"); err != nil || a != AxisY {
		t.Errorf("Expected AxisY, got %v (%v)", a, err)
	}
	if a, err := ParseAxis(""); err != nil || a != AxisX {
		t.Errorf("Expected AxisX default, got %v (%v)", a, err)
	}
	if _, err := ParseAxis("z"); err == nil {
		t.Error("Expected error for axis z")
	}
}
