package vector

import (
	"math"
	"testing"
)

func TestCosineIdenticalVectors(t *testing.T) {
	v := []float32{0.3, -0.6, 0.9}
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("identical vectors must score 1.0, got %f", got)
	}
}

func TestCosineOppositeVectors(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}
	if got := Cosine(a, b); math.Abs(got+1.0) > 1e-9 {
		t.Fatalf("opposite vectors must score -1.0, got %f", got)
	}
}

func TestCosineOrthogonalVectors(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors must score 0, got %f", got)
	}
}

func TestCosineStaysInBounds(t *testing.T) {
	a := []float32{0.12, 7.5, -3.3, 0.004}
	b := []float32{-2.1, 0.9, 4.4, 8.8}
	got := Cosine(a, b)
	if got < -1.0-1e-9 || got > 1.0+1e-9 {
		t.Fatalf("similarity out of bounds: %f", got)
	}
}

func TestCosineDegenerateInputs(t *testing.T) {
	if got := Cosine([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Fatalf("dimension mismatch must score 0, got %f", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Fatalf("zero-magnitude vector must score 0, got %f", got)
	}
	if got := Cosine(nil, nil); got != 0 {
		t.Fatalf("empty vectors must score 0, got %f", got)
	}
}
