package kernel

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// TestSM1BothSeeEachOther is scenario SM-1 from spec.md §8.
func TestSM1BothSeeEachOther(t *testing.T) {
	points := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}}
	result, err := Smooth(points, SmoothParams{Radius: 5, Iterations: 1})
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	want := r3.Vec{X: 1, Y: 0, Z: 0}
	for i, p := range result {
		if !approxEqual(p, want, 1e-9) {
			t.Errorf("point %d = %v, want %v", i, p, want)
		}
	}
}

// TestSM2IdentityAtZeroNeighborRadius is scenario SM-2 and testable property
// 9 from spec.md §8.
func TestSM2IdentityAtZeroNeighborRadius(t *testing.T) {
	points := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}}
	result, err := Smooth(points, SmoothParams{Radius: 1, Iterations: 5})
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	for i, p := range result {
		if !approxEqual(p, points[i], 1e-9) {
			t.Errorf("point %d = %v, want unchanged %v", i, p, points[i])
		}
	}
}

// TestSM3FixedPointAtLargeRadius is scenario SM-3 and testable property 8
// from spec.md §8.
func TestSM3FixedPointAtLargeRadius(t *testing.T) {
	points := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}}
	result, err := Smooth(points, SmoothParams{Radius: 100, Iterations: 1})
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	want := r3.Vec{X: 1, Y: 0, Z: 0}
	for i, p := range result {
		if !approxEqual(p, want, 1e-9) {
			t.Errorf("point %d = %v, want centroid %v", i, p, want)
		}
	}
}

// TestSmoothLengthPreservation is testable property 7 from spec.md §8.
func TestSmoothLengthPreservation(t *testing.T) {
	points := randomCloud(300, 11)
	result, err := Smooth(points, SmoothParams{Radius: 1.5, Iterations: 3})
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	if len(result) != len(points) {
		t.Fatalf("got %d points, want %d", len(result), len(points))
	}
}

func TestSmoothEmptyInput(t *testing.T) {
	result, err := Smooth(nil, SmoothParams{Radius: 1, Iterations: 1})
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected empty output, got %d points", len(result))
	}
}

// TestSmoothInvalidRadiusEmptyOutput covers the non-positive/non-finite
// radius edge case from spec.md §4.1: validation-rejected input yields an
// empty result, not an error.
func TestSmoothInvalidRadiusEmptyOutput(t *testing.T) {
	points := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	for _, radius := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		result, err := Smooth(points, SmoothParams{Radius: radius, Iterations: 1})
		if err != nil {
			t.Fatalf("radius=%v: unexpected error %v", radius, err)
		}
		if len(result) != 0 {
			t.Errorf("radius=%v: expected empty output, got %d points", radius, len(result))
		}
	}
}

// TestSmoothInvalidIterationsEmptyOutput covers the non-positive iteration
// count edge case from spec.md §4.1.
func TestSmoothInvalidIterationsEmptyOutput(t *testing.T) {
	points := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	result, err := Smooth(points, SmoothParams{Radius: 1, Iterations: 0})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected empty output for zero iterations, got %d points", len(result))
	}
}

// TestSmoothDoesNotMutateInput ensures the original slice is left
// untouched, matching the contract that Smooth returns a new sequence.
func TestSmoothDoesNotMutateInput(t *testing.T) {
	points := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}}
	original := append([]r3.Vec(nil), points...)

	_, err := Smooth(points, SmoothParams{Radius: 5, Iterations: 3})
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	for i, p := range points {
		if p != original[i] {
			t.Errorf("input mutated at index %d: %v != %v", i, p, original[i])
		}
	}
}

// TestSmoothGridEdgeNeighborConvention exercises the shifted-coordinate
// neighbor lookup at the grid boundary (spec.md §9): shifted probes that
// land outside the grid are skipped without losing in-range neighbors.
func TestSmoothGridEdgeNeighborConvention(t *testing.T) {
	// Two points 1.4 apart with radius (and cell width) 1.5: the grid is a
	// single cell holding both, every shifted probe except the center one
	// falls outside the grid, and each point still finds the other.
	points := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1.4, Y: 0, Z: 0}}
	result, err := Smooth(points, SmoothParams{Radius: 1.5, Iterations: 1})
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	want := r3.Vec{X: 0.7, Y: 0, Z: 0}
	for i, p := range result {
		if !approxEqual(p, want, 1e-9) {
			t.Errorf("point %d = %v, want %v", i, p, want)
		}
	}
}
