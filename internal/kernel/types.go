// Package kernel implements the three point-cloud compute kernels: voxel
// downsample, voxel debug, and point smoothing. Kernels are pure functions
// over in-memory data; binary framing and process lifecycle live in
// internal/framing and cmd.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Cloud is a decoded point cloud plus its optional per-point attributes.
// Position order is significant for Smooth; unspecified for Downsample/Debug.
type Cloud struct {
	Positions []r3.Vec

	Colors         []r3.Vec // present iff len(Colors) == len(Positions)
	Intensity      []float32
	Classification []uint8
}

// N returns the point count.
func (c *Cloud) N() int {
	return len(c.Positions)
}

func (c *Cloud) HasColors() bool {
	return len(c.Colors) == len(c.Positions) && len(c.Positions) > 0
}

func (c *Cloud) HasIntensity() bool {
	return len(c.Intensity) == len(c.Positions) && len(c.Positions) > 0
}

func (c *Cloud) HasClassification() bool {
	return len(c.Classification) == len(c.Positions) && len(c.Positions) > 0
}

// Bounds is the caller-supplied world-space origin of the voxel grid.
type Bounds struct {
	Min, Max r3.Vec
}

// Finite reports whether every component of the bounds is finite.
func (b Bounds) Finite() bool {
	return isFinite(b.Min.X) && isFinite(b.Min.Y) && isFinite(b.Min.Z) &&
		isFinite(b.Max.X) && isFinite(b.Max.Y) && isFinite(b.Max.Z)
}

// Ordered reports whether max >= min on every axis.
func (b Bounds) Ordered() bool {
	return b.Max.X >= b.Min.X && b.Max.Y >= b.Min.Y && b.Max.Z >= b.Min.Z
}

// VoxelKey is the tuple voxel coordinate used as a map key. Unlike the
// reference's packed 64-bit key (vx<<32 | vy<<16 | vz), a tuple key never
// collides regardless of magnitude. See PackKey for the reference's packed
// encoding, kept for parity testing and documented as a known limitation.
type VoxelKey [3]int32

// PackKey computes the reference's packed 64-bit voxel key, with vy and vz
// masked to their low 16 bits. It collides once any component exceeds its
// bit slice (|vy|>=2^15 after the 16-bit shift, |vz|>=2^15); this is a
// documented limitation of the reference, not a bug to fix. The kernels do
// not use it; it is kept for comparison with the reference's keys on
// typical workloads (|v| <= 2^15 per axis).
func PackKey(k VoxelKey) int64 {
	return (int64(k[0]) << 32) | (int64(k[1]&0xFFFF) << 16) | int64(k[2]&0xFFFF)
}

// Accumulator holds the running sum and count of points assigned to one
// voxel, plus optional attribute aggregates. Created on first touch of a
// voxel, mutated in place thereafter.
type Accumulator struct {
	Sum   r3.Vec
	Count int

	ColorSum     r3.Vec
	IntensitySum float64
	ClassCounts  map[uint8]int
}

// Centroid returns the mean position of the accumulated points.
func (a *Accumulator) Centroid() r3.Vec {
	return r3.Scale(1/float64(a.Count), a.Sum)
}

// MeanColor returns the mean accumulated color.
func (a *Accumulator) MeanColor() r3.Vec {
	return r3.Scale(1/float64(a.Count), a.ColorSum)
}

// MeanIntensity returns the mean accumulated intensity.
func (a *Accumulator) MeanIntensity() float32 {
	return float32(a.IntensitySum / float64(a.Count))
}

// MajorityClass returns the class id with the highest vote count, breaking
// ties toward the smallest class id.
func (a *Accumulator) MajorityClass() uint8 {
	var best uint8
	bestCount := -1
	haveBest := false
	for class, count := range a.ClassCounts {
		if count > bestCount || (count == bestCount && (!haveBest || class < best)) {
			best = class
			bestCount = count
			haveBest = true
		}
	}
	return best
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
