package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SmoothParams bundles the parameters transmitted in the smooth header
// (spec.md §4.1: 12-byte header, radius + iteration count).
type SmoothParams struct {
	Radius     float64
	Iterations int
}

// Smooth runs iterative Laplacian-style smoothing (spec.md §4.4). It
// returns a new slice of the same length and order as the input; the input
// slice is never mutated. A non-positive point count, radius, or iteration
// count yields an empty result rather than an error (spec.md §4.1: "write
// u32 0 and exit successfully"), mirroring Downsample's PositiveFinite gate.
func Smooth(positions []r3.Vec, params SmoothParams) ([]r3.Vec, error) {
	if len(positions) == 0 {
		return nil, nil
	}
	if !PositiveFinite(params.Radius) || params.Iterations <= 0 {
		return nil, nil
	}

	prev := make([]r3.Vec, len(positions))
	copy(prev, positions)
	next := make([]r3.Vec, len(positions))

	for iter := 0; iter < params.Iterations; iter++ {
		grid := buildSpatialGrid(prev, params.Radius)
		smoothOneIteration(prev, next, grid, params.Radius)
		prev, next = next, prev
	}

	return prev, nil
}

// spatialGrid is a CSR-style ("offsets + indices") uniform grid over a
// bounding box, rebuilt every iteration because points move (spec.md §4.4:
// "the bounding box is recomputed every iteration"). This replaces the
// reference's vector-of-vectors-per-cell layout per spec.md §9's explicit
// invitation ("an offsets+indices layout rebuilt each iteration is equally
// acceptable and more cache-friendly").
type spatialGrid struct {
	min      r3.Vec
	cellSize float64
	gw, gh, gd int

	offsets []int32 // len = gw*gh*gd + 1
	indices []int32 // len = len(points)
}

// cellOf computes the integer cell coordinate of a world-space point using
// the same floor convention as VoxelIndex, relative to the grid's own min
// (spec.md §4.4: "relative to the current iteration's min, not a global
// min").
func (g *spatialGrid) cellOf(p r3.Vec) (cx, cy, cz int) {
	inv := 1 / g.cellSize
	cx = int(math.Floor((p.X - g.min.X) * inv))
	cy = int(math.Floor((p.Y - g.min.Y) * inv))
	cz = int(math.Floor((p.Z - g.min.Z) * inv))
	return
}

// flatIndex maps a cell coordinate to its slot in offsets/indices, or
// reports ok=false if the cell lies outside the grid's extent. Coordinates
// outside the extent arise at the grid edge when probing neighbor cells via
// the shifted-coordinate convention (see smoothOneIteration).
func (g *spatialGrid) flatIndex(cx, cy, cz int) (idx int, ok bool) {
	if cx < 0 || cy < 0 || cz < 0 || cx >= g.gw || cy >= g.gh || cz >= g.gd {
		return 0, false
	}
	return (cx*g.gh+cy)*g.gd + cz, true
}

func (g *spatialGrid) cellPoints(flat int) []int32 {
	return g.indices[g.offsets[flat]:g.offsets[flat+1]]
}

// buildSpatialGrid computes the bounding box of points and populates a
// fresh grid with cell_size = radius (spec.md §4.4 steps 1-3).
func buildSpatialGrid(points []r3.Vec, radius float64) *spatialGrid {
	min := points[0]
	max := points[0]
	for _, p := range points[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}

	// Use the same reciprocal-multiply formula as cellOf (both derive from
	// cellSize == radius) rather than a direct division here: division and
	// multiply-by-reciprocal are not guaranteed bit-identical in IEEE-754,
	// and a point exactly on max must floor into the last grid cell, not
	// one past it.
	inv := 1 / radius
	gw := int(math.Floor((max.X-min.X)*inv)) + 1
	gh := int(math.Floor((max.Y-min.Y)*inv)) + 1
	gd := int(math.Floor((max.Z-min.Z)*inv)) + 1

	g := &spatialGrid{
		min:      min,
		cellSize: radius,
		gw:       gw,
		gh:       gh,
		gd:       gd,
		offsets:  make([]int32, gw*gh*gd+1),
		indices:  make([]int32, len(points)),
	}

	// Counting pass: tally points per cell. cellOfPoint holds -1 for a point
	// that falls outside the grid's extent; it is silently left out of every
	// cell, matching the reference's bare "if 0 <= grid_index < grid_size:
	// append" with no else (no clamping into a boundary cell).
	cellOfPoint := make([]int, len(points))
	for i, p := range points {
		cx, cy, cz := g.cellOf(p)
		flat, ok := g.flatIndex(cx, cy, cz)
		if !ok {
			cellOfPoint[i] = -1
			continue
		}
		cellOfPoint[i] = flat
		g.offsets[flat+1]++
	}
	for i := 0; i < len(g.offsets)-1; i++ {
		g.offsets[i+1] += g.offsets[i]
	}

	// Fill pass: scatter indices using a cursor copy of offsets. Every slot
	// in [0, total) is written exactly once, where total = offsets[last] is
	// the count of points that landed inside the grid.
	total := g.offsets[len(g.offsets)-1]
	cursor := make([]int32, len(g.offsets)-1)
	copy(cursor, g.offsets[:len(g.offsets)-1])
	for i := range points {
		flat := cellOfPoint[i]
		if flat < 0 {
			continue
		}
		g.indices[cursor[flat]] = int32(i)
		cursor[flat]++
	}
	g.indices = g.indices[:total]

	return g
}

// smoothOneIteration writes the smoothed result of one pass into next,
// given the grid built over prev (spec.md §4.4 steps 4-5).
func smoothOneIteration(prev, next []r3.Vec, grid *spatialGrid, radius float64) {
	r2 := radius * radius
	var offsets = [3]float64{-radius, 0, radius}

	for i, p := range prev {
		var sum r3.Vec
		count := 0

		for _, dx := range offsets {
			for _, dy := range offsets {
				for _, dz := range offsets {
					// The reference's exact convention: recompute the cell
					// of the shifted coordinate rather than offsetting the
					// cell index by ±1 directly. Equivalent for interior
					// cells, diverges at the grid edge (spec.md §9).
					shifted := r3.Vec{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
					ncx, ncy, ncz := grid.cellOf(shifted)
					flat, ok := grid.flatIndex(ncx, ncy, ncz)
					if !ok {
						continue
					}

					for _, j := range grid.cellPoints(flat) {
						if int(j) == i {
							continue
						}
						q := prev[j]
						ddx := q.X - p.X
						ddy := q.Y - p.Y
						ddz := q.Z - p.Z
						d2 := ddx*ddx + ddy*ddy + ddz*ddz
						if d2 <= r2 {
							sum = r3.Add(sum, q)
							count++
						}
					}
				}
			}
		}

		if count > 0 {
			next[i] = r3.Scale(1/float64(count+1), r3.Add(p, sum))
		} else {
			next[i] = p
		}
	}
}
