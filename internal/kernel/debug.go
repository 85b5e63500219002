package kernel

import "gonum.org/v1/gonum/spatial/r3"

// DebugParams bundles the parameters transmitted in the debug header
// (spec.md §4.1: the 32-byte header, no attribute flag word).
type DebugParams struct {
	VoxelSize float64
	Bounds    Bounds
}

// Debug returns the world-space centers of all occupied voxels (spec.md
// §4.3). No accumulator is required — a set of keys suffices, since the
// center is a pure function of the key and the grid origin.
func Debug(cloud *Cloud, params DebugParams) ([]r3.Vec, error) {
	if err := ValidatePointCount(cloud.N()); err != nil {
		return nil, err
	}
	if !PositiveFinite(params.VoxelSize) {
		return nil, nil
	}

	occupied := make(map[VoxelKey]struct{}, cloud.N()/4+1)

	n := cloud.N()
	mask := make([]bool, chunkSize)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		markFinite(cloud.Positions[start:end], mask)
		for i := start; i < end; i++ {
			if !mask[i-start] {
				continue
			}
			key := VoxelIndex(cloud.Positions[i], params.Bounds.Min, params.VoxelSize)
			occupied[key] = struct{}{}
		}
	}

	centers := make([]r3.Vec, 0, len(occupied))
	for key := range occupied {
		centers = append(centers, VoxelCenter(key, params.Bounds.Min, params.VoxelSize))
	}
	return centers, nil
}
