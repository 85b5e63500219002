package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// VoxelIndex computes the integer voxel coordinate for a world-space point,
// using floor (not truncation-toward-zero) so that points below the grid
// origin map to negative indices rather than being pulled toward zero.
func VoxelIndex(p r3.Vec, min r3.Vec, voxelSize float64) VoxelKey {
	inv := 1 / voxelSize
	return VoxelKey{
		int32(math.Floor((p.X - min.X) * inv)),
		int32(math.Floor((p.Y - min.Y) * inv)),
		int32(math.Floor((p.Z - min.Z) * inv)),
	}
}

// VoxelCenter returns the world-space center of voxel k given the grid's
// origin and voxel size.
func VoxelCenter(k VoxelKey, min r3.Vec, voxelSize float64) r3.Vec {
	half := voxelSize / 2
	return r3.Vec{
		X: min.X + half + float64(k[0])*voxelSize,
		Y: min.Y + half + float64(k[1])*voxelSize,
		Z: min.Z + half + float64(k[2])*voxelSize,
	}
}
