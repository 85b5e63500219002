package kernel

import "gonum.org/v1/gonum/spatial/r3"

// DownsampleParams bundles the parameters transmitted in the downsample
// header (spec.md §4.1).
type DownsampleParams struct {
	VoxelSize float64
	Bounds    Bounds
}

// DownsampleResult is the set of occupied voxels after averaging, in
// unspecified order (spec.md §3: "the downsample kernels emit a set whose
// order is unspecified").
type DownsampleResult struct {
	Positions      []r3.Vec
	Colors         []r3.Vec // only populated if the input carried colors
	Intensity      []float32
	Classification []uint8
}

// Downsample reduces cloud to one averaged representative per occupied
// voxel (spec.md §4.2). A non-positive, non-finite voxel size yields an
// empty result rather than an error (spec.md "Edge cases"); non-finite
// bounds must be rejected by the caller via ValidateBounds before calling
// Downsample.
func Downsample(cloud *Cloud, params DownsampleParams) (*DownsampleResult, error) {
	if err := ValidatePointCount(cloud.N()); err != nil {
		return nil, err
	}
	if !PositiveFinite(params.VoxelSize) {
		return &DownsampleResult{}, nil
	}

	hasColor := cloud.HasColors()
	hasIntensity := cloud.HasIntensity()
	hasClass := cloud.HasClassification()

	accum := make(map[VoxelKey]*Accumulator, cloud.N()/4+1)

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
				continue // silently dropped, spec.md §4.2 step 2
			}
			p := cloud.Positions[i]

			key := VoxelIndex(p, params.Bounds.Min, params.VoxelSize)
			acc, ok := accum[key]
			if !ok {
				acc = &Accumulator{}
				if hasClass {
					acc.ClassCounts = make(map[uint8]int, 1)
				}
				accum[key] = acc
			}

			acc.Sum = r3.Add(acc.Sum, p)
			acc.Count++

			if hasColor {
				acc.ColorSum = r3.Add(acc.ColorSum, cloud.Colors[i])
			}
			if hasIntensity {
				acc.IntensitySum += float64(cloud.Intensity[i])
			}
			if hasClass {
				acc.ClassCounts[cloud.Classification[i]]++
			}
		}
	}

	result := &DownsampleResult{
		Positions: make([]r3.Vec, 0, len(accum)),
	}
	if hasColor {
		result.Colors = make([]r3.Vec, 0, len(accum))
	}
	if hasIntensity {
		result.Intensity = make([]float32, 0, len(accum))
	}
	if hasClass {
		result.Classification = make([]uint8, 0, len(accum))
	}

	for _, acc := range accum {
		result.Positions = append(result.Positions, acc.Centroid())
		if hasColor {
			result.Colors = append(result.Colors, acc.MeanColor())
		}
		if hasIntensity {
			result.Intensity = append(result.Intensity, acc.MeanIntensity())
		}
		if hasClass {
			result.Classification = append(result.Classification, acc.MajorityClass())
		}
	}

	return result, nil
}
