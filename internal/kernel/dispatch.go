package kernel

import (
	"log/slog"

	"golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/spatial/r3"
)

// AccumBackend names the CPU feature tier detected at process start,
// mirroring the teacher's SSDBackend/SADBackend runtime-dispatch pattern
// (internal/fit/ssd.go, sad.go in the teacher repo): feature-detect once in
// init(), store a package-level choice, and log it at debug level.
//
// There is no hand-written SIMD here (GPU/SIMD offload is out of scope per
// spec.md's acceleration non-goals). What the backend actually selects is
// the chunk-local finiteness prepass used by Downsample/Debug before
// accumulation: markFiniteWide unrolls by 4 to shorten the dependency chain
// through isFinite on wide-vector CPUs, markFiniteScalar checks one point at
// a time. Both populate an identical mask; kernel output never depends on
// which ran.
type AccumBackend int

const (
	AccumBackendScalar AccumBackend = iota
	AccumBackendWideChunk
)

func (b AccumBackend) String() string {
	switch b {
	case AccumBackendWideChunk:
		return "wide-chunk"
	default:
		return "scalar"
	}
}

// ActiveAccumBackend reports which finiteness-prepass strategy was selected
// at init.
var ActiveAccumBackend AccumBackend

// chunkSize is the number of points processed per cache-locality batch in
// the downsample/debug ingestion loop (spec.md §4.2 step 1: "iterate points
// in contiguous chunks of 1024"). Fixed regardless of ActiveAccumBackend.
const chunkSize = 1024

func init() {
	if cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD {
		ActiveAccumBackend = AccumBackendWideChunk
	} else {
		ActiveAccumBackend = AccumBackendScalar
	}
	slog.Debug("voxel accumulation backend selected", "backend", ActiveAccumBackend.String(), "chunk_size", chunkSize)
}

// markFinite fills mask[0:len(positions)] with whether each position has
// three finite components, dispatching to the backend selected in init().
func markFinite(positions []r3.Vec, mask []bool) {
	if ActiveAccumBackend == AccumBackendWideChunk {
		markFiniteWide(positions, mask)
	} else {
		markFiniteScalar(positions, mask)
	}
}

func markFiniteScalar(positions []r3.Vec, mask []bool) {
	for i, p := range positions {
		mask[i] = isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
	}
}

// markFiniteWide is markFiniteScalar unrolled by 4, processing the
// remainder with the scalar path. Same result, shorter dependency chain per
// iteration on CPUs wide enough to overlap the four checks.
func markFiniteWide(positions []r3.Vec, mask []bool) {
	n := len(positions)
	i := 0
	for ; i+4 <= n; i += 4 {
		p0, p1, p2, p3 := positions[i], positions[i+1], positions[i+2], positions[i+3]
		mask[i] = isFinite(p0.X) && isFinite(p0.Y) && isFinite(p0.Z)
		mask[i+1] = isFinite(p1.X) && isFinite(p1.Y) && isFinite(p1.Z)
		mask[i+2] = isFinite(p2.X) && isFinite(p2.Y) && isFinite(p2.Z)
		mask[i+3] = isFinite(p3.X) && isFinite(p3.Y) && isFinite(p3.Z)
	}
	for ; i < n; i++ {
		p := positions[i]
		mask[i] = isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
	}
}
