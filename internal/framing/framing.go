// Package framing implements the little-endian binary wire protocol that
// carries point clouds in and out of the compute kernels (spec.md §4.1).
// All multi-byte values are little-endian; floats are IEEE-754 binary32.
// Reading does not validate values; a short read always surfaces as a
// wrapped error (io.ErrUnexpectedEOF, or io.EOF when no byte at all was
// available) so the caller can fail closed per spec.md §7.
package framing

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DownsampleHeader is the 36-byte header read for a downsample invocation.
type DownsampleHeader struct {
	PointCount uint32
	VoxelSize  float32
	Min, Max   [3]float32
	Flags      uint32
}

const (
	flagColors         = 0x1
	flagIntensity      = 0x2
	flagClassification = 0x4
)

func (h DownsampleHeader) HasColors() bool         { return h.Flags&flagColors != 0 }
func (h DownsampleHeader) HasIntensity() bool      { return h.Flags&flagIntensity != 0 }
func (h DownsampleHeader) HasClassification() bool { return h.Flags&flagClassification != 0 }

// ReadDownsampleHeader reads the 36-byte downsample header.
func ReadDownsampleHeader(r io.Reader) (DownsampleHeader, error) {
	var buf [36]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return DownsampleHeader{}, fmt.Errorf("reading downsample header: %w", err)
	}
	return decodeDownsampleHeader(buf[:], true), nil
}

// ReadDebugHeader reads the 32-byte debug header (no attribute flag word).
func ReadDebugHeader(r io.Reader) (DownsampleHeader, error) {
	var buf [32]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return DownsampleHeader{}, fmt.Errorf("reading debug header: %w", err)
	}
	return decodeDownsampleHeader(buf[:], false), nil
}

func decodeDownsampleHeader(buf []byte, hasFlags bool) DownsampleHeader {
	var h DownsampleHeader
	h.PointCount = binary.LittleEndian.Uint32(buf[0:4])
	h.VoxelSize = readFloat32(buf[4:8])
	for i := 0; i < 3; i++ {
		h.Min[i] = readFloat32(buf[8+i*4 : 12+i*4])
	}
	for i := 0; i < 3; i++ {
		h.Max[i] = readFloat32(buf[20+i*4 : 24+i*4])
	}
	if hasFlags {
		h.Flags = binary.LittleEndian.Uint32(buf[32:36])
	}
	return h
}

// MinVec and MaxVec expose the header's bounds as gonum vectors.
func (h DownsampleHeader) MinVec() r3.Vec {
	return r3.Vec{X: float64(h.Min[0]), Y: float64(h.Min[1]), Z: float64(h.Min[2])}
}

func (h DownsampleHeader) MaxVec() r3.Vec {
	return r3.Vec{X: float64(h.Max[0]), Y: float64(h.Max[1]), Z: float64(h.Max[2])}
}

// SmoothHeader is the 12-byte header read for a smoothing invocation.
type SmoothHeader struct {
	PointCount uint32
	Radius     float32
	Iterations float32 // cast to integer after read, per spec.md §4.1
}

// ReadSmoothHeader reads the 12-byte smooth header.
func ReadSmoothHeader(r io.Reader) (SmoothHeader, error) {
	var buf [12]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return SmoothHeader{}, fmt.Errorf("reading smooth header: %w", err)
	}
	return SmoothHeader{
		PointCount: binary.LittleEndian.Uint32(buf[0:4]),
		Radius:     readFloat32(buf[4:8]),
		Iterations: readFloat32(buf[8:12]),
	}, nil
}

// ReadPositions reads n interleaved (x,y,z) float32 triples.
func ReadPositions(r io.Reader, n int) ([]r3.Vec, error) {
	buf := make([]byte, n*12)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading %d positions: %w", n, err)
	}
	out := make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		off := i * 12
		out[i] = r3.Vec{
			X: float64(readFloat32(buf[off : off+4])),
			Y: float64(readFloat32(buf[off+4 : off+8])),
			Z: float64(readFloat32(buf[off+8 : off+12])),
		}
	}
	return out, nil
}

// ReadColors reads n interleaved (r,g,b) float32 triples.
func ReadColors(r io.Reader, n int) ([]r3.Vec, error) {
	vecs, err := ReadPositions(r, n)
	if err != nil {
		return nil, fmt.Errorf("reading %d colors: %w", n, err)
	}
	return vecs, nil
}

// ReadIntensity reads n float32 values.
func ReadIntensity(r io.Reader, n int) ([]float32, error) {
	buf := make([]byte, n*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading %d intensity values: %w", n, err)
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = readFloat32(buf[i*4 : i*4+4])
	}
	return out, nil
}

// ReadClassification reads n unsigned bytes.
func ReadClassification(r io.Reader, n int) ([]uint8, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading %d classification values: %w", n, err)
	}
	return buf, nil
}

// WriteEmpty writes the "validation rejected" marker: a bare u32 zero.
func WriteEmpty(w io.Writer) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], 0)
	_, err := w.Write(buf[:])
	return err
}

// WriteCount writes a u32 output count header.
func WriteCount(w io.Writer, count uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], count)
	_, err := w.Write(buf[:])
	return err
}

// WritePositions writes positions as interleaved float32 triples.
func WritePositions(w io.Writer, positions []r3.Vec) error {
	buf := make([]byte, len(positions)*12)
	for i, p := range positions {
		off := i * 12
		writeFloat32(buf[off:off+4], float32(p.X))
		writeFloat32(buf[off+4:off+8], float32(p.Y))
		writeFloat32(buf[off+8:off+12], float32(p.Z))
	}
	_, err := w.Write(buf)
	return err
}

// WriteIntensity writes n float32 values.
func WriteIntensity(w io.Writer, values []float32) error {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		writeFloat32(buf[i*4:i*4+4], v)
	}
	_, err := w.Write(buf)
	return err
}

// WriteClassification writes n unsigned bytes.
func WriteClassification(w io.Writer, values []uint8) error {
	_, err := w.Write(values)
	return err
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func writeFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
