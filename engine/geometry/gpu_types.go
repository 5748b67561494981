package geometry

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUStrokeVertexSize is the byte stride of one GPUStrokeVertex.
const GPUStrokeVertexSize = 48

// GPUStrokeVertex is the GPU-aligned representation of one expanded stroke or fill vertex.
// Matches renderer.StrokeVertexLayout exactly.
// Size: 48 bytes.
type GPUStrokeVertex struct {
	Position  [3]float32 // offset  0: object space position (12 bytes)
	Thickness float32    // offset 12: stroke thickness at this vertex, 0 for fills (4 bytes)
	Color     [4]float32 // offset 16: vertex color mixed over the material (16 bytes)
	UV        [2]float32 // offset 32: stroke length/side or fill UV (8 bytes)
	Material  uint32     // offset 40: material slot of the owning object (4 bytes)
	_         uint32     // offset 44: padding (4 bytes)
}

// Size returns the size of the GPUStrokeVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUStrokeVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the vertex into a new buffer.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUStrokeVertex) Marshal() []byte {
	buf := make([]byte, GPUStrokeVertexSize)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the vertex into dst, which must hold at least GPUStrokeVertexSize bytes.
//
// Parameters:
//   - dst: the destination buffer
func (g *GPUStrokeVertex) MarshalTo(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(dst[12:16], math.Float32bits(g.Thickness))
	binary.LittleEndian.PutUint32(dst[16:20], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(dst[20:24], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(dst[24:28], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(dst[28:32], math.Float32bits(g.Color[3]))
	binary.LittleEndian.PutUint32(dst[32:36], math.Float32bits(g.UV[0]))
	binary.LittleEndian.PutUint32(dst[36:40], math.Float32bits(g.UV[1]))
	binary.LittleEndian.PutUint32(dst[40:44], g.Material)
	binary.LittleEndian.PutUint32(dst[44:48], 0)
}

// Unmarshal reads a vertex written by MarshalTo.
//
// Parameters:
//   - src: the source buffer
func (g *GPUStrokeVertex) Unmarshal(src []byte) {
	f := func(o int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(src[o : o+4])) }
	g.Position = [3]float32{f(0), f(4), f(8)}
	g.Thickness = f(12)
	g.Color = [4]float32{f(16), f(20), f(24), f(28)}
	g.UV = [2]float32{f(32), f(36)}
	g.Material = binary.LittleEndian.Uint32(src[40:44])
}
