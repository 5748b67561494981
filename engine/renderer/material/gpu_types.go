package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// MaterialBufferLen is the number of GPUMaterial records held by one material uniform block.
// Keep in sync with GP_MATERIAL_BUFFER_LEN in GPUMaterialSource.
const MaterialBufferLen = 128

// GPUMaterialSize is the byte size of one GPUMaterial record.
const GPUMaterialSize = 96

// MaterialFlag is the packed bit field carried by every GPUMaterial.
// Bits 0-1 form the stroke alignment enum; every other bit is independent.
type MaterialFlag int32

const (
	// FlagAlignmentStroke aligns dots and squares with the stroke direction.
	FlagAlignmentStroke MaterialFlag = 1
	// FlagAlignmentObject aligns dots and squares with the object axes.
	FlagAlignmentObject MaterialFlag = 2
	// FlagAlignmentFixed keeps dots and squares aligned with the screen.
	FlagAlignmentFixed MaterialFlag = 3
	// FlagAlignmentMask selects the 2-bit alignment sub-field.
	FlagAlignmentMask MaterialFlag = 0x3

	FlagStrokeOverlap        MaterialFlag = 1 << 2
	FlagStrokeTextureUse     MaterialFlag = 1 << 3
	FlagStrokeTextureStencil MaterialFlag = 1 << 4
	FlagStrokeTexturePremul  MaterialFlag = 1 << 5
	FlagStrokeDots           MaterialFlag = 1 << 6
	FlagFillTextureUse       MaterialFlag = 1 << 10
	FlagFillTexturePremul    MaterialFlag = 1 << 11
	FlagFillTextureClip      MaterialFlag = 1 << 12
	FlagFillGradientUse      MaterialFlag = 1 << 13
	FlagFillGradientRadial   MaterialFlag = 1 << 14
)

// Alignment returns the stroke alignment sub-field (0 when no alignment is set).
//
// Returns:
//   - MaterialFlag: one of 0, FlagAlignmentStroke, FlagAlignmentObject or FlagAlignmentFixed
func (f MaterialFlag) Alignment() MaterialFlag {
	return f & FlagAlignmentMask
}

// WithAlignment returns a copy of the flag with the alignment sub-field replaced.
// Any previous alignment value is cleared first so the two bits never mix.
//
// Parameters:
//   - a: the alignment value, masked to two bits
//
// Returns:
//   - MaterialFlag: the updated flag
func (f MaterialFlag) WithAlignment(a MaterialFlag) MaterialFlag {
	return (f &^ FlagAlignmentMask) | (a & FlagAlignmentMask)
}

// Has reports whether every bit of mask is set.
//
// Parameters:
//   - mask: the bits to test
//
// Returns:
//   - bool: true if all bits are set
func (f MaterialFlag) Has(mask MaterialFlag) bool {
	return f&mask == mask
}

// GPUMaterialSource is the canonical WGSL definition of the GpMaterial struct and its flag bits.
// Matches GPUMaterial layout exactly (96 bytes, 16-byte aligned).
//
//go:embed assets/gp_material.wgsl
var GPUMaterialSource string

// GPUMaterial is the GPU-aligned representation of one stroke material.
// Matches the WGSL GpMaterial struct layout exactly (see GPUMaterialSource).
// Size: 96 bytes (std140 / WGSL uniform aligned).
type GPUMaterial struct {
	StrokeColor      [4]float32    // offset  0: RGBA stroke color
	FillColor        [4]float32    // offset 16: RGBA fill color
	FillMixColor     [4]float32    // offset 32: second gradient color
	FillUVTransform  [3][2]float32 // offset 48: 3x2 fill UV transform (rotation/scale rows then offset)
	_pad0            [2]float32    // offset 72: padding to 16-byte boundary
	StrokeTextureMix float32       // offset 80: stroke texture vs. color blend
	StrokeUScale     float32       // offset 84: stroke texture U repeat
	FillTextureMix   float32       // offset 88: fill texture vs. color blend
	Flag             MaterialFlag  // offset 92: packed MaterialFlag bits
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, GPUMaterialSize)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the GPUMaterial struct into dst, which must hold at least
// GPUMaterialSize bytes. Used to pack whole uniform blocks without per-record allocation.
//
// Parameters:
//   - dst: the destination buffer
func (g *GPUMaterial) MarshalTo(dst []byte) {
	putVec4(dst[0:16], g.StrokeColor)
	putVec4(dst[16:32], g.FillColor)
	putVec4(dst[32:48], g.FillMixColor)
	for row := 0; row < 3; row++ {
		off := 48 + row*8
		binary.LittleEndian.PutUint32(dst[off:off+4], math.Float32bits(g.FillUVTransform[row][0]))
		binary.LittleEndian.PutUint32(dst[off+4:off+8], math.Float32bits(g.FillUVTransform[row][1]))
	}
	binary.LittleEndian.PutUint64(dst[72:80], 0) // padding
	binary.LittleEndian.PutUint32(dst[80:84], math.Float32bits(g.StrokeTextureMix))
	binary.LittleEndian.PutUint32(dst[84:88], math.Float32bits(g.StrokeUScale))
	binary.LittleEndian.PutUint32(dst[88:92], math.Float32bits(g.FillTextureMix))
	binary.LittleEndian.PutUint32(dst[92:96], uint32(g.Flag))
}

// Unmarshal decodes a GPUMaterial from a buffer previously produced by Marshal.
//
// Parameters:
//   - src: at least GPUMaterialSize bytes
func (g *GPUMaterial) Unmarshal(src []byte) {
	g.StrokeColor = getVec4(src[0:16])
	g.FillColor = getVec4(src[16:32])
	g.FillMixColor = getVec4(src[32:48])
	for row := 0; row < 3; row++ {
		off := 48 + row*8
		g.FillUVTransform[row][0] = math.Float32frombits(binary.LittleEndian.Uint32(src[off : off+4]))
		g.FillUVTransform[row][1] = math.Float32frombits(binary.LittleEndian.Uint32(src[off+4 : off+8]))
	}
	g.StrokeTextureMix = math.Float32frombits(binary.LittleEndian.Uint32(src[80:84]))
	g.StrokeUScale = math.Float32frombits(binary.LittleEndian.Uint32(src[84:88]))
	g.FillTextureMix = math.Float32frombits(binary.LittleEndian.Uint32(src[88:92]))
	g.Flag = MaterialFlag(binary.LittleEndian.Uint32(src[92:96]))
}

func putVec4(dst []byte, v [4]float32) {
	for i := range v {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], math.Float32bits(v[i]))
	}
}

func getVec4(src []byte) [4]float32 {
	var v [4]float32
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4 : i*4+4]))
	}
	return v
}
