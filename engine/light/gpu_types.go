package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// LightBufferLen is the number of GPULight records one light uniform block holds.
// Keep in sync with GP_LIGHT_BUFFER_LEN in GPULightSource.
const LightBufferLen = 128

// GPULightSize is the byte size of one GPULight record.
const GPULightSize = 80

// GPULightType is the float-encoded light kind read by the stroke shaders.
type GPULightType float32

const (
	GPULightTypePoint   GPULightType = 0
	GPULightTypeSpot    GPULightType = 1
	GPULightTypeSun     GPULightType = 2
	GPULightTypeAmbient GPULightType = 3
)

// listEndTag marks the first unused record: shaders stop at a light whose Color[0] is -1.
const listEndTag float32 = -1

// GPULightSource is the canonical WGSL definition of the GpLight struct.
// Matches GPULight layout exactly (80 bytes, 16-byte aligned).
//
//go:embed assets/gp_light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a single stroke light.
// Matches the WGSL GpLight struct layout exactly (see GPULightSource).
// Size: 80 bytes (std140 / WGSL uniform aligned).
//
// Right, Up and Forward hold the first three columns of the light's inverse world matrix for
// spot lights, and Forward alone holds the normalized direction for sun lights.
type GPULight struct {
	Color     [3]float32   // offset  0: RGB color premultiplied by energy
	Type      GPULightType // offset 12: GPULightType
	Right     [3]float32   // offset 16: spot space X axis
	SpotSize  float32      // offset 28: cos(spot half-angle)
	Up        [3]float32   // offset 32: spot space Y axis
	SpotBlend float32      // offset 44: spot edge softness
	Forward   [4]float32   // offset 48: spot space Z axis or sun direction
	Position  [4]float32   // offset 64: world position
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, GPULightSize)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the GPULight struct into dst, which must hold at least GPULightSize bytes.
//
// Parameters:
//   - dst: the destination buffer
func (g *GPULight) MarshalTo(dst []byte) {
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(dst[off:off+4], math.Float32bits(v))
	}
	put(0, g.Color[0])
	put(4, g.Color[1])
	put(8, g.Color[2])
	put(12, float32(g.Type))
	put(16, g.Right[0])
	put(20, g.Right[1])
	put(24, g.Right[2])
	put(28, g.SpotSize)
	put(32, g.Up[0])
	put(36, g.Up[1])
	put(40, g.Up[2])
	put(44, g.SpotBlend)
	for i := 0; i < 4; i++ {
		put(48+i*4, g.Forward[i])
		put(64+i*4, g.Position[i])
	}
}

// Unmarshal decodes a GPULight from a buffer previously produced by Marshal.
//
// Parameters:
//   - src: at least GPULightSize bytes
func (g *GPULight) Unmarshal(src []byte) {
	get := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(src[off : off+4]))
	}
	g.Color = [3]float32{get(0), get(4), get(8)}
	g.Type = GPULightType(get(12))
	g.Right = [3]float32{get(16), get(20), get(24)}
	g.SpotSize = get(28)
	g.Up = [3]float32{get(32), get(36), get(40)}
	g.SpotBlend = get(44)
	for i := 0; i < 4; i++ {
		g.Forward[i] = get(48 + i*4)
		g.Position[i] = get(64 + i*4)
	}
}
