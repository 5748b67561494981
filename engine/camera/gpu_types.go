package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (160 bytes, std430 aligned).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniformSize is the byte size of one GPUCameraUniform.
const GPUCameraUniformSize = 160

// GPUCameraUniform is the GPU-aligned representation of the view uniform buffer.
// Size: 160 bytes (std430 / WGSL aligned).
type GPUCameraUniform struct {
	ViewProj [16]float32 // offset   0: combined view-projection matrix (mat4x4<f32>)
	ViewInv  [16]float32 // offset  64: inverse view matrix (mat4x4<f32>)
	Position [4]float32  // offset 128: camera position, w = 1 when perspective
	Viewport [4]float32  // offset 144: size and inverse size in pixels
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (160)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the uniform into dst, which must hold at least Size() bytes.
//
// Parameters:
//   - dst: the destination buffer
func (g *GPUCameraUniform) MarshalTo(dst []byte) {
	put := func(ofs int, v []float32) {
		for i, f := range v {
			binary.LittleEndian.PutUint32(dst[ofs+i*4:], math.Float32bits(f))
		}
	}
	put(0, g.ViewProj[:])
	put(64, g.ViewInv[:])
	put(128, g.Position[:])
	put(144, g.Viewport[:])
}
