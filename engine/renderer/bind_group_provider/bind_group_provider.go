package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// binding is a GPU buffer together with the byte size it was created with.
type binding struct {
	buf  *wgpu.Buffer
	size uint64
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	label string

	// bindings and vertexBuffer are GPU allocations made by the Renderer. They stay nil until the
	// provider is handed to InitUniformBuffer or InitVertexBuffer.
	bindings     map[int]binding
	vertexBuffer *wgpu.Buffer
	vertexCount  int
}

// BindGroupProvider owns the GPU buffers behind one uniform block or one stroke vertex batch.
// Material pools, light pools, the per view-layer view block and stroke objects each hold one.
//
// Usage pattern:
//  1. Component creates a BindGroupProvider with a debug label
//  2. Renderer.InitUniformBuffer (or InitVertexBuffer) creates the GPU resources lazily
//  3. The draw cache stages Renderer.WriteBuffers calls with marshalled records
//  4. The Renderer builds per-pass bind groups from Buffer(0)
//
// A provider is created once and reused across frames; it is the identity used to decide
// whether two consecutive draw calls can share a shading group.
type BindGroupProvider interface {
	// Release releases every GPU buffer held by this provider. The provider may be initialized
	// again afterwards.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Buffer returns the uniform buffer created for a binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Size returns the byte size the binding's buffer was created with, or 0 if there is none.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - uint64: the buffer size in bytes
	Size(binding int) uint64

	// SetBuffer stores the buffer for a binding after GPU initialization.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	//   - size: the size the buffer was created with
	SetBuffer(binding int, buf *wgpu.Buffer, size uint64)

	// VertexBuffer returns the GPU vertex buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer or nil
	VertexBuffer() *wgpu.Buffer

	// VertexCount returns the number of vertices uploaded to the vertex buffer.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// SetVertexBuffer stores the GPU vertex buffer after creation by InitVertexBuffer.
	//
	// Parameters:
	//   - buf: the created vertex buffer
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetVertexCount sets the number of vertices held by the vertex buffer.
	//
	// Parameters:
	//   - count: the vertex count
	SetVertexCount(count int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// BufferWrite describes one queued write of marshalled records into a provider's binding.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Fits reports whether the write lands inside the target buffer. Writes to an uninitialized
// provider never fit.
func (w BufferWrite) Fits() bool {
	if w.Provider == nil {
		return false
	}
	size := w.Provider.Size(w.Binding)
	return size > 0 && w.Offset+uint64(len(w.Data)) <= size
}

// NewBindGroupProvider creates a provider with no GPU resources. Nothing is allocated until
// the provider is handed to the Renderer.
//
// Parameters:
//   - label: the debug label, used as a prefix for every GPU resource label
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string) BindGroupProvider {
	return &bindGroupProvider{
		label:    label,
		bindings: make(map[int]binding),
	}
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Buffer(index int) *wgpu.Buffer {
	return p.bindings[index].buf
}

func (p *bindGroupProvider) Size(index int) uint64 {
	return p.bindings[index].size
}

func (p *bindGroupProvider) SetBuffer(index int, buf *wgpu.Buffer, size uint64) {
	if buf == nil {
		delete(p.bindings, index)
		return
	}
	p.bindings[index] = binding{buf: buf, size: size}
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) VertexCount() int {
	return p.vertexCount
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetVertexCount(count int) {
	p.vertexCount = count
}

func (p *bindGroupProvider) Release() {
	for i, b := range p.bindings {
		b.buf.Release()
		delete(p.bindings, i)
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	p.vertexCount = 0
}
