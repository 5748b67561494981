package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	backendOptions     backendOptions
	pendingPresentMode *PresentMode
}

// Renderer defines the GPU services the stroke draw cache consumes.
//
// It creates uniform and vertex buffers on BindGroupProviders, batches buffer writes, owns the
// dummy texture bound to empty samplers, allocates the per-frame offscreen targets and executes
// pass records. Pipelines are compiled lazily from the ShaderTable handed to ExecutePass and
// cached per shader, render state and target layout.
type Renderer interface {
	// Resize reconfigures the surface for a new window size. Offscreen targets follow on the
	// next AcquireTargets.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// InitUniformBuffer creates a uniform buffer of size bytes at binding 0 of provider.
	// Providers that already hold a buffer are left untouched.
	//
	// Parameters:
	//   - provider: the provider to store the buffer on
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	InitUniformBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error

	// InitVertexBuffer uploads vertex data to a new vertex buffer stored on provider.
	//
	// Parameters:
	//   - provider: the provider to store the buffer on
	//   - vertexData: the raw vertex bytes
	//   - vertexCount: the number of vertices in vertexData
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error

	// InitTexture uploads RGBA8 pixels to a new sampled texture.
	//
	// Parameters:
	//   - label: the texture label
	//   - width: the width in texels
	//   - height: the height in texels
	//   - pixels: width*height*4 bytes of RGBA data
	//
	// Returns:
	//   - *wgpu.TextureView: the view of the new texture
	//   - error: an error if the texture could not be created
	InitTexture(label string, width, height uint32, pixels []byte) (*wgpu.TextureView, error)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// DummyTexture returns a 1x1 texture bound wherever a sampler has no real texture.
	//
	// Returns:
	//   - *wgpu.TextureView: the dummy texture view
	DummyTexture() *wgpu.TextureView

	// AcquireTargets returns the offscreen targets for the current frame. Targets are reused
	// across frames while their size and format do not change.
	//
	// Parameters:
	//   - req: the targets the frame needs
	//
	// Returns:
	//   - *FrameTargets: the targets; unrequested optional targets are nil
	//   - error: an error if a texture could not be created
	AcquireTargets(req TargetRequest) (*FrameTargets, error)

	// BeginFrame acquires the next swapchain texture and creates the frame's command encoder.
	// Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// ExecutePass encodes one render pass drawing every group of p into dst. A pass without
	// draws is still encoded when clear selects an attachment.
	//
	// Parameters:
	//   - table: the shader table the groups' shader kinds are looked up in
	//   - p: the pass to draw
	//   - dst: the framebuffer to draw into
	//   - clear: the attachments to clear before drawing
	//   - targets: the frame targets texture references resolve against
	//
	// Returns:
	//   - error: an error if a pipeline or bind group could not be created
	ExecutePass(table *ShaderTable, p *pass.Pass, dst *Framebuffer, clear ClearOp, targets *FrameTargets) error

	// EndFrame finishes the command encoder and submits it. Does not present.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	Present()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance for the given window with the provided options.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:             &sync.Mutex{},
		backendType:    backendType,
		backendOptions: defaultBackendOptions(),
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.backendOptions)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(win.Width(), win.Height())
	return r
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) InitUniformBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error {
	return r.backend.InitUniformBuffer(provider, size)
}

func (r *renderer) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error {
	return r.backend.InitVertexBuffer(provider, vertexData, vertexCount)
}

func (r *renderer) InitTexture(label string, width, height uint32, pixels []byte) (*wgpu.TextureView, error) {
	return r.backend.InitTexture(label, width, height, pixels)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) DummyTexture() *wgpu.TextureView {
	return r.backend.DummyTexture()
}

func (r *renderer) AcquireTargets(req TargetRequest) (*FrameTargets, error) {
	return r.backend.AcquireTargets(req)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) ExecutePass(table *ShaderTable, p *pass.Pass, dst *Framebuffer, clear ClearOp, targets *FrameTargets) error {
	if p == nil || dst == nil || (p.IsEmpty() && clear.IsZero()) {
		return nil
	}
	return r.backend.ExecutePass(table, p, dst, clear, targets)
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}
