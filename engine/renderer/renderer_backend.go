package renderer

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately. Lowest latency, may tear.
	PresentModeUncapped
)

// RendererBackend is the top-level backend interface for the Renderer.
type RendererBackend interface {
	wgpuRendererBackend
}

// backendOptions is the configuration a backend needs before it requests an adapter.
type backendOptions struct {
	forceFallbackAdapter bool

	// dummyColor is the RGBA8 texel bound wherever a material references no texture.
	dummyColor [4]byte
}

// defaultBackendOptions uses hardware adapters and a magenta dummy texel so missing
// textures stand out.
func defaultBackendOptions() backendOptions {
	return backendOptions{dummyColor: [4]byte{255, 0, 255, 255}}
}
