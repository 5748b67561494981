package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer requests the CPU fallback adapter. A software Vulkan ICD such as
// lavapipe must be installed.
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.backendOptions.forceFallbackAdapter = force
	}
}

// WithDummyTextureColor sets the texel sampled by materials that reference no texture.
// Magenta by default.
//
// Parameters:
//   - rgba: the RGBA8 color
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithDummyTextureColor(rgba [4]byte) RendererBuilderOption {
	return func(r *renderer) {
		r.backendOptions.dummyColor = rgba
	}
}
