package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/drawcache"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window whose message loop Run drives and whose resizes reconfigure
// the renderer.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene sets the scene drawn by the render loop.
//
// Parameters:
//   - s: the Scene to draw
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithViewLayer sets the view layer frames are built for. Defaults to "ViewLayer".
//
// Parameters:
//   - name: the view layer name
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithViewLayer(name string) EngineBuilderOption {
	return func(e *engine) {
		e.viewLayer = name
	}
}

// WithDrawCache sets a pre-configured draw cache rather than letting the engine create one
// over its renderer with the default shader table.
//
// Parameters:
//   - dc: the draw cache
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDrawCache(dc drawcache.Engine) EngineBuilderOption {
	return func(e *engine) {
		e.drawCache = dc
	}
}

// WithFrameSettings sets the initial frame settings.
//
// Parameters:
//   - settings: the settings
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameSettings(settings drawcache.FrameSettings) EngineBuilderOption {
	return func(e *engine) {
		e.pendingSettings = &settings
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
