package drawcache

import (
	"github.com/Carmen-Shannon/oxy-gpencil/engine/camera"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/light"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Backend is the subset of renderer.Renderer the draw cache uses.
type Backend interface {
	InitUniformBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	DummyTexture() *wgpu.TextureView
	AcquireTargets(req renderer.TargetRequest) (*renderer.FrameTargets, error)
	ExecutePass(table *renderer.ShaderTable, p *pass.Pass, dst *renderer.Framebuffer, clear renderer.ClearOp, targets *renderer.FrameTargets) error
}

var _ Backend = renderer.Renderer(nil)

// FrameSettings are the per-frame toggles of the draw cache.
type FrameSettings struct {
	// IsRender selects final render mode over the interactive viewport. Effects use their
	// render visibility, onion skins and layer fading are off.
	IsRender bool

	// DrawDepthOnly draws for selection or depth picking; every object is treated as 3D.
	DrawDepthOnly bool

	// SimplifyFill skips fill draws, SimplifyFx skips every effect.
	SimplifyFill bool
	SimplifyFx   bool

	// DoOnion draws the layers' onion skin strokes in the viewport.
	DoOnion bool

	// UseLighting enables scene lights. When false every object uses the shadeless pool.
	UseLighting bool

	// FadeLayers dims the inactive layers of the active object to FadeLayerOpacity in the
	// viewport.
	FadeLayers       bool
	FadeLayerOpacity float32

	// Width and Height of the frame targets. Zero uses the surface size.
	Width  int
	Height int
}

// DefaultFrameSettings returns lit viewport settings.
//
// Returns:
//   - FrameSettings: the defaults
func DefaultFrameSettings() FrameSettings {
	return FrameSettings{
		UseLighting:      true,
		FadeLayerOpacity: 0.5,
	}
}

// PrivateData is the state of the frame being built. It points into the view layer's pools
// and is rebuilt by every CacheInit.
type PrivateData struct {
	data  *ViewLayerData
	dummy *wgpu.TextureView

	Settings FrameSettings
	Frame    int

	materials *material.Allocator

	// GlobalLights holds the world ambient and every scene light; ShadelessLights a single
	// white ambient for objects that are not lit.
	GlobalLights    *light.Pool
	ShadelessLights *light.Pool

	// Camera data used for sorting and plane orientation.
	Camera        camera.Camera
	CameraPos     mgl32.Vec3
	CameraZAxis   mgl32.Vec3
	IsPerspective bool

	activeObject scene.StrokeObject
	sbuffer      scene.StrokeObject

	// Object lists in insertion order until CacheFinish sorts tobjects.
	tobjects        []*TObject
	sbufferTObjects []*TObject
	inFrontTObjects []*TObject
	drawOrder       []*TObject

	// Targets the frame needs, set while populating.
	useLayerFB  bool
	useObjectFB bool
	useMaskFB   bool
	useSignedFB bool

	targets       *renderer.FrameTargets
	compositePass *pass.Pass
	clearPass     *pass.Pass

	finished bool
	stats    FrameStats
	writes   []bind_group_provider.BufferWrite
}

// Objects returns the frame's objects in draw order. Before CacheFinish this is insertion
// order; afterwards objects are sorted by camera depth, followed by the in-progress stroke
// objects and the in-front objects.
//
// Returns:
//   - []*TObject: the objects
func (pd *PrivateData) Objects() []*TObject {
	if pd.finished {
		return pd.drawOrder
	}
	return pd.tobjects
}

// Targets returns the frame targets acquired by CacheFinish, or nil.
func (pd *PrivateData) Targets() *renderer.FrameTargets {
	return pd.targets
}

// CompositePass returns the pass compositing the main target onto the scene, or nil before
// CacheFinish.
func (pd *PrivateData) CompositePass() *pass.Pass {
	return pd.compositePass
}

// Stats returns the counters of the frame so far.
func (pd *PrivateData) Stats() FrameStats {
	return pd.stats
}

// DummyTexture returns the texture bound to empty samplers.
func (pd *PrivateData) DummyTexture() *wgpu.TextureView {
	return pd.dummy
}

// newPass acquires a pass from the view layer's pool.
func (pd *PrivateData) newPass(name string, state pass.State) *pass.Pass {
	_, p := pd.data.passes.Acquire()
	p.Init(name, state)
	return p
}

// LightPoolCreate returns the light pool an object binds: the shadeless pool when lighting
// is disabled for the frame or the object, the global pool otherwise.
//
// Parameters:
//   - ob: the stroke object
//
// Returns:
//   - *light.Pool: the pool
func (pd *PrivateData) LightPoolCreate(ob scene.StrokeObject) *light.Pool {
	if !pd.Settings.UseLighting || !ob.UseLights() {
		return pd.ShadelessLights
	}
	return pd.GlobalLights
}
