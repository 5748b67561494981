package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/camera"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/drawcache"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer counts frame calls and records pass names without a GPU.
type fakeRenderer struct {
	dummy    *wgpu.TextureView
	beginErr error

	resized             [][2]int
	begins, ends, shown int
	passes              []string
}

var _ renderer.Renderer = &fakeRenderer{}

func (f *fakeRenderer) Resize(width, height int) {
	f.resized = append(f.resized, [2]int{width, height})
}

func (f *fakeRenderer) SetPresentMode(mode renderer.PresentMode) {}

func (f *fakeRenderer) InitUniformBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error {
	return nil
}

func (f *fakeRenderer) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error {
	return nil
}

func (f *fakeRenderer) InitTexture(label string, width, height uint32, pixels []byte) (*wgpu.TextureView, error) {
	return &wgpu.TextureView{}, nil
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {}

func (f *fakeRenderer) DummyTexture() *wgpu.TextureView { return f.dummy }

func (f *fakeRenderer) AcquireTargets(req renderer.TargetRequest) (*renderer.FrameTargets, error) {
	fb := func(tag pass.TargetTag, want bool) *renderer.Framebuffer {
		if !want {
			return nil
		}
		return &renderer.Framebuffer{Tag: tag}
	}
	return &renderer.FrameTargets{
		Scene:  fb(pass.TargetScene, true),
		Main:   fb(pass.TargetMain, true),
		Layer:  fb(pass.TargetLayer, req.Layer),
		Object: fb(pass.TargetObject, req.Object),
		Masked: fb(pass.TargetMasked, req.Masked),
	}, nil
}

func (f *fakeRenderer) BeginFrame() error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.begins++
	return nil
}

func (f *fakeRenderer) ExecutePass(table *renderer.ShaderTable, p *pass.Pass, dst *renderer.Framebuffer, clear renderer.ClearOp, targets *renderer.FrameTargets) error {
	f.passes = append(f.passes, p.Name)
	return nil
}

func (f *fakeRenderer) EndFrame() { f.ends++ }

func (f *fakeRenderer) Present() { f.shown++ }

func newTestEngine(t *testing.T, r *fakeRenderer, options ...EngineBuilderOption) Engine {
	dc := drawcache.NewEngine(r, nil, drawcache.WithWorkers(1))
	t.Cleanup(dc.Close)
	return NewEngine(r, append([]EngineBuilderOption{WithDrawCache(dc)}, options...)...)
}

func strokeObject(options ...scene.StrokeObjectBuilderOption) scene.StrokeObject {
	layer := scene.NewLayer("Lines", scene.Stroke{StrokeCount: 6})
	return scene.NewStrokeObject(append([]scene.StrokeObjectBuilderOption{scene.WithLayers(layer)}, options...)...)
}

func TestNewEnginePanicsWithoutRenderer(t *testing.T) {
	assert.Panics(t, func() { NewEngine(nil) })
}

func TestRenderFrameWithoutScene(t *testing.T) {
	r := &fakeRenderer{dummy: &wgpu.TextureView{}}
	e := newTestEngine(t, r)

	require.NoError(t, e.RenderFrame())
	assert.Zero(t, r.begins)
	assert.Empty(t, r.passes)
}

func TestRenderFrameDrivesTheDrawCache(t *testing.T) {
	r := &fakeRenderer{dummy: &wgpu.TextureView{}}
	s := scene.NewScene("Test", camera.NewCamera(), scene.WithObjects(strokeObject()))
	e := newTestEngine(t, r, WithScene(s), WithViewLayer("Compositing"))

	require.NoError(t, e.RenderFrame())
	assert.Equal(t, 1, r.begins)
	assert.Equal(t, 1, r.ends)
	assert.Equal(t, 1, r.shown)
	assert.Equal(t, []string{"GPencil Clear", "GPencil Clear", "GPencil Layer", "GPencil Merge Depth", "GPencil Composite"}, r.passes)

	stats := e.Stats()
	assert.Equal(t, 1, stats.Objects)
	assert.Equal(t, 5, stats.Passes)
	assert.Equal(t, "Compositing", e.ViewLayer())
}

func TestRenderFrameSkipsCulledObjectsAndAddsStrokeBuffer(t *testing.T) {
	r := &fakeRenderer{dummy: &wgpu.TextureView{}}
	visible := strokeObject()
	culled := strokeObject(scene.WithPosition(1000, 0, 0))
	s := scene.NewScene("Test", camera.NewCamera(), scene.WithObjects(visible, culled))
	s.SetStrokeBuffer(strokeObject())
	e := newTestEngine(t, r, WithScene(s))

	require.NoError(t, e.RenderFrame())
	assert.Equal(t, 2, e.Stats().Objects, "the visible object and the stroke buffer")
}

func TestBeginFrameErrorSkipsDraw(t *testing.T) {
	boom := errors.New("surface lost")
	r := &fakeRenderer{dummy: &wgpu.TextureView{}, beginErr: boom}
	s := scene.NewScene("Test", camera.NewCamera(), scene.WithObjects(strokeObject()))
	e := newTestEngine(t, r, WithScene(s))

	err := e.RenderFrame()
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.passes)
	assert.Zero(t, r.shown)
}

func TestSettingsApplyOnNextFrame(t *testing.T) {
	r := &fakeRenderer{dummy: &wgpu.TextureView{}}
	initial := drawcache.DefaultFrameSettings()
	initial.SimplifyFill = true
	e := newTestEngine(t, r, WithFrameSettings(initial))
	assert.True(t, e.Settings().SimplifyFill)
	assert.True(t, e.DrawCache().Settings().SimplifyFill)

	next := initial
	next.SimplifyFx = true
	e.SetSettings(next)
	assert.True(t, e.Settings().SimplifyFx, "pending settings are reported")
	assert.False(t, e.DrawCache().Settings().SimplifyFx, "but not applied yet")

	require.NoError(t, e.RenderFrame())
	assert.True(t, e.DrawCache().Settings().SimplifyFx)
}

func TestResizeAppliesBeforeNextFrame(t *testing.T) {
	r := &fakeRenderer{dummy: &wgpu.TextureView{}}
	cam := camera.NewCamera()
	s := scene.NewScene("Test", cam)
	e := newTestEngine(t, r, WithScene(s)).(*engine)

	e.pendingSize = &[2]int{800, 400}
	require.NoError(t, e.RenderFrame())
	assert.Equal(t, [][2]int{{800, 400}}, r.resized)
	assert.InDelta(t, 2, cam.Aspect(), 1e-6)

	require.NoError(t, e.RenderFrame())
	assert.Len(t, r.resized, 1, "a resize is applied once")
}

func TestRatesConvertToDurations(t *testing.T) {
	r := &fakeRenderer{dummy: &wgpu.TextureView{}}
	e := newTestEngine(t, r, WithTickRate(0), WithRenderFrameLimit(50)).(*engine)
	assert.Equal(t, time.Second/60, e.engineTickRate)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)

	e.SetTickRate(120)
	assert.Equal(t, time.Second/120, e.engineTickRate)
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}
