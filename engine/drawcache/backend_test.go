package drawcache

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/camera"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/memblock"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// executed is one ExecutePass call seen by fakeBackend.
type executed struct {
	name  string
	dst   pass.TargetTag
	clear renderer.ClearOp
	calls int
}

// fakeBackend records what the engine submits without touching a GPU.
type fakeBackend struct {
	dummy *wgpu.TextureView

	// withhold lists optional targets that are never allocated even when requested.
	withhold map[pass.TargetTag]bool
	failExec error

	inits    int
	writes   []bind_group_provider.BufferWrite
	requests []renderer.TargetRequest
	passes   []executed
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{dummy: &wgpu.TextureView{}, withhold: map[pass.TargetTag]bool{}}
}

func (f *fakeBackend) InitUniformBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error {
	if provider == nil {
		return errors.New("nil provider")
	}
	f.inits++
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes[:0], writes...)
}

func (f *fakeBackend) DummyTexture() *wgpu.TextureView {
	return f.dummy
}

func (f *fakeBackend) AcquireTargets(req renderer.TargetRequest) (*renderer.FrameTargets, error) {
	f.requests = append(f.requests, req)
	fb := func(tag pass.TargetTag, want bool) *renderer.Framebuffer {
		if !want || f.withhold[tag] {
			return nil
		}
		return &renderer.Framebuffer{Label: tag.String(), Tag: tag, Signed: req.Signed}
	}
	return &renderer.FrameTargets{
		Scene:  fb(pass.TargetScene, true),
		Main:   fb(pass.TargetMain, true),
		Layer:  fb(pass.TargetLayer, req.Layer),
		Object: fb(pass.TargetObject, req.Object),
		Masked: fb(pass.TargetMasked, req.Masked),
	}, nil
}

func (f *fakeBackend) ExecutePass(table *renderer.ShaderTable, p *pass.Pass, dst *renderer.Framebuffer, clear renderer.ClearOp, targets *renderer.FrameTargets) error {
	if f.failExec != nil {
		return f.failExec
	}
	f.passes = append(f.passes, executed{name: p.Name, dst: dst.Tag, clear: clear, calls: p.CallCount()})
	return nil
}

// names returns the pass names in submission order.
func (f *fakeBackend) names() []string {
	out := make([]string, len(f.passes))
	for i, p := range f.passes {
		out[i] = p.name
	}
	return out
}

func newTestEngine(b *fakeBackend, options ...EngineBuilderOption) Engine {
	options = append([]EngineBuilderOption{
		WithWorkers(2),
		WithRegistry(NewRegistry(memblock.WithChunkLen(4))),
	}, options...)
	return NewEngine(b, nil, options...)
}

func stroke(material, first, count int) scene.Stroke {
	return scene.Stroke{MaterialIndex: material, StrokeFirst: first, StrokeCount: count}
}

func newTestScene(objects ...scene.StrokeObject) scene.Scene {
	return scene.NewScene("Test", camera.NewCamera(), scene.WithObjects(objects...))
}

// runFrame drives one full frame over every object of s.
func runFrame(e Engine, s scene.Scene) error {
	e.EngineInit("View Layer")
	if err := e.CacheInit(s); err != nil {
		return err
	}
	for _, ob := range s.Objects() {
		if err := e.CachePopulate(ob); err != nil {
			return err
		}
	}
	if err := e.CacheFinish(); err != nil {
		return err
	}
	return e.DrawScene()
}
