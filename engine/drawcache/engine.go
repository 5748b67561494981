package drawcache

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/camera"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/light"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
)

// engine is the implementation of the Engine interface.
type engine struct {
	registry *Registry
	backend  Backend
	shaders  *renderer.ShaderTable
	settings FrameSettings

	workers     worker.DynamicWorkerPool
	workerCount int

	data *ViewLayerData
	pd   *PrivateData

	jobs        []uploadJob
	viewStaging [camera.GPUCameraUniformSize]byte
	lastStats   FrameStats
}

// Engine builds and draws the stroke objects of one view layer, one frame at a time.
//
// Each frame calls EngineInit, CacheInit, CachePopulate for every visible object, CacheFinish
// and DrawScene in that order. An Engine is driven from a single goroutine.
type Engine interface {
	// EngineInit selects the view layer the next frames are built for, creating its pooled
	// data on first use. Calling it again with the same name is a no-op.
	//
	// Parameters:
	//   - viewLayer: the view layer name
	EngineInit(viewLayer string)

	// CacheInit resets the view layer's pools and starts a new frame for s. The global light
	// pool is filled with the world ambient and every scene light, the shadeless pool with a
	// single white ambient.
	//
	// Parameters:
	//   - s: the scene being drawn
	//
	// Returns:
	//   - error: ErrNotInitialized if EngineInit was never called
	CacheInit(s scene.Scene) error

	// CachePopulate adds one object to the frame: its draw state, material and light pools,
	// layers with their strokes, and effect chain. Disabled objects are ignored.
	//
	// Parameters:
	//   - ob: the stroke object
	//
	// Returns:
	//   - error: ErrNotInitialized outside of CacheInit and CacheFinish
	CachePopulate(ob scene.StrokeObject) error

	// CacheFinish sorts the frame's objects by depth, uploads every uniform block, acquires
	// the frame targets and resolves effect targets. It does nothing for an empty frame.
	//
	// Returns:
	//   - error: ErrNotInitialized without CacheInit, or a wrapped GPU error
	CacheFinish() error

	// DrawScene submits the finished frame. It only reads the frame state and submits
	// nothing for an empty frame.
	//
	// Returns:
	//   - error: ErrNotInitialized before CacheFinish, or a wrapped GPU error
	DrawScene() error

	// FreeViewLayer releases the pooled data of a view layer.
	//
	// Parameters:
	//   - viewLayer: the view layer name
	FreeViewLayer(viewLayer string)

	// Frame returns the frame being built, or nil before CacheInit.
	//
	// Returns:
	//   - *PrivateData: the frame
	Frame() *PrivateData

	// Settings returns the frame settings applied by the next CacheInit.
	//
	// Returns:
	//   - FrameSettings: the settings
	Settings() FrameSettings

	// SetSettings replaces the frame settings applied by the next CacheInit.
	//
	// Parameters:
	//   - settings: the settings
	SetSettings(settings FrameSettings)

	// Stats returns the counters of the last drawn frame.
	//
	// Returns:
	//   - FrameStats: the stats
	Stats() FrameStats

	// Close stops the worker pool.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates an Engine drawing through backend with shaders.
//
// Parameters:
//   - backend: the GPU backend, usually a renderer.Renderer
//   - shaders: the shader table; nil uses renderer.DefaultShaderTable
//   - options: variadic list of EngineBuilderOption functions to configure the engine
//
// Returns:
//   - Engine: the engine
func NewEngine(backend Backend, shaders *renderer.ShaderTable, options ...EngineBuilderOption) Engine {
	if backend == nil {
		panic("drawcache: nil backend")
	}
	if shaders == nil {
		shaders = renderer.DefaultShaderTable()
	}
	e := &engine{
		backend:     backend,
		shaders:     shaders,
		settings:    DefaultFrameSettings(),
		workerCount: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	e.workers = worker.NewDynamicWorkerPool(e.workerCount, 256, 1*time.Second)
	return e
}

func (e *engine) EngineInit(viewLayer string) {
	if e.data != nil && e.data.Name == viewLayer {
		return
	}
	e.data = e.registry.Ensure(viewLayer)
	e.pd = nil
}

func (e *engine) CacheInit(s scene.Scene) error {
	if e.data == nil {
		return fmt.Errorf("drawcache: CacheInit: %w", ErrNotInitialized)
	}
	data := e.data
	data.reset()

	pd := e.pd
	if pd == nil {
		pd = &PrivateData{}
		e.pd = pd
	}
	clear(pd.tobjects)
	clear(pd.sbufferTObjects)
	clear(pd.inFrontTObjects)
	clear(pd.drawOrder)
	clear(pd.writes)
	*pd = PrivateData{
		data:            data,
		dummy:           e.backend.DummyTexture(),
		Settings:        e.settings,
		Frame:           s.Frame(),
		materials:       data.matAlloc,
		activeObject:    s.ActiveObject(),
		sbuffer:         s.StrokeBuffer(),
		tobjects:        pd.tobjects[:0],
		sbufferTObjects: pd.sbufferTObjects[:0],
		inFrontTObjects: pd.inFrontTObjects[:0],
		drawOrder:       pd.drawOrder[:0],
		writes:          pd.writes[:0],
		stats:           FrameStats{Frame: s.Frame()},
	}

	if cam := s.Camera(); cam != nil {
		pd.Camera = cam
		pd.CameraPos = cam.Position()
		pd.CameraZAxis = cam.ZAxis()
		pd.IsPerspective = cam.IsPerspective()
	}

	pd.GlobalLights = light.PoolCreate(data.lights)
	pd.GlobalLights.AmbientAdd(s.WorldColor())
	if pd.Settings.UseLighting {
		pd.GlobalLights.PopulateAll(s.Lights())
	}
	pd.ShadelessLights = light.PoolCreate(data.lights)
	pd.ShadelessLights.AmbientAdd([3]float32{1, 1, 1})
	pd.stats.LightsUsed = pd.GlobalLights.Used()
	pd.stats.LightsDropped = pd.GlobalLights.Dropped()
	return nil
}

func (e *engine) CachePopulate(ob scene.StrokeObject) error {
	pd := e.pd
	if pd == nil || pd.finished {
		return fmt.Errorf("drawcache: CachePopulate: %w", ErrNotInitialized)
	}
	if ob == nil || !ob.Enabled() {
		return nil
	}

	tob := ObjectCacheAdd(pd, ob)
	tob.MaterialHead, tob.MaterialOfs = pd.materials.PoolCreate(ob.Materials())
	tob.Lights = pd.LightPoolCreate(ob)

	for i, layer := range ob.Layers() {
		if layer == nil || layer.Hidden {
			continue
		}
		tl := LayerCacheAdd(pd, ob, tob, layer, i)
		LayerCachePopulate(pd, ob, tob, tl, layer)
	}

	VfxCachePopulate(pd, ob, tob)
	return nil
}

func (e *engine) CacheFinish() error {
	pd := e.pd
	if pd == nil {
		return fmt.Errorf("drawcache: CacheFinish: %w", ErrNotInitialized)
	}
	if pd.finished {
		return nil
	}
	return e.finish(pd)
}

func (e *engine) DrawScene() error {
	pd := e.pd
	if pd == nil || !pd.finished {
		return fmt.Errorf("drawcache: DrawScene: %w", ErrNotInitialized)
	}
	err := e.draw(pd)
	pd.stats.Pools = pd.data.PoolStats()
	e.lastStats = pd.stats
	return err
}

func (e *engine) FreeViewLayer(viewLayer string) {
	if e.data != nil && e.data.Name == viewLayer {
		e.data = nil
		e.pd = nil
	}
	e.registry.Free(viewLayer)
}

func (e *engine) Frame() *PrivateData {
	return e.pd
}

func (e *engine) Settings() FrameSettings {
	return e.settings
}

func (e *engine) SetSettings(settings FrameSettings) {
	e.settings = settings
}

func (e *engine) Stats() FrameStats {
	return e.lastStats
}

func (e *engine) Close() {
	e.workers.Stop()
}
