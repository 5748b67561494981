package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/drawcache"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/window"
)

// engine implements the Engine interface.
// Coordinates the tick, render, and window threads.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window    window.Window
	renderer  renderer.Renderer
	drawCache drawcache.Engine

	scene     scene.Scene
	viewLayer string

	// Changes made from other goroutines, applied by the render goroutine before the next frame.
	pendingSettings *drawcache.FrameSettings
	pendingSize     *[2]int

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point of the stroke viewer.
// It runs a fixed-rate tick loop for input and animation, and a render loop that builds and
// draws one frame of the current scene through the draw cache.
type Engine interface {
	// Window returns the underlying window, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the GPU renderer frames are drawn with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// DrawCache returns the draw cache driven by the render loop. It must only be used from
	// the render goroutine while the engine runs.
	//
	// Returns:
	//   - drawcache.Engine: the draw cache
	DrawCache() drawcache.Engine

	// Scene returns the scene being drawn, or nil.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// SetScene replaces the scene drawn from the next frame on. Nil draws nothing.
	//
	// Parameters:
	//   - s: the scene
	SetScene(s scene.Scene)

	// ViewLayer returns the name of the view layer frames are built for.
	//
	// Returns:
	//   - string: the view layer name
	ViewLayer() string

	// SetViewLayer switches the view layer frames are built for.
	//
	// Parameters:
	//   - name: the view layer name
	SetViewLayer(name string)

	// Settings returns the frame settings of the next frame.
	//
	// Returns:
	//   - drawcache.FrameSettings: the settings
	Settings() drawcache.FrameSettings

	// SetSettings replaces the frame settings from the next frame on. Safe to call from the
	// tick callback.
	//
	// Parameters:
	//   - settings: the settings
	SetSettings(settings drawcache.FrameSettings)

	// Stats returns the counters of the last drawn frame.
	//
	// Returns:
	//   - drawcache.FrameStats: the stats
	Stats() drawcache.FrameStats

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for input and animation updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each render frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// RenderFrame builds and draws one frame of the scene: EngineInit, CacheInit, CachePopulate
	// for every visible object and the stroke buffer, CacheFinish, then DrawScene between
	// BeginFrame and Present. Called by the render loop; call it directly for a headless
	// engine.
	//
	// Returns:
	//   - error: the first error of the frame
	RenderFrame() error

	// Run starts the tick and render loops and the window message loop (blocks until the
	// window closes).
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine drawing through r with the provided options.
// Panics if r is nil.
//
// Parameters:
//   - r: the renderer frames are drawn with
//   - options: functional options for engine configuration (window, scene, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(r renderer.Renderer, options ...EngineBuilderOption) Engine {
	if r == nil {
		panic("engine: nil renderer")
	}
	e := &engine{
		mu:               &sync.Mutex{},
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		running:          false,
		wg:               sync.WaitGroup{},
		renderer:         r,
		viewLayer:        "ViewLayer",
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.drawCache == nil {
		e.drawCache = drawcache.NewEngine(r, nil)
	}
	if e.pendingSettings != nil {
		e.drawCache.SetSettings(*e.pendingSettings)
		e.pendingSettings = nil
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.mu.Lock()
			e.pendingSize = &[2]int{width, height}
			e.mu.Unlock()
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) DrawCache() drawcache.Engine {
	return e.drawCache
}

func (e *engine) Scene() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

func (e *engine) SetScene(s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene = s
}

func (e *engine) ViewLayer() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLayer
}

func (e *engine) SetViewLayer(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewLayer = name
}

func (e *engine) Settings() drawcache.FrameSettings {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pendingSettings != nil {
		return *e.pendingSettings
	}
	return e.drawCache.Settings()
}

func (e *engine) SetSettings(settings drawcache.FrameSettings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingSettings = &settings
}

func (e *engine) Stats() drawcache.FrameStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drawCache.Stats()
}

func (e *engine) RenderFrame() error {
	e.mu.Lock()
	s := e.scene
	viewLayer := e.viewLayer
	settings := e.pendingSettings
	size := e.pendingSize
	e.pendingSettings = nil
	e.pendingSize = nil
	if settings != nil {
		e.drawCache.SetSettings(*settings)
	}
	e.mu.Unlock()

	if size != nil {
		e.renderer.Resize(size[0], size[1])
		if s != nil && s.Camera() != nil && size[1] > 0 {
			s.Camera().SetAspect(float32(size[0]) / float32(size[1]))
		}
	}
	if s == nil {
		return nil
	}

	dc := e.drawCache
	dc.EngineInit(viewLayer)
	if err := dc.CacheInit(s); err != nil {
		return err
	}
	for _, ob := range s.VisibleObjects() {
		if err := dc.CachePopulate(ob); err != nil {
			return err
		}
	}
	if sb := s.StrokeBuffer(); sb != nil {
		if err := dc.CachePopulate(sb); err != nil {
			return err
		}
	}
	if err := dc.CacheFinish(); err != nil {
		return err
	}

	if err := e.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	e.mu.Lock()
	err := dc.DrawScene()
	e.mu.Unlock()
	e.renderer.EndFrame()
	e.renderer.Present()
	return err
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
	e.drawCache.Close()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Each iteration draws one frame of the current scene. Frame errors are logged and the loop
// continues; panics are recovered and signal quit.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	var lastErr string

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			// Log each distinct error once so a persistent failure does not flood the log.
			if err := e.RenderFrame(); err != nil {
				if msg := err.Error(); msg != lastErr {
					log.Printf("render frame failed: %v", err)
					lastErr = msg
				}
			} else {
				lastErr = ""
			}

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick(e.Stats())
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
