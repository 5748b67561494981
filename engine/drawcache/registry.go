// Package drawcache turns the stroke objects of a scene into the render passes, material
// blocks and light blocks of one frame.
//
// A frame runs through EngineInit, CacheInit, CachePopulate once per visible object,
// CacheFinish and DrawScene. Every per-frame record lives in block pools owned by the view
// layer's ViewLayerData, so a steady scene reaches a state where a frame allocates nothing:
// CacheInit rewinds the pools and the next frame overwrites the previous one's records.
package drawcache

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/light"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/memblock"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
)

// ErrNotInitialized is returned when a frame operation runs before the step it depends on.
var ErrNotInitialized = errors.New("drawcache: not initialized")

// ViewLayerData owns the block pools of one view layer. It outlives frames: CacheInit resets
// the pools, it never frees them.
type ViewLayerData struct {
	Name string

	objects   memblock.Pool[TObject]
	layers    memblock.Pool[TLayer]
	vfx       memblock.Pool[TVfx]
	materials memblock.Pool[material.Pool]
	lights    memblock.Pool[light.Pool]
	passes    memblock.Pool[pass.Pass]

	matAlloc *material.Allocator

	// view holds the camera uniform block shared by every geometry group.
	view bind_group_provider.BindGroupProvider

	// staging buffers reused for uniform uploads, one per uploaded pool.
	staging [][]byte
}

func newViewLayerData(name string, options ...memblock.PoolBuilderOption) *ViewLayerData {
	with := func(label string) []memblock.PoolBuilderOption {
		return append([]memblock.PoolBuilderOption{memblock.WithLabel(name + " " + label)}, options...)
	}
	v := &ViewLayerData{
		Name:      name,
		objects:   memblock.NewPool[TObject](with("Objects")...),
		layers:    memblock.NewPool[TLayer](with("Layers")...),
		vfx:       memblock.NewPool[TVfx](with("Vfx")...),
		materials: memblock.NewPool[material.Pool](with("Material Pools")...),
		lights:    memblock.NewPool[light.Pool](with("Light Pools")...),
		passes:    memblock.NewPool[pass.Pass](with("Passes")...),
		view:      bind_group_provider.NewBindGroupProvider(name + " View"),
	}
	v.matAlloc = material.NewAllocator(v.materials)
	return v
}

// reset rewinds every pool for a new frame.
func (v *ViewLayerData) reset() {
	v.objects.Reset()
	v.layers.Reset()
	v.vfx.Reset()
	v.matAlloc.Reset()
	v.lights.Reset()
	v.passes.Reset()
}

// PoolStats reports how many elements each pool handed out this frame and how many it has
// storage for.
func (v *ViewLayerData) PoolStats() PoolStats {
	return PoolStats{
		Objects:      v.objects.Len(),
		ObjectsCap:   v.objects.Cap(),
		Layers:       v.layers.Len(),
		LayersCap:    v.layers.Cap(),
		Vfx:          v.vfx.Len(),
		VfxCap:       v.vfx.Cap(),
		Materials:    v.materials.Len(),
		MaterialsCap: v.materials.Cap(),
		Lights:       v.lights.Len(),
		LightsCap:    v.lights.Cap(),
		Passes:       v.passes.Len(),
		PassesCap:    v.passes.Cap(),
	}
}

// Free releases the GPU buffers held by pooled elements and drops all storage.
func (v *ViewLayerData) Free() {
	v.materials.Destroy(func(p *material.Pool) {
		if p.UBO() != nil {
			p.UBO().Release()
		}
	})
	v.lights.Destroy(func(p *light.Pool) {
		if p.UBO() != nil {
			p.UBO().Release()
		}
	})
	v.objects.Destroy(nil)
	v.layers.Destroy(nil)
	v.vfx.Destroy(nil)
	v.passes.Destroy(nil)
	v.view.Release()
	v.staging = nil
}

// Registry maps view layer names to their pooled data. Data is created on first use and lives
// until Free is called for its view layer.
type Registry struct {
	mu      *sync.Mutex
	layers  map[string]*ViewLayerData
	options []memblock.PoolBuilderOption
}

// NewRegistry creates an empty Registry. The options configure every block pool it creates.
//
// Parameters:
//   - options: block pool options such as memblock.WithChunkLen
//
// Returns:
//   - *Registry: the registry
func NewRegistry(options ...memblock.PoolBuilderOption) *Registry {
	return &Registry{
		mu:      &sync.Mutex{},
		layers:  make(map[string]*ViewLayerData),
		options: options,
	}
}

// Ensure returns the data of the named view layer, creating it on first use. Repeated calls
// return the same data.
//
// Parameters:
//   - name: the view layer name
//
// Returns:
//   - *ViewLayerData: the view layer data
func (r *Registry) Ensure(name string) *ViewLayerData {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.layers[name]; ok {
		return v
	}
	v := newViewLayerData(name, r.options...)
	r.layers[name] = v
	return v
}

// Lookup returns the data of the named view layer without creating it.
//
// Parameters:
//   - name: the view layer name
//
// Returns:
//   - *ViewLayerData: the data, or nil
func (r *Registry) Lookup(name string) *ViewLayerData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layers[name]
}

// Free tears down the named view layer's data.
//
// Parameters:
//   - name: the view layer name
//
// Returns:
//   - bool: false if the view layer had no data
func (r *Registry) Free(name string) bool {
	r.mu.Lock()
	v, ok := r.layers[name]
	delete(r.layers, name)
	r.mu.Unlock()

	if ok {
		v.Free()
	}
	return ok
}

// Len returns the number of view layers with data.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.layers)
}
