package renderer

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// paramSlots is the number of vec4 uniforms a group can carry.
	paramSlots = 16
	paramSize  = paramSlots * 16

	depthFormat = wgpu.TextureFormatDepth24PlusStencil8
)

// pipelineKey identifies a compiled pipeline: the same program compiled for another state or
// target layout is a different pipeline.
type pipelineKey struct {
	kind         pass.ShaderKind
	state        pass.State
	colorTargets int
	format       wgpu.TextureFormat
	depth        bool
}

// offscreenTarget is a cached frame target and the textures backing it.
type offscreenTarget struct {
	fb       Framebuffer
	textures []*wgpu.Texture
}

func (t *offscreenTarget) release() {
	for _, v := range []*wgpu.TextureView{t.fb.Color, t.fb.Reveal} {
		if v != nil {
			v.Release()
		}
	}
	for _, tex := range t.textures {
		tex.Release()
	}
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    *wgpu.TextureFormat
	width            int
	height           int
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)

	// Frame state shared by every pass of a frame
	frameEncoder    *wgpu.CommandEncoder
	frameSurface    *wgpu.Texture
	frameView       *wgpu.TextureView
	frameBindGroups []*wgpu.BindGroup
	sceneTarget     Framebuffer

	dummyView *wgpu.TextureView
	sampler   *wgpu.Sampler

	// Offscreen targets, rebuilt when the requested size or precision changes
	targets      map[pass.TargetTag]*offscreenTarget
	targetDepth  *offscreenTarget
	targetWidth  int
	targetHeight int
	targetSigned bool

	pipelines    map[pipelineKey]*wgpu.RenderPipeline
	paramBuffers []*wgpu.Buffer
	paramUsed    int
	paramScratch [paramSize]byte
	missing      map[pass.ShaderKind]bool
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Instance() *wgpu.Instance
	Adapter() *wgpu.Adapter
	Surface() *wgpu.Surface
	SetDevice(device *wgpu.Device)
	SetQueue(queue *wgpu.Queue)
	SetInstance(instance *wgpu.Instance)
	SetAdapter(adapter *wgpu.Adapter)
	SetSurface(surface *wgpu.Surface)

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// InitUniformBuffer creates a uniform buffer at binding 0 of provider unless one exists.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffer on
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - error: an error if the buffer could not be created, otherwise nil
	InitUniformBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error

	// InitVertexBuffer uploads vertex data to a new vertex buffer stored on provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created vertex buffer on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - vertexCount: the number of vertices represented in vertexData
	//
	// Returns:
	//   - error: an error if the buffer could not be created, otherwise nil
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error

	// InitTexture creates a sampled RGBA8 texture from pixels and returns its view.
	//
	// Parameters:
	//   - label: the texture label
	//   - width: the texture width in texels
	//   - height: the texture height in texels
	//   - pixels: the RGBA8 pixel data
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view
	//   - error: an error if the texture could not be created, otherwise nil
	InitTexture(label string, width, height uint32, pixels []byte) (*wgpu.TextureView, error)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// DummyTexture returns the 1x1 texture bound to samplers without a texture.
	//
	// Returns:
	//   - *wgpu.TextureView: the dummy view
	DummyTexture() *wgpu.TextureView

	// AcquireTargets returns the frame's offscreen targets, creating or recreating textures as needed.
	//
	// Parameters:
	//   - req: the requested targets
	//
	// Returns:
	//   - *FrameTargets: the targets
	//   - error: an error if a texture could not be created
	AcquireTargets(req TargetRequest) (*FrameTargets, error)

	// BeginFrame acquires the next swapchain texture, creates a command encoder and clears the
	// surface. Must be paired with EndFrame after all ExecutePass invocations.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// ExecutePass encodes one render pass drawing p into dst.
	//
	// Parameters:
	//   - table: the shader table
	//   - p: the pass
	//   - dst: the destination framebuffer
	//   - clear: the attachments to clear first
	//   - targets: the frame targets used to resolve texture references
	//
	// Returns:
	//   - error: an error if a pipeline or bind group could not be created
	ExecutePass(table *ShaderTable, p *pass.Pass, dst *Framebuffer, clear ClearOp, targets *FrameTargets) error

	// EndFrame finishes the command encoder and submits the command buffer to the GPU.
	// Does not present the surface; Present follows EndFrame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, opts backendOptions) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		targets:     make(map[pass.TargetTag]*offscreenTarget),
		pipelines:   make(map[pipelineKey]*wgpu.RenderPipeline),
		missing:     make(map[pass.ShaderKind]bool),
	}
	w.SetSurface(w.instance.CreateSurface(surfaceDescriptor))

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.SetAdapter(a)

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	w.SetDevice(d)
	w.SetQueue(d.GetQueue())

	w.sampler, err = d.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Stroke Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}

	w.dummyView, err = w.createTexture("Dummy Texture", 1, 1, opts.dummyColor[:])
	if err != nil {
		panic(err)
	}

	return w
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.width = width
	b.height = height

	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
	}

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	b.sceneTarget = Framebuffer{
		Label:  "Scene",
		Tag:    pass.TargetScene,
		Depth:  b.depthTextureView,
		Width:  width,
		Height: height,
		Format: *b.surfaceFormat,
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) InitUniformBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if provider.Buffer(0) != nil {
		return nil
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	provider.SetBuffer(0, buf, size)
	return nil
}

func (b *wgpuRendererBackendImpl) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Vertex Buffer",
			Size:             uint64(len(vertexData)),
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	provider.SetVertexCount(vertexCount)

	return nil
}

func (b *wgpuRendererBackendImpl) InitTexture(label string, width, height uint32, pixels []byte) (*wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createTexture(label, width, height, pixels)
}

// createTexture uploads RGBA8 pixels to a new sampled texture. Caller must hold the mutex or
// be the constructor.
func (b *wgpuRendererBackendImpl) createTexture(label string, width, height uint32, pixels []byte) (*wgpu.TextureView, error) {
	if uint32(len(pixels)) < width*height*4 {
		return nil, fmt.Errorf("texture %q: %d bytes of pixel data for %dx%d texels", label, len(pixels), width, height)
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)

	return tex.CreateView(nil)
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if !w.Fits() {
			if w.Provider != nil && w.Provider.Buffer(w.Binding) != nil {
				log.Printf("[Renderer] dropped %d byte write at %d to %s: buffer holds %d bytes", len(w.Data), w.Offset, w.Provider.Label(), w.Provider.Size(w.Binding))
			}
			continue
		}
		b.queue.WriteBuffer(w.Provider.Buffer(w.Binding), w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) DummyTexture() *wgpu.TextureView {
	return b.dummyView
}

func (b *wgpuRendererBackendImpl) AcquireTargets(req TargetRequest) (*FrameTargets, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	width := cmp.Or(req.Width, b.width)
	height := cmp.Or(req.Height, b.height)
	if width != b.targetWidth || height != b.targetHeight || req.Signed != b.targetSigned {
		b.releaseTargets()
		b.targetWidth, b.targetHeight, b.targetSigned = width, height, req.Signed
	}

	if b.targetDepth == nil {
		tex, view, err := b.createAttachment("Stroke Depth", depthFormat, width, height)
		if err != nil {
			return nil, fmt.Errorf("failed to create stroke depth target: %w", err)
		}
		b.targetDepth = &offscreenTarget{fb: Framebuffer{Depth: view}, textures: []*wgpu.Texture{tex}}
	}

	out := &FrameTargets{Scene: &b.sceneTarget}
	want := []struct {
		tag  pass.TargetTag
		need bool
		dst  **Framebuffer
	}{
		{pass.TargetMain, true, &out.Main},
		{pass.TargetLayer, req.Layer, &out.Layer},
		{pass.TargetObject, req.Object, &out.Object},
		{pass.TargetMasked, req.Masked, &out.Masked},
	}
	for _, w := range want {
		if !w.need {
			continue
		}
		t, err := b.ensureTarget(w.tag)
		if err != nil {
			return nil, err
		}
		*w.dst = &t.fb
	}
	return out, nil
}

// ensureTarget returns the cached target for tag, creating its color and reveal textures.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) ensureTarget(tag pass.TargetTag) (*offscreenTarget, error) {
	if t, ok := b.targets[tag]; ok {
		return t, nil
	}
	format := wgpu.TextureFormatRGBA8Unorm
	if b.targetSigned {
		format = wgpu.TextureFormatRGBA16Float
	}
	colorTex, colorView, err := b.createAttachment(tag.String()+" Color", format, b.targetWidth, b.targetHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s color target: %w", tag, err)
	}
	revealTex, revealView, err := b.createAttachment(tag.String()+" Reveal", format, b.targetWidth, b.targetHeight)
	if err != nil {
		colorView.Release()
		colorTex.Release()
		return nil, fmt.Errorf("failed to create %s reveal target: %w", tag, err)
	}
	t := &offscreenTarget{
		fb: Framebuffer{
			Label:  tag.String(),
			Tag:    tag,
			Color:  colorView,
			Reveal: revealView,
			Depth:  b.targetDepth.fb.Depth,
			Width:  b.targetWidth,
			Height: b.targetHeight,
			Signed: b.targetSigned,
			Format: format,
		},
		textures: []*wgpu.Texture{colorTex, revealTex},
	}
	b.targets[tag] = t
	return t, nil
}

func (b *wgpuRendererBackendImpl) createAttachment(label string, format wgpu.TextureFormat, width, height int) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

// releaseTargets frees every cached offscreen target. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseTargets() {
	for tag, t := range b.targets {
		t.release()
		delete(b.targets, tag)
	}
	if b.targetDepth != nil {
		b.targetDepth.fb.Depth.Release()
		b.targetDepth.release()
		b.targetDepth = nil
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Defensive: if a previous frame's surface texture is still held, avoid
	// attempting to acquire another one. This prevents wgpu-native validation
	// errors like "Surface image is already acquired" when frames overlap.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	clearPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Scene Clear",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:              b.depthTextureView,
			DepthLoadOp:       wgpu.LoadOpClear,
			DepthStoreOp:      wgpu.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     wgpu.LoadOpClear,
			StencilStoreOp:    wgpu.StoreOpStore,
			StencilClearValue: 0,
		},
	})
	clearPass.End()
	clearPass.Release()

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.sceneTarget.Color = view
	b.paramUsed = 0

	return nil
}

func (b *wgpuRendererBackendImpl) ExecutePass(table *ShaderTable, p *pass.Pass, dst *Framebuffer, clear ClearOp, targets *FrameTargets) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("ExecutePass called outside of a frame")
	}
	if dst.Color == nil {
		return fmt.Errorf("pass %q: target %q has no color attachment", p.Name, dst.Label)
	}

	colorLoad := wgpu.LoadOpLoad
	if clear.Color {
		colorLoad = wgpu.LoadOpClear
	}
	depthLoad := wgpu.LoadOpLoad
	if clear.DepthStencil {
		depthLoad = wgpu.LoadOpClear
	}
	desc := &wgpu.RenderPassDescriptor{
		Label: p.Name,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    dst.Color,
			LoadOp:  colorLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	}
	if dst.Reveal != nil {
		desc.ColorAttachments = append(desc.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:       dst.Reveal,
			LoadOp:     colorLoad,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 1, G: 1, B: 1, A: 1},
		})
	}
	if dst.Depth != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:              dst.Depth,
			DepthLoadOp:       depthLoad,
			DepthStoreOp:      wgpu.StoreOpStore,
			DepthClearValue:   clear.DepthValue,
			StencilLoadOp:     depthLoad,
			StencilStoreOp:    wgpu.StoreOpStore,
			StencilClearValue: 0,
		}
	}

	rp := b.frameEncoder.BeginRenderPass(desc)
	defer rp.Release()

	var firstErr error
	for _, g := range p.Groups() {
		if len(g.Calls) == 0 && g.Triangles == 0 {
			continue
		}
		prog, ok := table.Program(g.Shader)
		if !ok {
			if !b.missing[g.Shader] {
				b.missing[g.Shader] = true
				log.Printf("renderer: no program for shader %s, skipping its groups", g.Shader)
			}
			continue
		}
		state := p.EffectiveState(g)
		pipe, err := b.pipeline(prog, state, dst)
		if err != nil {
			firstErr = fmt.Errorf("pass %q: %w", p.Name, err)
			break
		}
		rp.SetPipeline(pipe)
		if state.Has(pass.WriteStencil) || state.Has(pass.StencilEqual) {
			rp.SetStencilReference(0xFF)
		}
		if err := b.bindGroups(rp, pipe, g, targets); err != nil {
			firstErr = fmt.Errorf("pass %q: %w", p.Name, err)
			break
		}

		if g.Geometry != nil && g.Geometry.VertexBuffer() != nil {
			rp.SetVertexBuffer(0, g.Geometry.VertexBuffer(), 0, wgpu.WholeSize)
			for _, c := range g.Calls {
				rp.Draw(uint32(c.VertexCount), 1, uint32(c.VertexFirst), 0)
			}
		}
		if g.Triangles > 0 {
			rp.Draw(uint32(3*g.Triangles), 1, 0, 0)
		}
	}
	rp.End()
	return firstErr
}

// bindGroups creates and sets the bind groups of g. Group 0 holds the view, material and light
// uniform blocks, group 1 the textures (texture at 2i, sampler at 2i+1) and group 2 the scalar
// uniforms. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) bindGroups(rp *wgpu.RenderPassEncoder, pipe *wgpu.RenderPipeline, g *pass.Group, targets *FrameTargets) error {
	var blocks []wgpu.BindGroupEntry
	for i, provider := range []bind_group_provider.BindGroupProvider{g.View, g.Material, g.Light} {
		if provider == nil || provider.Buffer(0) == nil {
			continue
		}
		blocks = append(blocks, wgpu.BindGroupEntry{Binding: uint32(i), Buffer: provider.Buffer(0), Size: wgpu.WholeSize})
	}
	if len(blocks) > 0 {
		if err := b.setBindGroup(rp, pipe, 0, blocks); err != nil {
			return err
		}
	}

	if len(g.Textures) > 0 {
		entries := make([]wgpu.BindGroupEntry, 0, 2*len(g.Textures))
		for i, tb := range g.Textures {
			view := tb.View
			if tb.IsRef {
				view = targets.Texture(tb.Ref)
			}
			if view == nil {
				view = b.dummyView
			}
			entries = append(entries,
				wgpu.BindGroupEntry{Binding: uint32(2 * i), TextureView: view},
				wgpu.BindGroupEntry{Binding: uint32(2*i + 1), Sampler: b.sampler},
			)
		}
		if err := b.setBindGroup(rp, pipe, 1, entries); err != nil {
			return err
		}
	}

	if len(g.Uniforms) > 0 {
		buf, err := b.paramBuffer()
		if err != nil {
			return err
		}
		clear(b.paramScratch[:])
		for i, u := range g.Uniforms {
			if i == paramSlots {
				break
			}
			for c, v := range u.Value {
				binary.LittleEndian.PutUint32(b.paramScratch[i*16+c*4:], math.Float32bits(v))
			}
		}
		b.queue.WriteBuffer(buf, 0, b.paramScratch[:])
		entries := []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Size: wgpu.WholeSize}}
		if err := b.setBindGroup(rp, pipe, 2, entries); err != nil {
			return err
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) setBindGroup(rp *wgpu.RenderPassEncoder, pipe *wgpu.RenderPipeline, index uint32, entries []wgpu.BindGroupEntry) error {
	layout := pipe.GetBindGroupLayout(index)
	defer layout.Release()
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group %d: %w", index, err)
	}
	b.frameBindGroups = append(b.frameBindGroups, bg)
	rp.SetBindGroup(index, bg, nil)
	return nil
}

// paramBuffer returns the next free scalar uniform buffer of the frame. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) paramBuffer() (*wgpu.Buffer, error) {
	if b.paramUsed < len(b.paramBuffers) {
		buf := b.paramBuffers[b.paramUsed]
		b.paramUsed++
		return buf, nil
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Pass Params %d", len(b.paramBuffers)),
		Size:  paramSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.paramBuffers = append(b.paramBuffers, buf)
	b.paramUsed++
	return buf, nil
}

// pipeline returns the cached pipeline for prog drawn with state into dst, compiling it on first
// use. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) pipeline(prog ShaderProgram, state pass.State, dst *Framebuffer) (*wgpu.RenderPipeline, error) {
	key := pipelineKey{
		kind:         prog.Kind,
		state:        state,
		colorTargets: dst.ColorTargets(),
		format:       dst.Format,
		depth:        dst.Depth != nil,
	}
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: prog.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: prog.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", prog.Label, err)
	}
	defer module.Release()

	writeMask := wgpu.ColorWriteMaskNone
	if state.Has(pass.WriteColor) {
		writeMask = wgpu.ColorWriteMaskAll
	}
	colorTargets := make([]wgpu.ColorTargetState, key.colorTargets)
	for i := range colorTargets {
		colorTargets[i] = wgpu.ColorTargetState{
			Format:    dst.Format,
			Blend:     blendState(state),
			WriteMask: writeMask,
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if key.depth {
		depthStencil = depthStencilState(state)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: fmt.Sprintf("%s [%s] Render Pipeline", prog.Label, state),
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: prog.VertexEntry,
			Buffers:    prog.VertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: prog.FragmentEntry,
			Targets:    colorTargets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline for %s: %w", prog.Label, err)
	}
	b.pipelines[key] = created
	return created, nil
}

// blendState maps the blend bit of state to a wgpu blend state; nil disables blending.
func blendState(state pass.State) *wgpu.BlendState {
	component := func(src, dst wgpu.BlendFactor, op wgpu.BlendOperation) wgpu.BlendComponent {
		return wgpu.BlendComponent{SrcFactor: src, DstFactor: dst, Operation: op}
	}
	var c wgpu.BlendComponent
	switch state.Blend() {
	case pass.BlendAlphaPremul:
		c = component(wgpu.BlendFactorOne, wgpu.BlendFactorOneMinusSrcAlpha, wgpu.BlendOperationAdd)
	case pass.BlendAddFull:
		c = component(wgpu.BlendFactorOne, wgpu.BlendFactorOne, wgpu.BlendOperationAdd)
	case pass.BlendSub:
		c = component(wgpu.BlendFactorOne, wgpu.BlendFactorOne, wgpu.BlendOperationReverseSubtract)
	case pass.BlendMul:
		c = component(wgpu.BlendFactorDst, wgpu.BlendFactorZero, wgpu.BlendOperationAdd)
	default:
		return nil
	}
	return &wgpu.BlendState{Color: c, Alpha: c}
}

// depthStencilState maps the depth and stencil bits of state to a wgpu depth stencil state.
func depthStencilState(state pass.State) *wgpu.DepthStencilState {
	compare := wgpu.CompareFunctionAlways
	switch {
	case state.Has(pass.DepthLessEqual):
		compare = wgpu.CompareFunctionLessEqual
	case state.Has(pass.DepthGreater):
		compare = wgpu.CompareFunctionGreater
	}

	stencil := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	if state.Has(pass.StencilEqual) {
		stencil.Compare = wgpu.CompareFunctionEqual
	}
	var writeMask uint32
	if state.Has(pass.WriteStencil) {
		stencil.PassOp = wgpu.StencilOperationReplace
		writeMask = 0xFF
	}

	return &wgpu.DepthStencilState{
		Format:            depthFormat,
		DepthWriteEnabled: state.Has(pass.WriteDepth),
		DepthCompare:      compare,
		StencilFront:      stencil,
		StencilBack:       stencil,
		StencilReadMask:   0xFF,
		StencilWriteMask:  writeMask,
	}
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return
	}

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err == nil {
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
	}

	b.frameEncoder.Release()
	b.frameEncoder = nil
	for _, bg := range b.frameBindGroups {
		bg.Release()
	}
	b.frameBindGroups = b.frameBindGroups[:0]
	if err != nil {
		log.Printf("renderer: failed to finish frame: %v", err)
	}
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	// Present the acquired surface image and release local references.
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
	b.sceneTarget.Color = nil
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Instance() *wgpu.Instance {
	return b.instance
}

func (b *wgpuRendererBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *wgpuRendererBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}

func (b *wgpuRendererBackendImpl) SetDevice(device *wgpu.Device) {
	b.device = device
}

func (b *wgpuRendererBackendImpl) SetQueue(queue *wgpu.Queue) {
	b.queue = queue
}

func (b *wgpuRendererBackendImpl) SetInstance(instance *wgpu.Instance) {
	b.instance = instance
}

func (b *wgpuRendererBackendImpl) SetAdapter(adapter *wgpu.Adapter) {
	b.adapter = adapter
}

func (b *wgpuRendererBackendImpl) SetSurface(surface *wgpu.Surface) {
	b.surface = surface
}
