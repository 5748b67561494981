package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/memblock"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Pool is one material uniform block: up to MaterialBufferLen records plus the stroke and
// fill textures of each slot. Pools of a frame are linked through Next when one object's
// materials do not fit a single block; record i of a chain lives in the pool reached after
// i / MaterialBufferLen hops, at slot i % MaterialBufferLen.
//
// Pools are recycled from a memblock.Pool. The uniform buffer provider survives recycling.
type Pool struct {
	Records        [MaterialBufferLen]GPUMaterial
	StrokeTextures [MaterialBufferLen]*Texture
	FillTextures   [MaterialBufferLen]*Texture

	used int
	next *Pool
	ubo  bind_group_provider.BindGroupProvider
}

// Used returns the number of occupied slots.
//
// Returns:
//   - int: the used slot count
func (p *Pool) Used() int {
	return p.used
}

// Next returns the overflow pool chained after this one, or nil.
//
// Returns:
//   - *Pool: the next pool or nil
func (p *Pool) Next() *Pool {
	return p.next
}

// UBO returns the uniform buffer provider backing this pool.
//
// Returns:
//   - bind_group_provider.BindGroupProvider: the provider
func (p *Pool) UBO() bind_group_provider.BindGroupProvider {
	return p.ubo
}

// MarshalTo packs every used record into dst, which must hold at least
// Used() * GPUMaterialSize bytes.
//
// Parameters:
//   - dst: the destination buffer
//
// Returns:
//   - int: the number of bytes written
func (p *Pool) MarshalTo(dst []byte) int {
	for i := 0; i < p.used; i++ {
		p.Records[i].MarshalTo(dst[i*GPUMaterialSize:])
	}
	return p.used * GPUMaterialSize
}

// Allocator builds material pool chains for one frame out of a recycled memblock.Pool.
// It remembers the last pool handed out so that small objects can share a block instead of
// each reserving a whole uniform buffer.
type Allocator struct {
	blocks memblock.Pool[Pool]
	last   *Pool
}

// NewAllocator creates an Allocator drawing pools from blocks.
//
// Parameters:
//   - blocks: the block pool owning every material pool of the view layer
//
// Returns:
//   - *Allocator: the allocator
func NewAllocator(blocks memblock.Pool[Pool]) *Allocator {
	return &Allocator{blocks: blocks}
}

// Reset recycles every pool for a new frame. Uniform buffer providers are kept.
func (a *Allocator) Reset() {
	a.blocks.Reset()
	a.last = nil
}

// Len returns the number of pools handed out this frame.
//
// Returns:
//   - int: the pool count
func (a *Allocator) Len() int {
	return a.blocks.Len()
}

// Each visits every pool handed out this frame, in acquisition order.
//
// Parameters:
//   - fn: the visitor
func (a *Allocator) Each(fn func(p *Pool)) {
	a.blocks.Each(func(_ memblock.Handle, p *Pool) bool {
		fn(p)
		return true
	})
}

// PoolCreate copies every material into the frame's material pools and returns where they
// start. When all materials fit in the space left by the previous object they share its
// pool and ofs is that pool's fill level; otherwise a fresh pool is started at ofs 0 and
// filling chains into new pools as each one becomes full. A record never splits across two
// pools. Objects without materials still reserve one default slot.
//
// The absolute index of materials[k] is ofs + k, resolved against head with ResourcesGet.
//
// Parameters:
//   - materials: the object's material slots, in order
//
// Returns:
//   - *Pool: the head of the chain holding the first material
//   - int: the absolute index of the first material within that chain
func (a *Allocator) PoolCreate(materials []Material) (*Pool, int) {
	count := max(len(materials), 1)

	var pool *Pool
	ofs := 0
	if a.last != nil && a.last.used+count <= MaterialBufferLen {
		pool = a.last
		ofs = pool.used
	} else {
		pool = a.acquire()
	}
	head := pool

	for i := 0; i < count; i++ {
		if pool.used == MaterialBufferLen {
			next := a.acquire()
			pool.next = next
			pool = next
		}
		m := defaultMaterial
		if i < len(materials) && materials[i] != nil {
			m = materials[i]
		}
		slot := pool.used
		pool.StrokeTextures[slot], pool.FillTextures[slot] = writeRecord(&pool.Records[slot], m)
		pool.used++
	}

	a.last = pool
	return head, ofs
}

func (a *Allocator) acquire() *Pool {
	h, p := a.blocks.Acquire()
	p.used = 0
	p.next = nil
	if p.ubo == nil {
		p.ubo = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Material Pool %d", h))
	}
	return p
}

// ResourcesGet resolves an absolute material index back to its pool and slot, walking the
// chain index / MaterialBufferLen times. Missing textures resolve to dummy so that shaders
// never see an empty binding.
//
// Parameters:
//   - head: the chain head returned by PoolCreate
//   - index: the absolute material index
//   - dummy: the fallback texture view
//
// Returns:
//   - *wgpu.TextureView: the stroke texture of the slot, or dummy
//   - *wgpu.TextureView: the fill texture of the slot, or dummy
//   - bind_group_provider.BindGroupProvider: the uniform buffer of the pool holding the slot, or nil if index is out of range
func ResourcesGet(head *Pool, index int, dummy *wgpu.TextureView) (*wgpu.TextureView, *wgpu.TextureView, bind_group_provider.BindGroupProvider) {
	if index < 0 {
		return dummy, dummy, nil
	}
	pool, slot := Locate(head, index)
	if pool == nil {
		return dummy, dummy, nil
	}
	return textureOr(pool.StrokeTextures[slot], dummy), textureOr(pool.FillTextures[slot], dummy), pool.ubo
}

// Locate returns the pool and slot holding an absolute material index.
//
// Parameters:
//   - head: the chain head returned by PoolCreate
//   - index: the absolute material index
//
// Returns:
//   - *Pool: the pool holding the record, or nil if the chain is too short
//   - int: the local slot
func Locate(head *Pool, index int) (*Pool, int) {
	pool := head
	for hops := index / MaterialBufferLen; hops > 0 && pool != nil; hops-- {
		pool = pool.next
	}
	return pool, index % MaterialBufferLen
}

func textureOr(t *Texture, dummy *wgpu.TextureView) *wgpu.TextureView {
	if t == nil || t.View == nil {
		return dummy
	}
	return t.View
}

// writeRecord converts m into its GPU record and returns the textures the slot samples.
func writeRecord(rec *GPUMaterial, m Material) (*Texture, *Texture) {
	*rec = GPUMaterial{}
	var strokeTex, fillTex *Texture

	flag := MaterialFlag(0)
	if m.StrokeMode() != StrokeModeLine {
		switch m.Alignment() {
		case AlignmentFollowPath:
			flag = flag.WithAlignment(FlagAlignmentStroke)
		case AlignmentFollowObject:
			flag = flag.WithAlignment(FlagAlignmentObject)
		default:
			flag = flag.WithAlignment(FlagAlignmentFixed)
		}
		if m.StrokeMode() == StrokeModeDots {
			flag |= FlagStrokeDots
		}
	}
	if m.StrokeMode() != StrokeModeLine || m.DisableStencil() {
		flag |= FlagStrokeOverlap
	}

	rec.StrokeColor = m.StrokeColor()
	if tex := m.StrokeTexture(); m.StrokeStyle() == StrokeStyleTexture && tex != nil {
		strokeTex = tex
		flag |= FlagStrokeTextureUse
		if tex.Premultiplied {
			flag |= FlagStrokeTexturePremul
		}
		if m.Pattern() {
			flag |= FlagStrokeTextureStencil
		}
		rec.StrokeTextureMix = 1 - m.MixStrokeFactor()
		if px := m.TexturePixelSize(); px > 0 {
			rec.StrokeUScale = 500 / px
		}
	}

	rec.FillColor = m.FillColor()
	switch tex := m.FillTexture(); {
	case m.FillStyle() == FillStyleTexture && tex != nil:
		fillTex = tex
		flag |= FlagFillTextureUse
		if tex.Premultiplied {
			flag |= FlagFillTexturePremul
		}
		if m.TextureClamp() {
			flag |= FlagFillTextureClip
		}
		rec.FillUVTransform = uvTransform(m.TextureOffset(), m.TextureScale(), m.TextureAngle())
		rec.FillTextureMix = 1 - m.MixFactor()
	case m.FillStyle() == FillStyleGradient:
		flag |= FlagFillGradientUse
		if m.GradientType() == GradientRadial {
			flag |= FlagFillGradientRadial
		}
		rec.FillUVTransform = uvTransform(m.TextureOffset(), m.TextureScale(), m.TextureAngle())
		rec.FillMixColor = m.MixColor()
		rec.FillTextureMix = 1 - m.MixFactor()
		if m.FlipFill() {
			rec.FillColor, rec.FillMixColor = rec.FillMixColor, rec.FillColor
		}
	}

	rec.Flag = flag
	return strokeTex, fillTex
}

// uvTransform builds the 3x2 fill UV matrix: recenter, scale, rotate then offset.
// A zero scale component is treated as 1.
func uvTransform(offset, scale [2]float32, angle float32) [3][2]float32 {
	sx, sy := scale[0], scale[1]
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	mat := mgl32.Translate3D(0.5, 0.5, 0).
		Mul4(mgl32.Scale3D(1/sx, 1/sy, 0)).
		Mul4(mgl32.HomogRotate3DZ(-angle)).
		Mul4(mgl32.Translate3D(offset[0], offset[1], 0))
	return [3][2]float32{
		{mat[0], mat[1]},
		{mat[4], mat[5]},
		{mat[12], mat[13]},
	}
}
