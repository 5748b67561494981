package light

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/memblock"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Pool is one light uniform block of at most LightBufferLen records.
//
// A pool never chains: lights beyond capacity are dropped and counted in Dropped so that
// truncation is observable. Whenever room remains, the record after the last used one is
// tagged with Color[0] == -1 so shaders know where the list ends.
type Pool struct {
	Records [LightBufferLen]GPULight

	used    int
	dropped int
	ubo     bind_group_provider.BindGroupProvider
}

// PoolCreate acquires a light pool from blocks and empties it for the current frame.
// The pool's uniform buffer provider is created on first use and kept on recycling.
//
// Parameters:
//   - blocks: the block pool owning every light pool of the view layer
//
// Returns:
//   - *Pool: the empty pool
func PoolCreate(blocks memblock.Pool[Pool]) *Pool {
	h, p := blocks.Acquire()
	p.used = 0
	p.dropped = 0
	p.tagEnd()
	if p.ubo == nil {
		p.ubo = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Light Pool %d", h))
	}
	return p
}

// Used returns the number of records in use. It never exceeds LightBufferLen.
//
// Returns:
//   - int: the used record count
func (p *Pool) Used() int {
	return p.used
}

// Dropped returns how many lights were discarded because the pool was full.
//
// Returns:
//   - int: the dropped light count
func (p *Pool) Dropped() int {
	return p.dropped
}

// UBO returns the uniform buffer provider backing this pool.
//
// Returns:
//   - bind_group_provider.BindGroupProvider: the provider
func (p *Pool) UBO() bind_group_provider.BindGroupProvider {
	return p.ubo
}

// AmbientAdd appends an ambient record of the given color.
//
// Parameters:
//   - color: the RGB ambient color
//
// Returns:
//   - bool: false if the pool was full and the light was dropped
func (p *Pool) AmbientAdd(color [3]float32) bool {
	rec := p.next()
	if rec == nil {
		return false
	}
	*rec = GPULight{
		Color: color,
		Type:  GPULightTypeAmbient,
	}
	p.commit()
	return true
}

// Populate converts one light into a record. Spot lights store their inverse world axes so
// shaders can project strokes into spot space; area lights are approximated by a spot with a
// 180 degree cone; sun lights store their normalized Z axis; everything else is a point.
// Once the pool is full further lights are dropped silently and counted.
//
// Parameters:
//   - l: the light to convert
//
// Returns:
//   - bool: false if the pool was full and the light was dropped
func (p *Pool) Populate(l Light) bool {
	rec := p.next()
	if rec == nil {
		return false
	}
	*rec = GPULight{}
	obmat := l.Matrix()

	switch l.Type() {
	case LightTypeSpot:
		setSpotAxes(rec, obmat.Inv())
		rec.Type = GPULightTypeSpot
		rec.SpotSize = math32.Cos(l.SpotSize() * 0.5)
		rec.SpotBlend = (1 - rec.SpotSize) * l.SpotBlend()
	case LightTypeArea:
		setSpotAxes(rec, normalizeAxes(obmat).Inv())
		rec.Type = GPULightTypeSpot
		rec.SpotSize = math32.Cos(math32.Pi / 2)
		rec.SpotBlend = 1 - rec.SpotSize
	case LightTypeSun:
		fwd := obmat.Col(2).Vec3().Normalize()
		rec.Forward = [4]float32{fwd[0], fwd[1], fwd[2], 0}
		rec.Type = GPULightTypeSun
	default:
		rec.Type = GPULightTypePoint
	}

	rec.Position = obmat.Col(3)
	c := l.Color()
	e := l.Energy()
	rec.Color = [3]float32{c[0] * e, c[1] * e, c[2] * e}
	p.commit()
	return true
}

// PopulateAll converts every enabled light, in order, truncating at capacity.
//
// Parameters:
//   - lights: the lighting contributors
//
// Returns:
//   - int: the number of lights dropped by this call
func (p *Pool) PopulateAll(lights []Light) int {
	before := p.dropped
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		p.Populate(l)
	}
	return p.dropped - before
}

// MarshalTo packs every used record plus the list end tag into dst, which must hold
// UploadSize() bytes.
//
// Parameters:
//   - dst: the destination buffer
//
// Returns:
//   - int: the number of bytes written
func (p *Pool) MarshalTo(dst []byte) int {
	n := p.uploadCount()
	for i := 0; i < n; i++ {
		p.Records[i].MarshalTo(dst[i*GPULightSize:])
	}
	return n * GPULightSize
}

// UploadSize returns the number of bytes MarshalTo writes.
//
// Returns:
//   - int: the upload size in bytes
func (p *Pool) UploadSize() int {
	return p.uploadCount() * GPULightSize
}

func (p *Pool) uploadCount() int {
	return min(p.used+1, LightBufferLen)
}

// next returns the record to fill, or nil (counting the drop) when the pool is full.
func (p *Pool) next() *GPULight {
	if p.used >= LightBufferLen {
		p.dropped++
		return nil
	}
	return &p.Records[p.used]
}

func (p *Pool) commit() {
	p.used++
	p.tagEnd()
}

func (p *Pool) tagEnd() {
	if p.used < LightBufferLen {
		p.Records[p.used].Color[0] = listEndTag
	}
}

func setSpotAxes(rec *GPULight, imat mgl32.Mat4) {
	rec.Right = imat.Col(0).Vec3()
	rec.Up = imat.Col(1).Vec3()
	rec.Forward = imat.Col(2)
}

// normalizeAxes removes scale from the rotation part of m.
func normalizeAxes(m mgl32.Mat4) mgl32.Mat4 {
	for c := 0; c < 3; c++ {
		axis := m.Col(c).Vec3()
		if l := axis.Len(); l > 0 {
			axis = axis.Mul(1 / l)
		}
		m.SetCol(c, axis.Vec4(m.Col(c).W()))
	}
	return m
}
