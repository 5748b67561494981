// Package geometry expands stroke polylines into the triangle lists drawn by the stroke
// geometry shader.
package geometry

import (
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Point is one sample of a stroke. Pressure scales the builder's thickness.
type Point struct {
	Position mgl32.Vec3
	Pressure float32
}

// Builder accumulates the vertices of every stroke of one object. Strokes are expanded into
// ribbons in the object's XY plane; fills are fan triangulated, so fill outlines must be
// convex.
type Builder struct {
	vertices  []GPUStrokeVertex
	bmin      mgl32.Vec3
	bmax      mgl32.Vec3
	thickness float32
	color     [4]float32
}

// NewBuilder creates an empty Builder.
//
// Parameters:
//   - options: variadic list of BuilderOption functions to configure the builder
//
// Returns:
//   - *Builder: the builder
func NewBuilder(options ...BuilderOption) *Builder {
	b := &Builder{
		thickness: 0.05,
		color:     [4]float32{0, 0, 0, 0},
	}
	for _, opt := range options {
		opt(b)
	}
	b.Reset()
	return b
}

// Reset drops every vertex, keeping the storage.
func (b *Builder) Reset() {
	b.vertices = b.vertices[:0]
	b.bmin = mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	b.bmax = b.bmin.Mul(-1)
}

// Len returns the number of vertices built so far.
//
// Returns:
//   - int: the vertex count
func (b *Builder) Len() int {
	return len(b.vertices)
}

// Vertices returns the vertices built so far.
//
// Returns:
//   - []GPUStrokeVertex: the vertices, owned by the builder
func (b *Builder) Vertices() []GPUStrokeVertex {
	return b.vertices
}

// Bounds returns the bounding box of every vertex built so far, or a zero box when empty.
//
// Returns:
//   - mgl32.Vec3: the minimum corner
//   - mgl32.Vec3: the maximum corner
func (b *Builder) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(b.vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	return b.bmin, b.bmax
}

// Bytes marshals every vertex for upload with renderer.InitVertexBuffer.
//
// Returns:
//   - []byte: the vertex data
func (b *Builder) Bytes() []byte {
	buf := make([]byte, len(b.vertices)*GPUStrokeVertexSize)
	for i := range b.vertices {
		b.vertices[i].MarshalTo(buf[i*GPUStrokeVertexSize:])
	}
	return buf
}

// Stroke expands points into a stroke using material slot material. When fill is set and
// the outline has at least three points, its fill triangles are emitted before the ribbon.
//
// Parameters:
//   - material: the object's material slot
//   - points: the stroke samples
//   - fill: true to also fill the outline
//
// Returns:
//   - scene.Stroke: the vertex ranges of the stroke
func (b *Builder) Stroke(material int, points []Point, fill bool) scene.Stroke {
	s := scene.Stroke{MaterialIndex: material}
	if len(points) == 0 {
		return s
	}
	if fill && len(points) >= 3 {
		s.FillFirst = len(b.vertices)
		b.fill(uint32(material), points)
		s.FillCount = len(b.vertices) - s.FillFirst
	}
	s.StrokeFirst = len(b.vertices)
	b.ribbon(uint32(material), points)
	s.StrokeCount = len(b.vertices) - s.StrokeFirst
	return s
}

func (b *Builder) fill(material uint32, points []Point) {
	lo, hi := points[0].Position, points[0].Position
	for _, p := range points[1:] {
		lo = componentMin(lo, p.Position)
		hi = componentMax(hi, p.Position)
	}
	size := hi.Sub(lo)
	uv := func(p mgl32.Vec3) [2]float32 {
		var u, v float32
		if size[0] > 0 {
			u = (p[0] - lo[0]) / size[0]
		}
		if size[1] > 0 {
			v = (p[1] - lo[1]) / size[1]
		}
		return [2]float32{u, v}
	}
	for i := 1; i+1 < len(points); i++ {
		for _, p := range [3]mgl32.Vec3{points[0].Position, points[i].Position, points[i+1].Position} {
			b.emit(GPUStrokeVertex{Position: p, Color: b.color, UV: uv(p), Material: material})
		}
	}
}

func (b *Builder) ribbon(material uint32, points []Point) {
	n := len(points)
	if n == 1 {
		// a dot becomes a square of the stroke's thickness
		half := b.halfWidth(points[0])
		p := points[0].Position
		shifted := []Point{
			{Position: p.Sub(mgl32.Vec3{half, 0, 0}), Pressure: points[0].Pressure},
			{Position: p.Add(mgl32.Vec3{half, 0, 0}), Pressure: points[0].Pressure},
		}
		b.ribbon(material, shifted)
		return
	}

	left := make([]mgl32.Vec3, n)
	right := make([]mgl32.Vec3, n)
	length := make([]float32, n)
	for i := range points {
		prev := points[max(i-1, 0)].Position
		next := points[min(i+1, n-1)].Position
		t := next.Sub(prev)
		side := mgl32.Vec3{-t[1], t[0], 0}
		if l := side.Len(); l > 1e-8 {
			side = side.Mul(1 / l)
		} else {
			side = mgl32.Vec3{0, 1, 0}
		}
		half := b.halfWidth(points[i])
		left[i] = points[i].Position.Add(side.Mul(half))
		right[i] = points[i].Position.Sub(side.Mul(half))
		if i > 0 {
			length[i] = length[i-1] + points[i].Position.Sub(points[i-1].Position).Len()
		}
	}

	for i := 0; i+1 < n; i++ {
		thick := [2]float32{b.halfWidth(points[i]) * 2, b.halfWidth(points[i+1]) * 2}
		vert := func(p mgl32.Vec3, j int, side float32) GPUStrokeVertex {
			return GPUStrokeVertex{
				Position:  p,
				Thickness: thick[j-i],
				Color:     b.color,
				UV:        [2]float32{length[j], side},
				Material:  material,
			}
		}
		b.emit(vert(left[i], i, 0))
		b.emit(vert(right[i], i, 1))
		b.emit(vert(left[i+1], i+1, 0))
		b.emit(vert(right[i], i, 1))
		b.emit(vert(right[i+1], i+1, 1))
		b.emit(vert(left[i+1], i+1, 0))
	}
}

func (b *Builder) halfWidth(p Point) float32 {
	pressure := p.Pressure
	if pressure <= 0 {
		pressure = 1
	}
	return b.thickness * pressure * 0.5
}

func (b *Builder) emit(v GPUStrokeVertex) {
	p := mgl32.Vec3(v.Position)
	b.bmin = componentMin(b.bmin, p)
	b.bmax = componentMax(b.bmax, p)
	b.vertices = append(b.vertices, v)
}

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}
