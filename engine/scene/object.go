package scene

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

type strokeObject struct {
	id      uint64
	name    string
	enabled atomic.Bool

	position mgl32.Vec3
	rotation mgl32.Vec3 // euler XYZ, radians
	scale    mgl32.Vec3

	boundMin mgl32.Vec3
	boundMax mgl32.Vec3

	layers      []*Layer
	activeLayer int
	materials   []material.Material
	effects     []Effect

	useLights  bool
	drawMode3D bool
	inFront    bool
	geometry   bind_group_provider.BindGroupProvider
}

// StrokeObject defines a drawable object made of stroke layers.
//
// The draw cache only reads a stroke object. The transform, bounds and material list drive
// per-object state; layers and strokes become passes and draw calls; the effect stack becomes
// full-screen effect passes. Stroke vertices are addressed in the object's geometry buffer.
type StrokeObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's display name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// TransformData returns the object's position, scale and euler rotation.
	//
	// Returns:
	//   - pos: the world position
	//   - scale: the per-axis scale
	//   - rot: the euler rotation in radians
	TransformData() (pos, scale, rot mgl32.Vec3)

	// Matrix returns the object to world matrix.
	//
	// Returns:
	//   - mgl32.Mat4: translation * rotation * scale
	Matrix() mgl32.Mat4

	// BoundBox returns the object-space axis-aligned bounds of all strokes.
	//
	// Returns:
	//   - min: the minimum corner
	//   - max: the maximum corner
	BoundBox() (min, max mgl32.Vec3)

	// WorldBounds returns the world-space axis-aligned box enclosing the transformed bounds.
	//
	// Returns:
	//   - min: the minimum corner
	//   - max: the maximum corner
	WorldBounds() (min, max mgl32.Vec3)

	// Layers returns the object's layers, bottom first.
	//
	// Returns:
	//   - []*Layer: the layers
	Layers() []*Layer

	// ActiveLayer returns the index of the layer being edited, or -1.
	//
	// Returns:
	//   - int: the active layer index
	ActiveLayer() int

	// Materials returns the object's material slots.
	//
	// Returns:
	//   - []material.Material: the materials, indexed by Stroke.MaterialIndex
	Materials() []material.Material

	// Effects returns the object's effect stack in application order.
	//
	// Returns:
	//   - []Effect: the effects
	Effects() []Effect

	// UseLights reports whether scene lights affect this object.
	//
	// Returns:
	//   - bool: true if lit
	UseLights() bool

	// DrawMode3D reports whether strokes are depth tested against each other in 3D rather
	// than drawn in stroke order.
	//
	// Returns:
	//   - bool: true for 3D draw mode
	DrawMode3D() bool

	// InFront reports whether the object is drawn on top of every other object.
	//
	// Returns:
	//   - bool: true if drawn in front
	InFront() bool

	// Geometry returns the provider holding the object's stroke vertex buffer.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the geometry provider, or nil
	Geometry() bind_group_provider.BindGroupProvider

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID
	SetID(id uint64)

	// SetEnabled enables or disables the object for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetPosition moves the object.
	//
	// Parameters:
	//   - x, y, z: the world position
	SetPosition(x, y, z float32)

	// SetRotation sets the euler rotation.
	//
	// Parameters:
	//   - rx, ry, rz: rotation around each axis in radians
	SetRotation(rx, ry, rz float32)

	// SetScale sets the per-axis scale.
	//
	// Parameters:
	//   - sx, sy, sz: the scale factors
	SetScale(sx, sy, sz float32)

	// SetGeometry replaces the geometry provider.
	//
	// Parameters:
	//   - geometry: the provider holding the vertex buffer
	SetGeometry(geometry bind_group_provider.BindGroupProvider)

	// AddLayer appends a layer on top of the existing ones.
	//
	// Parameters:
	//   - layer: the layer to add
	AddLayer(layer *Layer)
}

var _ StrokeObject = &strokeObject{}

// NewStrokeObject creates a new enabled StrokeObject with unit scale, unit bounds and the
// provided options applied.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - StrokeObject: the newly created object
func NewStrokeObject(options ...StrokeObjectBuilderOption) StrokeObject {
	obj := &strokeObject{
		scale:       mgl32.Vec3{1, 1, 1},
		boundMin:    mgl32.Vec3{-1, -1, -1},
		boundMax:    mgl32.Vec3{1, 1, 1},
		activeLayer: -1,
		useLights:   true,
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (o *strokeObject) ID() uint64 {
	return o.id
}

func (o *strokeObject) Name() string {
	return o.name
}

func (o *strokeObject) Enabled() bool {
	return o.enabled.Load()
}

func (o *strokeObject) TransformData() (pos, scale, rot mgl32.Vec3) {
	return o.position, o.scale, o.rotation
}

func (o *strokeObject) Matrix() mgl32.Mat4 {
	rot := mgl32.AnglesToQuat(o.rotation.X(), o.rotation.Y(), o.rotation.Z(), mgl32.XYZ).Mat4()
	return mgl32.Translate3D(o.position.X(), o.position.Y(), o.position.Z()).
		Mul4(rot).
		Mul4(mgl32.Scale3D(o.scale.X(), o.scale.Y(), o.scale.Z()))
}

func (o *strokeObject) BoundBox() (min, max mgl32.Vec3) {
	return o.boundMin, o.boundMax
}

func (o *strokeObject) WorldBounds() (min, max mgl32.Vec3) {
	m := o.Matrix()
	for i := 0; i < 8; i++ {
		corner := o.boundMin
		if i&1 != 0 {
			corner[0] = o.boundMax[0]
		}
		if i&2 != 0 {
			corner[1] = o.boundMax[1]
		}
		if i&4 != 0 {
			corner[2] = o.boundMax[2]
		}
		p := mgl32.TransformCoordinate(corner, m)
		if i == 0 {
			min, max = p, p
			continue
		}
		for a := 0; a < 3; a++ {
			if p[a] < min[a] {
				min[a] = p[a]
			}
			if p[a] > max[a] {
				max[a] = p[a]
			}
		}
	}
	return min, max
}

func (o *strokeObject) Layers() []*Layer {
	return o.layers
}

func (o *strokeObject) ActiveLayer() int {
	return o.activeLayer
}

func (o *strokeObject) Materials() []material.Material {
	return o.materials
}

func (o *strokeObject) Effects() []Effect {
	return o.effects
}

func (o *strokeObject) UseLights() bool {
	return o.useLights
}

func (o *strokeObject) DrawMode3D() bool {
	return o.drawMode3D
}

func (o *strokeObject) InFront() bool {
	return o.inFront
}

func (o *strokeObject) Geometry() bind_group_provider.BindGroupProvider {
	return o.geometry
}

func (o *strokeObject) SetID(id uint64) {
	o.id = id
}

func (o *strokeObject) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *strokeObject) SetPosition(x, y, z float32) {
	o.position = mgl32.Vec3{x, y, z}
}

func (o *strokeObject) SetRotation(rx, ry, rz float32) {
	o.rotation = mgl32.Vec3{rx, ry, rz}
}

func (o *strokeObject) SetScale(sx, sy, sz float32) {
	o.scale = mgl32.Vec3{sx, sy, sz}
}

func (o *strokeObject) SetGeometry(geometry bind_group_provider.BindGroupProvider) {
	o.geometry = geometry
}

func (o *strokeObject) AddLayer(layer *Layer) {
	o.layers = append(o.layers, layer)
}
