package scene

import (
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// StrokeObjectBuilderOption is a function that configures a StrokeObject during construction.
type StrokeObjectBuilderOption func(*strokeObject)

// WithID sets the object's unique identifier.
//
// Parameters:
//   - id: the object ID
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithID(id uint64) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.id = id
	}
}

// WithName sets the object's display name.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithName(name string) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.name = name
	}
}

// WithEnabled sets whether the object is enabled for rendering.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithEnabled(enabled bool) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.enabled.Store(enabled)
	}
}

// WithPosition sets the object's world position.
//
// Parameters:
//   - x, y, z: the position
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithPosition(x, y, z float32) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the object's euler rotation in radians.
//
// Parameters:
//   - rx, ry, rz: rotation around each axis
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithRotation(rx, ry, rz float32) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.rotation = mgl32.Vec3{rx, ry, rz}
	}
}

// WithScale sets the object's per-axis scale.
//
// Parameters:
//   - sx, sy, sz: the scale factors
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithScale(sx, sy, sz float32) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.scale = mgl32.Vec3{sx, sy, sz}
	}
}

// WithBounds sets the object-space bounds of the strokes.
//
// Parameters:
//   - min: the minimum corner
//   - max: the maximum corner
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithBounds(min, max mgl32.Vec3) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.boundMin = min
		o.boundMax = max
	}
}

// WithLayers appends layers, bottom first.
//
// Parameters:
//   - layers: the layers to add
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithLayers(layers ...*Layer) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.layers = append(o.layers, layers...)
	}
}

// WithActiveLayer marks the layer being edited. Other layers may be faded in the viewport.
//
// Parameters:
//   - index: the active layer index
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithActiveLayer(index int) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.activeLayer = index
	}
}

// WithMaterials sets the object's material slots.
//
// Parameters:
//   - materials: the materials indexed by Stroke.MaterialIndex
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithMaterials(materials ...material.Material) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.materials = append(o.materials, materials...)
	}
}

// WithEffects appends entries to the object's effect stack.
//
// Parameters:
//   - effects: the effects in application order
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithEffects(effects ...Effect) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.effects = append(o.effects, effects...)
	}
}

// WithLights sets whether scene lights affect the object.
//
// Parameters:
//   - use: true to receive lighting
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithLights(use bool) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.useLights = use
	}
}

// WithDrawMode3D sets whether strokes are depth tested in 3D.
//
// Parameters:
//   - enabled: true for 3D draw mode
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithDrawMode3D(enabled bool) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.drawMode3D = enabled
	}
}

// WithInFront sets whether the object is drawn on top of every other object.
//
// Parameters:
//   - inFront: true to draw in front
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithInFront(inFront bool) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.inFront = inFront
	}
}

// WithGeometry sets the provider holding the stroke vertex buffer.
//
// Parameters:
//   - geometry: the geometry provider
//
// Returns:
//   - StrokeObjectBuilderOption: option function to apply
func WithGeometry(geometry bind_group_provider.BindGroupProvider) StrokeObjectBuilderOption {
	return func(o *strokeObject) {
		o.geometry = geometry
	}
}
