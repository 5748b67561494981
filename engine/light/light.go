package light

import "github.com/go-gl/mathgl/mgl32"

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypePoint represents a light that emits in all directions from a position.
	LightTypePoint LightType = iota

	// LightTypeSpot represents a light that emits in a cone along its local -Z axis.
	// The cone is described by its full opening angle and an edge blend factor.
	LightTypeSpot

	// LightTypeSun represents a light with no position, only direction.
	// Affects every stroke uniformly with no distance attenuation.
	LightTypeSun

	// LightTypeArea represents a planar emitter. Stroke shading has no area light model, so
	// area lights are approximated by a hemispherical spot light.
	LightTypeArea
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType LightType
	position  mgl32.Vec3
	rotation  mgl32.Quat
	color     [3]float32
	energy    float32
	spotSize  float32 // full cone angle in radians
	spotBlend float32
	enabled   bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are scene-level entities. Every enabled light is converted into a GPULight record
// of the frame's global light pool, which is shared by every stroke object that receives
// lighting. Type-specific properties (spot size and blend) are ignored by other light types.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Matrix returns the light's world matrix. The light shines along the matrix's -Z axis.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	Matrix() mgl32.Mat4

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Energy returns the scalar power multiplier applied to the color.
	//
	// Returns:
	//   - float32: the energy
	Energy() float32

	// SpotSize returns the full opening angle of a spot light, in radians.
	//
	// Returns:
	//   - float32: the spot angle
	SpotSize() float32

	// SpotBlend returns the softness of a spot light's edge in [0, 1].
	//
	// Returns:
	//   - float32: the blend factor
	SpotBlend() float32

	// Enabled returns whether this light contributes to the frame.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetDirection orients the light so that it shines along the given direction.
	//
	// Parameters:
	//   - x, y, z: direction components (need not be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetEnergy sets the scalar power multiplier.
	//
	// Parameters:
	//   - energy: the energy value
	SetEnergy(energy float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		rotation:  mgl32.QuatIdent(),
		color:     [3]float32{1, 1, 1},
		energy:    1.0,
		spotSize:  mgl32.DegToRad(45),
		spotBlend: 0.15,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(l.position.X(), l.position.Y(), l.position.Z()).Mul4(l.rotation.Mat4())
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Energy() float32 {
	return l.energy
}

func (l *lightImpl) SpotSize() float32 {
	return l.spotSize
}

func (l *lightImpl) SpotBlend() float32 {
	return l.spotBlend
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = mgl32.Vec3{x, y, z}
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.rotation = rotationTowards(x, y, z)
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetEnergy(energy float32) {
	l.energy = energy
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// rotationTowards returns the rotation taking the local -Z axis onto (x, y, z).
// A zero vector keeps the identity rotation.
func rotationTowards(x, y, z float32) mgl32.Quat {
	dir := mgl32.Vec3{x, y, z}
	if dir.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, -1}, dir.Normalize())
}
