package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithDirection is an option builder that orients the light along a direction.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.rotation = rotationTowards(x, y, z)
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithEnergy is an option builder that sets the scalar power multiplier.
//
// Parameters:
//   - energy: the energy value
//
// Returns:
//   - LightBuilderOption: a function that applies the energy option to a lightImpl
func WithEnergy(energy float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.energy = energy
	}
}

// WithSpot is an option builder that sets the cone of a spot light. The angle is the full
// opening angle in degrees.
//
// Parameters:
//   - sizeDeg: the full cone angle in degrees
//   - blend: the edge softness in [0, 1]
//
// Returns:
//   - LightBuilderOption: a function that applies the spot option to a lightImpl
func WithSpot(sizeDeg, blend float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.spotSize = mgl32.DegToRad(sizeDeg)
		l.spotBlend = blend
	}
}

// WithEnabled is an option builder that sets whether the light is active for rendering.
//
// Parameters:
//   - enabled: true to enable the light
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
