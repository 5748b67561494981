package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a function that configures a Camera during construction.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's eye position.
//
// Parameters:
//   - x, y, z: eye position components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = mgl32.Vec3{x, y, z}
	}
}

// WithTarget sets the point the camera looks at.
//
// Parameters:
//   - x, y, z: target components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's target
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = mgl32.Vec3{x, y, z}
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = mgl32.Vec3{x, y, z}
	}
}

// WithFov sets the camera's vertical field of view in radians and selects a perspective projection.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
		c.perspective = true
	}
}

// WithOrthographic selects an orthographic projection showing scale world units horizontally.
//
// Parameters:
//   - scale: the horizontal extent of the view volume
//
// Returns:
//   - CameraBuilderOption: a function that sets the orthographic projection
func WithOrthographic(scale float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orthoScale = scale
		c.perspective = false
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithClip sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clipping planes
func WithClip(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}
