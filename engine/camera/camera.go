package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gpencil/common"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	perspective bool
	fov         float32
	orthoScale  float32
	aspect      float32
	near        float32
	far         float32

	viewMatrix           mgl32.Mat4
	viewInverse          mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera defines the view a frame of strokes is rendered from.
//
// Besides the usual matrices it exposes the quantities the draw cache derives per frame: the
// view Z axis used to compute object depth for sorting, the camera position used to orient
// stroke planes in perspective views, and the view frustum used for culling.
// All methods are safe for concurrent use.
type Camera interface {
	// Position returns the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target returns the world-space point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target
	Target() mgl32.Vec3

	// IsPerspective reports whether the camera uses a perspective projection.
	//
	// Returns:
	//   - bool: true for perspective, false for orthographic
	IsPerspective() bool

	// Aspect returns the viewport aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// ViewMatrix returns the world to view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ViewInverse returns the view to world matrix. Its third column is the view Z axis and its
	// fourth column is the eye position.
	//
	// Returns:
	//   - mgl32.Mat4: the inverse view matrix
	ViewInverse() mgl32.Mat4

	// ProjectionMatrix returns the view to clip matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined world to clip matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// ZAxis returns the world-space view Z axis, pointing from the scene towards the viewer.
	//
	// Returns:
	//   - mgl32.Vec3: the unit view Z axis
	ZAxis() mgl32.Vec3

	// Frustum returns the planes of the view volume.
	//
	// Returns:
	//   - common.Frustum: the view frustum
	Frustum() common.Frustum

	// Uniform returns the GPU view uniform for a viewport of the given size.
	//
	// Parameters:
	//   - width: the viewport width in pixels
	//   - height: the viewport height in pixels
	//
	// Returns:
	//   - GPUCameraUniform: the uniform data
	Uniform(width, height int) GPUCameraUniform

	// SetPosition moves the eye.
	//
	// Parameters:
	//   - x, y, z: the eye position
	SetPosition(x, y, z float32)

	// SetTarget changes the look-at point.
	//
	// Parameters:
	//   - x, y, z: the target position
	SetTarget(x, y, z float32)

	// SetAspect sets the viewport aspect ratio.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetPerspective switches between perspective and orthographic projection.
	//
	// Parameters:
	//   - perspective: true for perspective
	SetPerspective(perspective bool)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera looking down -Z from (0, 0, 10) with the provided options applied.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions to configure the camera
//
// Returns:
//   - Camera: a new Camera instance
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.Mutex{},
		position:    mgl32.Vec3{0, 0, 10},
		up:          mgl32.Vec3{0, 1, 0},
		perspective: true,
		fov:         mgl32.DegToRad(45),
		orthoScale:  10,
		aspect:      1.0,
		near:        0.1,
		far:         100.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) IsPerspective() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perspective
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ViewInverse() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewInverse
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) ZAxis() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewInverse.Col(2).Vec3()
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ExtractFrustumFromMatrix(c.viewProjectionMatrix)
}

func (c *cameraImpl) Uniform(width, height int) GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := GPUCameraUniform{
		ViewProj: c.viewProjectionMatrix,
		ViewInv:  c.viewInverse,
		Position: c.position.Vec4(0),
	}
	if c.perspective {
		u.Position[3] = 1
	}
	if width > 0 && height > 0 {
		u.Viewport = [4]float32{float32(width), float32(height), 1 / float32(width), 1 / float32(height)}
	}
	return u
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = mgl32.Vec3{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = mgl32.Vec3{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetPerspective(perspective bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.perspective = perspective
	c.updateMatrices()
}

// updateMatrices recalculates the view, inverse view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	c.viewInverse = c.viewMatrix.Inv()

	if c.perspective {
		c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	} else {
		hw := c.orthoScale * 0.5
		hh := hw
		if c.aspect > 0 {
			hh = hw / c.aspect
		}
		c.projectionMatrix = mgl32.Ortho(-hw, hw, -hh, hh, c.near, c.far)
	}
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
