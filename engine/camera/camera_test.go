package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestZAxisPointsTowardsViewer(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 10))
	z := c.ZAxis()
	col3 := c.ViewInverse().Col(3)
	assert.InDeltaSlice(t, []float32{0, 0, 1}, z[:], 1e-5)
	assert.InDeltaSlice(t, []float32{0, 0, 10, 1}, col3[:], 1e-5)

	c.SetPosition(10, 0, 0)
	z = c.ZAxis()
	assert.InDeltaSlice(t, []float32{1, 0, 0}, z[:], 1e-5)
}

func TestFartherPointsHaveSmallerDepth(t *testing.T) {
	c := NewCamera()
	z := c.ZAxis()
	near := z.Dot(mgl32.Vec3{0, 0, 5})
	far := z.Dot(mgl32.Vec3{0, 0, -5})
	assert.Less(t, far, near)
}

func TestOrthographicProjection(t *testing.T) {
	c := NewCamera(WithOrthographic(4), WithAspect(2), WithClip(0.1, 50))
	assert.False(t, c.IsPerspective())

	p := c.ProjectionMatrix()
	assert.InDelta(t, 2.0/4.0, p.At(0, 0), 1e-6)
	assert.InDelta(t, 2.0/2.0, p.At(1, 1), 1e-6)

	c.SetPerspective(true)
	assert.True(t, c.IsPerspective())
}

func TestUniform(t *testing.T) {
	c := NewCamera(WithPosition(1, 2, 3))
	u := c.Uniform(200, 100)
	assert.Equal(t, [4]float32{1, 2, 3, 1}, u.Position)
	assert.Equal(t, [4]float32{200, 100, 1.0 / 200, 1.0 / 100}, u.Viewport)
	assert.Equal(t, [16]float32(c.ViewProjectionMatrix()), u.ViewProj)
	assert.Len(t, u.Marshal(), GPUCameraUniformSize)
	assert.Equal(t, GPUCameraUniformSize, u.Size())
}

func TestFrustumFollowsCamera(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 10))
	f := c.Frustum()
	assert.True(t, f.IntersectsAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}))

	c.SetTarget(0, 0, 20)
	f = c.Frustum()
	assert.False(t, f.IntersectsAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}))
}
