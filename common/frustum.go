package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined Projection * View matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	rows := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}
	for i, r := range rows {
		f.Planes[i] = Plane{Normal: r.Vec3(), Distance: r.W()}
		f.normalizePlane(i)
	}
	return f
}

// IntersectsAABB reports whether an axis-aligned box is at least partially inside the frustum.
// The test is conservative: boxes near frustum corners may be reported visible.
//
// Parameters:
//   - min: the box minimum corner
//   - max: the box maximum corner
//
// Returns:
//   - bool: false only if the box lies entirely outside one plane
func (f *Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	for _, p := range f.Planes {
		// positive vertex: the box corner furthest along the plane normal
		var v mgl32.Vec3
		for a := 0; a < 3; a++ {
			if p.Normal[a] >= 0 {
				v[a] = max[a]
			} else {
				v[a] = min[a]
			}
		}
		if p.Normal.Dot(v)+p.Distance < 0 {
			return false
		}
	}
	return true
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := math32.Sqrt(p.Normal.Dot(p.Normal))
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
}
