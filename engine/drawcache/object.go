package drawcache

import (
	"github.com/Carmen-Shannon/oxy-gpencil/engine/light"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// TObject is the per-frame draw state of one stroke object.
type TObject struct {
	Source scene.StrokeObject

	// CameraZ is the object's depth along the camera axis, the sort key.
	CameraZ float32

	// PlaneNormal and PlaneMat orient the quad the depth merge pass draws for the object.
	PlaneNormal mgl32.Vec3
	PlaneMat    mgl32.Mat4

	// ObjectScale is the uniform scale of the object matrix, applied to stroke thickness.
	ObjectScale float32

	IsDrawMode3D bool
	InFront      bool

	// MaterialHead and MaterialOfs locate the object's materials: material k of the object
	// is record MaterialOfs+k of the chain starting at MaterialHead.
	MaterialHead *material.Pool
	MaterialOfs  int
	Lights       *light.Pool

	Layers []*TLayer
	Vfx    []*TVfx

	// MergePass writes the object's depth into the scene depth buffer.
	MergePass *pass.Pass

	seq int
}

func (tob *TObject) reset(ob scene.StrokeObject, seq int) {
	layers := tob.Layers[:0]
	vfx := tob.Vfx[:0]
	clear(tob.Layers)
	clear(tob.Vfx)
	*tob = TObject{Source: ob, Layers: layers, Vfx: vfx, seq: seq}
}

// ObjectCacheAdd acquires a TObject for ob and appends it to the frame's object list. The
// object is kept in insertion order until CacheFinish sorts it by CameraZ.
//
// Parameters:
//   - pd: the frame
//   - ob: the stroke object
//
// Returns:
//   - *TObject: the new record
func ObjectCacheAdd(pd *PrivateData, ob scene.StrokeObject) *TObject {
	_, tob := pd.data.objects.Acquire()
	tob.reset(ob, pd.stats.Objects)
	pd.stats.Objects++

	obmat := ob.Matrix()
	tob.CameraZ = pd.CameraZAxis.Dot(obmat.Col(3).Vec3())
	tob.IsDrawMode3D = ob.DrawMode3D() || pd.Settings.DrawDepthOnly
	tob.InFront = ob.InFront()
	tob.ObjectScale = matrixScale(obmat)

	// Normal of the plane facing the view, computed in bounding box space so non uniform
	// scaling does not skew it.
	bmin, bmax := ob.BoundBox()
	center := bmin.Add(bmax).Mul(0.5)
	size := bmax.Sub(bmin).Mul(0.5).Add(mgl32.Vec3{1e-8, 1e-8, 1e-8})
	mat := obmat.Mul4(mgl32.Translate3D(center[0], center[1], center[2])).
		Mul4(mgl32.Scale3D(size[0], size[1], size[2]))

	var normal mgl32.Vec3
	if pd.IsPerspective {
		normal = pd.CameraPos.Sub(mat.Col(3).Vec3())
	} else {
		normal = pd.CameraZAxis
	}
	imat := mat.Inv()
	normal = safeNormalize(imat.Mat3().Mul3x1(normal), mgl32.Vec3{0, 0, 1})
	normal = safeNormalize(imat.Mat3().Transpose().Mul3x1(normal), mgl32.Vec3{0, 0, 1})
	tob.PlaneNormal = normal

	// The depth merge quad spans the bounding sphere, centred on the box.
	radius := obmat.Mat3().Mul3x1(size).Len()
	tob.PlaneMat = planeMatrix(normal, radius, obmat.Mul4x1(center.Vec4(1)).Vec3())

	switch {
	case tob.InFront:
		pd.inFrontTObjects = append(pd.inFrontTObjects, tob)
	case pd.sbuffer != nil && ob == pd.sbuffer:
		pd.sbufferTObjects = append(pd.sbufferTObjects, tob)
	default:
		pd.tobjects = append(pd.tobjects, tob)
	}
	return tob
}

// matrixScale returns the length a unit diagonal vector takes through m's linear part.
func matrixScale(m mgl32.Mat4) float32 {
	k := 1 / math32.Sqrt(3)
	return m.Mat3().Mul3x1(mgl32.Vec3{k, k, k}).Len()
}

// planeMatrix builds an orthonormal frame whose Z axis is normal, scaled by radius and
// translated to center.
func planeMatrix(normal mgl32.Vec3, radius float32, center mgl32.Vec3) mgl32.Mat4 {
	ref := mgl32.Vec3{1, 0, 0}
	if math32.Abs(normal.Dot(ref)) > 0.999 {
		ref = mgl32.Vec3{0, 1, 0}
	}
	x := ref.Sub(normal.Mul(normal.Dot(ref))).Normalize()
	y := normal.Cross(x)

	m := mgl32.Ident4()
	m.SetCol(0, x.Mul(radius).Vec4(0))
	m.SetCol(1, y.Mul(radius).Vec4(0))
	m.SetCol(2, normal.Mul(radius).Vec4(0))
	m.SetCol(3, center.Vec4(1))
	return m
}

func safeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-12 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return fallback
	}
	return v.Mul(1 / l)
}
