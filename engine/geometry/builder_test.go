package geometry

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(xs ...float32) []Point {
	out := make([]Point, len(xs))
	for i, x := range xs {
		out[i] = Point{Position: mgl32.Vec3{x, 0, 0}, Pressure: 1}
	}
	return out
}

func TestVertexMatchesRendererLayout(t *testing.T) {
	var v GPUStrokeVertex
	assert.Equal(t, GPUStrokeVertexSize, v.Size())
	assert.Equal(t, renderer.StrokeVertexSize, GPUStrokeVertexSize)
	assert.Len(t, v.Marshal(), GPUStrokeVertexSize)
}

func TestVertexRoundTrip(t *testing.T) {
	in := GPUStrokeVertex{
		Position:  [3]float32{1, 2, 3},
		Thickness: 0.5,
		Color:     [4]float32{0.1, 0.2, 0.3, 0.4},
		UV:        [2]float32{7, 1},
		Material:  42,
	}
	var out GPUStrokeVertex
	out.Unmarshal(in.Marshal())
	assert.Equal(t, in, out)
}

func TestRibbonHasTwoTrianglesPerSegment(t *testing.T) {
	b := NewBuilder(WithThickness(0.2))
	s := b.Stroke(3, line(0, 1, 2, 3), false)

	assert.Equal(t, 3, s.MaterialIndex)
	assert.Equal(t, 0, s.StrokeFirst)
	assert.Equal(t, 18, s.StrokeCount)
	assert.False(t, s.HasFill())
	assert.Equal(t, 18, b.Len())

	for _, v := range b.Vertices() {
		assert.Equal(t, uint32(3), v.Material)
		assert.InDelta(t, 0.1, abs(v.Position[1]), 1e-6, "ribbon edges sit half a thickness away")
		assert.InDelta(t, 0.2, v.Thickness, 1e-6)
	}

	lo, hi := b.Bounds()
	assert.InDeltaSlice(t, []float32{0, -0.1, 0}, lo[:], 1e-6)
	assert.InDeltaSlice(t, []float32{3, 0.1, 0}, hi[:], 1e-6)
}

func TestRibbonUVFollowsLength(t *testing.T) {
	b := NewBuilder()
	b.Stroke(0, line(0, 2, 5), false)

	var us []float32
	for _, v := range b.Vertices() {
		us = append(us, v.UV[0])
	}
	assert.Equal(t, []float32{0, 0, 2, 0, 2, 2, 2, 2, 5, 2, 5, 5}, us)
}

func TestPressureScalesWidth(t *testing.T) {
	b := NewBuilder(WithThickness(1))
	pts := line(0, 1)
	pts[1].Pressure = 0.5
	b.Stroke(0, pts, false)

	v := b.Vertices()
	assert.InDelta(t, 0.5, abs(v[0].Position[1]), 1e-6)
	assert.InDelta(t, 0.25, abs(v[2].Position[1]), 1e-6)
}

func TestFillComesBeforeStroke(t *testing.T) {
	b := NewBuilder()
	square := []Point{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{1, 1, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
	}
	first := b.Stroke(0, line(0, 1), false)
	s := b.Stroke(1, square, true)

	assert.Equal(t, first.StrokeCount, s.FillFirst)
	assert.Equal(t, 6, s.FillCount)
	assert.Equal(t, s.FillFirst+s.FillCount, s.StrokeFirst)
	assert.Equal(t, 18, s.StrokeCount)

	fill := b.Vertices()[s.FillFirst : s.FillFirst+s.FillCount]
	assert.Equal(t, [2]float32{0, 0}, fill[0].UV)
	assert.Equal(t, [2]float32{1, 1}, fill[2].UV)
	assert.Zero(t, fill[0].Thickness)
}

func TestDegenerateStrokes(t *testing.T) {
	b := NewBuilder(WithThickness(1))

	empty := b.Stroke(0, nil, true)
	assert.Zero(t, empty.StrokeCount)
	assert.Zero(t, empty.FillCount)

	dot := b.Stroke(0, line(4), true)
	assert.Equal(t, 6, dot.StrokeCount, "a single point becomes a square")
	assert.Zero(t, dot.FillCount, "fills need three points")

	lo, hi := b.Bounds()
	assert.InDeltaSlice(t, []float32{3.5, -0.5, 0}, lo[:], 1e-6)
	assert.InDeltaSlice(t, []float32{4.5, 0.5, 0}, hi[:], 1e-6)
}

func TestResetKeepsStorage(t *testing.T) {
	b := NewBuilder()
	b.Stroke(0, line(0, 1, 2), false)
	require.NotZero(t, b.Len())

	b.Reset()
	assert.Zero(t, b.Len())
	lo, hi := b.Bounds()
	assert.Equal(t, mgl32.Vec3{}, lo)
	assert.Equal(t, mgl32.Vec3{}, hi)
	assert.Empty(t, b.Bytes())
}

func TestBytesPacksEveryVertex(t *testing.T) {
	b := NewBuilder(WithVertexColor([4]float32{1, 0, 0, 1}))
	b.Stroke(2, line(0, 1), false)

	buf := b.Bytes()
	require.Len(t, buf, 6*GPUStrokeVertexSize)
	var v GPUStrokeVertex
	v.Unmarshal(buf[5*GPUStrokeVertexSize:])
	assert.Equal(t, b.Vertices()[5], v)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, v.Color)
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
