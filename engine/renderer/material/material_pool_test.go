package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/memblock"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAllocator() *Allocator {
	return NewAllocator(memblock.NewPool[Pool](memblock.WithChunkLen(4)))
}

func makeMaterials(n int) []Material {
	mats := make([]Material, n)
	for i := range mats {
		mats[i] = NewMaterial(WithSolidStroke([4]float32{float32(i), 0, 0, 1}))
	}
	return mats
}

func chainCounts(head *Pool) []int {
	var counts []int
	for p := head; p != nil; p = p.Next() {
		counts = append(counts, p.Used())
	}
	return counts
}

func TestPoolCreateChainsWhenFull(t *testing.T) {
	a := newAllocator()
	head, ofs := a.PoolCreate(makeMaterials(300))

	require.NotNil(t, head)
	assert.Equal(t, 0, ofs)
	assert.Equal(t, []int{128, 128, 44}, chainCounts(head))
	assert.Equal(t, 3, a.Len())

	pool, slot := Locate(head, 250)
	assert.Same(t, head.Next(), pool)
	assert.Equal(t, 122, slot)
	assert.Equal(t, float32(250), pool.Records[slot].StrokeColor[0])
}

func TestAbsoluteIndexMatchesAppendOrder(t *testing.T) {
	a := newAllocator()
	head, ofs := a.PoolCreate(makeMaterials(MaterialBufferLen*2 + 5))
	for k := 0; k < MaterialBufferLen*2+5; k++ {
		pool, slot := Locate(head, ofs+k)
		require.NotNil(t, pool)
		assert.Equal(t, k%MaterialBufferLen, slot)
		assert.Equal(t, float32(k), pool.Records[slot].StrokeColor[0])
	}
}

func TestSmallObjectsShareLastPool(t *testing.T) {
	a := newAllocator()
	headA, ofsA := a.PoolCreate(makeMaterials(10))
	headB, ofsB := a.PoolCreate(makeMaterials(20))

	assert.Same(t, headA, headB)
	assert.Equal(t, 0, ofsA)
	assert.Equal(t, 10, ofsB)
	assert.Equal(t, 30, headA.Used())
	assert.Equal(t, 1, a.Len())

	pool, slot := Locate(headB, ofsB+3)
	assert.Same(t, headA, pool)
	assert.Equal(t, 13, slot)
}

func TestObjectThatDoesNotFitStartsFreshPool(t *testing.T) {
	a := newAllocator()
	headA, _ := a.PoolCreate(makeMaterials(100))
	headB, ofsB := a.PoolCreate(makeMaterials(50))

	assert.NotSame(t, headA, headB)
	assert.Equal(t, 0, ofsB)
	assert.Nil(t, headA.Next(), "a fresh chain is not linked from the previous object's pool")
	assert.Equal(t, 100, headA.Used())
	assert.Equal(t, 50, headB.Used())
}

func TestObjectWithoutMaterialsReservesDefaultSlot(t *testing.T) {
	a := newAllocator()
	head, ofs := a.PoolCreate(nil)
	assert.Equal(t, 0, ofs)
	assert.Equal(t, 1, head.Used())
	assert.Equal(t, [4]float32{0, 0, 0, 1}, head.Records[0].StrokeColor)
}

func TestResetRecyclesPoolsAndKeepsUBO(t *testing.T) {
	a := newAllocator()
	head, _ := a.PoolCreate(makeMaterials(200))
	ubo := head.UBO()
	require.NotNil(t, ubo)

	a.Reset()
	assert.Equal(t, 0, a.Len())

	head2, ofs := a.PoolCreate(makeMaterials(5))
	assert.Same(t, head, head2, "the first pool is recycled")
	assert.Same(t, ubo, head2.UBO())
	assert.Equal(t, 0, ofs)
	assert.Equal(t, 5, head2.Used())
	assert.Nil(t, head2.Next(), "stale links are cleared on recycle")
}

func TestResourcesGetFallsBackToDummy(t *testing.T) {
	dummy := &wgpu.TextureView{}
	strokeView := &wgpu.TextureView{}
	tex := &Texture{Label: "brush", View: strokeView}

	a := newAllocator()
	head, ofs := a.PoolCreate([]Material{
		NewMaterial(WithTexturedStroke(tex, [4]float32{1, 1, 1, 1}, 0.25)),
		NewMaterial(WithTexturedFill(&Texture{Label: "not uploaded"}, [4]float32{1, 1, 1, 1}, 0)),
	})

	stroke, fill, ubo := ResourcesGet(head, ofs, dummy)
	assert.Same(t, strokeView, stroke)
	assert.Same(t, dummy, fill)
	assert.Same(t, head.UBO(), ubo)

	stroke, fill, _ = ResourcesGet(head, ofs+1, dummy)
	assert.Same(t, dummy, stroke)
	assert.Same(t, dummy, fill, "a texture without a GPU view resolves to the dummy")

	stroke, fill, ubo = ResourcesGet(head, MaterialBufferLen*3, dummy)
	assert.Same(t, dummy, stroke)
	assert.Same(t, dummy, fill)
	assert.Nil(t, ubo)
}

func TestResourcesGetWalksChain(t *testing.T) {
	a := newAllocator()
	head, _ := a.PoolCreate(makeMaterials(300))
	_, _, ubo := ResourcesGet(head, 250, nil)
	assert.Same(t, head.Next().UBO(), ubo)
	_, _, ubo = ResourcesGet(head, 299, nil)
	assert.Same(t, head.Next().Next().UBO(), ubo)
}

func TestStrokeFlags(t *testing.T) {
	a := newAllocator()
	tex := &Texture{View: &wgpu.TextureView{}, Premultiplied: true}
	head, _ := a.PoolCreate([]Material{
		NewMaterial(),
		NewMaterial(WithStrokeMode(StrokeModeDots, AlignmentFollowObject)),
		NewMaterial(WithStrokeMode(StrokeModeSquares, AlignmentFixed)),
		NewMaterial(WithDisableStencil(true)),
		NewMaterial(WithTexturedStroke(tex, [4]float32{1, 0, 0, 1}, 0.25), WithPattern(true), WithTexturePixelSize(50)),
	})

	line := head.Records[0]
	assert.Equal(t, MaterialFlag(0), line.Flag)

	dots := head.Records[1].Flag
	assert.Equal(t, FlagAlignmentObject, dots.Alignment())
	assert.True(t, dots.Has(FlagStrokeDots|FlagStrokeOverlap))

	squares := head.Records[2].Flag
	assert.Equal(t, FlagAlignmentFixed, squares.Alignment())
	assert.False(t, squares.Has(FlagStrokeDots))
	assert.True(t, squares.Has(FlagStrokeOverlap))

	assert.Equal(t, FlagStrokeOverlap, head.Records[3].Flag)

	textured := head.Records[4]
	assert.True(t, textured.Flag.Has(FlagStrokeTextureUse|FlagStrokeTexturePremul|FlagStrokeTextureStencil))
	assert.InDelta(t, 0.75, textured.StrokeTextureMix, 1e-6)
	assert.InDelta(t, 10, textured.StrokeUScale, 1e-6)
	assert.Same(t, tex, head.StrokeTextures[4])
}

func TestFillFlags(t *testing.T) {
	a := newAllocator()
	tex := &Texture{View: &wgpu.TextureView{}}
	red := [4]float32{1, 0, 0, 1}
	blue := [4]float32{0, 0, 1, 1}
	head, _ := a.PoolCreate([]Material{
		NewMaterial(WithSolidFill(red)),
		NewMaterial(WithGradientFill(GradientRadial, red, blue, 0.5), WithFlipFill(true)),
		NewMaterial(WithTexturedFill(tex, red, 0.2), WithTextureClamp(true)),
	})

	solid := head.Records[0]
	assert.Equal(t, red, solid.FillColor)
	assert.Zero(t, solid.FillTextureMix)
	assert.False(t, solid.Flag.Has(FlagFillGradientUse))

	gradient := head.Records[1]
	assert.True(t, gradient.Flag.Has(FlagFillGradientUse|FlagFillGradientRadial))
	assert.Equal(t, blue, gradient.FillColor, "flip swaps the gradient colors")
	assert.Equal(t, red, gradient.FillMixColor)

	textured := head.Records[2]
	assert.True(t, textured.Flag.Has(FlagFillTextureUse|FlagFillTextureClip))
	assert.False(t, textured.Flag.Has(FlagFillTexturePremul))
	assert.InDelta(t, 0.8, textured.FillTextureMix, 1e-6)
	assert.Same(t, tex, head.FillTextures[2])
}

func TestUVTransformIdentity(t *testing.T) {
	m := uvTransform([2]float32{0, 0}, [2]float32{1, 1}, 0)
	assert.InDeltaSlice(t, []float32{1, 0}, m[0][:], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 1}, m[1][:], 1e-6)
	assert.InDeltaSlice(t, []float32{0.5, 0.5}, m[2][:], 1e-6)
}

func TestUVTransformScaleAndZeroGuard(t *testing.T) {
	m := uvTransform([2]float32{0, 0}, [2]float32{2, 0}, 0)
	assert.InDelta(t, 0.5, m[0][0], 1e-6)
	assert.InDelta(t, 1, m[1][1], 1e-6, "zero scale is treated as 1")
}

func TestMarshalToPacksUsedRecords(t *testing.T) {
	a := newAllocator()
	head, _ := a.PoolCreate(makeMaterials(3))
	buf := make([]byte, MaterialBufferLen*GPUMaterialSize)
	n := head.MarshalTo(buf)
	assert.Equal(t, 3*GPUMaterialSize, n)

	var rec GPUMaterial
	rec.Unmarshal(buf[2*GPUMaterialSize:])
	assert.Equal(t, head.Records[2], rec)
}
