package light

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/memblock"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlocks() memblock.Pool[Pool] {
	return memblock.NewPool[Pool](memblock.WithChunkLen(2))
}

func pointLights(n int) []Light {
	lights := make([]Light, n)
	for i := range lights {
		lights[i] = NewLight(LightTypePoint, WithPosition(float32(i), 0, 0))
	}
	return lights
}

func TestPoolCreateTagsListEnd(t *testing.T) {
	p := PoolCreate(newBlocks())
	assert.Equal(t, 0, p.Used())
	assert.Equal(t, float32(-1), p.Records[0].Color[0])
	assert.NotNil(t, p.UBO())
}

func TestAmbientAdd(t *testing.T) {
	p := PoolCreate(newBlocks())
	require.True(t, p.AmbientAdd([3]float32{1, 1, 1}))

	assert.Equal(t, 1, p.Used())
	assert.Equal(t, GPULightTypeAmbient, p.Records[0].Type)
	assert.Equal(t, [3]float32{1, 1, 1}, p.Records[0].Color)
	assert.Equal(t, float32(-1), p.Records[1].Color[0])
}

func TestPopulateTruncatesAtCapacity(t *testing.T) {
	p := PoolCreate(newBlocks())
	dropped := p.PopulateAll(pointLights(130))

	assert.Equal(t, LightBufferLen, p.Used())
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 2, p.Dropped())
	assert.Equal(t, float32(127), p.Records[127].Position[0], "the first L lights are kept")

	assert.False(t, p.Populate(NewLight(LightTypeSun)))
	assert.Equal(t, LightBufferLen, p.Used())
	assert.Equal(t, 3, p.Dropped())
}

func TestPopulateAllSkipsDisabled(t *testing.T) {
	p := PoolCreate(newBlocks())
	p.PopulateAll([]Light{
		NewLight(LightTypePoint),
		NewLight(LightTypePoint, WithEnabled(false)),
		nil,
		NewLight(LightTypeSun),
	})
	assert.Equal(t, 2, p.Used())
	assert.Equal(t, GPULightTypeSun, p.Records[1].Type)
}

func TestPopulatePoint(t *testing.T) {
	p := PoolCreate(newBlocks())
	p.Populate(NewLight(LightTypePoint,
		WithPosition(1, 2, 3),
		WithColor(1, 0.5, 0),
		WithEnergy(2),
	))

	rec := p.Records[0]
	assert.Equal(t, GPULightTypePoint, rec.Type)
	assert.Equal(t, [3]float32{2, 1, 0}, rec.Color)
	assert.InDeltaSlice(t, []float32{1, 2, 3, 1}, rec.Position[:], 1e-6)
	assert.Equal(t, float32(-1), p.Records[1].Color[0])
}

func TestPopulateSpot(t *testing.T) {
	p := PoolCreate(newBlocks())
	p.Populate(NewLight(LightTypeSpot, WithPosition(0, 0, 5), WithSpot(90, 0.5)))

	rec := p.Records[0]
	assert.Equal(t, GPULightTypeSpot, rec.Type)
	expectedSize := math32.Cos(mgl32.DegToRad(45))
	assert.InDelta(t, expectedSize, rec.SpotSize, 1e-5)
	assert.InDelta(t, (1-expectedSize)*0.5, rec.SpotBlend, 1e-5)
	assert.InDeltaSlice(t, []float32{1, 0, 0}, rec.Right[:], 1e-5)
	assert.InDeltaSlice(t, []float32{0, 0, 1, 0}, rec.Forward[:], 1e-5)
	assert.InDeltaSlice(t, []float32{0, 0, 5, 1}, rec.Position[:], 1e-5)
}

func TestPopulateAreaAsWideSpot(t *testing.T) {
	p := PoolCreate(newBlocks())
	p.Populate(NewLight(LightTypeArea))

	rec := p.Records[0]
	assert.Equal(t, GPULightTypeSpot, rec.Type)
	assert.InDelta(t, 0, rec.SpotSize, 1e-6)
	assert.InDelta(t, 1, rec.SpotBlend, 1e-6)
}

func TestPopulateSunUsesNormalizedZAxis(t *testing.T) {
	p := PoolCreate(newBlocks())
	p.Populate(NewLight(LightTypeSun, WithDirection(0, -2, 0)))

	rec := p.Records[0]
	assert.Equal(t, GPULightTypeSun, rec.Type)
	// the light shines along -Z, so its Z axis points away from the direction
	assert.InDeltaSlice(t, []float32{0, 1, 0, 0}, rec.Forward[:], 1e-5)
}

func TestRecycledPoolIsEmptied(t *testing.T) {
	blocks := newBlocks()
	p := PoolCreate(blocks)
	p.PopulateAll(pointLights(200))
	ubo := p.UBO()

	blocks.Reset()
	p2 := PoolCreate(blocks)
	assert.Same(t, p, p2)
	assert.Same(t, ubo, p2.UBO())
	assert.Equal(t, 0, p2.Used())
	assert.Equal(t, 0, p2.Dropped())
	assert.Equal(t, float32(-1), p2.Records[0].Color[0])
}

func TestMarshalIncludesEndTag(t *testing.T) {
	p := PoolCreate(newBlocks())
	p.AmbientAdd([3]float32{0.2, 0.2, 0.2})

	buf := make([]byte, LightBufferLen*GPULightSize)
	n := p.MarshalTo(buf)
	assert.Equal(t, 2*GPULightSize, n)
	assert.Equal(t, n, p.UploadSize())

	var tag GPULight
	tag.Unmarshal(buf[GPULightSize:])
	assert.Equal(t, float32(-1), tag.Color[0])

	p.PopulateAll(pointLights(200))
	assert.Equal(t, LightBufferLen*GPULightSize, p.UploadSize(), "a full pool has no end tag")
}
