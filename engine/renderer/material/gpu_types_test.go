package material

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUMaterialLayout(t *testing.T) {
	var g GPUMaterial
	assert.Equal(t, GPUMaterialSize, g.Size())
	assert.Zero(t, g.Size()%16)
	assert.Len(t, g.Marshal(), GPUMaterialSize)
}

func TestGPUMaterialFieldOffsets(t *testing.T) {
	g := GPUMaterial{
		StrokeColor:      [4]float32{1, 2, 3, 4},
		FillColor:        [4]float32{5, 6, 7, 8},
		FillMixColor:     [4]float32{9, 10, 11, 12},
		FillUVTransform:  [3][2]float32{{13, 14}, {15, 16}, {17, 18}},
		StrokeTextureMix: 19,
		StrokeUScale:     20,
		FillTextureMix:   21,
		Flag:             FlagStrokeDots | FlagFillGradientRadial,
	}
	buf := g.Marshal()

	f32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	assert.Equal(t, float32(1), f32(0))
	assert.Equal(t, float32(5), f32(16))
	assert.Equal(t, float32(9), f32(32))
	assert.Equal(t, float32(13), f32(48))
	assert.Equal(t, float32(18), f32(68))
	assert.Equal(t, float32(0), f32(72), "padding is zeroed")
	assert.Equal(t, float32(19), f32(80))
	assert.Equal(t, float32(20), f32(84))
	assert.Equal(t, float32(21), f32(88))
	assert.Equal(t, uint32(FlagStrokeDots|FlagFillGradientRadial), binary.LittleEndian.Uint32(buf[92:96]))
}

func TestGPUMaterialFlagRoundTrip(t *testing.T) {
	independent := []MaterialFlag{
		FlagStrokeOverlap,
		FlagStrokeTextureUse,
		FlagStrokeTextureStencil,
		FlagStrokeTexturePremul,
		FlagStrokeDots,
		FlagFillTextureUse,
		FlagFillTexturePremul,
		FlagFillTextureClip,
		FlagFillGradientUse,
		FlagFillGradientRadial,
	}
	alignments := []MaterialFlag{0, FlagAlignmentStroke, FlagAlignmentObject, FlagAlignmentFixed}

	for mask := 0; mask < 1<<len(independent); mask++ {
		for _, align := range alignments {
			var flag MaterialFlag
			for i, bit := range independent {
				if mask&(1<<i) != 0 {
					flag |= bit
				}
			}
			flag = flag.WithAlignment(align)

			in := GPUMaterial{Flag: flag}
			var out GPUMaterial
			out.Unmarshal(in.Marshal())
			require.Equal(t, flag, out.Flag)
			require.Equal(t, align, out.Flag.Alignment())
		}
	}
}

func TestWithAlignmentReplacesPreviousValue(t *testing.T) {
	f := (FlagStrokeOverlap | FlagFillTextureUse).WithAlignment(FlagAlignmentFixed)
	f = f.WithAlignment(FlagAlignmentStroke)
	assert.Equal(t, FlagAlignmentStroke, f.Alignment())
	assert.True(t, f.Has(FlagStrokeOverlap|FlagFillTextureUse))
	assert.False(t, f.Has(FlagAlignmentObject))
}

func TestGPUMaterialSourceDeclaresStruct(t *testing.T) {
	assert.True(t, strings.Contains(GPUMaterialSource, "struct GpMaterial"))
	assert.True(t, strings.Contains(GPUMaterialSource, "GP_MATERIAL_BUFFER_LEN: u32 = 128u"))
}
