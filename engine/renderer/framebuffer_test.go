package renderer

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameTargetsResolve(t *testing.T) {
	targets := &FrameTargets{
		Scene: &Framebuffer{Tag: pass.TargetScene},
		Main:  &Framebuffer{Tag: pass.TargetMain},
		Layer: &Framebuffer{Tag: pass.TargetLayer},
	}

	assert.Same(t, targets.Scene, targets.Resolve(pass.TargetScene))
	assert.Same(t, targets.Main, targets.Resolve(pass.TargetMain))
	assert.Same(t, targets.Layer, targets.Resolve(pass.TargetLayer))
	assert.Nil(t, targets.Resolve(pass.TargetObject), "unallocated targets resolve to nil")
	assert.Nil(t, targets.Resolve(pass.TargetMasked))
	assert.Nil(t, targets.Resolve(pass.TargetNone))

	var none *FrameTargets
	assert.Nil(t, none.Resolve(pass.TargetMain))
}

func TestFrameTargetsTexture(t *testing.T) {
	color, reveal, depth := &wgpu.TextureView{}, &wgpu.TextureView{}, &wgpu.TextureView{}
	targets := &FrameTargets{
		Main: &Framebuffer{Tag: pass.TargetMain, Color: color, Reveal: reveal, Depth: depth},
	}

	ref := func(a pass.Attachment) pass.TextureRef {
		return pass.TextureRef{Target: pass.TargetMain, Attachment: a}
	}
	assert.Same(t, color, targets.Texture(ref(pass.AttachmentColor)))
	assert.Same(t, reveal, targets.Texture(ref(pass.AttachmentReveal)))
	assert.Same(t, depth, targets.Texture(ref(pass.AttachmentDepth)))
	assert.Nil(t, targets.Texture(pass.TextureRef{Target: pass.TargetLayer}))
}

func TestFramebufferColorTargets(t *testing.T) {
	assert.Equal(t, 1, (&Framebuffer{Color: &wgpu.TextureView{}}).ColorTargets())
	assert.Equal(t, 2, (&Framebuffer{Color: &wgpu.TextureView{}, Reveal: &wgpu.TextureView{}}).ColorTargets())
}

func TestClearOpIsZero(t *testing.T) {
	assert.True(t, ClearOp{}.IsZero())
	assert.True(t, ClearOp{DepthValue: 1}.IsZero(), "a depth value alone clears nothing")
	assert.False(t, ClearOp{Color: true}.IsZero())
	assert.False(t, ClearOp{DepthStencil: true}.IsZero())
}

func TestDefaultShaderTable(t *testing.T) {
	table := DefaultShaderTable()

	geom, ok := table.Program(pass.ShaderGeometry)
	require.True(t, ok)
	assert.Equal(t, "vs_main", geom.VertexEntry)
	assert.Len(t, geom.VertexLayouts, 1)
	assert.True(t, strings.Contains(geom.Source, "struct GpMaterial"))
	assert.True(t, strings.Contains(geom.Source, "struct GpLight"))

	for _, kind := range []pass.ShaderKind{pass.ShaderLayerBlend, pass.ShaderComposite, pass.ShaderFxComposite} {
		p, ok := table.Program(kind)
		require.True(t, ok, kind.String())
		assert.Equal(t, "vs_fullscreen", p.VertexEntry)
		assert.True(t, strings.Contains(p.Source, "fn "+p.FragmentEntry), p.FragmentEntry)
		assert.Equal(t, kind.String(), p.Label)
	}

	missing := table.Missing()
	assert.Contains(t, missing, pass.ShaderDepthMerge)
	assert.Contains(t, missing, pass.ShaderFxBlur)
	assert.NotContains(t, missing, pass.ShaderGeometry)
}

func TestDefaultProgramsDeclareTheBindingLayout(t *testing.T) {
	table := DefaultShaderTable()
	slots := func(decls []shader.Annotation) map[[2]int]shader.AnnotationArg {
		out := map[[2]int]shader.AnnotationArg{}
		for _, d := range decls {
			out[[2]int{*d.Group, *d.Binding}] = d.Args[len(d.Args)-1]
		}
		return out
	}

	geom, _ := table.Program(pass.ShaderGeometry)
	assert.Equal(t, map[[2]int]shader.AnnotationArg{
		{0, 0}: shader.AnnotationArgCamera,
		{0, 1}: shader.AnnotationArgMaterial,
		{0, 2}: shader.AnnotationArgLight,
		{1, 0}: shader.AnnotationArgFillTexture,
		{1, 1}: shader.AnnotationArgFillSampler,
		{1, 2}: shader.AnnotationArgStrokeTexture,
		{1, 3}: shader.AnnotationArgStrokeSampler,
		{2, 0}: shader.AnnotationArgParams,
	}, slots(geom.Declarations))
	assert.NotContains(t, geom.Source, "@gp:")

	blend, _ := table.Program(pass.ShaderLayerBlend)
	decls := slots(blend.Declarations)
	assert.Len(t, decls, 7)
	assert.Equal(t, shader.AnnotationArgMaskTexture, decls[[2]int{1, 4}])
	assert.Equal(t, shader.AnnotationArgMaskSampler, decls[[2]int{1, 5}])
}

func TestShaderTableIgnoresUnknownKinds(t *testing.T) {
	table := NewShaderTable(
		ShaderProgram{Kind: pass.ShaderFxBlur, Label: "first"},
		ShaderProgram{Kind: pass.ShaderFxBlur, Label: "second"},
		ShaderProgram{Kind: pass.ShaderKindCount},
		ShaderProgram{Kind: -1},
	)

	p, ok := table.Program(pass.ShaderFxBlur)
	require.True(t, ok)
	assert.Equal(t, "second", p.Label)
	assert.Len(t, table.Missing(), int(pass.ShaderKindCount)-1)

	_, ok = table.Program(pass.ShaderKindCount)
	assert.False(t, ok)

	var none *ShaderTable
	_, ok = none.Program(pass.ShaderGeometry)
	assert.False(t, ok)
}

func TestStrokeVertexLayoutMatchesStride(t *testing.T) {
	assert.Equal(t, uint64(StrokeVertexSize), StrokeVertexLayout.ArrayStride)
	last := StrokeVertexLayout.Attributes[len(StrokeVertexLayout.Attributes)-1]
	assert.LessOrEqual(t, last.Offset+4, uint64(StrokeVertexSize))
}

func TestBuilderOptionsFillBackendOptions(t *testing.T) {
	r := &renderer{backendOptions: defaultBackendOptions()}
	assert.Equal(t, [4]byte{255, 0, 255, 255}, r.backendOptions.dummyColor)

	WithForceSoftwareRenderer(true)(r)
	WithDummyTextureColor([4]byte{0, 0, 0, 0})(r)
	WithPresentMode(PresentModeUncapped)(r)

	assert.True(t, r.backendOptions.forceFallbackAdapter)
	assert.Equal(t, [4]byte{}, r.backendOptions.dummyColor)
	require.NotNil(t, r.pendingPresentMode)
	assert.Equal(t, PresentModeUncapped, *r.pendingPresentMode)
}
