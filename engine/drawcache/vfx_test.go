package drawcache

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fxObject(effects ...scene.Effect) scene.StrokeObject {
	return scene.NewStrokeObject(
		scene.WithLayers(scene.NewLayer("L", stroke(0, 0, 6))),
		scene.WithEffects(effects...),
	)
}

func TestEffectsPingPongBetweenTargets(t *testing.T) {
	e := newTestEngine(newFakeBackend())
	defer e.Close()

	ob := fxObject(scene.NewEffect(scene.EffectBlur), scene.NewEffect(scene.EffectColorize))
	tob := populate(t, e, newTestScene(ob), ob)

	var names []string
	var targets []pass.TargetTag
	var sources []pass.TargetTag
	for _, vfx := range tob.Vfx {
		names = append(names, vfx.Pass.Name)
		targets = append(targets, vfx.Target)
		src, ok := vfx.Pass.Groups()[0].Texture("colorBuf")
		require.True(t, ok)
		sources = append(sources, src.Ref.Target)
	}
	assert.Equal(t, []string{"Fx Blur H", "Fx Blur V", "Fx Colorize", "GPencil Object Compose"}, names)
	assert.Equal(t, []pass.TargetTag{pass.TargetLayer, pass.TargetObject, pass.TargetLayer, pass.TargetMain}, targets)
	assert.Equal(t, []pass.TargetTag{pass.TargetObject, pass.TargetLayer, pass.TargetObject, pass.TargetLayer}, sources)

	pd := e.Frame()
	assert.True(t, pd.useObjectFB)
	assert.True(t, pd.useLayerFB)
	assert.Equal(t, 2, pd.Stats().Effects)

	compose := tob.Vfx[3].Pass
	groups := compose.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, pass.BlendMul, compose.EffectiveState(groups[0]).Blend())
	assert.Equal(t, pass.BlendAddFull, compose.EffectiveState(groups[1]).Blend())
	assert.Equal(t, float32(1), uniform(t, groups[0], "isFirstPass")[0])
	assert.Equal(t, float32(0), uniform(t, groups[1], "isFirstPass")[0])
}

func TestEffectTargetsResolveAtFinish(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	ob := fxObject(scene.NewEffect(scene.EffectBlur))
	require.NoError(t, runFrame(e, newTestScene(ob)))

	require.Len(t, b.requests, 1)
	assert.True(t, b.requests[0].Layer)
	assert.True(t, b.requests[0].Object)

	tob := e.Frame().Objects()[0]
	for _, vfx := range tob.Vfx {
		require.NotNil(t, vfx.Resolved)
		assert.Equal(t, vfx.Target, vfx.Resolved.Tag)
	}
	assert.Zero(t, e.Stats().VfxSkipped)

	var seq []string
	for _, p := range b.passes {
		seq = append(seq, p.name+"@"+p.dst.String())
	}
	assert.Equal(t, []string{
		"GPencil Clear@main",
		"GPencil Clear@object",
		"GPencil Layer@object",
		"Fx Blur H@layer",
		"Fx Blur V@object",
		"GPencil Object Compose@main",
		"GPencil Merge Depth@scene",
		"GPencil Composite@scene",
	}, seq)
	assert.Equal(t, renderer.ClearOp{Color: true, DepthStencil: true}, b.passes[1].clear)

	merge, ok := tob.MergePass.Groups()[0].Texture("depthBuf")
	require.True(t, ok)
	assert.Equal(t, pass.TargetObject, merge.Ref.Target)
}

func TestUnresolvedEffectPassesAreSkipped(t *testing.T) {
	b := newFakeBackend()
	b.withhold[pass.TargetLayer] = true
	e := newTestEngine(b)
	defer e.Close()

	ob := fxObject(scene.NewEffect(scene.EffectBlur), scene.NewEffect(scene.EffectColorize))
	require.NoError(t, runFrame(e, newTestScene(ob)))

	tob := e.Frame().Objects()[0]
	assert.Nil(t, tob.Vfx[0].Resolved)
	assert.NotNil(t, tob.Vfx[1].Resolved)
	assert.Nil(t, tob.Vfx[2].Resolved)
	assert.Equal(t, 2, e.Stats().VfxSkipped)

	for _, p := range b.passes {
		assert.NotEqual(t, pass.TargetLayer, p.dst, p.name)
	}
	assert.Contains(t, b.names(), "Fx Blur V")
	assert.Contains(t, b.names(), "GPencil Object Compose")
}

func TestSimplifyFxSkipsEffects(t *testing.T) {
	settings := DefaultFrameSettings()
	settings.SimplifyFx = true
	e := newTestEngine(newFakeBackend(), WithSettings(settings))
	defer e.Close()

	ob := fxObject(scene.NewEffect(scene.EffectBlur))
	tob := populate(t, e, newTestScene(ob), ob)

	assert.Empty(t, tob.Vfx)
	assert.False(t, e.Frame().useObjectFB)
	assert.Zero(t, e.Frame().Stats().Effects)
}

func TestEffectVisibilityFollowsMode(t *testing.T) {
	fx := scene.NewEffect(scene.EffectColorize)
	fx.ShowRender = false
	ob := fxObject(fx)

	e := newTestEngine(newFakeBackend())
	defer e.Close()
	tob := populate(t, e, newTestScene(ob), ob)
	assert.Len(t, tob.Vfx, 2)

	settings := DefaultFrameSettings()
	settings.IsRender = true
	e.SetSettings(settings)
	tob = populate(t, e, newTestScene(ob), ob)
	assert.Empty(t, tob.Vfx)
}

func TestDegenerateEffectsAddNoPasses(t *testing.T) {
	pixelate := scene.NewEffect(scene.EffectPixelate)
	pixelate.Size = [2]float32{1, 1}
	swirl := scene.NewEffect(scene.EffectSwirl)
	swirl.Radius = 0
	blur := scene.NewEffect(scene.EffectBlur)
	blur.Samples = 0

	e := newTestEngine(newFakeBackend())
	defer e.Close()
	ob := fxObject(pixelate, swirl, blur)
	tob := populate(t, e, newTestScene(ob), ob)

	assert.Empty(t, tob.Vfx, "no compose pass without effect passes")
	assert.Zero(t, e.Frame().Stats().Effects)
	assert.False(t, e.Frame().useObjectFB)
}

func TestEffectPassCounts(t *testing.T) {
	cases := []struct {
		kind  scene.EffectType
		names []string
	}{
		{scene.EffectFlip, []string{"Fx Flip"}},
		{scene.EffectPixelate, []string{"Fx Pixelate X", "Fx Pixelate Y"}},
		{scene.EffectRim, []string{"Fx Rim H", "Fx Rim V"}},
		{scene.EffectShadow, []string{"Fx Shadow H", "Fx Shadow V"}},
		{scene.EffectGlow, []string{"Fx Glow H", "Fx Glow V"}},
		{scene.EffectSwirl, []string{"Fx Swirl"}},
		{scene.EffectWave, []string{"Fx Wave"}},
	}
	for _, tc := range cases {
		e := newTestEngine(newFakeBackend())
		ob := fxObject(scene.NewEffect(tc.kind))
		tob := populate(t, e, newTestScene(ob), ob)

		var names []string
		for _, vfx := range tob.Vfx[:len(tob.Vfx)-1] {
			names = append(names, vfx.Pass.Name)
		}
		assert.Equal(t, tc.names, names)
		assert.Equal(t, "GPencil Object Compose", tob.Vfx[len(tob.Vfx)-1].Pass.Name)
		e.Close()
	}
}

func TestGlowSecondPassIsAdditive(t *testing.T) {
	e := newTestEngine(newFakeBackend())
	defer e.Close()

	fx := scene.NewEffect(scene.EffectGlow)
	fx.GlowMode = scene.GlowColor
	ob := fxObject(fx)
	tob := populate(t, e, newTestScene(ob), ob)

	require.GreaterOrEqual(t, len(tob.Vfx), 2)
	assert.Equal(t, pass.BlendAddFull, tob.Vfx[1].Pass.State.Blend())
	assert.Equal(t, float32(-1), uniform(t, tob.Vfx[0].Pass.Groups()[0], "threshold")[0])
}
