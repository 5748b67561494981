package drawcache

import (
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/chewxy/math32"
)

// TVfx is one full-screen effect pass of an object. Target names the frame target the pass
// draws into; Resolved is looked up by CacheFinish and stays nil when that target was never
// allocated, in which case the pass is skipped.
type TVfx struct {
	Pass     *pass.Pass
	Target   pass.TargetTag
	Resolved *renderer.Framebuffer
}

// vfxIter ping-pongs effect passes between the object and layer targets: every pass reads
// the source target and draws into the target, then the two swap.
type vfxIter struct {
	pd     *PrivateData
	tob    *TObject
	target pass.TargetTag
	source pass.TargetTag
}

func (it *vfxIter) passCreate(name string, state pass.State, shader pass.ShaderKind) *pass.Group {
	p := it.pd.newPass(name, state)
	grp := p.AddGroup(shader)
	grp.BindTarget("colorBuf", it.source, pass.AttachmentColor)
	grp.BindTarget("revealBuf", it.source, pass.AttachmentReveal)

	_, vfx := it.pd.data.vfx.Acquire()
	*vfx = TVfx{Pass: p, Target: it.target}
	it.tob.Vfx = append(it.tob.Vfx, vfx)

	it.target, it.source = it.source, it.target
	return grp
}

// VfxCachePopulate appends the effect passes of ob's enabled effects to tob, in stack order,
// followed by the pass composing the result into the main target. Objects without enabled
// effects get no passes; SimplifyFx disables effects for the whole frame.
//
// Parameters:
//   - pd: the frame
//   - ob: the stroke object
//   - tob: the object's draw state
func VfxCachePopulate(pd *PrivateData, ob scene.StrokeObject, tob *TObject) {
	if pd.Settings.SimplifyFx {
		return
	}
	it := vfxIter{pd: pd, tob: tob, target: pass.TargetLayer, source: pass.TargetObject}

	for _, fx := range ob.Effects() {
		if !fx.Enabled(pd.Settings.IsRender) {
			continue
		}
		before := len(tob.Vfx)
		switch fx.Type {
		case scene.EffectBlur:
			vfxBlur(&it, fx)
		case scene.EffectColorize:
			vfxColorize(&it, fx)
		case scene.EffectFlip:
			vfxFlip(&it, fx)
		case scene.EffectPixelate:
			vfxPixelate(&it, fx)
		case scene.EffectRim:
			vfxRim(&it, fx)
		case scene.EffectShadow:
			vfxShadow(&it, fx)
		case scene.EffectGlow:
			vfxGlow(&it, fx)
		case scene.EffectSwirl:
			vfxSwirl(&it, fx, tob)
		case scene.EffectWave:
			vfxWave(&it, fx)
		}
		if len(tob.Vfx) > before {
			pd.stats.Effects++
		}
	}

	if len(tob.Vfx) == 0 {
		return
	}

	// compose into the main target
	it.target = pass.TargetMain
	state := pass.WriteColor.WithBlend(pass.BlendMul)
	grp := it.passCreate("GPencil Object Compose", state, pass.ShaderFxComposite)
	grp.SetBool("isFirstPass", true)
	grp.AddTriangles(1)

	// multiple render targets cannot use custom blending, so composing takes two passes
	sub := tob.Vfx[len(tob.Vfx)-1].Pass.AddSubGroup(grp)
	sub.State = state.WithBlend(pass.BlendAddFull)
	sub.SetBool("isFirstPass", false)
	sub.AddTriangles(1)

	pd.useObjectFB = true
	pd.useLayerFB = true
}

func vfxBlur(it *vfxIter, fx scene.Effect) {
	if fx.Samples == 0 || (fx.Size[0] == 0 && fx.Size[1] == 0) {
		return
	}
	c, s := math32.Cos(fx.Rotation), math32.Sin(fx.Rotation)
	if fx.Size[0] > 0 {
		grp := it.passCreate("Fx Blur H", pass.WriteColor, pass.ShaderFxBlur)
		grp.SetVec2("offset", fx.Size[0]*c, fx.Size[0]*s)
		grp.SetInt("sampCount", max(1, fx.Samples*2))
		grp.AddTriangles(1)
	}
	if fx.Size[1] > 0 {
		grp := it.passCreate("Fx Blur V", pass.WriteColor, pass.ShaderFxBlur)
		grp.SetVec2("offset", -fx.Size[1]*s, fx.Size[1]*c)
		grp.SetInt("sampCount", max(1, fx.Samples*2))
		grp.AddTriangles(1)
	}
}

func vfxColorize(it *vfxIter, fx scene.Effect) {
	grp := it.passCreate("Fx Colorize", pass.WriteColor, pass.ShaderFxColorize)
	grp.SetVec4("lowColor", fx.LowColor)
	grp.SetVec4("highColor", fx.HighColor)
	grp.SetFloat("factor", fx.Factor)
	grp.SetInt("mode", int(fx.ColorizeMode))
	grp.AddTriangles(1)
}

func vfxFlip(it *vfxIter, fx scene.Effect) {
	axis := [2]float32{1, 1}
	if fx.FlipHorizontal {
		axis[0] = -1
	}
	if fx.FlipVertical {
		axis[1] = -1
	}
	grp := it.passCreate("Fx Flip", pass.WriteColor, pass.ShaderFxTransform)
	grp.SetVec2("axisFlip", axis[0], axis[1])
	grp.SetVec2("waveOffset", 0, 0)
	grp.SetFloat("swirlRadius", 0)
	grp.AddTriangles(1)
}

func vfxPixelate(it *vfxIter, fx scene.Effect) {
	if fx.Size[0] > 1 {
		grp := it.passCreate("Fx Pixelate X", pass.WriteColor, pass.ShaderFxPixelate)
		grp.SetVec2("targetPixelSize", fx.Size[0], 0)
		grp.SetVec2("targetPixelOffset", 0, 0)
		grp.SetInt("sampCount", max(1, fx.Samples))
		grp.AddTriangles(1)
	}
	if fx.Size[1] > 1 {
		grp := it.passCreate("Fx Pixelate Y", pass.WriteColor, pass.ShaderFxPixelate)
		grp.SetVec2("targetPixelSize", 0, fx.Size[1])
		grp.SetVec2("targetPixelOffset", 0, 0)
		grp.SetInt("sampCount", max(1, fx.Samples))
		grp.AddTriangles(1)
	}
}

func vfxRim(it *vfxIter, fx scene.Effect) {
	grp := it.passCreate("Fx Rim H", pass.WriteColor, pass.ShaderFxRim)
	grp.SetVec2("blurDir", fx.Size[0], 0)
	grp.SetVec2("uvOffset", fx.Offset[0], fx.Offset[1])
	grp.SetVec3("rimColor", [3]float32{fx.Color[0], fx.Color[1], fx.Color[2]})
	grp.SetVec3("maskColor", fx.MaskColor)
	grp.SetInt("sampCount", max(1, fx.Samples))
	grp.SetBool("isFirstPass", true)
	grp.AddTriangles(1)

	grp = it.passCreate("Fx Rim V", pass.WriteColor.WithBlend(pass.BlendAlphaPremul), pass.ShaderFxRim)
	grp.SetVec2("blurDir", 0, fx.Size[1])
	grp.SetVec2("uvOffset", 0, 0)
	grp.SetVec3("rimColor", [3]float32{fx.Color[0], fx.Color[1], fx.Color[2]})
	grp.SetVec3("maskColor", fx.MaskColor)
	grp.SetInt("sampCount", max(1, fx.Samples))
	grp.SetBool("isFirstPass", false)
	grp.AddTriangles(1)
}

func vfxShadow(it *vfxIter, fx scene.Effect) {
	c, s := math32.Cos(fx.Rotation), math32.Sin(fx.Rotation)

	grp := it.passCreate("Fx Shadow H", pass.WriteColor, pass.ShaderFxShadow)
	grp.SetVec4("shadowColor", fx.Color)
	grp.SetVec2("uvOffset", fx.Offset[0], fx.Offset[1])
	grp.SetVec2("blurDir", fx.Size[0]*c, fx.Size[0]*s)
	grp.SetInt("sampCount", max(1, fx.Samples))
	grp.SetBool("isFirstPass", true)
	grp.AddTriangles(1)

	grp = it.passCreate("Fx Shadow V", pass.WriteColor.WithBlend(pass.BlendAlphaPremul), pass.ShaderFxShadow)
	grp.SetVec4("shadowColor", fx.Color)
	grp.SetVec2("uvOffset", 0, 0)
	grp.SetVec2("blurDir", -fx.Size[1]*s, fx.Size[1]*c)
	grp.SetInt("sampCount", max(1, fx.Samples))
	grp.SetBool("isFirstPass", false)
	grp.AddTriangles(1)
}

func vfxGlow(it *vfxIter, fx scene.Effect) {
	threshold := fx.Threshold
	if fx.GlowMode == scene.GlowColor {
		// a negative threshold selects the color match mode in the shader
		threshold = -1
	}

	grp := it.passCreate("Fx Glow H", pass.WriteColor, pass.ShaderFxGlow)
	grp.SetVec4("glowColor", fx.Color)
	grp.SetVec3("selectColor", fx.MaskColor)
	grp.SetFloat("threshold", threshold)
	grp.SetVec2("offset", fx.Size[0], 0)
	grp.SetInt("sampCount", max(1, fx.Samples))
	grp.SetBool("firstPass", true)
	grp.AddTriangles(1)

	grp = it.passCreate("Fx Glow V", pass.WriteColor.WithBlend(pass.BlendAddFull), pass.ShaderFxGlow)
	grp.SetVec4("glowColor", fx.Color)
	grp.SetVec3("selectColor", fx.MaskColor)
	grp.SetFloat("threshold", threshold)
	grp.SetVec2("offset", 0, fx.Size[1])
	grp.SetInt("sampCount", max(1, fx.Samples))
	grp.SetBool("firstPass", false)
	grp.AddTriangles(1)
}

func vfxSwirl(it *vfxIter, fx scene.Effect, tob *TObject) {
	if fx.Radius == 0 {
		return
	}
	center := tob.PlaneMat.Col(3)
	grp := it.passCreate("Fx Swirl", pass.WriteColor, pass.ShaderFxTransform)
	grp.SetVec2("axisFlip", 1, 1)
	grp.SetVec2("waveOffset", 0, 0)
	grp.SetVec4("swirlCenter", center)
	grp.SetFloat("swirlAngle", fx.Angle)
	grp.SetFloat("swirlRadius", fx.Radius)
	grp.AddTriangles(1)
}

func vfxWave(it *vfxIter, fx scene.Effect) {
	var dir [2]float32
	if fx.Orientation == 0 {
		dir = [2]float32{1, 0}
	} else {
		dir = [2]float32{0, 1}
	}
	period := fx.Period
	if period == 0 {
		period = 1
	}
	grp := it.passCreate("Fx Wave", pass.WriteColor, pass.ShaderFxTransform)
	grp.SetVec2("axisFlip", 1, 1)
	grp.SetVec2("waveDir", dir[0]*2*math32.Pi/period, dir[1]*2*math32.Pi/period)
	grp.SetVec2("waveOffset", dir[1]*fx.Amplitude, dir[0]*fx.Amplitude)
	grp.SetFloat("wavePhase", fx.Phase)
	grp.SetFloat("swirlRadius", 0)
	grp.AddTriangles(1)
}
