package drawcache

import (
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// hardLightSecondPass is the blend mode value of the additive half of hard light blending.
const hardLightSecondPass = 999

// TLayer is the per-frame draw state of one layer.
type TLayer struct {
	Name string

	// GeomPass draws the layer's strokes. BlendPass, when set, blends the layer target into
	// the object target afterwards.
	GeomPass  *pass.Pass
	BlendPass *pass.Pass

	// IsMask layers are replayed into the masked target; IsMasked layers are clipped by it.
	// DoMaskedClear is set on the first masked layer of a run, which rebuilds the mask.
	IsMask        bool
	IsMasked      bool
	DoMaskedClear bool

	base *pass.Group
}

func (tl *TLayer) reset(name string) {
	*tl = TLayer{Name: name}
}

// LayerCacheAdd acquires a TLayer for layer and appends it to tob. It builds the layer's
// geometry pass with its base group and, when the layer does not simply draw over the layers
// below it, the blend pass.
//
// Parameters:
//   - pd: the frame
//   - ob: the stroke object owning the layer
//   - tob: the object's draw state
//   - layer: the layer
//   - index: the layer's index in ob.Layers()
//
// Returns:
//   - *TLayer: the new record
func LayerCacheAdd(pd *PrivateData, ob scene.StrokeObject, tob *TObject, layer *scene.Layer, index int) *TLayer {
	_, tl := pd.data.layers.Acquire()
	tl.reset(layer.Name)
	pd.stats.Layers++

	tl.IsMask = layer.IsMask
	tl.IsMasked = layer.UseMask && hasMaskLayer(ob)
	prevMasked := len(tob.Layers) > 0 && tob.Layers[len(tob.Layers)-1].IsMasked
	tl.DoMaskedClear = tl.IsMasked && !prevMasked
	if tl.IsMasked {
		pd.useMaskFB = true
	}

	opacity := layer.Opacity
	if !pd.Settings.IsRender && pd.Settings.FadeLayers && ob == pd.activeObject &&
		ob.ActiveLayer() >= 0 && ob.ActiveLayer() != index {
		opacity *= pd.Settings.FadeLayerOpacity
	}

	if layer.Blend != scene.BlendRegular || opacity < 1 || tl.IsMasked {
		state := pass.WriteColor | pass.StencilEqual
		switch layer.Blend {
		case scene.BlendRegular:
			state = state.WithBlend(pass.BlendAlphaPremul)
		case scene.BlendAdd:
			state = state.WithBlend(pass.BlendAddFull)
		case scene.BlendSubtract:
			state = state.WithBlend(pass.BlendSub)
		default:
			state = state.WithBlend(pass.BlendMul)
		}
		if layer.Blend == scene.BlendSubtract || layer.Blend == scene.BlendHardLight {
			// negative values must survive until the composite
			pd.useSignedFB = true
		}

		tl.BlendPass = pd.newPass("GPencil Blend Layer", state)
		grp := tl.BlendPass.AddGroup(pass.ShaderLayerBlend)
		grp.BindTarget("colorBuf", pass.TargetLayer, pass.AttachmentColor)
		grp.BindTarget("revealBuf", pass.TargetLayer, pass.AttachmentReveal)
		if tl.IsMasked {
			grp.BindTarget("maskBuf", pass.TargetMasked, pass.AttachmentReveal)
		} else {
			grp.BindTexture("maskBuf", pd.dummy)
		}
		grp.SetInt("blendMode", int(layer.Blend))
		grp.SetFloat("blendOpacity", opacity)
		grp.SetBool("isMasked", tl.IsMasked)
		grp.AddTriangles(1)

		if layer.Blend == scene.BlendHardLight {
			// multiple render targets cannot use custom blending, so hard light takes two passes
			sub := tl.BlendPass.AddSubGroup(grp)
			sub.State = state.WithBlend(pass.BlendAddFull)
			sub.SetInt("blendMode", hardLightSecondPass)
			sub.AddTriangles(1)
		}
		pd.useLayerFB = true
	}

	state := pass.WriteColor | pass.WriteStencil | pass.StencilAlways
	state = state.WithBlend(pass.BlendAlphaPremul)
	if tob.IsDrawMode3D {
		state |= pass.DepthLessEqual | pass.WriteDepth
	} else {
		// 2D strokes get a depth increasing with stroke order
		state |= pass.DepthGreater
	}
	tl.GeomPass = pd.newPass("GPencil Layer", state)

	lit := pd.Settings.UseLighting && layer.UseLights && ob.UseLights()
	lights := pd.ShadelessLights
	if lit {
		lights = pd.GlobalLights
	}

	grp := tl.GeomPass.AddGroup(pass.ShaderGeometry)
	grp.Geometry = ob.Geometry()
	grp.View = pd.data.view
	grp.Light = lights.UBO()
	grp.SetVec3("gpNormal", tob.PlaneNormal)
	grp.SetBool("gpStrokeOrder3d", tob.IsDrawMode3D)
	grp.SetFloat("gpThicknessScale", tob.ObjectScale)
	grp.SetFloat("gpThicknessOffset", float32(layer.ThicknessOffset))
	grp.SetVec4("gpLayerTint", layer.Tint)
	grp.SetFloat("gpLayerOpacity", opacity)
	grp.SetInt("gpMaterialOffset", tob.MaterialOfs)
	grp.BindTexture("gpFillTexture", pd.dummy)
	grp.BindTexture("gpStrokeTexture", pd.dummy)
	tl.base = grp

	tob.Layers = append(tob.Layers, tl)
	return tl
}

func hasMaskLayer(ob scene.StrokeObject) bool {
	for _, l := range ob.Layers() {
		if l != nil && l.IsMask && !l.Hidden {
			return true
		}
	}
	return false
}

// strokeIter tracks the group strokes are added to and the resources it binds.
type strokeIter struct {
	pd   *PrivateData
	tob  *TObject
	ob   scene.StrokeObject
	geom *pass.Pass
	grp  *pass.Group

	ubo       bind_group_provider.BindGroupProvider
	texFill   *wgpu.TextureView
	texStroke *wgpu.TextureView
}

// LayerCachePopulate adds a draw call for every visible stroke of layer. Consecutive strokes
// sharing a material block and textures share a group; a new sub group starts whenever one
// of them changes. Onion skin strokes come first in the viewport.
//
// Parameters:
//   - pd: the frame
//   - ob: the stroke object
//   - tob: the object's draw state
//   - tl: the layer's draw state, from LayerCacheAdd
//   - layer: the layer
func LayerCachePopulate(pd *PrivateData, ob scene.StrokeObject, tob *TObject, tl *TLayer, layer *scene.Layer) {
	it := strokeIter{pd: pd, tob: tob, ob: ob, geom: tl.GeomPass, grp: tl.base}
	if pd.Settings.DoOnion && !pd.Settings.IsRender {
		for _, s := range layer.Onion {
			it.add(s)
		}
	}
	for _, s := range layer.Strokes {
		it.add(s)
	}
}

func (it *strokeIter) add(s scene.Stroke) {
	materials := it.ob.Materials()
	index := min(max(s.MaterialIndex, 0), max(len(materials)-1, 0))

	showStroke, showFill := true, false
	if index < len(materials) && materials[index] != nil {
		m := materials[index]
		if m.Hidden() {
			return
		}
		showStroke = m.ShowStroke()
		showFill = m.ShowFill()
	}
	showFill = showFill && s.HasFill() && !it.pd.Settings.SimplifyFill
	showStroke = showStroke && s.StrokeCount > 0
	if !showStroke && !showFill {
		return
	}

	texStroke, texFill, ubo := material.ResourcesGet(it.tob.MaterialHead, it.tob.MaterialOfs+index, it.pd.dummy)
	changed := it.ubo != ubo ||
		(texFill != nil && texFill != it.texFill) ||
		(texStroke != nil && texStroke != it.texStroke)
	if changed {
		it.grp = it.geom.AddSubGroup(it.grp)
		it.grp.Material = ubo
		it.grp.BindTexture("gpFillTexture", texFill)
		it.grp.BindTexture("gpStrokeTexture", texStroke)
		it.ubo, it.texFill, it.texStroke = ubo, texFill, texStroke
	}

	if showFill {
		it.grp.AddCall(s.FillFirst, s.FillCount)
	}
	if showStroke {
		it.grp.AddCall(s.StrokeFirst, s.StrokeCount)
	}
	it.pd.stats.Strokes++
}
