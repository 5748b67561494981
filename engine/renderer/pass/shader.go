package pass

// ShaderKind names an entry of the immutable shader table.
type ShaderKind int

const (
	ShaderGeometry ShaderKind = iota
	ShaderLayerBlend
	ShaderLayerMask
	ShaderComposite
	ShaderDepthMerge
	ShaderFxBlur
	ShaderFxColorize
	ShaderFxTransform
	ShaderFxPixelate
	ShaderFxRim
	ShaderFxShadow
	ShaderFxGlow
	ShaderFxComposite

	// ShaderKindCount is the number of shader kinds.
	ShaderKindCount
)

var shaderNames = [ShaderKindCount]string{
	"geometry", "layer_blend", "layer_mask", "composite", "depth_merge",
	"fx_blur", "fx_colorize", "fx_transform", "fx_pixelate", "fx_rim",
	"fx_shadow", "fx_glow", "fx_composite",
}

func (k ShaderKind) String() string {
	if k < 0 || k >= ShaderKindCount {
		return "unknown"
	}
	return shaderNames[k]
}
