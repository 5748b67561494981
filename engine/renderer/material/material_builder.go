package material

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithHidden is an option builder that hides every stroke using the material.
//
// Parameters:
//   - hidden: true to hide
//
// Returns:
//   - MaterialBuilderOption: a function that applies the hidden option to a material
func WithHidden(hidden bool) MaterialBuilderOption {
	return func(m *material) {
		m.hidden = hidden
	}
}

// WithSolidStroke is an option builder that enables a solid colored stroke.
//
// Parameters:
//   - color: the RGBA stroke color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the stroke option to a material
func WithSolidStroke(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.showStroke = true
		m.strokeStyle = StrokeStyleSolid
		m.strokeColor = color
	}
}

// WithTexturedStroke is an option builder that enables a textured stroke. The stroke color
// is mixed over the texture by mix.
//
// Parameters:
//   - tex: the stroke texture
//   - color: the RGBA stroke color
//   - mix: how much of color is mixed over the texture, in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the stroke option to a material
func WithTexturedStroke(tex *Texture, color [4]float32, mix float32) MaterialBuilderOption {
	return func(m *material) {
		m.showStroke = true
		m.strokeStyle = StrokeStyleTexture
		m.strokeTexture = tex
		m.strokeColor = color
		m.mixStrokeFactor = mix
	}
}

// WithoutStroke is an option builder that disables the stroke part of the material.
//
// Returns:
//   - MaterialBuilderOption: a function that hides strokes of a material
func WithoutStroke() MaterialBuilderOption {
	return func(m *material) {
		m.showStroke = false
	}
}

// WithStrokeMode is an option builder that sets the stroke rasterization mode and, for dots
// and squares, their alignment.
//
// Parameters:
//   - mode: line, dots or squares
//   - alignment: the dot and square orientation, ignored for lines
//
// Returns:
//   - MaterialBuilderOption: a function that applies the stroke mode option to a material
func WithStrokeMode(mode StrokeMode, alignment AlignmentMode) MaterialBuilderOption {
	return func(m *material) {
		m.strokeMode = mode
		m.alignment = alignment
	}
}

// WithTexturePixelSize is an option builder that sets the stroke texture repeat length.
//
// Parameters:
//   - size: the repeat length in pixels
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pixel size option to a material
func WithTexturePixelSize(size float32) MaterialBuilderOption {
	return func(m *material) {
		m.texturePixelSize = size
	}
}

// WithPattern is an option builder that uses the stroke texture as a stencil pattern.
//
// Parameters:
//   - pattern: true to use the texture as a stencil
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pattern option to a material
func WithPattern(pattern bool) MaterialBuilderOption {
	return func(m *material) {
		m.pattern = pattern
	}
}

// WithDisableStencil is an option builder that lets self-intersecting strokes overlap.
//
// Parameters:
//   - disable: true to disable the stroke stencil
//
// Returns:
//   - MaterialBuilderOption: a function that applies the stencil option to a material
func WithDisableStencil(disable bool) MaterialBuilderOption {
	return func(m *material) {
		m.disableStencil = disable
	}
}

// WithSolidFill is an option builder that enables a solid colored fill.
//
// Parameters:
//   - color: the RGBA fill color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the fill option to a material
func WithSolidFill(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.showFill = true
		m.fillStyle = FillStyleSolid
		m.fillColor = color
	}
}

// WithGradientFill is an option builder that enables a two-color gradient fill.
//
// Parameters:
//   - kind: linear or radial
//   - from: the first gradient color
//   - to: the second gradient color
//   - mix: the gradient mix factor, in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the fill option to a material
func WithGradientFill(kind GradientType, from, to [4]float32, mix float32) MaterialBuilderOption {
	return func(m *material) {
		m.showFill = true
		m.fillStyle = FillStyleGradient
		m.gradientType = kind
		m.fillColor = from
		m.mixColor = to
		m.mixFactor = mix
	}
}

// WithTexturedFill is an option builder that enables a textured fill.
//
// Parameters:
//   - tex: the fill texture
//   - color: the RGBA fill color mixed over the texture
//   - mix: how much of color is mixed over the texture, in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the fill option to a material
func WithTexturedFill(tex *Texture, color [4]float32, mix float32) MaterialBuilderOption {
	return func(m *material) {
		m.showFill = true
		m.fillStyle = FillStyleTexture
		m.fillTexture = tex
		m.fillColor = color
		m.mixFactor = mix
	}
}

// WithFillTransform is an option builder that sets the fill UV offset, scale and rotation used
// by gradient and textured fills.
//
// Parameters:
//   - offset: the UV offset
//   - scale: the UV scale
//   - angle: the UV rotation in radians
//
// Returns:
//   - MaterialBuilderOption: a function that applies the transform option to a material
func WithFillTransform(offset, scale [2]float32, angle float32) MaterialBuilderOption {
	return func(m *material) {
		m.textureOffset = offset
		m.textureScale = scale
		m.textureAngle = angle
	}
}

// WithTextureClamp is an option builder that clips the fill texture instead of repeating it.
//
// Parameters:
//   - clamp: true to clip
//
// Returns:
//   - MaterialBuilderOption: a function that applies the clamp option to a material
func WithTextureClamp(clamp bool) MaterialBuilderOption {
	return func(m *material) {
		m.textureClamp = clamp
	}
}

// WithFlipFill is an option builder that swaps the two gradient colors.
//
// Parameters:
//   - flip: true to swap
//
// Returns:
//   - MaterialBuilderOption: a function that applies the flip option to a material
func WithFlipFill(flip bool) MaterialBuilderOption {
	return func(m *material) {
		m.flipFill = flip
	}
}
