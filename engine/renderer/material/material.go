package material

import "github.com/cogentcore/webgpu/wgpu"

// StrokeMode selects how stroke points are rasterized.
type StrokeMode int

const (
	// StrokeModeLine draws strokes as continuous ribbons.
	StrokeModeLine StrokeMode = iota
	// StrokeModeDots draws each point as a round dot.
	StrokeModeDots
	// StrokeModeSquares draws each point as a square.
	StrokeModeSquares
)

// AlignmentMode selects how dots and squares are oriented.
type AlignmentMode int

const (
	AlignmentFollowPath AlignmentMode = iota
	AlignmentFollowObject
	AlignmentFixed
)

// StrokeStyle selects the stroke color source.
type StrokeStyle int

const (
	StrokeStyleSolid StrokeStyle = iota
	StrokeStyleTexture
)

// FillStyle selects the fill color source.
type FillStyle int

const (
	FillStyleSolid FillStyle = iota
	FillStyleGradient
	FillStyleTexture
)

// GradientType selects the fill gradient shape.
type GradientType int

const (
	GradientLinear GradientType = iota
	GradientRadial
)

// Texture is an image already resident on the GPU, shared by any number of materials.
type Texture struct {
	Label         string
	View          *wgpu.TextureView
	Premultiplied bool
}

// material is the implementation of the Material interface.
type material struct {
	name   string
	hidden bool

	showStroke       bool
	strokeMode       StrokeMode
	alignment        AlignmentMode
	strokeStyle      StrokeStyle
	strokeColor      [4]float32
	strokeTexture    *Texture
	mixStrokeFactor  float32
	texturePixelSize float32
	pattern          bool
	disableStencil   bool

	showFill      bool
	fillStyle     FillStyle
	fillColor     [4]float32
	mixColor      [4]float32
	gradientType  GradientType
	fillTexture   *Texture
	textureOffset [2]float32
	textureScale  [2]float32
	textureAngle  float32
	textureClamp  bool
	mixFactor     float32
	flipFill      bool
}

// Material defines the read-only description of a stroke material as authored in the scene.
//
// A Material is never uploaded directly. Each frame the draw cache copies every material an
// object references into a material Pool, converting it into a GPUMaterial record whose flag
// bits and UV transform are derived from these settings.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Hidden reports whether strokes using this material are skipped entirely.
	//
	// Returns:
	//   - bool: true if hidden
	Hidden() bool

	// ShowStroke reports whether the stroke part of this material is drawn.
	//
	// Returns:
	//   - bool: true if strokes are drawn
	ShowStroke() bool

	// StrokeMode retrieves how stroke points are rasterized.
	//
	// Returns:
	//   - StrokeMode: line, dots or squares
	StrokeMode() StrokeMode

	// Alignment retrieves the dot and square orientation mode.
	//
	// Returns:
	//   - AlignmentMode: the alignment mode
	Alignment() AlignmentMode

	// StrokeStyle retrieves the stroke color source.
	//
	// Returns:
	//   - StrokeStyle: solid or texture
	StrokeStyle() StrokeStyle

	// StrokeColor retrieves the RGBA stroke color.
	//
	// Returns:
	//   - [4]float32: the stroke color
	StrokeColor() [4]float32

	// StrokeTexture retrieves the stroke texture, or nil if none is set.
	//
	// Returns:
	//   - *Texture: the stroke texture or nil
	StrokeTexture() *Texture

	// MixStrokeFactor retrieves how much of the stroke color is mixed over the stroke texture.
	//
	// Returns:
	//   - float32: the mix factor in [0, 1]
	MixStrokeFactor() float32

	// TexturePixelSize retrieves the stroke texture repeat length in pixels.
	//
	// Returns:
	//   - float32: the pixel size
	TexturePixelSize() float32

	// Pattern reports whether the stroke texture is used as a stencil pattern.
	//
	// Returns:
	//   - bool: true if the texture is a stencil
	Pattern() bool

	// DisableStencil reports whether self-overlapping strokes are allowed to overlap.
	//
	// Returns:
	//   - bool: true if the stroke stencil is disabled
	DisableStencil() bool

	// ShowFill reports whether the fill part of this material is drawn.
	//
	// Returns:
	//   - bool: true if fills are drawn
	ShowFill() bool

	// FillStyle retrieves the fill color source.
	//
	// Returns:
	//   - FillStyle: solid, gradient or texture
	FillStyle() FillStyle

	// FillColor retrieves the RGBA fill color.
	//
	// Returns:
	//   - [4]float32: the fill color
	FillColor() [4]float32

	// MixColor retrieves the second gradient color.
	//
	// Returns:
	//   - [4]float32: the mix color
	MixColor() [4]float32

	// GradientType retrieves the gradient shape.
	//
	// Returns:
	//   - GradientType: linear or radial
	GradientType() GradientType

	// FillTexture retrieves the fill texture, or nil if none is set.
	//
	// Returns:
	//   - *Texture: the fill texture or nil
	FillTexture() *Texture

	// TextureOffset retrieves the fill UV offset.
	//
	// Returns:
	//   - [2]float32: the offset
	TextureOffset() [2]float32

	// TextureScale retrieves the fill UV scale.
	//
	// Returns:
	//   - [2]float32: the scale
	TextureScale() [2]float32

	// TextureAngle retrieves the fill UV rotation in radians.
	//
	// Returns:
	//   - float32: the rotation
	TextureAngle() float32

	// TextureClamp reports whether the fill texture is clipped instead of repeated.
	//
	// Returns:
	//   - bool: true if clamped
	TextureClamp() bool

	// MixFactor retrieves how much of the fill color is mixed over the fill texture or gradient.
	//
	// Returns:
	//   - float32: the mix factor in [0, 1]
	MixFactor() float32

	// FlipFill reports whether the gradient colors are swapped.
	//
	// Returns:
	//   - bool: true if flipped
	FlipFill() bool
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// The default is a visible solid black stroke with a solid gray fill.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		showStroke:       true,
		strokeColor:      [4]float32{0, 0, 0, 1},
		texturePixelSize: 100,
		fillColor:        [4]float32{0.5, 0.5, 0.5, 1},
		mixColor:         [4]float32{1, 1, 1, 1},
		textureScale:     [2]float32{1, 1},
		mixFactor:        0.5,
		mixStrokeFactor:  0.5,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// defaultMaterial backs objects that reference no material at all.
var defaultMaterial = NewMaterial(WithName("Default"))

func (m *material) Name() string               { return m.name }
func (m *material) Hidden() bool               { return m.hidden }
func (m *material) ShowStroke() bool           { return m.showStroke }
func (m *material) StrokeMode() StrokeMode     { return m.strokeMode }
func (m *material) Alignment() AlignmentMode   { return m.alignment }
func (m *material) StrokeStyle() StrokeStyle   { return m.strokeStyle }
func (m *material) StrokeColor() [4]float32    { return m.strokeColor }
func (m *material) StrokeTexture() *Texture    { return m.strokeTexture }
func (m *material) MixStrokeFactor() float32   { return m.mixStrokeFactor }
func (m *material) TexturePixelSize() float32  { return m.texturePixelSize }
func (m *material) Pattern() bool              { return m.pattern }
func (m *material) DisableStencil() bool       { return m.disableStencil }
func (m *material) ShowFill() bool             { return m.showFill }
func (m *material) FillStyle() FillStyle       { return m.fillStyle }
func (m *material) FillColor() [4]float32      { return m.fillColor }
func (m *material) MixColor() [4]float32       { return m.mixColor }
func (m *material) GradientType() GradientType { return m.gradientType }
func (m *material) FillTexture() *Texture      { return m.fillTexture }
func (m *material) TextureOffset() [2]float32  { return m.textureOffset }
func (m *material) TextureScale() [2]float32   { return m.textureScale }
func (m *material) TextureAngle() float32      { return m.textureAngle }
func (m *material) TextureClamp() bool         { return m.textureClamp }
func (m *material) MixFactor() float32         { return m.mixFactor }
func (m *material) FlipFill() bool             { return m.flipFill }
