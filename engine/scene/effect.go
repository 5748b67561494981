package scene

// EffectType identifies a visual effect applied to a whole stroke object after its layers
// are drawn.
type EffectType int

const (
	EffectBlur EffectType = iota
	EffectColorize
	EffectFlip
	EffectPixelate
	EffectRim
	EffectShadow
	EffectGlow
	EffectSwirl
	EffectWave
)

// ColorizeMode selects the color transform of a colorize effect.
type ColorizeMode int

const (
	ColorizeGrayscale ColorizeMode = iota
	ColorizeSepia
	ColorizeDuotone
	ColorizeCustom
	ColorizeTransparent
)

// GlowMode selects which pixels a glow effect picks up.
type GlowMode int

const (
	GlowLuminance GlowMode = iota
	GlowColor
)

// Effect is one entry of an object's effect stack. Only the fields relevant to Type are read.
type Effect struct {
	Name string
	Type EffectType

	ShowViewport bool
	ShowRender   bool

	// Blur, pixelate, rim, shadow and glow sizes in pixels.
	Size    [2]float32
	Samples int

	// Rotation of the blur and shadow directions, in radians.
	Rotation float32

	// Offset in pixels for rim and shadow.
	Offset [2]float32

	// Colorize.
	ColorizeMode ColorizeMode
	LowColor     [4]float32
	HighColor    [4]float32
	Factor       float32

	// Flip.
	FlipHorizontal bool
	FlipVertical   bool

	// Rim, shadow and glow colors.
	Color     [4]float32
	MaskColor [3]float32

	// Glow.
	GlowMode  GlowMode
	Threshold float32

	// Swirl.
	Angle  float32
	Radius float32

	// Wave.
	Amplitude   float32
	Period      float32
	Phase       float32
	Orientation int
}

// Enabled reports whether the effect is shown in the given mode.
//
// Parameters:
//   - isRender: true for final renders, false for the interactive viewport
//
// Returns:
//   - bool: true if the effect applies
func (e Effect) Enabled(isRender bool) bool {
	if isRender {
		return e.ShowRender
	}
	return e.ShowViewport
}

// NewEffect returns an effect of the given type shown in both modes, with the defaults of a
// freshly added effect.
//
// Parameters:
//   - kind: the effect type
//
// Returns:
//   - Effect: the new effect
func NewEffect(kind EffectType) Effect {
	return Effect{
		Type:         kind,
		ShowViewport: true,
		ShowRender:   true,
		Size:         [2]float32{5, 5},
		Samples:      4,
		Factor:       0.5,
		LowColor:     [4]float32{0, 0, 0, 1},
		HighColor:    [4]float32{1, 1, 1, 1},
		Color:        [4]float32{0, 0, 0, 0.8},
		Threshold:    0.1,
		Amplitude:    10,
		Period:       20,
		Angle:        1.5708,
		Radius:       100,
	}
}
