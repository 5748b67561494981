package scene

// BlendMode selects how a layer is composited over the layers below it.
type BlendMode int

const (
	BlendRegular BlendMode = iota
	BlendHardLight
	BlendAdd
	BlendSubtract
	BlendMultiply
	BlendDivide
)

// String returns the display name of the blend mode.
func (b BlendMode) String() string {
	switch b {
	case BlendHardLight:
		return "hard_light"
	case BlendAdd:
		return "add"
	case BlendSubtract:
		return "subtract"
	case BlendMultiply:
		return "multiply"
	case BlendDivide:
		return "divide"
	default:
		return "regular"
	}
}

// Stroke is one drawable stroke of a layer. Its vertices live in the owning object's geometry
// buffer; the ranges below address that buffer in vertices.
type Stroke struct {
	// MaterialIndex indexes the owning object's material list.
	MaterialIndex int

	// StrokeFirst and StrokeCount address the stroke outline vertices.
	StrokeFirst int
	StrokeCount int

	// FillFirst and FillCount address the fill triangle vertices. A zero FillCount means the
	// stroke has no fill triangulation.
	FillFirst int
	FillCount int
}

// HasFill reports whether the stroke carries fill triangles.
func (s Stroke) HasFill() bool {
	return s.FillCount > 0
}

// Layer is an ordered group of strokes drawn as one unit, with its own blending and masking.
type Layer struct {
	Name    string
	Hidden  bool
	Opacity float32
	Blend   BlendMode

	// Tint is mixed into every stroke color; alpha is the tint factor.
	Tint [4]float32

	// ThicknessOffset is added to every stroke's thickness, in pixels.
	ThicknessOffset int

	// UseMask makes this layer masked by the nearest mask layer above it.
	UseMask bool

	// IsMask makes this layer act as the mask for the masked layers below it.
	IsMask bool

	// UseLights lets lighting affect this layer when the owning object allows it.
	UseLights bool

	// Strokes of the current frame, in draw order.
	Strokes []Stroke

	// Onion holds ghost strokes of neighbouring frames, drawn only when onion skinning is on.
	Onion []Stroke
}

// NewLayer returns a visible, fully opaque, lit layer with regular blending.
//
// Parameters:
//   - name: the layer name
//   - strokes: the layer's strokes in draw order
//
// Returns:
//   - *Layer: the new layer
func NewLayer(name string, strokes ...Stroke) *Layer {
	return &Layer{
		Name:      name,
		Opacity:   1,
		UseLights: true,
		Strokes:   strokes,
	}
}
