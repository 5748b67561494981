package geometry

// BuilderOption is a function that configures a Builder during construction.
type BuilderOption func(*Builder)

// WithThickness is an option builder that sets the stroke width at full pressure, in object
// units.
//
// Parameters:
//   - thickness: the stroke width
//
// Returns:
//   - BuilderOption: a function that applies the thickness option to a Builder
func WithThickness(thickness float32) BuilderOption {
	return func(b *Builder) {
		b.thickness = thickness
	}
}

// WithVertexColor is an option builder that sets the color written to every vertex. Its
// alpha controls how much it is mixed over the material color.
//
// Parameters:
//   - color: the RGBA vertex color
//
// Returns:
//   - BuilderOption: a function that applies the color option to a Builder
func WithVertexColor(color [4]float32) BuilderOption {
	return func(b *Builder) {
		b.color = color
	}
}
