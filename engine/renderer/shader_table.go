package renderer

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/gp_geometry.wgsl
var geometryShaderSource string

//go:embed assets/gp_fullscreen.wgsl
var fullscreenShaderSource string

// ShaderProgram is one compiled-on-demand entry of a ShaderTable.
type ShaderProgram struct {
	Kind          pass.ShaderKind
	Label         string
	Source        string
	VertexEntry   string
	FragmentEntry string
	VertexLayouts []wgpu.VertexBufferLayout

	// Declarations are the binding annotations found while pre-processing Source.
	Declarations []shader.Annotation
}

// ShaderTable maps every shader kind a pass may reference to its program. A table is built
// once, never modified, and handed to every pass execution; kinds without a program are
// skipped by the backend.
type ShaderTable struct {
	programs [pass.ShaderKindCount]*ShaderProgram
}

// NewShaderTable builds an immutable table from programs. Later programs replace earlier ones
// of the same kind; programs with an out of range kind are ignored.
//
// Parameters:
//   - programs: the shader programs
//
// Returns:
//   - *ShaderTable: the table
func NewShaderTable(programs ...ShaderProgram) *ShaderTable {
	t := &ShaderTable{}
	for i := range programs {
		p := programs[i]
		if p.Kind < 0 || p.Kind >= pass.ShaderKindCount {
			continue
		}
		if p.Label == "" {
			p.Label = p.Kind.String()
		}
		t.programs[p.Kind] = &p
	}
	return t
}

// DefaultShaderTable returns the table of built-in programs: stroke geometry and the full
// screen layer blend, composite and object compose passes.
//
// Returns:
//   - *ShaderTable: the table
func DefaultShaderTable() *ShaderTable {
	geometrySource, geometryDecls := preprocess("geometry", geometryShaderSource)
	fullscreenSource, fullscreenDecls := preprocess("fullscreen", fullscreenShaderSource)

	fullscreen := func(kind pass.ShaderKind, entry string) ShaderProgram {
		return ShaderProgram{
			Kind:          kind,
			Source:        fullscreenSource,
			VertexEntry:   "vs_fullscreen",
			FragmentEntry: entry,
			Declarations:  fullscreenDecls,
		}
	}
	return NewShaderTable(
		ShaderProgram{
			Kind:          pass.ShaderGeometry,
			Source:        geometrySource,
			VertexEntry:   "vs_main",
			FragmentEntry: "fs_main",
			VertexLayouts: []wgpu.VertexBufferLayout{StrokeVertexLayout},
			Declarations:  geometryDecls,
		},
		fullscreen(pass.ShaderLayerBlend, "fs_layer_blend"),
		fullscreen(pass.ShaderComposite, "fs_composite"),
		fullscreen(pass.ShaderFxComposite, "fs_fx_composite"),
	)
}

// preprocess expands the annotations of an embedded shader. The embedded sources are fixed
// at build time, so a failure is a programming error.
func preprocess(name, source string) (string, []shader.Annotation) {
	pp := shader.NewPreProcessor()
	out, err := pp.Process(source)
	if err != nil {
		panic(fmt.Sprintf("renderer: %s shader: %v", name, err))
	}
	return out, pp.Declarations()
}

// Program returns the program registered for kind.
//
// Parameters:
//   - kind: the shader kind
//
// Returns:
//   - ShaderProgram: the program
//   - bool: false if the table has no program for kind
func (t *ShaderTable) Program(kind pass.ShaderKind) (ShaderProgram, bool) {
	if t == nil || kind < 0 || kind >= pass.ShaderKindCount || t.programs[kind] == nil {
		return ShaderProgram{}, false
	}
	return *t.programs[kind], true
}

// Missing lists the kinds without a program, in kind order.
//
// Returns:
//   - []pass.ShaderKind: the missing kinds
func (t *ShaderTable) Missing() []pass.ShaderKind {
	var out []pass.ShaderKind
	for k := pass.ShaderKind(0); k < pass.ShaderKindCount; k++ {
		if _, ok := t.Program(k); !ok {
			out = append(out, k)
		}
	}
	return out
}

// StrokeVertexSize is the byte stride of one stroke vertex: position vec3, thickness f32,
// color vec4, uv vec2, material index u32 and a pad word.
const StrokeVertexSize = 48

// StrokeVertexLayout is the vertex buffer layout of stroke geometry.
var StrokeVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: StrokeVertexSize,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 32, ShaderLocation: 3},
		{Format: wgpu.VertexFormatUint32, Offset: 40, ShaderLocation: 4},
	},
}
