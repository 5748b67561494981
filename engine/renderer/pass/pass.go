// Package pass holds the render pass records the draw cache builds each frame.
//
// A Pass is an ordered list of shading groups sharing fixed-function state. A Group binds one
// shader, its uniform blocks, textures and scalar uniforms, and carries the draw calls that use
// them. Passes are plain data: the renderer interprets them, tests inspect them. Pass values are
// recycled frame to frame through a block pool, so every slice keeps its capacity across Init.
package pass

import (
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// Call is a non-indexed draw of VertexCount vertices starting at VertexFirst.
type Call struct {
	VertexFirst int
	VertexCount int
}

// Uniform is a named scalar or vector uniform. Scalars use the first component.
type Uniform struct {
	Name  string
	Value [4]float32
}

// TextureBinding binds either a concrete view or a frame target attachment to a sampler name.
type TextureBinding struct {
	Name  string
	View  *wgpu.TextureView
	Ref   TextureRef
	IsRef bool
}

// Group is one shading group: a shader with its resources and the draws that use them.
type Group struct {
	Shader ShaderKind

	// State overrides the pass state when non-zero.
	State State

	Geometry bind_group_provider.BindGroupProvider
	View     bind_group_provider.BindGroupProvider
	Material bind_group_provider.BindGroupProvider
	Light    bind_group_provider.BindGroupProvider

	Textures []TextureBinding
	Uniforms []Uniform
	Calls    []Call

	// Triangles is the number of procedural full-screen triangles drawn without geometry.
	Triangles int
}

// Pass is an ordered list of groups drawn with shared state.
type Pass struct {
	Name  string
	State State

	groups []*Group
	used   int
}

// Init empties the pass and sets its name and state. Groups allocated in earlier frames are
// kept for reuse.
//
// Parameters:
//   - name: the pass label
//   - state: the default render state of every group
func (p *Pass) Init(name string, state State) {
	p.Name = name
	p.State = state
	p.used = 0
}

// AddGroup appends an empty group using shader.
//
// Parameters:
//   - shader: the shader the group draws with
//
// Returns:
//   - *Group: the new group; valid until the next Init
func (p *Pass) AddGroup(shader ShaderKind) *Group {
	var g *Group
	if p.used < len(p.groups) {
		g = p.groups[p.used]
		g.reset()
	} else {
		g = &Group{}
		p.groups = append(p.groups, g)
	}
	p.used++
	g.Shader = shader
	return g
}

// AddSubGroup appends a group inheriting every binding and uniform of parent but none of its
// draws. Changing the sub group leaves the parent untouched.
//
// Parameters:
//   - parent: the group to inherit from
//
// Returns:
//   - *Group: the new group
func (p *Pass) AddSubGroup(parent *Group) *Group {
	g := p.AddGroup(parent.Shader)
	g.State = parent.State
	g.Geometry = parent.Geometry
	g.View = parent.View
	g.Material = parent.Material
	g.Light = parent.Light
	g.Textures = append(g.Textures, parent.Textures...)
	g.Uniforms = append(g.Uniforms, parent.Uniforms...)
	return g
}

// Groups returns the groups added since the last Init, in draw order.
//
// Returns:
//   - []*Group: the groups
func (p *Pass) Groups() []*Group {
	return p.groups[:p.used]
}

// IsEmpty reports whether the pass issues no draw at all.
//
// Returns:
//   - bool: true if no group has calls or procedural triangles
func (p *Pass) IsEmpty() bool {
	for _, g := range p.Groups() {
		if len(g.Calls) > 0 || g.Triangles > 0 {
			return false
		}
	}
	return true
}

// CallCount returns the number of draws the pass issues.
//
// Returns:
//   - int: the draw count
func (p *Pass) CallCount() int {
	n := 0
	for _, g := range p.Groups() {
		n += len(g.Calls)
		if g.Triangles > 0 {
			n++
		}
	}
	return n
}

// EffectiveState returns the state g draws with inside this pass.
//
// Parameters:
//   - g: a group of this pass
//
// Returns:
//   - State: the group override or the pass state
func (p *Pass) EffectiveState(g *Group) State {
	if g.State != 0 {
		return g.State
	}
	return p.State
}

func (g *Group) reset() {
	g.State = 0
	g.Geometry = nil
	g.View = nil
	g.Material = nil
	g.Light = nil
	clear(g.Textures)
	g.Textures = g.Textures[:0]
	g.Uniforms = g.Uniforms[:0]
	g.Calls = g.Calls[:0]
	g.Triangles = 0
}

// SetVec4 sets or replaces a vector uniform.
//
// Parameters:
//   - name: the uniform name
//   - v: the value
func (g *Group) SetVec4(name string, v [4]float32) {
	for i := range g.Uniforms {
		if g.Uniforms[i].Name == name {
			g.Uniforms[i].Value = v
			return
		}
	}
	g.Uniforms = append(g.Uniforms, Uniform{Name: name, Value: v})
}

// SetVec3 sets or replaces a three component uniform.
func (g *Group) SetVec3(name string, v [3]float32) {
	g.SetVec4(name, [4]float32{v[0], v[1], v[2], 0})
}

// SetVec2 sets or replaces a two component uniform.
func (g *Group) SetVec2(name string, x, y float32) {
	g.SetVec4(name, [4]float32{x, y, 0, 0})
}

// SetFloat sets or replaces a scalar uniform.
func (g *Group) SetFloat(name string, v float32) {
	g.SetVec4(name, [4]float32{v, 0, 0, 0})
}

// SetInt sets or replaces an integer uniform.
func (g *Group) SetInt(name string, v int) {
	g.SetFloat(name, float32(v))
}

// SetBool sets or replaces a boolean uniform, stored as 0 or 1.
func (g *Group) SetBool(name string, v bool) {
	if v {
		g.SetFloat(name, 1)
	} else {
		g.SetFloat(name, 0)
	}
}

// Uniform looks up a uniform by name.
//
// Parameters:
//   - name: the uniform name
//
// Returns:
//   - [4]float32: the value
//   - bool: false if the uniform is not set
func (g *Group) Uniform(name string) ([4]float32, bool) {
	for _, u := range g.Uniforms {
		if u.Name == name {
			return u.Value, true
		}
	}
	return [4]float32{}, false
}

// BindTexture binds a concrete texture view to a sampler name.
//
// Parameters:
//   - name: the sampler name
//   - view: the texture view
func (g *Group) BindTexture(name string, view *wgpu.TextureView) {
	g.bind(TextureBinding{Name: name, View: view})
}

// BindTarget binds a frame target attachment to a sampler name. The attachment is looked up
// when the pass executes.
//
// Parameters:
//   - name: the sampler name
//   - target: the target tag
//   - attachment: which texture of the target
func (g *Group) BindTarget(name string, target TargetTag, attachment Attachment) {
	g.bind(TextureBinding{Name: name, Ref: TextureRef{Target: target, Attachment: attachment}, IsRef: true})
}

// Texture looks up a texture binding by sampler name.
//
// Parameters:
//   - name: the sampler name
//
// Returns:
//   - TextureBinding: the binding
//   - bool: false if nothing is bound
func (g *Group) Texture(name string) (TextureBinding, bool) {
	for _, t := range g.Textures {
		if t.Name == name {
			return t, true
		}
	}
	return TextureBinding{}, false
}

func (g *Group) bind(tb TextureBinding) {
	for i := range g.Textures {
		if g.Textures[i].Name == tb.Name {
			g.Textures[i] = tb
			return
		}
	}
	g.Textures = append(g.Textures, tb)
}

// AddCall appends a draw, merging it into the previous one when the vertex ranges are
// contiguous. Empty draws are ignored.
//
// Parameters:
//   - first: the first vertex
//   - count: the vertex count
func (g *Group) AddCall(first, count int) {
	if count <= 0 {
		return
	}
	if n := len(g.Calls); n > 0 {
		last := &g.Calls[n-1]
		if last.VertexFirst+last.VertexCount == first {
			last.VertexCount += count
			return
		}
	}
	g.Calls = append(g.Calls, Call{VertexFirst: first, VertexCount: count})
}

// AddTriangles adds procedural full-screen triangles.
//
// Parameters:
//   - n: the triangle count
func (g *Group) AddTriangles(n int) {
	g.Triangles += n
}
