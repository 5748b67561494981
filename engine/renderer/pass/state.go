package pass

import "strings"

// State is a bit set of fixed-function render state shared by every group of a pass.
// A group may override it entirely.
type State uint32

const (
	WriteColor State = 1 << iota
	WriteDepth
	WriteStencil
	DepthLessEqual
	DepthGreater
	DepthAlways
	StencilAlways
	StencilEqual
	BlendAlphaPremul
	BlendAddFull
	BlendSub
	BlendMul
)

// blendMask covers every blend bit; at most one is honoured.
const blendMask = BlendAlphaPremul | BlendAddFull | BlendSub | BlendMul

var stateNames = [...]string{
	"write_color", "write_depth", "write_stencil",
	"depth_less_equal", "depth_greater", "depth_always",
	"stencil_always", "stencil_equal",
	"blend_alpha_premul", "blend_add_full", "blend_sub", "blend_mul",
}

// Has reports whether every bit of mask is set.
func (s State) Has(mask State) bool {
	return s&mask == mask
}

// Blend returns the blend bit of s, or 0 when blending is off.
func (s State) Blend() State {
	return s & blendMask
}

// WithBlend replaces the blend bit of s.
func (s State) WithBlend(blend State) State {
	return s&^blendMask | blend&blendMask
}

// DepthTested reports whether s enables any depth comparison.
func (s State) DepthTested() bool {
	return s&(DepthLessEqual|DepthGreater|DepthAlways) != 0
}

// String lists the set bits, for logs.
func (s State) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for i, name := range stateNames {
		if s&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
