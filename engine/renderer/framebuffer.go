package renderer

import (
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/cogentcore/webgpu/wgpu"
)

// Framebuffer is a set of attachments a pass renders into. Offscreen stroke targets carry a
// color and a reveal (transmittance) attachment; the scene target only has Color.
type Framebuffer struct {
	Label  string
	Tag    pass.TargetTag
	Color  *wgpu.TextureView
	Reveal *wgpu.TextureView
	Depth  *wgpu.TextureView
	Width  int
	Height int
	Signed bool

	// Format is the format of every color attachment.
	Format wgpu.TextureFormat
}

// ClearOp selects the attachments ExecutePass clears before drawing. The zero value keeps
// every attachment's contents.
type ClearOp struct {
	// Color clears color to transparent black and reveal to one.
	Color bool

	// DepthStencil clears depth to DepthValue and stencil to zero.
	DepthStencil bool
	DepthValue   float32
}

// IsZero reports whether nothing is cleared.
func (c ClearOp) IsZero() bool {
	return !c.Color && !c.DepthStencil
}

// ColorTargets returns the number of color attachments.
//
// Returns:
//   - int: 1 or 2
func (f *Framebuffer) ColorTargets() int {
	if f.Reveal != nil {
		return 2
	}
	return 1
}

// TargetRequest describes the offscreen targets a frame needs. The main target is always
// allocated when a frame has anything to draw.
type TargetRequest struct {
	Width  int
	Height int

	// Layer, Object and Masked request the optional intermediate targets.
	Layer  bool
	Object bool
	Masked bool

	// Signed requests floating point color attachments that can hold negative values, needed
	// by subtractive and hard light layer blending.
	Signed bool
}

// FrameTargets holds the concrete targets allocated for one frame. Targets that were not
// requested are nil.
type FrameTargets struct {
	Scene  *Framebuffer
	Main   *Framebuffer
	Layer  *Framebuffer
	Object *Framebuffer
	Masked *Framebuffer
}

// Resolve maps a symbolic tag to its concrete target. A nil receiver resolves nothing.
//
// Parameters:
//   - tag: the target tag
//
// Returns:
//   - *Framebuffer: the target, or nil if it was not allocated
func (t *FrameTargets) Resolve(tag pass.TargetTag) *Framebuffer {
	if t == nil {
		return nil
	}
	switch tag {
	case pass.TargetScene:
		return t.Scene
	case pass.TargetMain:
		return t.Main
	case pass.TargetLayer:
		return t.Layer
	case pass.TargetObject:
		return t.Object
	case pass.TargetMasked:
		return t.Masked
	default:
		return nil
	}
}

// Texture maps a target attachment reference to its texture view.
//
// Parameters:
//   - ref: the attachment reference
//
// Returns:
//   - *wgpu.TextureView: the view, or nil if the target or attachment is missing
func (t *FrameTargets) Texture(ref pass.TextureRef) *wgpu.TextureView {
	fb := t.Resolve(ref.Target)
	if fb == nil {
		return nil
	}
	switch ref.Attachment {
	case pass.AttachmentReveal:
		return fb.Reveal
	case pass.AttachmentDepth:
		return fb.Depth
	default:
		return fb.Color
	}
}
