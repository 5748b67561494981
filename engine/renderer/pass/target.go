package pass

// TargetTag names one of the frame's render targets symbolically. Passes built during
// population refer to targets by tag; concrete targets are resolved once they exist.
type TargetTag int

const (
	TargetNone TargetTag = iota
	// TargetScene is the host framebuffer the final image is composited onto.
	TargetScene
	// TargetMain accumulates every stroke object of the frame.
	TargetMain
	// TargetLayer receives a single layer before it is blended.
	TargetLayer
	// TargetObject receives a single object before its effects run.
	TargetObject
	// TargetMasked accumulates masked layers until their mask is applied.
	TargetMasked
)

func (t TargetTag) String() string {
	switch t {
	case TargetScene:
		return "scene"
	case TargetMain:
		return "main"
	case TargetLayer:
		return "layer"
	case TargetObject:
		return "object"
	case TargetMasked:
		return "masked"
	default:
		return "none"
	}
}

// Attachment selects one texture of a target.
type Attachment int

const (
	AttachmentColor Attachment = iota
	AttachmentReveal
	AttachmentDepth
)

// TextureRef refers to a target attachment that may not be allocated yet.
type TextureRef struct {
	Target     TargetTag
	Attachment Attachment
}
