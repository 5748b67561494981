package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the viewer's platform window. It owns the message loop and forwards input as
// viewer-level events: translated keys, scroll steps and button drags.
type Window interface {
	// SetUpdateCallback sets a function run once per message loop iteration. Nil disables it.
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function receiving the new framebuffer size in pixels.
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the function receiving vertical scroll steps. Positive is away
	// from the user.
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the function receiving key presses and repeats. Keys without a
	// Key constant are not reported.
	SetKeyDownCallback(callback func(key Key))

	// SetKeyUpCallback sets the function receiving key releases.
	SetKeyUpCallback(callback func(key Key))

	// SetDragCallback sets the function receiving cursor motion while a mouse button is held.
	//
	// Parameters:
	//   - callback: receives the held button and the cursor delta in pixels since the last event
	SetDragCallback(callback func(button MouseButton, dx, dy float32))

	// SurfaceDescriptor returns the platform surface descriptor WebGPU draws into.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil before the platform window exists
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Close destroys the platform window.
	//
	// Returns:
	//   - error: an error if the platform refused
	Close() error

	// ProcessMessages pumps platform events until the window closes. It must run on the
	// goroutine that created the window.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// engineWindow holds the window configuration, the platform handle and the input callbacks.
type engineWindow struct {
	title string

	// Resize bounds in pixels. Zero leaves a bound unset.
	minWidth, minHeight int
	maxWidth, maxHeight int
	resizable           bool

	// width and height track the framebuffer, which differs from the window size on high-DPI displays.
	width, height int

	// internalWindow is the *glfwWindow once the platform window exists.
	internalWindow any

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(key Key)
	onKeyUp   func(key Key)
	onDrag    func(button MouseButton, dx, dy float32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. It panics if the platform window cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:     "Stroke Viewer",
		width:     1280,
		height:    720,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	w.clampSize()
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// clampSize fits the requested size into the configured limits.
func (w *engineWindow) clampSize() {
	clamp := func(v, lo, hi int) int {
		if lo > 0 && v < lo {
			v = lo
		}
		if hi > 0 && v > hi {
			v = hi
		}
		return v
	}
	w.width = clamp(w.width, w.minWidth, w.maxWidth)
	w.height = clamp(w.height, w.minHeight, w.maxHeight)
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(key Key)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(key Key)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetDragCallback(callback func(button MouseButton, dx, dy float32)) {
	w.onDrag = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
