package window

// Key identifies a keyboard key independent of the platform layer.
type Key int

const (
	KeyUnknown Key = iota
	KeySpace
	KeyTab
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
)

var namedKeys = map[Key]string{
	KeyUnknown: "Unknown",
	KeySpace:   "Space",
	KeyTab:     "Tab",
	KeyLeft:    "Left",
	KeyRight:   "Right",
	KeyUp:      "Up",
	KeyDown:    "Down",
}

// String returns the key's name: a single character for letters and digits.
func (k Key) String() string {
	switch {
	case k >= KeyA && k <= KeyZ:
		return string(rune('A' + int(k-KeyA)))
	case k >= Key0 && k <= Key9:
		return string(rune('0' + int(k-Key0)))
	}
	if name, ok := namedKeys[k]; ok {
		return name
	}
	return "Unknown"
}

// MouseButton identifies the button held during a drag.
type MouseButton int

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonMiddle
	MouseButtonRight
)
