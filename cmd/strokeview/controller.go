package main

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-gpencil/engine"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/drawcache"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/window"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const keyHelp = "F fill | X effects | O onion | L lighting | T fade layers | R render mode | D depth only | P perspective | Tab active object | Space pause | scroll zoom | drag orbit"

// settingToggles binds keys to frame settings flags.
var settingToggles = map[window.Key]struct {
	name string
	flag func(*drawcache.FrameSettings) *bool
}{
	window.KeyF: {"simplify fill", func(s *drawcache.FrameSettings) *bool { return &s.SimplifyFill }},
	window.KeyX: {"simplify fx", func(s *drawcache.FrameSettings) *bool { return &s.SimplifyFx }},
	window.KeyO: {"onion", func(s *drawcache.FrameSettings) *bool { return &s.DoOnion }},
	window.KeyL: {"lighting", func(s *drawcache.FrameSettings) *bool { return &s.UseLighting }},
	window.KeyT: {"fade layers", func(s *drawcache.FrameSettings) *bool { return &s.FadeLayers }},
	window.KeyR: {"render mode", func(s *drawcache.FrameSettings) *bool { return &s.IsRender }},
	window.KeyD: {"depth only", func(s *drawcache.FrameSettings) *bool { return &s.DrawDepthOnly }},
}

// controller maps window input onto the engine settings and the scene camera.
type controller struct {
	mu     *sync.Mutex
	engine engine.Engine
	scene  scene.Scene

	paused   bool
	elapsed  float32
	yaw      float32
	pitch    float32
	distance float32
	active   int
}

func newController(e engine.Engine, s scene.Scene) *controller {
	c := &controller{
		mu:       &sync.Mutex{},
		engine:   e,
		scene:    s,
		distance: 8,
		active:   -1,
	}
	if cam := s.Camera(); cam != nil {
		c.distance = cam.Position().Sub(cam.Target()).Len()
	}
	if ob := s.ActiveObject(); ob != nil {
		for i, o := range s.Objects() {
			if o.ID() == ob.ID() {
				c.active = i
			}
		}
	}
	return c
}

func (c *controller) keyDown(key window.Key) {
	if toggle, ok := settingToggles[key]; ok {
		settings := c.engine.Settings()
		flag := toggle.flag(&settings)
		*flag = !*flag
		c.engine.SetSettings(settings)
		log.Printf("%s: %v", toggle.name, *flag)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch key {
	case window.KeyP:
		if cam := c.scene.Camera(); cam != nil {
			cam.SetPerspective(!cam.IsPerspective())
			log.Printf("perspective: %v", cam.IsPerspective())
		}
	case window.KeyTab:
		objects := c.scene.Objects()
		if len(objects) == 0 {
			return
		}
		c.active = (c.active + 1) % len(objects)
		c.scene.SetActiveObject(objects[c.active].ID())
		log.Printf("active object: %s", objects[c.active].Name())
	case window.KeySpace:
		c.paused = !c.paused
	}
}

func (c *controller) scroll(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.distance = mgl32.Clamp(c.distance*math32.Pow(0.9, delta), 1, 50)
	c.placeCamera()
}

func (c *controller) drag(button window.MouseButton, dx, dy float32) {
	if button != window.MouseButtonMiddle && button != window.MouseButtonLeft {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw -= dx * 0.005
	c.pitch = mgl32.Clamp(c.pitch+dy*0.005, -1.4, 1.4)
	c.placeCamera()
}

// animate advances the scene frame and sways the in-front notes object. It runs on the render
// goroutine between frames, the only place stroke objects may be mutated.
func (c *controller) animate(dt float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.elapsed += dt
	c.scene.SetFrame(int(c.elapsed * 24))
	for _, ob := range c.scene.Objects() {
		if ob.InFront() {
			ob.SetRotation(0, -0.3+0.1*math32.Sin(c.elapsed), 0)
		}
	}
}

// placeCamera orbits the camera around its target. Callers hold mu.
func (c *controller) placeCamera() {
	cam := c.scene.Camera()
	if cam == nil {
		return
	}
	t := cam.Target()
	cp := math32.Cos(c.pitch)
	offset := mgl32.Vec3{
		c.distance * cp * math32.Sin(c.yaw),
		c.distance * math32.Sin(c.pitch),
		c.distance * cp * math32.Cos(c.yaw),
	}
	p := t.Add(offset)
	cam.SetPosition(p[0], p[1], p[2])
}
