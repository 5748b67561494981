package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/camera"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/light"
)

type scene struct {
	mu *sync.RWMutex

	name   string
	frame  int
	camera camera.Camera

	objects      []StrokeObject
	nextID       uint64
	activeObject uint64
	strokeBuffer StrokeObject

	lights     []light.Light
	worldColor [3]float32
}

// Scene is the read-only input of one frame of stroke drawing: stroke objects, lights, the
// world ambient color, the camera and the current frame number.
//
// The draw cache consumes a Scene through CacheInit and CachePopulate and never mutates it.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Frame returns the current frame number.
	Frame() int

	// SetFrame sets the current frame number.
	SetFrame(frame int)

	// Camera returns the scene camera.
	Camera() camera.Camera

	// Lights returns the scene lights in insertion order.
	Lights() []light.Light

	// AddLight appends a light.
	AddLight(l light.Light)

	// WorldColor returns the world ambient color.
	WorldColor() [3]float32

	// SetWorldColor sets the world ambient color.
	SetWorldColor(r, g, b float32)

	// AddObject registers a stroke object, assigning it an ID if it has none.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the object's ID
	AddObject(obj StrokeObject) uint64

	// RemoveObject unregisters the object with the given ID. Unknown IDs are ignored.
	RemoveObject(id uint64)

	// Objects returns every registered object in insertion order.
	Objects() []StrokeObject

	// VisibleObjects returns the enabled objects whose world bounds intersect the camera
	// frustum, in insertion order.
	VisibleObjects() []StrokeObject

	// ActiveObject returns the object being edited, or nil.
	ActiveObject() StrokeObject

	// SetActiveObject marks the object being edited.
	SetActiveObject(id uint64)

	// StrokeBuffer returns the object holding the stroke currently being drawn, or nil.
	// It is never part of Objects.
	StrokeBuffer() StrokeObject

	// SetStrokeBuffer sets or clears (nil) the in-progress stroke object.
	SetStrokeBuffer(obj StrokeObject)
}

var _ Scene = &scene{}

// NewScene creates a new Scene viewed through cam with the provided options applied.
// Panics if cam is nil.
//
// Parameters:
//   - name: the scene identifier
//   - cam: the scene camera
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	s := &scene{
		mu:         &sync.RWMutex{},
		name:       name,
		camera:     cam,
		nextID:     1,
		worldColor: [3]float32{0.05, 0.05, 0.05},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Frame() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

func (s *scene) SetFrame(frame int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
}

func (s *scene) Camera() camera.Camera {
	return s.camera
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lights
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) WorldColor() [3]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.worldColor
}

func (s *scene) SetWorldColor(r, g, b float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.worldColor = [3]float32{r, g, b}
}

func (s *scene) AddObject(obj StrokeObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addObject(obj)
}

func (s *scene) RemoveObject(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, obj := range s.objects {
		if obj.ID() == id {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			if s.activeObject == id {
				s.activeObject = 0
			}
			return
		}
	}
}

func (s *scene) Objects() []StrokeObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StrokeObject, len(s.objects))
	copy(out, s.objects)
	return out
}

func (s *scene) VisibleObjects() []StrokeObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	frustum := s.camera.Frustum()
	out := make([]StrokeObject, 0, len(s.objects))
	for _, obj := range s.objects {
		if !obj.Enabled() {
			continue
		}
		min, max := obj.WorldBounds()
		if frustum.IntersectsAABB(min, max) {
			out = append(out, obj)
		}
	}
	return out
}

func (s *scene) ActiveObject() StrokeObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeObject == 0 {
		return nil
	}
	for _, obj := range s.objects {
		if obj.ID() == s.activeObject {
			return obj
		}
	}
	return nil
}

func (s *scene) SetActiveObject(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeObject = id
}

func (s *scene) StrokeBuffer() StrokeObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strokeBuffer
}

func (s *scene) SetStrokeBuffer(obj StrokeObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strokeBuffer = obj
}

// addObject assigns an ID when missing and appends obj. Caller must hold the write lock.
func (s *scene) addObject(obj StrokeObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	} else if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}
	s.objects = append(s.objects, obj)
	return obj.ID()
}
