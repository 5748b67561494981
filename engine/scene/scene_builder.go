package scene

import "github.com/Carmen-Shannon/oxy-gpencil/engine/light"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...StrokeObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			s.addObject(obj)
		}
	}
}

// WithSceneLights adds initial lights to the scene.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSceneLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}

// WithWorldColor sets the world ambient color.
//
// Parameters:
//   - r, g, b: the ambient color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorldColor(r, g, b float32) SceneBuilderOption {
	return func(s *scene) {
		s.worldColor = [3]float32{r, g, b}
	}
}

// WithFrame sets the initial frame number.
//
// Parameters:
//   - frame: the frame number
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFrame(frame int) SceneBuilderOption {
	return func(s *scene) {
		s.frame = frame
	}
}
