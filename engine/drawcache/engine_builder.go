package drawcache

// EngineBuilderOption is a function that configures an Engine during construction.
type EngineBuilderOption func(*engine)

// WithRegistry is an option builder that shares a registry between engines, for example one
// engine per window drawing the same view layers.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - EngineBuilderOption: a function that applies the registry option to an engine
func WithRegistry(r *Registry) EngineBuilderOption {
	return func(e *engine) {
		e.registry = r
	}
}

// WithSettings is an option builder that sets the initial frame settings.
//
// Parameters:
//   - settings: the frame settings
//
// Returns:
//   - EngineBuilderOption: a function that applies the settings option to an engine
func WithSettings(settings FrameSettings) EngineBuilderOption {
	return func(e *engine) {
		e.settings = settings
	}
}

// WithWorkers is an option builder that sets how many workers marshal uniform blocks.
// Values below 1 are clamped to 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - EngineBuilderOption: a function that applies the worker option to an engine
func WithWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		e.workerCount = max(n, 1)
	}
}
