// Package config loads the stroke viewer settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/drawcache"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation error returned from Parse and Load.
var ErrInvalid = errors.New("invalid config")

// Config is the full viewer configuration. Every field has a default, so an empty file is a
// valid config.
type Config struct {
	Window WindowConfig `toml:"window"`
	Engine EngineConfig `toml:"engine"`
	Draw   DrawConfig   `toml:"draw"`
}

// WindowConfig sizes and names the viewer window.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
	// MinWidth and MinHeight bound interactive resizes. Zero leaves a dimension free.
	MinWidth  int `toml:"min_width"`
	MinHeight int `toml:"min_height"`
}

// EngineConfig drives the tick and render loops.
type EngineConfig struct {
	// TickRate is the input tick rate in Hz.
	TickRate float64 `toml:"tick_rate"`

	// FrameLimit caps the render loop in frames per second; 0 is uncapped.
	FrameLimit float64 `toml:"frame_limit"`

	// VSync selects the present mode.
	VSync bool `toml:"vsync"`

	Profiling bool `toml:"profiling"`

	// Workers sizes the pool that marshals material and light pools; 0 picks a default.
	Workers int `toml:"workers"`

	// ViewLayer names the view layer whose pools back the frame.
	ViewLayer string `toml:"view_layer"`

	// SoftwareRenderer forces the fallback adapter.
	SoftwareRenderer bool `toml:"software_renderer"`
}

// DrawConfig mirrors drawcache.FrameSettings.
type DrawConfig struct {
	Render           bool    `toml:"render"`
	DepthOnly        bool    `toml:"depth_only"`
	SimplifyFill     bool    `toml:"simplify_fill"`
	SimplifyFx       bool    `toml:"simplify_fx"`
	Onion            bool    `toml:"onion"`
	Lighting         bool    `toml:"lighting"`
	FadeLayers       bool    `toml:"fade_layers"`
	FadeLayerOpacity float32 `toml:"fade_layer_opacity"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	settings := drawcache.DefaultFrameSettings()
	return Config{
		Window: WindowConfig{
			Title:     "Stroke Viewer",
			Width:     1280,
			Height:    720,
			Resizable: true,
			MinWidth:  320,
			MinHeight: 200,
		},
		Engine: EngineConfig{
			TickRate:  60,
			VSync:     true,
			ViewLayer: "ViewLayer",
		},
		Draw: DrawConfig{
			Onion:            true,
			Lighting:         settings.UseLighting,
			FadeLayerOpacity: settings.FadeLayerOpacity,
		},
	}
}

// Parse decodes data over the defaults. Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path. A missing file is reported with an error wrapping
// fs.ErrNotExist.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the decoded configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
//
// Parameters:
//   - path: the destination file
//   - cfg: the configuration to write
//
// Returns:
//   - error: an encode or write error
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
//
// Returns:
//   - error: an error wrapping ErrInvalid, or nil
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Window.MinWidth < 0 || c.Window.MinHeight < 0:
		return fmt.Errorf("%w: window minimum %dx%d", ErrInvalid, c.Window.MinWidth, c.Window.MinHeight)
	case c.Engine.TickRate <= 0:
		return fmt.Errorf("%w: tick_rate %v", ErrInvalid, c.Engine.TickRate)
	case c.Engine.FrameLimit < 0:
		return fmt.Errorf("%w: frame_limit %v", ErrInvalid, c.Engine.FrameLimit)
	case c.Engine.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Engine.Workers)
	case c.Engine.ViewLayer == "":
		return fmt.Errorf("%w: empty view_layer", ErrInvalid)
	case c.Draw.FadeLayerOpacity < 0 || c.Draw.FadeLayerOpacity > 1:
		return fmt.Errorf("%w: fade_layer_opacity %v outside [0, 1]", ErrInvalid, c.Draw.FadeLayerOpacity)
	}
	return nil
}

// FrameSettings converts the draw section into draw cache settings. Width and Height are
// left zero so the frame follows the surface.
//
// Returns:
//   - drawcache.FrameSettings: the settings
func (c Config) FrameSettings() drawcache.FrameSettings {
	return drawcache.FrameSettings{
		IsRender:         c.Draw.Render,
		DrawDepthOnly:    c.Draw.DepthOnly,
		SimplifyFill:     c.Draw.SimplifyFill,
		SimplifyFx:       c.Draw.SimplifyFx,
		DoOnion:          c.Draw.Onion,
		UseLighting:      c.Draw.Lighting,
		FadeLayers:       c.Draw.FadeLayers,
		FadeLayerOpacity: c.Draw.FadeLayerOpacity,
	}
}

// PresentMode returns the surface present mode selected by the engine section.
//
// Returns:
//   - renderer.PresentMode: VSync or Uncapped
func (c Config) PresentMode() renderer.PresentMode {
	if c.Engine.VSync {
		return renderer.PresentModeVSync
	}
	return renderer.PresentModeUncapped
}
