package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyDocumentIsDefault(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
width = 800
resizable = false

[engine]
vsync = false
workers = 3
view_layer = "Compositing"

[draw]
simplify_fx = true
lighting = false
fade_layers = true
fade_layer_opacity = 0.25
`))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep their default")
	assert.False(t, cfg.Window.Resizable)
	assert.Equal(t, 320, cfg.Window.MinWidth)
	assert.Equal(t, "Stroke Viewer", cfg.Window.Title)
	assert.Equal(t, 3, cfg.Engine.Workers)
	assert.Equal(t, "Compositing", cfg.Engine.ViewLayer)
	assert.Equal(t, renderer.PresentModeUncapped, cfg.PresentMode())

	settings := cfg.FrameSettings()
	assert.True(t, settings.SimplifyFx)
	assert.False(t, settings.UseLighting)
	assert.True(t, settings.FadeLayers)
	assert.InDelta(t, 0.25, settings.FadeLayerOpacity, 1e-6)
	assert.True(t, settings.DoOnion)
	assert.Zero(t, settings.Width)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[draw]\nonion_skins = true\n"))
	require.Error(t, err)

	var strict *toml.StrictMissingError
	assert.True(t, errors.As(err, &strict))
}

func TestParseRejectsBadSyntax(t *testing.T) {
	_, err := Parse([]byte("[window\n"))
	require.Error(t, err)

	var decodeErr *toml.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero width", "[window]\nwidth = 0\n"},
		{"negative minimum", "[window]\nmin_height = -1\n"},
		{"negative tick rate", "[engine]\ntick_rate = -1.0\n"},
		{"negative frame limit", "[engine]\nframe_limit = -30.0\n"},
		{"negative workers", "[engine]\nworkers = -1\n"},
		{"empty view layer", "[engine]\nview_layer = \"\"\n"},
		{"fade opacity above one", "[draw]\nfade_layer_opacity = 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strokeview.toml")
	cfg := Default()
	cfg.Window.Title = "Saved"
	cfg.Draw.SimplifyFill = true

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
