// Command strokeview opens a window and draws a demo stroke scene through the draw cache.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/Carmen-Shannon/oxy-gpencil/engine"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/config"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/drawcache"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/texture"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/window"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath  string
		writeConfig string
		texturePath string
		profile     bool
	)
	cmd := &cobra.Command{
		Use:          "strokeview",
		Short:        "Draw a demo stroke scene",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if writeConfig != "" {
				return config.Save(writeConfig, cfg)
			}
			if profile {
				cfg.Engine.Profiling = true
			}
			return run(cfg, texturePath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "strokeview.toml", "config file; a missing file uses the defaults")
	cmd.Flags().StringVar(&writeConfig, "write-config", "", "write the effective config to this path and exit")
	cmd.Flags().StringVarP(&texturePath, "texture", "t", "", "image used for the textured demo materials (png, jpeg, gif, bmp, tiff or webp)")
	cmd.Flags().BoolVar(&profile, "profile", false, "log frame and draw cache stats every second")
	return cmd
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("config %s not found, using defaults", path)
		return config.Default(), nil
	}
	return cfg, err
}

func run(cfg config.Config, texturePath string) error {
	var paper *texture.Image
	if texturePath != "" {
		img, err := texture.Load(texturePath, texture.WithMaxSize(1024))
		if err != nil {
			return err
		}
		paper = img
	}

	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithResizable(cfg.Window.Resizable),
		window.WithSizeLimits(cfg.Window.MinWidth, cfg.Window.MinHeight, 0, 0),
	)
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(cfg.PresentMode()),
		renderer.WithForceSoftwareRenderer(cfg.Engine.SoftwareRenderer),
	)

	s, err := buildDemoScene(r, float32(win.Width())/float32(win.Height()), paper)
	if err != nil {
		_ = win.Close()
		return fmt.Errorf("failed to build demo scene: %w", err)
	}

	var dcOptions []drawcache.EngineBuilderOption
	if cfg.Engine.Workers > 0 {
		dcOptions = append(dcOptions, drawcache.WithWorkers(cfg.Engine.Workers))
	}
	dc := drawcache.NewEngine(r, nil, dcOptions...)

	e := engine.NewEngine(r,
		engine.WithWindow(win),
		engine.WithScene(s),
		engine.WithDrawCache(dc),
		engine.WithViewLayer(cfg.Engine.ViewLayer),
		engine.WithFrameSettings(cfg.FrameSettings()),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithRenderFrameLimit(cfg.Engine.FrameLimit),
		engine.WithProfiling(cfg.Engine.Profiling),
	)

	ctl := newController(e, s)
	win.SetKeyDownCallback(ctl.keyDown)
	win.SetScrollCallback(ctl.scroll)
	win.SetDragCallback(ctl.drag)
	e.SetRenderCallback(ctl.animate)

	log.Printf("strokeview: %s", keyHelp)
	e.Run()
	return win.Close()
}
