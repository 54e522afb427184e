// Package game implements the main loop around the walking robot simulation.
package game

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/strider/internal/config"
	"github.com/Faultbox/strider/internal/engine/input"
	"github.com/Faultbox/strider/internal/engine/lighting"
	"github.com/Faultbox/strider/internal/engine/mesh"
	"github.com/Faultbox/strider/internal/engine/metrics"
	"github.com/Faultbox/strider/internal/engine/renderer"
	"github.com/Faultbox/strider/internal/engine/scene"
	"github.com/Faultbox/strider/internal/engine/screenshot"
	"github.com/Faultbox/strider/internal/engine/window"
	"github.com/Faultbox/strider/internal/logger"
)

// Game is the main game instance.
type Game struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	sim      *Simulation
	shots    *screenshot.Capture
	dragging bool
	capture  bool
}

// New creates a new game instance.
func New(cfg *config.Config, m *metrics.Collector) (*Game, error) {
	logger.Info("initializing game",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	g := &Game{
		config: cfg,
		input:  input.New(),
		shots:  screenshot.New(cfg.Engine.ScreenshotDir, "strider"),
	}

	var err error
	g.sim, err = NewSimulation(cfg, g.input, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation: %w", err)
	}

	// Window also creates the OpenGL context
	g.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	sun := lighting.DefaultSun()
	sun.Direction = lighting.SunDirection(cfg.Engine.SunLongitude, cfg.Engine.SunLatitude)
	g.renderer, err = renderer.New(renderer.Config{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		ClearColor: cfg.Engine.ClearColor,
		Sun:        sun,
		Materials:  Materials(cfg.Materials),
		Meshes:     mesh.NewLibrary(),
	})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	// Fullscreen and high-DPI windows may not match the requested size.
	g.resize(g.window.DrawableSize())

	logger.Info("game initialized successfully")
	return g, nil
}

// Materials converts configured materials for the renderer.
func Materials(in map[string]config.MaterialConfig) map[string]renderer.Material {
	out := make(map[string]renderer.Material, len(in))
	for name, m := range in {
		out[name] = renderer.Material{Color: m.Color, Unlit: m.Unlit}
	}
	return out
}

// Simulation returns the simulation driven by the loop.
func (g *Game) Simulation() *Simulation { return g.sim }

// Run starts the main game loop.
func (g *Game) Run() error {
	g.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting game loop")

	for g.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()

		g.sim.Step(dt)
		g.sim.Lights(g.renderer.Lights())

		if err := g.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if g.capture {
			g.capture = false
			g.screenshot()
		}
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if g.config.Engine.ShowFPS {
				g.window.SetTitle(fmt.Sprintf("%s - %d fps", g.config.Window.Title, frameCount))
			}
			stats := g.renderer.Stats()
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Float64("dt_ms", dt*1000),
				zap.Int("draw_calls", stats.DrawCalls),
				zap.Int("triangles", stats.Triangles),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (g *Game) handleEvents() {
	rig := g.sim.Follow.Rig
	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			g.resize(g.window.DrawableSize())
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				g.running = false
			case sdl.SCANCODE_F12:
				g.capture = true
			}
		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT {
				g.dragging = true
			}
		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_LEFT {
				g.dragging = false
			}
		case input.EventMouseMove:
			if g.dragging {
				rig.HandleYaw(float32(event.DeltaX))
			}
		case input.EventMouseWheel:
			rig.HandleZoom(float32(event.DeltaY))
		}
	}
}

func (g *Game) screenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.shots.SavePixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func (g *Game) resize(width, height int) {
	g.renderer.Resize(width, height)
	if err := g.sim.Resize(width, height); err != nil {
		logger.Warn("camera resize failed", zap.Error(err))
	}
}

// Close cleans up game resources.
func (g *Game) Close() {
	logger.Info("closing game")

	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}

func (g *Game) render() error {
	g.renderer.Begin()
	defer g.renderer.End()

	if err := g.renderer.Draw(g.sim.Graph, scene.DefaultCamera, renderer.FullScreen); err != nil {
		return err
	}
	for _, v := range g.sim.Views {
		vp := renderer.Viewport{X: v.Viewport[0], Y: v.Viewport[1], W: v.Viewport[2], H: v.Viewport[3]}
		if err := g.renderer.Draw(g.sim.Graph, v.Camera, vp); err != nil {
			return fmt.Errorf("view %s: %w", v.Camera, err)
		}
	}
	return nil
}
