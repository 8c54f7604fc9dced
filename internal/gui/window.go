// Package gui shows an app in a raylib window: the renderer draws the scene
// and the window pacer feeds mouse and keyboard input between frames.
package gui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/app"
	"github.com/san-kum/rigidsync/internal/logging"
	"github.com/san-kum/rigidsync/internal/sim"
	"github.com/san-kum/rigidsync/internal/tuning"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Open creates the window. Call Close when done.
func Open(title string, width, height int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(width), int32(height), title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func Close() { rl.CloseWindow() }

type Window struct {
	app     *app.App
	log     *log.Logger
	updates <-chan mgl32.Vec3
}

type Option func(*Window)

func WithLogger(l *log.Logger) Option {
	return func(w *Window) { w.log = l }
}

// WithGravityUpdates applies gravity from a config watcher between frames.
func WithGravityUpdates(updates <-chan mgl32.Vec3) Option {
	return func(w *Window) { w.updates = updates }
}

// NewWindow binds an app whose renderer is a *Renderer to the open window.
func NewWindow(a *app.App, opts ...Option) (*Window, error) {
	r, ok := a.Renderer().(*Renderer)
	if !ok {
		return nil, fmt.Errorf("gui: app renderer is %T, not a raylib renderer", a.Renderer())
	}
	w := &Window{app: a, log: logging.Discard()}
	for _, opt := range opts {
		opt(w)
	}
	r.SetHUD(w.hud)
	return w, nil
}

// Pacer blocks nothing: raylib paces frames in EndDrawing. It reports
// ErrStopped once the window is closing, and applies input otherwise.
func (w *Window) Pacer() sim.Pacer {
	return func(context.Context) error {
		if rl.WindowShouldClose() || rl.IsKeyPressed(rl.KeyQ) {
			return sim.ErrStopped
		}
		w.input()
		return nil
	}
}

func (w *Window) input() {
	a := w.app
	if rl.IsWindowResized() {
		a.Resize(int(rl.GetScreenWidth()), int(rl.GetScreenHeight()))
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		pos := rl.GetMousePosition()
		if body, ok := a.Click(pos.X, pos.Y); ok {
			w.log.Debug("pushed", "handle", body.Handle())
		}
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		a.Camera.Orbit(-d.X*0.005, d.Y*0.005)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.Camera.Zoom(1-wheel*0.1, 1, 50)
	}

	down := 1
	if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
		down = -1
	}
	for key, axis := range map[int32]tuning.Axis{rl.KeyX: tuning.X, rl.KeyY: tuning.Y, rl.KeyZ: tuning.Z} {
		if rl.IsKeyPressed(key) {
			a.Panel.Nudge(axis, down)
		}
	}
	if rl.IsKeyPressed(rl.KeyZero) {
		a.Panel.Apply(a.Config.Gravity)
	}
	if w.updates != nil && tuning.Drain(w.updates, a.Panel) {
		w.log.Info("gravity reloaded", "gravity", a.Gravity())
	}
}

func (w *Window) hud() []string {
	g := w.app.Gravity()
	return []string{
		fmt.Sprintf("gravity  x %6.2f  y %6.2f  z %6.2f", g.X(), g.Y(), g.Z()),
		fmt.Sprintf("bodies   %d", w.app.Registry.Len()),
		"click: push  x/y/z (+shift): gravity  0: reset  q: quit",
	}
}

// Run opens the window, drives the app until the window closes or ctx ends,
// and closes the window.
func Run(ctx context.Context, a *app.App, opts ...Option) error {
	width, height := a.Size()
	Open("rigidsync", width, height)
	defer Close()

	w, err := NewWindow(a, opts...)
	if err != nil {
		return err
	}
	d := a.NewDriver(sim.WithPacer(w.Pacer()))
	return d.Run(ctx)
}
