package main

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"github.com/san-kum/rigidsync/internal/app"
	"github.com/san-kum/rigidsync/internal/config"
	"github.com/san-kum/rigidsync/internal/gui"
	"github.com/san-kum/rigidsync/internal/logging"
	"github.com/san-kum/rigidsync/internal/tuning"
	"github.com/san-kum/rigidsync/internal/viz"
)

func runLauncher(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	logger := logging.Discard()
	build := func(name string) (viz.Model, error) {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return viz.Model{}, err
		}
		a, err := viz.NewApp(cfg, app.WithLogger(logger))
		if err != nil {
			return viz.Model{}, err
		}
		return viz.NewModel(a, viz.WithTheme(theme))
	}
	return viz.RunLauncher(ctx, build)
}

// watchGravity follows --config when --watch is set. The returned channel is
// nil otherwise.
func watchGravity(logger *log.Logger) (<-chan mgl32.Vec3, func(), error) {
	if !watch {
		return nil, func() {}, nil
	}
	if configFile == "" {
		logger.Warn("--watch needs --config, ignoring")
		return nil, func() {}, nil
	}
	w, err := tuning.Watch(configFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return w.Updates(), func() { w.Close() }, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := viz.NewApp(cfg, app.WithLogger(logger))
	if err != nil {
		return err
	}
	updates, unwatch, err := watchGravity(logger)
	if err != nil {
		return err
	}
	defer unwatch()

	m, err := viz.NewModel(a, viz.WithTheme(theme), viz.WithGravityUpdates(updates))
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	return viz.Run(ctx, m)
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := app.New(cfg,
		app.WithRenderer(gui.NewRenderer()),
		app.WithSize(gui.DefaultWidth, gui.DefaultHeight),
		app.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	for _, serr := range a.SetupErrors() {
		logger.Warn("body skipped", "err", serr)
	}

	updates, unwatch, err := watchGravity(logger)
	if err != nil {
		return err
	}
	defer unwatch()

	ctx, stop := signalContext()
	defer stop()
	return gui.Run(ctx, a, gui.WithLogger(logger), gui.WithGravityUpdates(updates))
}
