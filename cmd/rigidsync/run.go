package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/san-kum/rigidsync/internal/experiment"
	"github.com/san-kum/rigidsync/internal/sim"
)

type progressObserver struct {
	bar *progressbar.ProgressBar
}

func (p progressObserver) OnFrame(sim.Frame) { p.bar.Add(1) }

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene()
	if err != nil {
		return err
	}
	if frames > 0 {
		cfg.Run.Frames = frames
	}

	logger, closer, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	st, cat, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	var observers []sim.Observer
	if term.IsTerminal(int(os.Stdout.Fd())) {
		bar := progressbar.Default(int64(cfg.Run.Frames), "simulating")
		defer bar.Finish()
		observers = append(observers, progressObserver{bar: bar})
	}

	exp := experiment.New(experiment.Config{
		Scene:        cfg,
		Preset:       presetName(),
		RecordStride: stride,
		Metrics:      experiment.NewRegistry().DefaultMetrics(),
		Observers:    observers,
		Logger:       logger,
	})
	if err := exp.Setup(); err != nil {
		return err
	}
	for _, se := range exp.App().SetupErrors() {
		fmt.Fprintf(os.Stderr, "warning: %v\n", se)
	}

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	out, err := exp.Run(ctx)
	if out == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "stopped early: %v\n", err)
	}

	runID, saveErr := st.Save(out.Metadata, out.Trace)
	if saveErr != nil {
		return saveErr
	}
	out.Metadata.ID = runID
	if err := cat.Index(out.Metadata); err != nil {
		logger.Warn("catalog index failed", "run", runID, "err", err)
	}

	fmt.Printf("\ncompleted in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d (%.2fs simulated)\n", out.Result.Frames, out.Result.Time)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(out.Result.Metrics))
	for name := range out.Result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, out.Result.Metrics[name])
	}
	return nil
}
