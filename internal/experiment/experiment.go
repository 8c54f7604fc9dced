// Package experiment runs scenes headless: one recorded run, or a parallel
// sweep over gravity values.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/rigidsync/internal/app"
	"github.com/san-kum/rigidsync/internal/config"
	"github.com/san-kum/rigidsync/internal/logging"
	"github.com/san-kum/rigidsync/internal/sim"
	"github.com/san-kum/rigidsync/internal/storage"
)

type Config struct {
	Scene        *config.Config
	Preset       string
	Frames       int
	RecordStride int
	Metrics      []sim.Metric
	Observers    []sim.Observer
	Logger       *log.Logger
}

type Experiment struct {
	cfg      Config
	app      *app.App
	driver   *sim.Driver
	recorder *storage.Recorder
	log      *log.Logger
}

func New(cfg Config) *Experiment {
	if cfg.Scene == nil {
		cfg.Scene = config.DefaultConfig()
	}
	if cfg.Frames <= 0 {
		cfg.Frames = cfg.Scene.Run.Frames
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Experiment{cfg: cfg, log: cfg.Logger}
}

// Setup builds the scene and a driver clocked at the configured frame rate.
func (e *Experiment) Setup() error {
	a, err := app.New(e.cfg.Scene, app.WithLogger(e.log))
	if err != nil {
		return err
	}
	e.app = a
	e.driver = a.NewDriver(sim.WithClock(sim.FixedClock(e.cfg.Scene.Run.FrameRate)))
	for _, m := range e.cfg.Metrics {
		e.driver.AddMetric(m)
	}
	if e.cfg.RecordStride > 0 {
		e.recorder = storage.NewRecorder(e.cfg.RecordStride)
		e.driver.AddObserver(e.recorder)
	}
	for _, o := range e.cfg.Observers {
		e.driver.AddObserver(o)
	}
	return nil
}

// Outcome is what one run produced. Trace is nil when recording is off.
type Outcome struct {
	Result   *sim.Result
	Trace    *storage.Trace
	Metadata storage.RunMetadata
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.driver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	start := time.Now()
	res, err := e.driver.RunFrames(ctx, e.cfg.Frames)
	if err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}

	out := &Outcome{Result: res, Metadata: e.metadata(res, start)}
	if e.recorder != nil {
		out.Trace = e.recorder.Trace()
	}
	e.log.Info("run finished", "frames", res.Frames, "sim_time", res.Time, "wall", time.Since(start))
	return out, err
}

func (e *Experiment) metadata(res *sim.Result, start time.Time) storage.RunMetadata {
	meta := storage.RunMetadata{
		Preset:    e.cfg.Preset,
		Timestamp: start,
		Frames:    res.Frames,
		SimTime:   res.Time,
		FrameRate: e.cfg.Scene.Run.FrameRate,
		MaxDelta:  e.cfg.Scene.MaxDelta,
		Gravity:   e.app.Gravity(),
		Metrics:   res.Metrics,
	}
	for _, n := range e.app.Registry.Nodes() {
		meta.Bodies = append(meta.Bodies, n.Name)
	}
	for _, se := range e.app.SetupErrors() {
		meta.SetupErrors = append(meta.SetupErrors, se.Error())
	}
	return meta
}

// App returns the instance built by Setup.
func (e *Experiment) App() *app.App { return e.app }

func (e *Experiment) Driver() *sim.Driver { return e.driver }
