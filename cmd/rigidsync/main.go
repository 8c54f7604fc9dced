package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/rigidsync/internal/config"
	"github.com/san-kum/rigidsync/internal/logging"
	"github.com/san-kum/rigidsync/internal/storage"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string
	frames     int
	stride     int
	watch      bool
	theme      string
	format     string
	outFile    string
	influxURL  string
	limit      int
	gravityLo  float32
	gravityHi  float32
	steps      int
	bodyName   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rigidsync",
		Short: "rigid bodies kept in step with their scene",
		RunE:  runLauncher,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scene config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a preset scene")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene headless and save the trace",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&frames, "frames", 0, "frames to run (default from config)")
	runCmd.Flags().IntVar(&stride, "stride", 1, "record every n-th frame")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
	tuiCmd.Flags().BoolVar(&watch, "watch", false, "reload gravity when the config file changes")
	tuiCmd.Flags().StringVar(&theme, "theme", "neon", "colour theme")

	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "live raylib window",
		Args:  cobra.NoArgs,
		RunE:  runWindow,
	}
	windowCmd.Flags().BoolVar(&watch, "watch", false, "reload gravity when the config file changes")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to show")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body heights of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&bodyName, "body", "", "only this body")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "bounces, spectrum and phase portrait of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&bodyName, "body", "", "only this body")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json, svg or to influxdb",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "json or svg")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&influxURL, "influx-url", "", "write the trace to this influxdb instead")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one scene per vertical gravity in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float32Var(&gravityLo, "from", -10, "lowest gravity")
	sweepCmd.Flags().Float32Var(&gravityHi, "to", 0, "highest gravity")
	sweepCmd.Flags().IntVar(&steps, "steps", 5, "number of gravity values")
	sweepCmd.Flags().IntVar(&frames, "frames", 0, "frames per run (default from config)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [file]",
		Short: "write the selected scene as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}

	rootCmd.AddCommand(runCmd, tuiCmd, windowCmd, listCmd, plotCmd, analyzeCmd, exportCmd, sweepCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScene resolves --preset and --config. The config file wins when both
// are given.
func loadScene() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case configFile != "":
		cfg, err = config.Load(configFile)
	case preset != "":
		cfg, err = config.GetPreset(preset)
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}
	if dataDir != "" {
		cfg.Run.DataDir = dataDir
	}
	return cfg, nil
}

func presetName() string {
	switch {
	case configFile != "":
		return filepath.Base(configFile)
	case preset != "":
		return preset
	}
	return "default"
}

// newLogger writes to stderr, or nowhere for full-screen views without a
// log file.
func newLogger(cfg *config.Config, fullScreen bool) (*log.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	if fullScreen && cfg.Logging.File == "" {
		w = io.Discard
	}
	return logging.New(cfg.Logging, w)
}

func openStores(cfg *config.Config) (*storage.Store, *storage.Catalog, error) {
	st := storage.New(cfg.Run.DataDir)
	if err := st.Init(); err != nil {
		return nil, nil, err
	}
	cat, err := storage.OpenCatalog(filepath.Join(cfg.Run.DataDir, "catalog.db"))
	if err != nil {
		return nil, nil, err
	}
	return st, cat, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return config.Write(os.Stdout, cfg)
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
