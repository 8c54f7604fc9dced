package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/rigidsync/internal/experiment"
)

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene()
	if err != nil {
		return err
	}
	if steps < 1 {
		return fmt.Errorf("--steps must be at least 1")
	}
	n := frames
	if n <= 0 {
		n = cfg.Run.Frames
	}

	ctx, stop := signalContext()
	defer stop()

	rows, err := experiment.GravitySweep(ctx, cfg, experiment.GravityRange(gravityLo, gravityHi, steps), n)
	if err != nil {
		return err
	}

	fmt.Printf("sweep: %s, %d frames per run\n\n", presetName(), n)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRAVITY Y\tFRAMES\tFINAL KE\tPEAK KE\tSTABILITY\tASLEEP")
	for _, r := range rows {
		fmt.Fprintf(w, "%.2f\t%d\t%.4f\t%.4f\t%.2f\t%.0f%%\n",
			r.Gravity, r.Frames, r.Energy, r.Peak, r.Stability, r.Asleep*100)
	}
	return w.Flush()
}
