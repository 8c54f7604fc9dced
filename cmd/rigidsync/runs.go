package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rigidsync/internal/analysis"
	"github.com/san-kum/rigidsync/internal/export"
	"github.com/san-kum/rigidsync/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene()
	if err != nil {
		return err
	}
	st, cat, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	if _, err := cat.Sync(st); err != nil {
		return err
	}
	recs, err := cat.List(limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tFRAMES\tSIM\tBODIES\tGRAVITY Y\tPEAK KE")
	for _, rec := range recs {
		params, metrics, err := rec.Decode()
		if err != nil {
			return fmt.Errorf("run %s: %w", rec.ID, err)
		}
		bodies := fmt.Sprintf("%d", rec.Bodies)
		if rec.Failed > 0 {
			bodies = fmt.Sprintf("%d (+%d failed)", rec.Bodies, rec.Failed)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%s\t%.2f\t%.3f\n",
			rec.ID,
			rec.Preset,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Frames,
			rec.SimTime,
			bodies,
			params.Gravity[1],
			metrics["peak_energy"],
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Trace, error) {
	cfg, err := loadScene()
	if err != nil {
		return nil, nil, err
	}
	st := storage.New(cfg.Run.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(tr.Samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no recorded frames", runID)
	}
	return meta, tr, nil
}

// selectedBodies is --body, or every body of the trace.
func selectedBodies(tr *storage.Trace) []string {
	if bodyName != "" {
		return []string{bodyName}
	}
	return tr.Bodies()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(tr.Samples))

	for _, body := range selectedBodies(tr) {
		_, heights := tr.Heights(body)
		if len(heights) < 2 {
			fmt.Printf("%s: not enough samples\n\n", body)
			continue
		}
		graph := asciigraph.Plot(heights,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(body+" height"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	// samples are evenly spaced in frames; recover the recording rate from
	// the simulated span
	rate := meta.FrameRate
	if span := tr.Samples[len(tr.Samples)-1].Time - tr.Samples[0].Time; span > 0 {
		rate = float64(len(tr.ForBody(tr.Samples[0].Body))-1) / span
	}

	fmt.Printf("analysis: %s (%s)\n\n", meta.ID, meta.Preset)
	for _, body := range selectedBodies(tr) {
		_, heights := tr.Heights(body)
		if len(heights) < 4 {
			continue
		}
		bounces := analysis.Bounces(tr, body)
		freq, power := analysis.DominantFrequency(heights, rate)

		fmt.Printf("%s\n", body)
		fmt.Printf("  bounces: %d\n", len(bounces))
		if len(bounces) > 0 {
			fmt.Printf("  first impact: %.3f m/s at %.2fs\n", bounces[0].Impact, bounces[0].Time)
			fmt.Printf("  mean restitution: %.3f\n", analysis.MeanRestitution(bounces))
		}
		fmt.Printf("  dominant frequency: %.3f hz (power %.3f)\n", freq, power)
		if freq > 0 {
			fmt.Printf("  period: %.3f s\n", 1/freq)
		}

		if bodyName != "" {
			fmt.Println("\nheight / vertical velocity:")
			fmt.Println(analysis.PhasePortraitToASCII(analysis.HeightPortrait(tr, body), 60, 20))
		}
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if influxURL != "" {
		return exportInflux(cmd, meta, tr)
	}

	var out io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*storage.RunMetadata
			Samples []storage.Sample `json:"samples"`
		}{meta, tr.Samples})
	case "svg":
		svg := export.TraceToSVG(tr, 800, 400)
		if svg == "" {
			return fmt.Errorf("nothing to plot")
		}
		_, err := io.WriteString(out, svg)
		return err
	default:
		return fmt.Errorf("unknown format %q (json or svg)", format)
	}
}

func exportInflux(cmd *cobra.Command, meta *storage.RunMetadata, tr *storage.Trace) error {
	cfg, err := loadScene()
	if err != nil {
		return err
	}
	opts := storage.InfluxOptions{
		URL:    influxURL,
		Token:  cfg.Influx.Token,
		Org:    cfg.Influx.Org,
		Bucket: cfg.Influx.Bucket,
	}
	if opts.Token == "" {
		opts.Token = os.Getenv("INFLUX_TOKEN")
	}

	ctx, stop := signalContext()
	defer stop()

	w, closeClient, err := storage.NewInfluxWriter(ctx, opts)
	if err != nil {
		return err
	}
	defer closeClient()

	n, err := storage.ExportInflux(ctx, w, meta.ID, tr, meta.Timestamp, 2500)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d points to %s/%s\n", n, opts.Org, opts.Bucket)
	return nil
}
