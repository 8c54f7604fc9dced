package storage

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const influxMeasurement = "body_state"

// PointWriter is the part of the InfluxDB write API the exporter needs.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

var _ PointWriter = (api.WriteAPIBlocking)(nil)

type InfluxOptions struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// NewInfluxWriter connects to InfluxDB and returns a blocking writer and a
// function that closes the client.
func NewInfluxWriter(ctx context.Context, opts InfluxOptions) (api.WriteAPIBlocking, func(), error) {
	client := influxdb2.NewClientWithOptions(opts.URL, opts.Token, influxdb2.DefaultOptions().SetBatchSize(2500))
	ok, err := client.Ping(ctx)
	if err != nil || !ok {
		client.Close()
		if err == nil {
			err = fmt.Errorf("influx at %s is not responding", opts.URL)
		}
		return nil, nil, err
	}
	return client.WriteAPIBlocking(opts.Org, opts.Bucket), client.Close, nil
}

// Points converts a trace into body_state points stamped from start.
func Points(runID string, trace *Trace, start time.Time) []*write.Point {
	points := make([]*write.Point, 0, len(trace.Samples))
	for _, s := range trace.Samples {
		ts := start.Add(time.Duration(s.Time * float64(time.Second)))
		p := influxdb2.NewPointWithMeasurement(influxMeasurement).
			AddTag("run", runID).
			AddTag("body", s.Body).
			AddField("x", s.Position.X()).
			AddField("y", s.Position.Y()).
			AddField("z", s.Position.Z()).
			AddField("vx", s.Velocity.X()).
			AddField("vy", s.Velocity.Y()).
			AddField("vz", s.Velocity.Z()).
			AddField("sleeping", s.Sleeping).
			SetTime(ts)
		points = append(points, p)
	}
	return points
}

// ExportInflux writes the trace in batches and returns the number of points
// written.
func ExportInflux(ctx context.Context, w PointWriter, runID string, trace *Trace, start time.Time, batch int) (int, error) {
	if batch <= 0 {
		batch = 2500
	}
	points := Points(runID, trace, start)
	written := 0
	for len(points) > 0 {
		n := min(batch, len(points))
		if err := w.WritePoint(ctx, points[:n]...); err != nil {
			return written, fmt.Errorf("write points: %w", err)
		}
		written += n
		points = points[n:]
	}
	return written, nil
}
