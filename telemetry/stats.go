// Package telemetry provides run statistics, performance timing and CSV output.
package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Backend         string  `csv:"backend"`

	// Particle counts at window end
	Particles int `csv:"particles"`
	Contained int `csv:"contained"` // inside the container
	Falling   int `csv:"falling"`   // above the top edge, not yet in
	Escaped   int `csv:"escaped"`   // below the ground or past a side wall

	// Height distribution in meters (+Y down), sampled at window end
	MeanY float64 `csv:"mean_y"`
	StdY  float64 `csv:"std_y"`
	P10Y  float64 `csv:"p10_y"`
	P50Y  float64 `csv:"p50_y"`
	P90Y  float64 `csv:"p90_y"`

	// Speed in meters per second
	MeanSpeed float64 `csv:"mean_speed"`
	MaxSpeed  float64 `csv:"max_speed"`

	// Interaction during window
	DragStarts int  `csv:"drag_starts"`
	Resets     int  `csv:"resets"`
	Dragging   bool `csv:"dragging"`
}

// Spread holds summary statistics for a sample.
type Spread struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeSpread calculates mean, sample standard deviation and empirical
// percentiles. Returns zeros for an empty sample.
func ComputeSpread(values []float64) Spread {
	n := len(values)
	if n == 0 {
		return Spread{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var s Spread
	if n > 1 {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	s.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return s
}

// ComputeSpeeds returns the mean and maximum of the given speeds.
func ComputeSpeeds(speeds []float64) (mean, maxSpeed float64) {
	if len(speeds) == 0 {
		return 0, 0
	}
	mean = stat.Mean(speeds, nil)
	maxSpeed = math.Inf(-1)
	for _, v := range speeds {
		maxSpeed = math.Max(maxSpeed, v)
	}
	return mean, maxSpeed
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("backend", s.Backend),
		slog.Int("particles", s.Particles),
		slog.Int("contained", s.Contained),
		slog.Int("falling", s.Falling),
		slog.Int("escaped", s.Escaped),
		slog.Float64("mean_y", s.MeanY),
		slog.Float64("std_y", s.StdY),
		slog.Float64("p10_y", s.P10Y),
		slog.Float64("p50_y", s.P50Y),
		slog.Float64("p90_y", s.P90Y),
		slog.Float64("mean_speed", s.MeanSpeed),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Int("drag_starts", s.DragStarts),
		slog.Int("resets", s.Resets),
		slog.Bool("dragging", s.Dragging),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"contained", s.Contained,
		"escaped", s.Escaped,
		"mean_y", s.MeanY,
		"mean_speed", s.MeanSpeed,
		"dragging", s.Dragging,
	)
}
