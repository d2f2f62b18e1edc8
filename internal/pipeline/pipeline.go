// Package pipeline runs one G-code program through the event series stages:
// parse, interpolate, dwell, roller, time series and power perturbation.
//
// The pipeline does not own domain logic; it wires the stage packages
// together in a single forward pass and collects their outputs.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/ampes-dev/ampes/internal/config"
	"github.com/ampes-dev/ampes/internal/dwell"
	"github.com/ampes-dev/ampes/internal/gcode"
	"github.com/ampes-dev/ampes/internal/interp"
	"github.com/ampes-dev/ampes/internal/layers"
	"github.com/ampes-dev/ampes/internal/monitoring"
	"github.com/ampes-dev/ampes/internal/perturb"
	"github.com/ampes-dev/ampes/internal/roller"
	"github.com/ampes-dev/ampes/internal/series"
	"github.com/ampes-dev/ampes/internal/timeseries"
	"github.com/ampes-dev/ampes/internal/timeutil"
)

// Pipeline is a validated, reusable run configuration.
type Pipeline struct {
	cfg      *config.Config
	resolver *layers.Resolver
	src      rand.Source
	clock    timeutil.Clock
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSource sets the random source used for power perturbation.
func WithSource(src rand.Source) Option {
	return func(p *Pipeline) { p.src = src }
}

// WithClock sets the clock used for stage timings.
func WithClock(c timeutil.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// New validates cfg and builds a pipeline. Configuration errors, including a
// roller dwell longer than an interlayer dwell, are reported here before any
// input is read.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg, resolver: r, clock: timeutil.RealClock{}}
	for _, opt := range opts {
		opt(p)
	}
	if p.src == nil {
		p.src = perturb.NewSource(cfg.GetSeed())
	}
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *config.Config { return p.cfg }

// Resolver returns the layer group resolver.
func (p *Pipeline) Resolver() *layers.Resolver { return p.resolver }

// Output is everything one run produces.
type Output struct {
	Series   *series.Series
	Jumps    series.Jumps
	Sections []interp.Section
	Roller   []roller.Event

	// TimeSeries is set when time series output is enabled.
	TimeSeries []timeseries.Sample
	Spans      []timeseries.Span

	// Layers is the number of layers in the event series.
	Layers      int
	Vertices    int
	Truncated   bool
	TruncatedAt int

	Stages []monitoring.StageDuration
}

// Run reads a G-code program from r and produces the event series. The
// context is checked between stages.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Output, error) {
	cfg := p.cfg
	st := monitoring.NewStageTimer(p.clock)

	done := st.Start("parse", "Reading g-code file")
	prog, err := gcode.Parse(r, gcode.ParseOptions{
		InfillFeed:  cfg.InfillFeed(),
		ContourFeed: cfg.ContourFeed(),
		Resolver:    p.resolver,
		Strict:      cfg.GetStrictLayerRanges(),
	})
	done()
	if err != nil {
		return nil, err
	}
	if prog.Truncated {
		monitoring.Logf("Layer %d is outside the configured layer groups; stopping there", prog.TruncatedAt)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done = st.Start("interpolate", "Populating event series output")
	res, err := interp.Run(prog, interp.Params{
		Interval:       cfg.GetInterval(),
		LayerHeight:    cfg.GetLayerHeight(),
		Resolver:       p.resolver,
		TravelSpeed:    cfg.GetTravelSpeed(),
		TimedJump:      cfg.GetTimedJump(),
		RecordSections: cfg.GetCommentEventSeries(),
	})
	done()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, jumps := res.Series, res.Jumps
	out := &Output{
		Jumps:       jumps,
		Sections:    res.Sections,
		Layers:      res.Layers,
		Vertices:    len(prog.Vertices),
		Truncated:   prog.Truncated || res.Truncated,
		TruncatedAt: prog.TruncatedAt,
	}

	if cfg.GetDwell() {
		done = st.Start("dwell", "Adjusting output times for dwell")
		dwell.Apply(s, jumps, dwell.ByLayer(p.resolver), cfg.InitialDelay())
		done()
	} else {
		st.Skip("Skipping dwell")
		if h := cfg.GetHeatUpTime(); h > 0 {
			s.Shift(0, h)
		}
	}

	if cfg.GetRoller() {
		done = st.Start("roller", "Building roller event series")
		out.Roller = roller.Sequence(s, jumps, roller.Params{
			Dwell:   cfg.GetWDwell(),
			Anchor:  cfg.GetRollerAnchor(),
			Initial: cfg.InitialDelay(),
		})
		done()
	} else {
		st.Skip("Skipping roller output")
	}

	// Layer spans are located on the unperturbed power signal.
	out.Spans = timeseries.Spans(s, jumps)
	if cfg.GetTimeSeries() {
		if cfg.GetTimeSeriesSamplePoints() == 0 {
			monitoring.Logf("Warning: time series requested, but number of time points requested between layers is 0")
		}
		done = st.Start("timeseries", "Sampling time series output")
		out.TimeSeries = timeseries.Samples(s, jumps, timeseries.Params{
			Points: cfg.GetTimeSeriesSamplePoints(),
			Roller: out.Roller,
		})
		done()
	}

	if cfg.GetPowerFluctuation() {
		done = st.Start("perturb", "Applying %s scheme to fluctuate power", cfg.GetScheme())
		pt := &perturb.Perturber{Scheme: cfg.GetScheme(), Magnitude: cfg.GetDeviation(), Src: p.src}
		s = s.WithPowers(pt.Apply(s.Powers()))
		done()
	} else {
		st.Skip("Skipping power fluctuation")
	}

	out.Series = s
	out.Stages = st.Stages()
	return out, nil
}
