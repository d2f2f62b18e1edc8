// Package writer serialises a pipeline run into the comma separated files the
// thermal solver reads: the primary event series, the roller event series,
// the time series output times and the process parameter report.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ampes-dev/ampes/internal/config"
	"github.com/ampes-dev/ampes/internal/fsutil"
	"github.com/ampes-dev/ampes/internal/interp"
	"github.com/ampes-dev/ampes/internal/monitoring"
	"github.com/ampes-dev/ampes/internal/pipeline"
	"github.com/ampes-dev/ampes/internal/roller"
	"github.com/ampes-dev/ampes/internal/series"
	"github.com/ampes-dev/ampes/internal/timeseries"
	"github.com/ampes-dev/ampes/internal/timeutil"
)

// Paths are the output files of one run.
type Paths struct {
	EventSeries   string
	Roller        string
	TimeSeries    string
	ProcessParams string
}

// PathsFor returns the output paths for basename base inside dir.
func PathsFor(dir, base string) Paths {
	stem := filepath.Join(dir, base)
	return Paths{
		EventSeries:   stem + ".inp",
		Roller:        stem + "_roller.inp",
		TimeSeries:    stem + "_time_series.inp",
		ProcessParams: stem + "_process_parameter.csv",
	}
}

// Format controls how coordinates and times are written.
type Format struct {
	ESPrecision int
	TSPrecision int
	ZPrecision  int

	Substrate float64
	XShift    float64
	YShift    float64
	ZShift    float64

	// CommentString prefixes section comment rows. Comment rows are only
	// written when Comments is set.
	Comments      bool
	CommentString string
}

// FormatFrom reads the output format from cfg.
func FormatFrom(cfg *config.Config) Format {
	return Format{
		ESPrecision:   cfg.GetESPrecision(),
		TSPrecision:   cfg.GetTSPrecision(),
		ZPrecision:    cfg.GetZPrecision(),
		Substrate:     cfg.GetSubstrate(),
		XShift:        cfg.GetXOrgShift(),
		YShift:        cfg.GetYOrgShift(),
		ZShift:        cfg.GetZOrgShift(),
		Comments:      cfg.GetCommentEventSeries(),
		CommentString: cfg.GetCommentString(),
	}
}

// z maps a series height to the solver frame.
func (f Format) z(v float64) string {
	return formatFloat(v-f.Substrate+f.ZShift, f.ZPrecision)
}

// Writer writes every enabled output of a run.
type Writer struct {
	fs    fsutil.FileSystem
	clock timeutil.Clock
	cfg   *config.Config
	dir   string
	paths Paths
}

// New returns a writer that places files named after base in dir.
func New(fs fsutil.FileSystem, clock timeutil.Clock, cfg *config.Config, dir, base string) *Writer {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Writer{fs: fs, clock: clock, cfg: cfg, dir: dir, paths: PathsFor(dir, base)}
}

// Paths returns the output paths.
func (w *Writer) Paths() Paths { return w.paths }

// WriteAll writes the event series and, when enabled in the configuration,
// the roller, time series and process parameter files. It returns the paths
// written, in order.
func (w *Writer) WriteAll(out *pipeline.Output) ([]string, error) {
	if err := w.fs.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}
	f := FormatFrom(w.cfg)
	var written []string

	monitoring.Logf("Writing print path event series to %s", w.paths.EventSeries)
	if err := w.create(w.paths.EventSeries, func(cw *csv.Writer) error {
		return writeEventSeries(cw, out.Series, out.Sections, f)
	}); err != nil {
		return written, err
	}
	written = append(written, w.paths.EventSeries)

	if w.cfg.GetRoller() {
		monitoring.Logf("Writing roller event series to %s", w.paths.Roller)
		if err := w.create(w.paths.Roller, func(cw *csv.Writer) error {
			return writeRoller(cw, out.Roller, f)
		}); err != nil {
			return written, err
		}
		written = append(written, w.paths.Roller)
	}

	if w.cfg.GetTimeSeries() {
		monitoring.Logf("Writing time series output to %s", w.paths.TimeSeries)
		if err := w.create(w.paths.TimeSeries, func(cw *csv.Writer) error {
			return writeTimeSeries(cw, out.TimeSeries, f)
		}); err != nil {
			return written, err
		}
		written = append(written, w.paths.TimeSeries)
	} else {
		monitoring.Logf("Skipping time series output")
	}

	if w.cfg.GetProcessParamRequest() {
		monitoring.Logf("Writing process parameter csv file to %s", w.paths.ProcessParams)
		now := w.clock.Now()
		if err := w.create(w.paths.ProcessParams, func(cw *csv.Writer) error {
			return writeProcessParams(cw, w.cfg, now)
		}); err != nil {
			return written, err
		}
		written = append(written, w.paths.ProcessParams)
	} else {
		monitoring.Logf("Skipping process parameter output")
	}
	return written, nil
}

func (w *Writer) create(name string, fill func(*csv.Writer) error) error {
	f, err := w.fs.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	cw := csv.NewWriter(f)
	if err := fill(cw); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	return nil
}

// WriteEventSeries writes the primary event series rows (t, x, y, z, power).
// When f.Comments is set, a comment row naming the section is placed before
// the row at which each section begins.
func WriteEventSeries(w io.Writer, s *series.Series, sections []interp.Section, f Format) error {
	return flush(w, func(cw *csv.Writer) error { return writeEventSeries(cw, s, sections, f) })
}

// WriteRoller writes the roller rows. Engaged rows carry the -90 degree
// direction and 1.0 state, retracted rows 90 and 0.0.
func WriteRoller(w io.Writer, events []roller.Event, f Format) error {
	return flush(w, func(cw *csv.Writer) error { return writeRoller(cw, events, f) })
}

// WriteTimeSeries writes one output time per row.
func WriteTimeSeries(w io.Writer, samples []timeseries.Sample, f Format) error {
	return flush(w, func(cw *csv.Writer) error { return writeTimeSeries(cw, samples, f) })
}

func flush(w io.Writer, fill func(*csv.Writer) error) error {
	cw := csv.NewWriter(w)
	if err := fill(cw); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeEventSeries(cw *csv.Writer, s *series.Series, sections []interp.Section, f Format) error {
	next := 0
	for i := 0; i < s.Len(); i++ {
		for f.Comments && next < len(sections) && sections[next].Index <= i {
			row := []string{f.CommentString + " " + sections[next].Class.String() + " section"}
			if err := cw.Write(row); err != nil {
				return err
			}
			next++
		}
		p := s.At(i)
		row := []string{
			formatFloat(p.T, f.ESPrecision),
			formatFloat(p.X+f.XShift, f.ESPrecision),
			formatFloat(p.Y+f.YShift, f.ESPrecision),
			f.z(p.Z),
			formatFloat(p.Power, f.ESPrecision),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeRoller(cw *csv.Writer, events []roller.Event, f Format) error {
	for _, e := range events {
		direction, state := "90", "0.0"
		if e.State == roller.Engaged {
			direction, state = "-90", "1.0"
		}
		row := []string{formatFloat(e.T, f.ESPrecision), direction, "180", f.z(e.Z), state}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeTimeSeries(cw *csv.Writer, samples []timeseries.Sample, f Format) error {
	for _, s := range samples {
		if err := cw.Write([]string{formatFloat(s.T, f.TSPrecision)}); err != nil {
			return err
		}
	}
	return nil
}

// formatFloat rounds v to prec decimals (no rounding when prec is negative)
// and always keeps a decimal point so the solver reads the column as real.
func formatFloat(v float64, prec int) string {
	if prec >= 0 {
		p := math.Pow10(prec)
		v = math.Round(v*p) / p
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
