package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ampes-dev/ampes/internal/chart"
	"github.com/ampes-dev/ampes/internal/config"
	"github.com/ampes-dev/ampes/internal/db"
	"github.com/ampes-dev/ampes/internal/fsutil"
	"github.com/ampes-dev/ampes/internal/monitoring"
	"github.com/ampes-dev/ampes/internal/pipeline"
	"github.com/ampes-dev/ampes/internal/security"
	"github.com/ampes-dev/ampes/internal/timeutil"
	"github.com/ampes-dev/ampes/internal/writer"
)

var errNoGCode = errors.New("no g-code file found")

// options are the resolved command line settings of one run.
type options struct {
	gcode  string
	config string
	outDir string
	base   string
	png    bool
	html   bool
	dbPath string
	seed   int64 // negative keeps the configured seed
}

type runResult struct {
	out   *pipeline.Output
	files []string
	runID string
}

// findGCode returns path when given, or the first *.gcode file in dir.
func findGCode(fs fsutil.FileSystem, dir, path string) (string, error) {
	if path == "" {
		matches, err := fs.Glob(filepath.Join(dir, "*.gcode"))
		if err != nil {
			return "", err
		}
		if len(matches) == 0 {
			return "", fmt.Errorf("%w: no g-code file passed as argument and none in %s", errNoGCode, dir)
		}
		monitoring.Logf("No g-code file passed as argument. Using %s as g-code file", matches[0])
		return matches[0], nil
	}
	if !strings.HasSuffix(path, "gcode") {
		return "", fmt.Errorf("%w: %s does not have a .gcode extension", errNoGCode, path)
	}
	if !fs.Exists(path) {
		return "", fmt.Errorf("%w: given %s", errNoGCode, path)
	}
	return path, nil
}

// run converts one g-code program and writes every requested output.
func run(ctx context.Context, fs fsutil.FileSystem, clock timeutil.Clock, o options) (*runResult, error) {
	if err := security.ValidateBasename(o.base); err != nil {
		return nil, err
	}
	cfg, err := config.Load(o.config)
	if err != nil {
		return nil, err
	}
	if o.seed >= 0 {
		seed := uint64(o.seed)
		cfg.Seed = &seed
	}

	p, err := pipeline.New(cfg, pipeline.WithClock(clock))
	if err != nil {
		return nil, err
	}

	f, err := fs.Open(o.gcode)
	if err != nil {
		return nil, fmt.Errorf("failed to open g-code file: %w", err)
	}
	out, err := p.Run(ctx, f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.gcode, err)
	}

	w := writer.New(fs, clock, cfg, o.outDir, o.base)
	files, err := w.WriteAll(out)
	if err != nil {
		return nil, err
	}
	res := &runResult{out: out, files: files}

	stem := filepath.Join(o.outDir, o.base)
	if o.png {
		pngs, err := chart.RenderPNG(fs, out, stem)
		if err != nil {
			return res, err
		}
		res.files = append(res.files, pngs...)
	}
	if o.html {
		name := stem + ".html"
		if err := writeHTML(fs, out, name, o.base); err != nil {
			return res, err
		}
		res.files = append(res.files, name)
	}

	if o.dbPath != "" {
		id, err := record(o, cfg, out)
		if err != nil {
			return res, err
		}
		res.runID = id
		monitoring.Logf("Recorded run %s in %s", id, o.dbPath)
	}
	return res, nil
}

func writeHTML(fs fsutil.FileSystem, out *pipeline.Output, name, title string) error {
	f, err := fs.Create(name)
	if err != nil {
		return err
	}
	if err := chart.RenderHTML(f, out, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func record(o options, cfg *config.Config, out *pipeline.Output) (string, error) {
	registry, err := db.NewDB(o.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open run registry: %w", err)
	}
	defer registry.Close()

	scheme := "none"
	if cfg.GetPowerFluctuation() {
		scheme = string(cfg.GetScheme())
	}
	id, err := registry.RecordRun(db.RunRecord{
		GCodePath:  o.gcode,
		ConfigPath: o.config,
		OutputDir:  o.outDir,
		Basename:   o.base,
		Layers:     out.Layers,
		Points:     out.Series.Len(),
		Duration:   out.Duration(),
		Truncated:  out.Truncated,
		Scheme:     scheme,
		Seed:       cfg.GetSeed(),
	})
	if err != nil {
		return "", err
	}

	stats := out.LayerStats()
	layers := make([]db.LayerSummary, len(stats))
	for i, st := range stats {
		layers[i] = db.LayerSummary{
			Layer:    st.Layer,
			Start:    st.Start,
			End:      st.End,
			PowerOn:  st.PowerOn,
			PowerOff: st.PowerOff,
			Points:   st.Points,
		}
	}
	return id, registry.RecordLayers(id, layers)
}
