// Package chart renders a pipeline run for inspection: static PNG plots of
// the tool path and power signal, and an interactive HTML page.
package chart

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ampes-dev/ampes/internal/fsutil"
	"github.com/ampes-dev/ampes/internal/pipeline"
)

// maxPoints bounds the points drawn per chart.
const maxPoints = 20000

// legendLayers is the largest layer count that still gets a legend entry per
// layer in the path plot.
const legendLayers = 12

// RenderPNG writes <stem>_path.png and <stem>_power.png and returns the
// paths written.
func RenderPNG(fs fsutil.FileSystem, out *pipeline.Output, stem string) ([]string, error) {
	if out == nil || out.Series == nil || out.Series.Len() == 0 {
		return nil, errors.New("chart: empty event series")
	}
	path, err := pathPlot(out)
	if err != nil {
		return nil, err
	}
	power, err := powerPlot(out)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, f := range []struct {
		p    *plot.Plot
		w, h vg.Length
		name string
	}{
		{path, 8 * vg.Inch, 8 * vg.Inch, stem + "_path.png"},
		{power, 14 * vg.Inch, 6 * vg.Inch, stem + "_power.png"},
	} {
		if err := save(fs, f.p, f.w, f.h, f.name); err != nil {
			return written, err
		}
		written = append(written, f.name)
	}
	return written, nil
}

func save(fs fsutil.FileSystem, p *plot.Plot, w, h vg.Length, name string) error {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	f, err := fs.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", name, err)
	}
	return f.Close()
}

// pathPlot draws the x/y path of every layer in its own colour.
func pathPlot(out *pipeline.Output) (*plot.Plot, error) {
	s := out.Series
	p := plot.New()
	p.Title.Text = "Tool path"
	p.X.Label.Text = "x (mm)"
	p.Y.Label.Text = "y (mm)"

	spans := out.Spans
	step := stride(s.Len(), maxPoints)
	colors := layerColors(len(spans))
	for k, sp := range spans {
		pts := make(plotter.XYs, 0, (sp.End-sp.Start)/step+2)
		for i := sp.Start; i <= sp.End; i += step {
			pt := s.At(i)
			pts = append(pts, plotter.XY{X: pt.X, Y: pt.Y})
		}
		if len(pts) < 2 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = colors[k]
		line.Width = vg.Points(0.5)
		p.Add(line)
		if len(spans) <= legendLayers {
			p.Legend.Add(fmt.Sprintf("layer %d", sp.Layer), line)
		}
	}
	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}

// powerPlot draws power against time and marks the layer jumps.
func powerPlot(out *pipeline.Output) (*plot.Plot, error) {
	s := out.Series
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Power (%d layers)", out.Layers)
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = "power (mW)"

	step := stride(s.Len(), maxPoints)
	pts := make(plotter.XYs, 0, s.Len()/step+1)
	for i := 0; i < s.Len(); i += step {
		pts = append(pts, plotter.XY{X: s.T(i), Y: s.PowerAt(i)})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(0.5)
	p.Add(line)
	p.Legend.Add("power", line)

	if out.Jumps.Len() > 0 {
		marks := make(plotter.XYs, 0, out.Jumps.Len())
		for _, idx := range out.Jumps.Indices() {
			marks = append(marks, plotter.XY{X: s.T(idx), Y: 0})
		}
		sc, err := plotter.NewScatter(marks)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add("layer jump", sc)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}
