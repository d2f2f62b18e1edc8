package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ampes-dev/ampes/internal/pipeline"
)

// RenderHTML writes an interactive page with the power and z signals over
// time and a per-layer timing bar chart.
func RenderHTML(w io.Writer, out *pipeline.Output, title string) error {
	if out == nil || out.Series == nil {
		return fmt.Errorf("chart: empty event series")
	}
	page := components.NewPage()
	page.AddCharts(signalChart(out, title), layerChart(out))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html chart: %w", err)
	}
	return nil
}

func signalChart(out *pipeline.Output, title string) *charts.Line {
	s := out.Series
	step := stride(s.Len(), maxPoints)
	power := make([]opts.LineData, 0, s.Len()/step+1)
	z := make([]opts.LineData, 0, s.Len()/step+1)
	for i := 0; i < s.Len(); i += step {
		pt := s.At(i)
		power = append(power, opts.LineData{Value: []interface{}{pt.T, pt.Power}})
		z = append(z, opts.LineData{Value: []interface{}{pt.T, pt.Z}})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("points=%d stride=%d layers=%d", len(power), step, out.Layers)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "power (mW)"}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "z (mm)"})
	line.AddSeries("power", power).
		AddSeries("z", z, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	return line
}

func layerChart(out *pipeline.Output) *charts.Bar {
	stats := out.LayerStats()
	names := make([]string, 0, len(stats))
	deposit := make([]opts.BarData, 0, len(stats))
	total := make([]opts.BarData, 0, len(stats))
	for _, st := range stats {
		names = append(names, fmt.Sprintf("%d", st.Layer))
		deposit = append(deposit, opts.BarData{Value: st.PowerOff - st.PowerOn})
		total = append(total, opts.BarData{Value: st.End - st.Start})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Layer timing"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "layer"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "t (s)"}),
	)
	bar.SetXAxis(names).
		AddSeries("deposition", deposit).
		AddSeries("layer", total)
	return bar
}
