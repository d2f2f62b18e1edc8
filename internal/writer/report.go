package writer

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/ampes-dev/ampes/internal/config"
	"github.com/ampes-dev/ampes/internal/layers"
	"github.com/ampes-dev/ampes/internal/units"
)

var paramHeader = []string{"Parameter", "Value", "Unit"}

// WriteProcessParams writes the human readable process parameter report for
// cfg, stamped with now.
func WriteProcessParams(w io.Writer, cfg *config.Config, now time.Time) error {
	return flush(w, func(cw *csv.Writer) error { return writeProcessParams(cw, cfg, now) })
}

func writeProcessParams(cw *csv.Writer, cfg *config.Config, now time.Time) error {
	rows := [][]string{
		{"Developed " + now.Format("2006/02/01") + " at " + now.Format("15:04")},
		{},
	}

	if !cfg.Grouped() && len(cfg.LayerGroups) == 1 {
		g := cfg.LayerGroups[0]
		rows = append(rows, []string{"##Print parameters"}, paramHeader)
		rows = append(rows, sectionRows("Infill", g.Infill, true)...)
		rows = append(rows, sectionRows("Contour", g.Contour, true)...)
		rows = append(rows, param("Interlayer Dwell Time", num(g.GetInterlayerDwell()), "s"))
	} else {
		for i, g := range cfg.LayerGroups {
			rows = append(rows, []string{}, []string{"##Layer group print parameters", g.Name}, paramHeader)
			if len(g.Layers) == 2 {
				r := layers.Range{First: g.Layers[0], Last: g.Layers[1]}
				rows = append(rows, param("Layers in Group", r.String(), "count"))
			}
			rows = append(rows, sectionRows("Infill", g.Infill, i == 0)...)
			rows = append(rows, sectionRows("Contour", g.Contour, i == 0)...)
			if g.InterlayerDwell != nil {
				rows = append(rows, param("Dwell Time", num(*g.InterlayerDwell), "s"))
			}
		}
	}

	if cfg.GetRoller() {
		rows = append(rows, []string{}, []string{"##Roller parameters"}, paramHeader,
			param("Roller time", num(cfg.GetWDwell()), "s"))
	}
	if h := cfg.GetHeatUpTime(); h > 0 {
		rows = append(rows, []string{}, []string{"##Heat-up parameters"}, paramHeader,
			param("Heat-up time", num(h), "s"))
	}
	if cfg.GetPowerFluctuation() {
		rows = append(rows, []string{}, []string{"##Power fluctuation parameters"}, paramHeader,
			param("Scheme", string(cfg.GetScheme()), "-"),
			param("Deviation", num(cfg.GetDeviation()), "mW"))
	}

	rows = append(rows, []string{}, []string{"##Overall parameters"},
		param("Intervals", strconv.Itoa(cfg.GetInterval()), "#"),
		param("Layer Height", num(cfg.GetLayerHeight()), "mm"),
		param("Substrate Thickness", num(cfg.GetSubstrate()), "mm"),
		param("Origin Shift in X", num(cfg.GetXOrgShift()), "mm"),
		param("Origin Shift in Y", num(cfg.GetYOrgShift()), "mm"),
		param("Origin Shift in Z", num(cfg.GetZOrgShift()), "mm"),
	)
	return cw.WriteAll(rows)
}

// sectionRows lists the speeds and power of one section. The base velocity
// is the speed the slicer used and is only known for the first group.
func sectionRows(name string, s config.Section, withBase bool) [][]string {
	var rows [][]string
	if withBase && s.BaseSpeed != nil {
		rows = append(rows, param(name+" Base Velocity", num(*s.BaseSpeed), units.MMPerSecond))
	}
	return append(rows,
		param(name+" Output Velocity", num(s.Speed()), units.MMPerSecond),
		param(name+" Power", num(s.Power), "mW"),
	)
}

func param(name, value, unit string) []string {
	return []string{name, value, unit}
}

func num(v float64) string { return formatFloat(v, -1) }
