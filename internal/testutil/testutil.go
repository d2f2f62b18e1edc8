// Package testutil provides shared test fixtures: a G-code program builder,
// configuration documents and assertions over event series columns.
package testutil

import (
	"fmt"
	"strings"
	"testing"
)

// Feed rates (mm/min) matching the base speeds in the fixture configs.
const (
	InfillFeed  = 600.0 // 10 mm/s
	ContourFeed = 480.0 // 8 mm/s
)

// GCode builds a slicer-like program line by line.
type GCode struct {
	b strings.Builder
	e float64
}

// NewGCode returns a builder that starts with a header comment.
func NewGCode() *GCode {
	g := &GCode{}
	g.b.WriteString("; generated for tests\nG21\nG90\nM82\n")
	return g
}

// Z moves to a new layer height.
func (g *GCode) Z(z float64) *GCode {
	fmt.Fprintf(&g.b, "G1 Z%.3f\n", z)
	return g
}

// Travel moves without extrusion at the given feed.
func (g *GCode) Travel(x, y, feed float64) *GCode {
	fmt.Fprintf(&g.b, "G0 F%g X%.3f Y%.3f\n", feed, x, y)
	return g
}

// Extrude deposits along a move at the given feed.
func (g *GCode) Extrude(x, y, feed float64) *GCode {
	g.e += 0.1
	fmt.Fprintf(&g.b, "G1 F%g X%.3f Y%.3f E%.5f\n", feed, x, y, g.e)
	return g
}

// Comment adds a non-movement line.
func (g *GCode) Comment(text string) *GCode {
	fmt.Fprintf(&g.b, ";%s\n", text)
	return g
}

// String returns the program text.
func (g *GCode) String() string { return g.b.String() }

// SquareTower returns a program with a pre-build Z move followed by n layers.
// Each layer travels to the origin, prints one infill line across the square
// and then the contour around it.
func SquareTower(n int, side, layerHeight float64) string {
	g := NewGCode().Z(5).Travel(0, 0, 3000)
	for k := 1; k <= n; k++ {
		g.Comment(fmt.Sprintf("LAYER:%d", k)).Z(float64(k) * layerHeight)
		g.Travel(0, 0, 3000).
			Extrude(side, side, InfillFeed).
			Extrude(side, 0, ContourFeed).
			Extrude(0, 0, ContourFeed).
			Extrude(0, side, ContourFeed).
			Extrude(side, side, ContourFeed)
	}
	return g.String()
}

// SingleGroupYAML is a minimal configuration with one implicit group.
const SingleGroupYAML = `
layer_groups:
  all:
    infill: {base_speed: 10, power: 200}
    contour: {base_speed: 8, power: 150}
    interlayer_dwell: 4
interval: 1
layer_height: 0.25
substrate: 0
xorg_shift: 0
yorg_shift: 0
zorg_shift: 0
dwell: true
roller: false
power_fluctuation: false
comment_event_series: false
process_param_request: false
time_series: false
`

// GroupedYAML has two layer groups covering layers 1-2 and 3-4, a roller
// and time series output.
const GroupedYAML = `
layer_groups:
  base:
    layers: [1, 2]
    infill: {base_speed: 10, power: 200}
    contour: {base_speed: 8, power: 150}
    interlayer_dwell: 5
  top:
    layers: [3, 4]
    infill: {output_speed: 20, power: 300}
    contour: {output_speed: 16, power: 250}
    interlayer_dwell: 3
interval: 2
layer_height: 0.25
substrate: 0.5
xorg_shift: 1
yorg_shift: 2
zorg_shift: 0
dwell: true
roller: true
w_dwell: 2
heat_up_time: 1
power_fluctuation: false
comment_event_series: true
comment_string: "**"
process_param_request: true
time_series: true
time_series_sample_points: 2
`

// AssertNonDecreasing fails the test when v decreases anywhere.
func AssertNonDecreasing(t testing.TB, v []float64) {
	t.Helper()
	for i := 1; i < len(v); i++ {
		if v[i] < v[i-1] {
			t.Errorf("value decreases at index %d: %g -> %g", i, v[i-1], v[i])
			return
		}
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
