// Package interp turns parsed vertices into the primary event series by
// sub-sampling every segment in space and time and inserting the layer jumps.
package interp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ampes-dev/ampes/internal/gcode"
	"github.com/ampes-dev/ampes/internal/layers"
	"github.com/ampes-dev/ampes/internal/series"
)

// ErrEmptyProgram is returned when there is nothing to interpolate.
var ErrEmptyProgram = errors.New("program has no vertices")

// Params controls interpolation.
type Params struct {
	// Interval is the number of points inserted strictly between the two
	// endpoints of every segment.
	Interval    int
	LayerHeight float64
	Resolver    *layers.Resolver

	// TravelSpeed is used for moves whose feed matches neither bucket. When
	// zero such moves reuse the last infill or contour speed.
	TravelSpeed float64

	// TimedJump advances time by LayerHeight/velocity across a layer jump
	// instead of jumping instantaneously. Jumps before the first move with a
	// known speed stay instantaneous.
	TimedJump bool

	// RecordSections collects the indices where deposition switches between
	// infill and contour.
	RecordSections bool
}

// Section marks the series index where a deposition section begins.
type Section struct {
	Index int
	Class gcode.Class
}

// Result is the interpolated series with its frozen jump list.
type Result struct {
	Series   *series.Series
	Jumps    series.Jumps
	Sections []Section

	// Layers is the number of layers that were interpolated.
	Layers int

	// Truncated is set when the resolver ran out of groups.
	Truncated bool
}

// Run interpolates prog.
func Run(prog *gcode.Program, p Params) (*Result, error) {
	vs := prog.Vertices
	if len(vs) == 0 {
		return nil, ErrEmptyProgram
	}
	if p.Interval < 0 {
		return nil, fmt.Errorf("interval must be non-negative, got %d", p.Interval)
	}
	if p.Resolver == nil {
		return nil, errors.New("interp: nil layer resolver")
	}

	n := p.Interval + 2
	capacity := (len(vs)-1)*(n-1) + 1 + 2*len(prog.LayerMarkers)
	s := series.New(capacity)

	z := startZ(prog)
	s.Append(series.Point{X: vs[0].X, Y: vs[0].Y, Z: z})

	var (
		res      = &Result{Series: s}
		jumps    []series.Jump
		layer    = 1
		next     = 2 // marker of the next layer to start
		sealed   bool
		vel      float64
		haveVel  bool
		section  = gcode.ClassOther
		xs       = make([]float64, n)
		ys       = make([]float64, n)
		ts       = make([]float64, n)
		markers  = prog.LayerMarkers
		heightUp = p.LayerHeight
	)

	jump := func(v float64) {
		last := s.Last()
		jt := last.T
		if p.TimedJump && v > 0 {
			jt += heightUp / v
		}
		jumps = append(jumps, series.Jump{Index: s.Len(), Layer: layer})
		s.Append(
			series.Point{T: last.T, X: last.X, Y: last.Y, Z: z},
			series.Point{T: jt, X: last.X, Y: last.Y, Z: z + heightUp},
		)
		z += heightUp
		layer++
		next++
		sealed = true
	}

	for i := 1; i < len(vs); i++ {
		// Layers that ended at or before the segment start vertex, which the
		// end-of-segment check below cannot see: a single-vertex first layer
		// or Z words with no move in between.
		for next < len(markers) && markers[next] <= i {
			jump(vel)
		}

		g, ok := p.Resolver.Resolve(layer)
		if !ok {
			res.Truncated = true
			break
		}

		a, b := vs[i-1], vs[i]
		var v float64
		switch b.Class {
		case gcode.ClassInfill:
			v = g.Infill.Speed
			vel, haveVel = v, true
		case gcode.ClassContour:
			v = g.Contour.Speed
			vel, haveVel = v, true
		default:
			switch {
			case p.TravelSpeed > 0:
				v = p.TravelSpeed
			case haveVel:
				v = vel
			default:
				v = g.Infill.Speed
			}
		}
		if v <= 0 {
			return nil, fmt.Errorf("segment %d in layer %d: non-positive velocity %g", i, layer, v)
		}

		power := powerFor(b, g)
		if p.RecordSections && b.Class != gcode.ClassOther && b.Class != section {
			res.Sections = append(res.Sections, Section{Index: s.Len() - 1, Class: b.Class})
			section = b.Class
		}

		t0 := s.Last().T
		dt := math.Hypot(b.X-a.X, b.Y-a.Y) / v
		floats.Span(xs, a.X, b.X)
		floats.Span(ys, a.Y, b.Y)
		floats.Span(ts, t0, t0+dt)

		// The previous segment's last point is shared with this one. It takes
		// this segment's power and z, unless it is a sealed jump point.
		if sealed {
			sealed = false
		} else {
			s.ReplaceLast(series.Point{T: ts[0], X: xs[0], Y: ys[0], Z: z, Power: power})
		}
		for k := 1; k < n; k++ {
			s.Append(series.Point{T: ts[k], X: xs[k], Y: ys[k], Z: z, Power: power})
		}

		for next < len(markers) && i == markers[next]-1 {
			jump(v)
		}
	}

	res.Jumps = series.NewJumps(jumps)
	res.Layers = layer
	return res, nil
}

// startZ is the height of the first printed layer. Marker 0 is the
// pre-build position, so the first layer's Z is used when there is one.
func startZ(prog *gcode.Program) float64 {
	switch {
	case len(prog.LayerZ) > 1:
		return prog.LayerZ[1]
	case len(prog.LayerZ) == 1:
		return prog.LayerZ[0]
	default:
		return 0
	}
}

func powerFor(v gcode.Vertex, g layers.Group) float64 {
	if !v.Deposit {
		return 0
	}
	switch v.Class {
	case gcode.ClassInfill:
		return g.Infill.Power
	case gcode.ClassContour:
		return g.Contour.Power
	default:
		return 0
	}
}
