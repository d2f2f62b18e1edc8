// Package timeseries picks the timestamps at which the solver should write
// its field output: when the source turns on in each layer, a number of
// evenly spaced points in between, and when it turns off.
package timeseries

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ampes-dev/ampes/internal/roller"
	"github.com/ampes-dev/ampes/internal/series"
)

// Kind labels a sample.
type Kind int

const (
	RollerStart Kind = iota
	PowerOn
	Intermediate
	PowerOff
)

func (k Kind) String() string {
	switch k {
	case RollerStart:
		return "roller_start"
	case PowerOn:
		return "power_on"
	case Intermediate:
		return "intermediate"
	default:
		return "power_off"
	}
}

// Sample is one requested output time.
type Sample struct {
	T     float64
	Layer int // 1-based
	Kind  Kind
}

// Params configures Sample.
type Params struct {
	// Points is the number of samples between power-on and power-off.
	Points int

	// Roller, when set, adds the start of each layer's roller traverse
	// before the layer's power-on time.
	Roller []roller.Event
}

// Span is the index range a layer occupies in the series, with the
// power-on and power-off indices found inside it.
type Span struct {
	Layer    int
	Start    int
	End      int
	PowerOn  int
	PowerOff int
}

// Spans returns one span per layer. Layer k runs from the jump that starts
// it (index 0 for the first layer) to the jump that ends it (the last index
// for the final layer). The first layer is taken to be powered from index 0;
// later layers search forward for the first non-zero sample. Power-off is the
// point after the last non-zero sample, or End when that sample is End.
func Spans(s *series.Series, jumps series.Jumps) []Span {
	n := s.Len()
	if n == 0 {
		return nil
	}
	spans := make([]Span, 0, jumps.Len()+1)
	start := 0
	for k := 0; k <= jumps.Len(); k++ {
		end := n - 1
		if k < jumps.Len() {
			end = jumps.At(k).Index
		}
		sp := Span{Layer: k + 1, Start: start, End: end, PowerOn: start, PowerOff: end}
		if k > 0 {
			if i, ok := series.FindFirst(n, s.NonZeroPower, start, end, series.Forward); ok {
				sp.PowerOn = i
			}
		}
		if i, ok := series.FindFirst(n, s.NonZeroPower, end, start, series.Backward); ok && i != end {
			sp.PowerOff = i + 1
		}
		spans = append(spans, sp)
		start = end
	}
	return spans
}

// Samples returns the output times for every layer, in order. The series is
// only read.
func Samples(s *series.Series, jumps series.Jumps, p Params) []Sample {
	var out []Sample
	idx := make([]float64, p.Points+2)
	for k, sp := range Spans(s, jumps) {
		if p.Roller != nil {
			if t, ok := roller.LayerStart(p.Roller, k); ok {
				out = append(out, Sample{T: t, Layer: sp.Layer, Kind: RollerStart})
			}
		}
		out = append(out, Sample{T: s.T(sp.PowerOn), Layer: sp.Layer, Kind: PowerOn})
		if p.Points > 0 {
			floats.Span(idx, float64(sp.PowerOn), float64(sp.PowerOff))
			for _, f := range idx[1 : len(idx)-1] {
				out = append(out, Sample{T: s.T(int(f)), Layer: sp.Layer, Kind: Intermediate})
			}
		}
		out = append(out, Sample{T: s.T(sp.PowerOff), Layer: sp.Layer, Kind: PowerOff})
	}
	return out
}
