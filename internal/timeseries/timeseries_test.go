package timeseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampes-dev/ampes/internal/roller"
	"github.com/ampes-dev/ampes/internal/series"
)

func threeLayerSeries() (*series.Series, series.Jumps) {
	s := series.New(8)
	s.Append(
		series.Point{T: 3, Z: 0.2, Power: 100},
		series.Point{T: 4, Z: 0.2, Power: 100},
		series.Point{T: 8, Z: 0.2},
		series.Point{T: 8, Z: 0.4},
		series.Point{T: 9, Z: 0.4, Power: 100},
		series.Point{T: 13, Z: 0.4},
		series.Point{T: 13, Z: 0.6},
		series.Point{T: 14, Z: 0.6, Power: 100},
	)
	return s, series.NewJumps([]series.Jump{{Index: 2, Layer: 1}, {Index: 5, Layer: 2}})
}

func times(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.T
	}
	return out
}

func TestSpans(t *testing.T) {
	s, jumps := threeLayerSeries()
	assert.Equal(t, []Span{
		{Layer: 1, Start: 0, End: 2, PowerOn: 0, PowerOff: 2},
		{Layer: 2, Start: 2, End: 5, PowerOn: 4, PowerOff: 5},
		{Layer: 3, Start: 5, End: 7, PowerOn: 7, PowerOff: 7},
	}, Spans(s, jumps))
}

func TestSpans_UnpoweredLayer(t *testing.T) {
	s := series.New(4)
	s.Append(
		series.Point{T: 0, Power: 1},
		series.Point{T: 1},
		series.Point{T: 1},
		series.Point{T: 2},
	)
	spans := Spans(s, series.NewJumps([]series.Jump{{Index: 1, Layer: 1}}))
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Layer: 2, Start: 1, End: 3, PowerOn: 1, PowerOff: 3}, spans[1])
}

func TestSamples(t *testing.T) {
	s, jumps := threeLayerSeries()

	got := Samples(s, jumps, Params{})
	assert.Equal(t, []float64{3, 8, 9, 13, 14, 14}, times(got))
	assert.Equal(t, PowerOn, got[0].Kind)
	assert.Equal(t, PowerOff, got[1].Kind)
	assert.Equal(t, 2, got[2].Layer)

	got = Samples(s, jumps, Params{Points: 1})
	assert.Equal(t, []float64{3, 4, 8, 9, 9, 13, 14, 14, 14}, times(got))
	assert.Equal(t, Intermediate, got[1].Kind)
}

func TestSamples_WithRoller(t *testing.T) {
	s, jumps := threeLayerSeries()
	events := roller.Sequence(s, jumps, roller.Params{Dwell: 2})

	got := Samples(s, jumps, Params{Roller: events})
	assert.Equal(t, []float64{1, 3, 8, 6, 9, 13, 11, 14, 14}, times(got))
	assert.Equal(t, RollerStart, got[0].Kind)
	assert.Equal(t, RollerStart, got[3].Kind)
}

func TestSamples_ReadOnly(t *testing.T) {
	s, jumps := threeLayerSeries()
	before := s.Times()
	_ = Samples(s, jumps, Params{Points: 3})
	assert.Equal(t, before, s.Times())
}

func TestSamples_Empty(t *testing.T) {
	assert.Empty(t, Samples(series.New(0), series.Jumps{}, Params{Points: 2}))
}
