package pipeline

// LayerStat summarises one layer of the event series.
type LayerStat struct {
	Layer    int
	Start    float64 // s, first point of the layer
	End      float64 // s, last point of the layer
	PowerOn  float64 // s
	PowerOff float64 // s
	Points   int
}

// LayerStats returns one summary per layer span.
func (o *Output) LayerStats() []LayerStat {
	stats := make([]LayerStat, 0, len(o.Spans))
	for _, sp := range o.Spans {
		stats = append(stats, LayerStat{
			Layer:    sp.Layer,
			Start:    o.Series.T(sp.Start),
			End:      o.Series.T(sp.End),
			PowerOn:  o.Series.T(sp.PowerOn),
			PowerOff: o.Series.T(sp.PowerOff),
			Points:   sp.End - sp.Start + 1,
		})
	}
	return stats
}

// Duration is the time of the last event series point.
func (o *Output) Duration() float64 {
	if o.Series == nil || o.Series.Len() == 0 {
		return 0
	}
	return o.Series.Last().T
}
