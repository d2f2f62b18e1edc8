// Package series holds the primary event series produced by the interpolator
// and the frozen list of layer jump indices that later stages synchronise on.
//
// The five columns (t, x, y, z, power) live behind one owning type so that
// they can only grow or shift together.
package series

// Point is one row of the event series.
type Point struct {
	T     float64
	X     float64
	Y     float64
	Z     float64
	Power float64
}

// Series is a columnar event series. The zero value is empty and ready to use.
type Series struct {
	t     []float64
	x     []float64
	y     []float64
	z     []float64
	power []float64
}

// New returns an empty series with room for n points.
func New(n int) *Series {
	return &Series{
		t:     make([]float64, 0, n),
		x:     make([]float64, 0, n),
		y:     make([]float64, 0, n),
		z:     make([]float64, 0, n),
		power: make([]float64, 0, n),
	}
}

// Len returns the number of points.
func (s *Series) Len() int { return len(s.t) }

// At returns the i-th point.
func (s *Series) At(i int) Point {
	return Point{T: s.t[i], X: s.x[i], Y: s.y[i], Z: s.z[i], Power: s.power[i]}
}

// Last returns the final point. It panics on an empty series.
func (s *Series) Last() Point { return s.At(len(s.t) - 1) }

// Append adds points to the end of the series.
func (s *Series) Append(pts ...Point) {
	for _, p := range pts {
		s.t = append(s.t, p.T)
		s.x = append(s.x, p.X)
		s.y = append(s.y, p.Y)
		s.z = append(s.z, p.Z)
		s.power = append(s.power, p.Power)
	}
}

// ReplaceLast overwrites the final point. It panics on an empty series.
func (s *Series) ReplaceLast(p Point) {
	i := len(s.t) - 1
	s.t[i], s.x[i], s.y[i], s.z[i], s.power[i] = p.T, p.X, p.Y, p.Z, p.Power
}

// Shift adds dt to every timestamp at index from and after.
func (s *Series) Shift(from int, dt float64) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(s.t); i++ {
		s.t[i] += dt
	}
}

// T returns the timestamp at index i.
func (s *Series) T(i int) float64 { return s.t[i] }

// Z returns the z coordinate at index i.
func (s *Series) Z(i int) float64 { return s.z[i] }

// PowerAt returns the power at index i.
func (s *Series) PowerAt(i int) float64 { return s.power[i] }

// Times returns a copy of the time column.
func (s *Series) Times() []float64 { return clone(s.t) }

// Xs returns a copy of the x column.
func (s *Series) Xs() []float64 { return clone(s.x) }

// Ys returns a copy of the y column.
func (s *Series) Ys() []float64 { return clone(s.y) }

// Zs returns a copy of the z column.
func (s *Series) Zs() []float64 { return clone(s.z) }

// Powers returns a copy of the power column.
func (s *Series) Powers() []float64 { return clone(s.power) }

// WithPowers returns a copy of the series whose power column is replaced by p.
// It panics if len(p) differs from the series length.
func (s *Series) WithPowers(p []float64) *Series {
	if len(p) != len(s.power) {
		panic("series: power column length mismatch")
	}
	return &Series{
		t:     clone(s.t),
		x:     clone(s.x),
		y:     clone(s.y),
		z:     clone(s.z),
		power: clone(p),
	}
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
