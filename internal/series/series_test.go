package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_AppendAndReplaceLast(t *testing.T) {
	s := New(4)
	s.Append(Point{T: 0, X: 1, Y: 2, Z: 3, Power: 0})
	s.Append(Point{T: 1, X: 2, Y: 2, Z: 3, Power: 100})
	require.Equal(t, 2, s.Len())

	s.ReplaceLast(Point{T: 1, X: 2, Y: 2, Z: 3.5, Power: 0})
	assert.Equal(t, Point{T: 1, X: 2, Y: 2, Z: 3.5, Power: 0}, s.Last())
	assert.Equal(t, Point{T: 0, X: 1, Y: 2, Z: 3}, s.At(0))
}

func TestSeries_Shift(t *testing.T) {
	s := New(0)
	for i := 0; i < 5; i++ {
		s.Append(Point{T: float64(i)})
	}
	s.Shift(2, 10)
	assert.Equal(t, []float64{0, 1, 12, 13, 14}, s.Times())

	s.Shift(-3, 1)
	assert.Equal(t, []float64{1, 2, 13, 14, 15}, s.Times())

	s.Shift(5, 100)
	assert.Equal(t, []float64{1, 2, 13, 14, 15}, s.Times())
}

func TestSeries_ColumnCopies(t *testing.T) {
	s := New(0)
	s.Append(Point{T: 1, X: 2, Y: 3, Z: 4, Power: 5})

	ts := s.Times()
	ts[0] = 99
	assert.Equal(t, 1.0, s.T(0), "Times must return a copy")

	p := s.WithPowers([]float64{7})
	assert.Equal(t, 7.0, p.PowerAt(0))
	assert.Equal(t, 5.0, s.PowerAt(0))
	assert.Equal(t, s.Xs(), p.Xs())

	assert.Panics(t, func() { s.WithPowers([]float64{1, 2}) })
}

func TestJumps_Frozen(t *testing.T) {
	in := []Jump{{Index: 5, Layer: 1}, {Index: 12, Layer: 2}}
	j := NewJumps(in)
	in[0].Index = 100

	require.Equal(t, 2, j.Len())
	assert.Equal(t, 5, j.At(0).Index)
	assert.Equal(t, []int{5, 12}, j.Indices())

	all := j.All()
	all[1].Index = 0
	assert.Equal(t, 12, j.At(1).Index)
}

func TestFindFirst(t *testing.T) {
	power := []float64{0, 0, 50, 50, 0, 0, 70, 0}
	nonZero := func(i int) bool { return power[i] != 0 }
	n := len(power)

	tests := []struct {
		name   string
		start  int
		limit  int
		dir    Direction
		want   int
		wantOK bool
	}{
		{"forward from start", 0, -1, Forward, 2, true},
		{"forward from hit", 3, -1, Forward, 3, true},
		{"forward past gap", 4, -1, Forward, 6, true},
		{"forward nothing left", 7, -1, Forward, 0, false},
		{"forward limit stops scan", 4, 5, Forward, 0, false},
		{"backward from end", 7, -1, Backward, 6, true},
		{"backward into block", 5, -1, Backward, 3, true},
		{"backward limit stops scan", 5, 4, Backward, 0, false},
		{"backward nothing before", 1, -1, Backward, 0, false},
		{"start out of range", 8, -1, Forward, 0, false},
		{"limit on wrong side", 5, 2, Forward, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindFirst(n, nonZero, tt.start, tt.limit, tt.dir)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFindFirst_Empty(t *testing.T) {
	_, ok := FindFirst(0, func(int) bool { return true }, 0, -1, Forward)
	assert.False(t, ok)
}
