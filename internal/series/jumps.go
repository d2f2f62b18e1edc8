package series

// Jump marks a layer transition in the event series. Index is the position of
// the first of the two jump points (last point of Layer, same x/y as the first
// point of Layer+1).
type Jump struct {
	Index int
	Layer int
}

// Jumps is the frozen, ordered list of layer jumps. It is built once by the
// interpolator and never recomputed from (possibly shifted) timestamps.
type Jumps struct {
	list []Jump
}

// NewJumps freezes the given jumps. The caller's slice is copied.
func NewJumps(js []Jump) Jumps {
	list := make([]Jump, len(js))
	copy(list, js)
	return Jumps{list: list}
}

// Len returns the number of jumps.
func (j Jumps) Len() int { return len(j.list) }

// At returns the i-th jump.
func (j Jumps) At(i int) Jump { return j.list[i] }

// All returns a copy of the jumps.
func (j Jumps) All() []Jump {
	out := make([]Jump, len(j.list))
	copy(out, j.list)
	return out
}

// Indices returns the series indices of the jumps, in order.
func (j Jumps) Indices() []int {
	out := make([]int, len(j.list))
	for i, jp := range j.list {
		out[i] = jp.Index
	}
	return out
}
