package series

// Direction selects the scan direction of FindFirst.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// FindFirst scans indices of a sequence of length n starting at start, moving
// in dir, and returns the first index for which pred is true. The scan stops
// at limit (inclusive); pass -1 to scan to the end of the sequence in that
// direction.
func FindFirst(n int, pred func(i int) bool, start, limit int, dir Direction) (int, bool) {
	if n == 0 || start < 0 || start >= n {
		return 0, false
	}
	step := 1
	end := n - 1
	if dir == Backward {
		step = -1
		end = 0
	}
	if limit >= 0 && limit < n {
		end = limit
	}
	if (dir == Forward && end < start) || (dir == Backward && end > start) {
		return 0, false
	}
	for i := start; ; i += step {
		if pred(i) {
			return i, true
		}
		if i == end {
			return 0, false
		}
	}
}

// NonZeroPower reports whether the point at i has its source on.
func (s *Series) NonZeroPower(i int) bool { return s.power[i] != 0 }
