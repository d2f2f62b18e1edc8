// Package roller derives the recoater/roller actuator schedule from the
// dwell-shifted event series.
package roller

import (
	"github.com/ampes-dev/ampes/internal/series"
)

// State is the actuator position.
type State int

const (
	Engaged State = iota
	Retracted
)

func (s State) String() string {
	if s == Engaged {
		return "engaged"
	}
	return "retracted"
}

// AnchorMode selects where the roller traverse sits relative to a layer jump.
type AnchorMode int

const (
	// AnchorBefore ends the traverse exactly at the jump timestamp.
	AnchorBefore AnchorMode = iota
	// AnchorAfter starts the traverse when the dwell gap opens.
	AnchorAfter
)

// ParseAnchor maps a configuration value to an AnchorMode.
func ParseAnchor(s string) (AnchorMode, bool) {
	switch s {
	case "", "before":
		return AnchorBefore, true
	case "after":
		return AnchorAfter, true
	}
	return AnchorBefore, false
}

func (m AnchorMode) String() string {
	if m == AnchorAfter {
		return "after"
	}
	return "before"
}

// Event is one roller state change.
type Event struct {
	T     float64
	Z     float64
	State State
}

// Params configures Sequence.
type Params struct {
	// Dwell is the duration of one traverse.
	Dwell  float64
	Anchor AnchorMode

	// Initial is the delay that was added before the first point. It bounds
	// the first window in AnchorAfter mode.
	Initial float64
}

// Sequence returns one Engaged/Retracted pair for the start of the build and
// one per layer jump, in time order. The end of the build has no following
// layer and produces no pair.
func Sequence(s *series.Series, jumps series.Jumps, p Params) []Event {
	if s.Len() == 0 {
		return nil
	}
	events := make([]Event, 0, 2*(jumps.Len()+1))

	t0 := s.T(0)
	start := t0 - p.Dwell
	if p.Anchor == AnchorAfter {
		start = t0 - p.Initial
	}
	events = appendPair(events, start, p.Dwell, s.Z(0))

	for i := 0; i < jumps.Len(); i++ {
		idx := jumps.At(i).Index
		start := s.T(idx) - p.Dwell
		if p.Anchor == AnchorAfter {
			start = s.T(idx - 1)
		}
		// The second jump point carries the height of the next layer.
		z := s.Z(idx)
		if idx+1 < s.Len() {
			z = s.Z(idx + 1)
		}
		events = appendPair(events, start, p.Dwell, z)
	}
	return events
}

func appendPair(events []Event, start, w, z float64) []Event {
	return append(events,
		Event{T: start, Z: z, State: Engaged},
		Event{T: start + w, Z: z, State: Retracted},
	)
}

// LayerStart returns the time the roller begins the traverse that precedes
// layer k (0-based). It reports false when there is no such traverse.
func LayerStart(events []Event, k int) (float64, bool) {
	i := 2 * k
	if k < 0 || i >= len(events) {
		return 0, false
	}
	return events[i].T, true
}
