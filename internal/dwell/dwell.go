// Package dwell inserts pauses into the event series: an optional initial
// delay before the build and an interlayer dwell at every layer jump.
package dwell

import (
	"errors"
	"fmt"

	"github.com/ampes-dev/ampes/internal/layers"
	"github.com/ampes-dev/ampes/internal/series"
)

// ErrRollerDwell is returned when the roller cannot finish its traverse within
// the dwell available between layers.
var ErrRollerDwell = errors.New("roller dwell exceeds interlayer dwell")

// Apply adds initial to every timestamp, then for each jump in order adds the
// dwell of the finished layer to every timestamp from the jump index on. The
// shifts are cumulative: a point after two jumps receives both dwells.
func Apply(s *series.Series, jumps series.Jumps, dwellFor func(layer int) float64, initial float64) {
	if initial != 0 {
		s.Shift(0, initial)
	}
	for i := 0; i < jumps.Len(); i++ {
		j := jumps.At(i)
		if d := dwellFor(j.Layer); d != 0 {
			s.Shift(j.Index, d)
		}
	}
}

// ByLayer returns a dwell lookup backed by the resolver. Layers without a
// group get no dwell.
func ByLayer(r *layers.Resolver) func(layer int) float64 {
	return func(layer int) float64 {
		g, ok := r.Resolve(layer)
		if !ok {
			return 0
		}
		return g.InterlayerDwell
	}
}

// CheckRoller verifies that a roller traverse of w seconds fits inside every
// group's interlayer dwell.
func CheckRoller(r *layers.Resolver, w float64) error {
	if w < 0 {
		return fmt.Errorf("roller dwell must be non-negative, got %g", w)
	}
	min, name := r.MinDwell()
	if w > min {
		return fmt.Errorf("%w: w_dwell %g s is longer than the %g s interlayer dwell of group %q", ErrRollerDwell, w, min, name)
	}
	return nil
}
