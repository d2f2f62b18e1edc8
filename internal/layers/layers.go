// Package layers maps layer numbers to the process parameters that apply to
// them. Layer 0 is the pre-build position; printed layers are numbered from 1.
package layers

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when layer group ranges are malformed.
var ErrInvalidRange = errors.New("invalid layer range")

// Range is an inclusive span of layer numbers.
type Range struct {
	First int
	Last  int
}

// Contains reports whether layer lies in the range.
func (r Range) Contains(layer int) bool {
	return layer >= r.First && layer <= r.Last
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.First, r.Last)
}

// Section holds the deposition parameters of one region of a layer.
type Section struct {
	Speed float64 // mm/s
	Power float64
}

// Group is one set of process parameters.
type Group struct {
	Name            string
	Range           Range
	Infill          Section
	Contour         Section
	InterlayerDwell float64 // s
}

// Resolver looks up the group for a layer. It is immutable once built.
type Resolver struct {
	groups  []Group
	grouped bool
}

// NewSingle returns a resolver where g applies to every layer.
func NewSingle(g Group) *Resolver {
	return &Resolver{groups: []Group{g}}
}

// NewGrouped returns a resolver over ranged groups, checked in declaration
// order.
func NewGrouped(groups []Group) (*Resolver, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no layer groups", ErrInvalidRange)
	}
	gs := make([]Group, len(groups))
	copy(gs, groups)
	r := &Resolver{groups: gs, grouped: true}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Grouped reports whether ranges are in effect. A single implicit group is not
// grouped and never signals truncation.
func (r *Resolver) Grouped() bool { return r.grouped }

// Groups returns a copy of the groups in declaration order.
func (r *Resolver) Groups() []Group {
	out := make([]Group, len(r.groups))
	copy(out, r.groups)
	return out
}

// First returns the first declared group.
func (r *Resolver) First() Group { return r.groups[0] }

// Resolve returns the group for layer. The second result is false when the
// layer lies outside every range, which callers treat as the end of the
// processed build.
func (r *Resolver) Resolve(layer int) (Group, bool) {
	if !r.grouped || layer == 0 {
		return r.groups[0], true
	}
	for _, g := range r.groups {
		if g.Range.Contains(layer) {
			return g, true
		}
	}
	return Group{}, false
}

// Validate checks that ranges start at 1 or later, are well formed, and are
// contiguous and non-overlapping in declaration order.
func (r *Resolver) Validate() error {
	if !r.grouped {
		return nil
	}
	for i, g := range r.groups {
		if g.Range.First < 1 {
			return fmt.Errorf("%w: group %q starts at layer %d, layers are numbered from 1", ErrInvalidRange, g.Name, g.Range.First)
		}
		if g.Range.Last < g.Range.First {
			return fmt.Errorf("%w: group %q range %s is reversed", ErrInvalidRange, g.Name, g.Range)
		}
		if i > 0 {
			prev := r.groups[i-1]
			if g.Range.First != prev.Range.Last+1 {
				return fmt.Errorf("%w: group %q range %s does not follow %q range %s", ErrInvalidRange, g.Name, g.Range, prev.Name, prev.Range)
			}
		}
	}
	return nil
}

// MinDwell returns the smallest interlayer dwell over all groups.
func (r *Resolver) MinDwell() (float64, string) {
	min, name := r.groups[0].InterlayerDwell, r.groups[0].Name
	for _, g := range r.groups[1:] {
		if g.InterlayerDwell < min {
			min, name = g.InterlayerDwell, g.Name
		}
	}
	return min, name
}
