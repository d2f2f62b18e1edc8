// Package gcode reads linear move commands from a slicer G-code program and
// turns them into ordered vertices plus per-layer position markers.
package gcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ampes-dev/ampes/internal/layers"
	"github.com/ampes-dev/ampes/internal/units"
)

var (
	// ErrUnexpectedFeed is returned when a depositing move uses a feed rate
	// that matches neither the infill nor the contour bucket.
	ErrUnexpectedFeed = errors.New("unexpected feed rate")

	// ErrLayerOutOfRange is returned in strict mode when a Z move starts a
	// layer that no layer group covers.
	ErrLayerOutOfRange = errors.New("layer outside configured layer groups")
)

// tokenPattern matches one axis word: the letter and a signed decimal,
// optionally with an exponent.
var tokenPattern = regexp.MustCompile(`^[XYZFE][-+]?\d+\.?\d*([eE][-+]?\d+)?$`)

// Class is the feed-rate bucket a move falls into.
type Class int

const (
	ClassOther Class = iota
	ClassInfill
	ClassContour
)

func (c Class) String() string {
	switch c {
	case ClassInfill:
		return "infill"
	case ClassContour:
		return "contour"
	default:
		return "other"
	}
}

// Vertex is one commanded endpoint.
type Vertex struct {
	X       float64
	Y       float64
	Z       float64 // last Z seen when the vertex was read
	Feed    float64 // mm/min, active when the vertex was read
	Deposit bool
	Class   Class
}

// Program is the parsed tool path.
type Program struct {
	Vertices []Vertex

	// LayerMarkers[k] is the number of vertices read before the k-th Z word.
	// Marker 0 is the pre-build position, marker k >= 1 starts layer k.
	LayerMarkers []int
	LayerZ       []float64

	// Truncated is set when parsing stopped at a layer outside every group.
	Truncated   bool
	TruncatedAt int
}

// Layers returns the number of printed layers described by the markers.
func (p *Program) Layers() int {
	if len(p.LayerMarkers) <= 1 {
		return 1
	}
	return len(p.LayerMarkers) - 1
}

// ParseOptions configures Parse.
type ParseOptions struct {
	InfillFeed  float64 // mm/min
	ContourFeed float64 // mm/min

	// Resolver, when grouped, truncates the program at the first layer that
	// has no group.
	Resolver *layers.Resolver

	// Strict turns truncation into ErrLayerOutOfRange.
	Strict bool
}

// Classify returns the bucket a feed rate belongs to.
func (o ParseOptions) Classify(feed float64) Class {
	switch {
	case units.FeedMatches(feed, o.InfillFeed):
		return ClassInfill
	case units.FeedMatches(feed, o.ContourFeed):
		return ClassContour
	default:
		return ClassOther
	}
}

// Parse reads a G-code program. Only G0/G1 lines are considered; everything
// after a ';' is treated as separate words, which is how slicers that append
// comments to moves are tolerated.
func Parse(r io.Reader, opts ParseOptions) (*Program, error) {
	p := &parser{opts: opts, prog: &Program{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.lineNo++
		stop, err := p.parseLine(scanner.Text())
		if err != nil {
			return nil, err
		}
		if stop {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read g-code: %w", err)
	}
	return p.prog, nil
}

type parser struct {
	opts   ParseOptions
	prog   *Program
	lineNo int

	feed float64
	x, y float64
	z    float64
}

func isLinearMove(word string) bool {
	switch word {
	case "G0", "G1", "G00", "G01":
		return true
	}
	return false
}

// parseLine handles one line and reports whether parsing must stop.
func (p *parser) parseLine(line string) (bool, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ";", " "))
	if len(fields) == 0 || !isLinearMove(fields[0]) {
		return false, nil
	}

	var (
		pending  bool
		hasE     bool
		feedAtXY float64
	)
	for _, word := range fields[1:] {
		if !tokenPattern.MatchString(word) {
			continue
		}
		v, err := strconv.ParseFloat(word[1:], 64)
		if err != nil {
			return false, fmt.Errorf("line %d: invalid word %q: %w", p.lineNo, word, err)
		}
		switch word[0] {
		case 'X', 'Y':
			if word[0] == 'X' {
				p.x = v
			} else {
				p.y = v
			}
			if !pending {
				pending = true
				feedAtXY = p.feed
			}
		case 'Z':
			p.z = v
			stop, err := p.startLayer(pending)
			if err != nil || stop {
				return stop, err
			}
		case 'F':
			p.feed = v
		case 'E':
			hasE = true
		}
	}

	if !pending {
		return false, nil
	}
	vtx := Vertex{X: p.x, Y: p.y, Z: p.z, Feed: feedAtXY, Deposit: hasE, Class: p.opts.Classify(feedAtXY)}
	if vtx.Deposit && vtx.Class == ClassOther {
		return false, fmt.Errorf("%w: line %d has F%g %s; expected %g %s (F%g) for infill or %g %s (F%g) for contour",
			ErrUnexpectedFeed, p.lineNo, feedAtXY, units.MMPerMinute,
			units.FeedToSpeed(p.opts.InfillFeed), units.MMPerSecond, p.opts.InfillFeed,
			units.FeedToSpeed(p.opts.ContourFeed), units.MMPerSecond, p.opts.ContourFeed)
	}
	p.prog.Vertices = append(p.prog.Vertices, vtx)
	return false, nil
}

// startLayer records a Z word. pending is true when an X or Y word earlier on
// the same line already counts towards the current layer.
func (p *parser) startLayer(pending bool) (bool, error) {
	prog := p.prog
	layer := len(prog.LayerZ)

	if res := p.opts.Resolver; res != nil && res.Grouped() && layer >= 1 {
		if _, ok := res.Resolve(layer); !ok {
			if p.opts.Strict {
				return true, fmt.Errorf("%w: line %d starts layer %d", ErrLayerOutOfRange, p.lineNo, layer)
			}
			prog.Truncated = true
			prog.TruncatedAt = layer
			return true, nil
		}
	}

	count := len(prog.Vertices)
	if pending {
		count++
	}
	prog.LayerZ = append(prog.LayerZ, p.z)
	prog.LayerMarkers = append(prog.LayerMarkers, count)
	return false, nil
}
