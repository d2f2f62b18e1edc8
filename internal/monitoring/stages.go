package monitoring

import (
	"time"

	"github.com/ampes-dev/ampes/internal/timeutil"
)

// StageTimer records how long each pipeline stage took.
type StageTimer struct {
	clock  timeutil.Clock
	stages []StageDuration
}

// StageDuration is one completed stage.
type StageDuration struct {
	Name     string
	Duration time.Duration
}

// NewStageTimer returns a timer using clock, or the real clock when nil.
func NewStageTimer(clock timeutil.Clock) *StageTimer {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &StageTimer{clock: clock}
}

// Start logs the stage message and returns a function that records the
// stage's duration when called.
func (s *StageTimer) Start(name, format string, v ...interface{}) func() {
	Logf(format, v...)
	start := s.clock.Now()
	return func() {
		s.stages = append(s.stages, StageDuration{Name: name, Duration: s.clock.Since(start)})
	}
}

// Skip logs that a stage was not run.
func (s *StageTimer) Skip(format string, v ...interface{}) {
	Logf(format, v...)
}

// Stages returns the completed stages in order.
func (s *StageTimer) Stages() []StageDuration {
	out := make([]StageDuration, len(s.stages))
	copy(out, s.stages)
	return out
}

// Total returns the summed duration of all stages.
func (s *StageTimer) Total() time.Duration {
	var d time.Duration
	for _, st := range s.stages {
		d += st.Duration
	}
	return d
}
