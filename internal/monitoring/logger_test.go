package monitoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ampes-dev/ampes/internal/timeutil"
)

func capture(t *testing.T) *[]string {
	t.Helper()
	original := Logf
	t.Cleanup(func() { Logf = original })

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := capture(t)
	Logf("reading %s", "part.gcode")
	assert.Equal(t, []string{"reading part.gcode"}, *lines)

	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("muted") })
	assert.Len(t, *lines, 1)
}

func TestLogf_Default(t *testing.T) {
	assert.NotNil(t, Logf)
}

func TestStageTimer(t *testing.T) {
	lines := capture(t)
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	st := NewStageTimer(clock)

	done := st.Start("parse", "Reading g-code file")
	clock.Advance(2 * time.Second)
	done()

	st.Skip("Skipping dwell")

	done = st.Start("interpolate", "Populating event series output")
	clock.Advance(500 * time.Millisecond)
	done()

	assert.Equal(t, []string{"Reading g-code file", "Skipping dwell", "Populating event series output"}, *lines)
	assert.Equal(t, []StageDuration{
		{Name: "parse", Duration: 2 * time.Second},
		{Name: "interpolate", Duration: 500 * time.Millisecond},
	}, st.Stages())
	assert.Equal(t, 2500*time.Millisecond, st.Total())
}
