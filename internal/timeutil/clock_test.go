package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}
	start := c.Now()
	assert.GreaterOrEqual(t, c.Since(start), time.Duration(0))

	timer := c.NewTimer(time.Millisecond)
	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}

func TestMockClock_Now(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	c := NewMockClock(base)
	assert.Equal(t, base, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, base.Add(90*time.Second), c.Now())
	assert.Equal(t, 90*time.Second, c.Since(base))
}

func fired(tm Timer) bool {
	select {
	case <-tm.C():
		return true
	default:
		return false
	}
}

func TestMockTimer(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	tm := c.NewTimer(100 * time.Millisecond)

	c.Advance(50 * time.Millisecond)
	assert.False(t, fired(tm))

	c.Advance(50 * time.Millisecond)
	assert.True(t, fired(tm))

	// A fired timer stays quiet until reset.
	c.Advance(time.Second)
	assert.False(t, fired(tm))
}

func TestMockTimer_ResetDebounces(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	tm := c.NewTimer(100 * time.Millisecond)

	c.Advance(80 * time.Millisecond)
	assert.True(t, tm.Reset(100*time.Millisecond))
	c.Advance(80 * time.Millisecond)
	assert.False(t, fired(tm))
	c.Advance(20 * time.Millisecond)
	assert.True(t, fired(tm))
}

func TestMockTimer_Stop(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	tm := c.NewTimer(10 * time.Millisecond)
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	c.Advance(time.Second)
	assert.False(t, fired(tm))
}
