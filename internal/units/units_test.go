package units

import (
	"math"
	"testing"
)

func TestFeedConversion(t *testing.T) {
	tests := []struct {
		speed float64
		feed  float64
	}{
		{0, 0},
		{1, 60},
		{10, 600},
		{12.5, 750},
	}

	for _, tt := range tests {
		if got := SpeedToFeed(tt.speed); math.Abs(got-tt.feed) > 1e-12 {
			t.Errorf("SpeedToFeed(%f) = %f, want %f", tt.speed, got, tt.feed)
		}
		if got := FeedToSpeed(tt.feed); math.Abs(got-tt.speed) > 1e-12 {
			t.Errorf("FeedToSpeed(%f) = %f, want %f", tt.feed, got, tt.speed)
		}
	}
}

func TestFeedMatches(t *testing.T) {
	// 8.3 * 60 is 498.00000000000006 in float64
	if !FeedMatches(498, SpeedToFeed(8.3)) {
		t.Error("FeedMatches should absorb float noise from speed*60")
	}
	if FeedMatches(499, 498) {
		t.Error("FeedMatches(499, 498) = true, want false")
	}
	if !FeedMatches(0, 0) {
		t.Error("FeedMatches(0, 0) = false, want true")
	}
}
