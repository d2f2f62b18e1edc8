// Package units provides shared constants and conversions for feed rates.
package units

import "math"

// Unit constants
const (
	MMPerSecond = "mm/s"
	MMPerMinute = "mm/min"
)

// SpeedToFeed converts a speed in mm/s to a G-code F word value in mm/min.
func SpeedToFeed(speed float64) float64 {
	return speed * 60
}

// FeedToSpeed converts a G-code F word value in mm/min to mm/s.
func FeedToSpeed(feed float64) float64 {
	return feed / 60
}

// FeedMatches reports whether a parsed F value equals a configured bucket.
// Buckets come from speed*60 and can carry float noise, so the comparison is
// relative rather than exact.
func FeedMatches(feed, bucket float64) bool {
	return math.Abs(feed-bucket) <= 1e-9*math.Max(1, math.Abs(bucket))
}
