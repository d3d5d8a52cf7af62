package utils

import (
	"math"
	"time"
)

// HoursBetween returns (to - from) in fractional hours.
func HoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}

// MaxDuration is the largest representable time.Duration.
const MaxDuration = time.Duration(math.MaxInt64)

// HoursToDuration converts fractional hours to a duration, saturating at
// MaxDuration. ok is false when the value was clamped.
func HoursToDuration(hours float64) (d time.Duration, ok bool) {
	ns := hours * float64(time.Hour)
	if ns >= math.MaxInt64 {
		return MaxDuration, false
	}
	return time.Duration(ns), true
}

func FormatFloat(f float64, round int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	scale := math.Pow(10, float64(round))
	return math.Round(f*scale) / scale
}
